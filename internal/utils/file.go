package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an image extension
func IsImageFile(filename string) bool {
	ext := GetFileExtension(filename)
	imageExts := []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "webp"}

	for _, imgExt := range imageExts {
		if ext == imgExt {
			return true
		}
	}
	return false
}

// OutputPath places the file name of inputFile inside subdir, next to the input.
// A non-empty format replaces the extension.
func OutputPath(inputFile, subdir, format string) string {
	dir := filepath.Dir(inputFile)
	name := filepath.Base(inputFile)

	if format != "" && GetFileExtension(name) != strings.ToLower(format) {
		name = fmt.Sprintf("%s.%s", strings.TrimSuffix(name, filepath.Ext(name)), format)
	}

	return filepath.Join(dir, subdir, name)
}

// ListImageFiles recursively lists all image files in a directory,
// skipping directories named skipDir.
func ListImageFiles(dir, skipDir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if skipDir != "" && path != dir && info.Name() == skipDir {
				return filepath.SkipDir
			}
			return nil
		}

		if IsImageFile(path) {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

// ExpandInputs turns the given paths into a list of files. Directories are
// walked for image files; everything else is passed through untouched.
func ExpandInputs(paths []string, skipDir string) ([]string, error) {
	var files []string
	for _, p := range paths {
		if !DirExists(p) {
			files = append(files, p)
			continue
		}
		found, err := ListImageFiles(p, skipDir)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", p, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && info.IsDir()
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LockFilePrefix marks the temporary files Excel keeps next to open workbooks.
const LockFilePrefix = "~$"

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds workbooks on disk. Relative inputs resolve against basePath.
type Discovery struct {
	basePath   string
	extensions []string
}

// NewDiscovery creates a discovery for files with the given extensions
// (default .xlsx).
func NewDiscovery(basePath string, extensions ...string) *Discovery {
	if len(extensions) == 0 {
		extensions = []string{".xlsx"}
	}
	norm := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		norm = append(norm, ext)
	}
	return &Discovery{basePath: basePath, extensions: norm}
}

// FindWorkbooks resolves input as a directory, a single file or a glob
// pattern. Directories are not searched recursively. Results are sorted by
// name and never include lock files.
func (d *Discovery) FindWorkbooks(input string) ([]FileInfo, error) {
	fullPath := d.resolve(input)

	if info, err := os.Stat(fullPath); err == nil && info.IsDir() {
		return d.FindInDirectory(fullPath)
	}

	matches, err := filepath.Glob(fullPath)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", input, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() || !d.accept(info.Name()) {
			continue
		}
		files = append(files, fileInfo(match, info))
	}

	sortByName(files)
	return files, nil
}

// FindInDirectory lists the workbooks directly inside dir.
func (d *Discovery) FindInDirectory(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !d.accept(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo(filepath.Join(fullPath, entry.Name()), info))
	}

	sortByName(files)
	return files, nil
}

// IsLockFile reports whether name is an Excel lock file.
func IsLockFile(name string) bool {
	return strings.HasPrefix(filepath.Base(name), LockFilePrefix)
}

func (d *Discovery) accept(name string) bool {
	if IsLockFile(name) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range d.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (d *Discovery) resolve(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

func fileInfo(path string, info os.FileInfo) FileInfo {
	return FileInfo{
		Path:    path,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

func sortByName(files []FileInfo) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
}

package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover lists the structure files in dir with extension ext, gzip compressed
// or not, sorted by name. Subdirectories are not descended.
func Discover(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	ext = strings.ToLower(ext)
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if strings.HasSuffix(name, ext) || strings.HasSuffix(name, ext+".gz") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(paths)
	return paths, nil
}

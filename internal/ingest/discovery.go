package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// ErrLogDirUnavailable is returned when the log root cannot be listed.
var ErrLogDirUnavailable = errors.New("log directory unavailable")

// CanonicalRoot returns the absolute, symlink-resolved form of root. A root
// that does not exist yet is returned in absolute form only.
func CanonicalRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving log root %q: %w", root, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return abs, nil
		}
		return "", fmt.Errorf("resolving log root %q: %w", root, err)
	}
	return resolved, nil
}

// DiscoverFiles walks root recursively and returns the absolute paths of the
// regular files whose name ends in ext, sorted by path.
//
// Directory symlinks are not followed. A symlink to a regular file is listed
// under its link path. A missing root yields no files and no error; an
// unreadable subdirectory is logged and skipped.
func DiscoverFiles(root, ext string) ([]string, error) {
	base, err := CanonicalRoot(root)
	if err != nil {
		return nil, err
	}

	files := []string{}
	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == base {
				if errors.Is(walkErr, fs.ErrNotExist) {
					return fs.SkipAll
				}
				return walkErr
			}
			slog.Warn("skipping unreadable log path", "path", path, "error", walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		if isRegularFile(path, d) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking log root %q: %w", base, err)
	}

	sort.Strings(files)
	return files, nil
}

func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ListApps returns the names of the immediate subdirectories of root, which
// double as app labels. Hidden entries and symlinks are skipped. Names are
// ordered by Unicode case folding, ties broken by the raw name.
func ListApps(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLogDirUnavailable, root, err)
	}

	apps := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !e.IsDir() {
			continue
		}
		apps = append(apps, e.Name())
	}

	fold := cases.Fold()
	keys := make(map[string]string, len(apps))
	for _, app := range apps {
		keys[app] = fold.String(app)
	}
	sort.Slice(apps, func(i, j int) bool {
		ki, kj := keys[apps[i]], keys[apps[j]]
		if ki != kj {
			return ki < kj
		}
		return apps[i] < apps[j]
	})
	return apps, nil
}

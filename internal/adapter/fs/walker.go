package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"tfidx/internal/domain"
)

// Walker resolves a corpus source into the list of files to index.
type Walker struct {
	includes []string
	excludes []string
}

func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
	}
}

type FileInfo struct {
	Path string
	Size int64
}

// Resolve returns source itself when it is a file, or every matching file
// below it in path order when it is a directory. Include patterns only apply
// to directory walks.
func (w *Walker) Resolve(source string) ([]FileInfo, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrUnreadableSource, "%s: %v", source, err)
	}
	if !info.IsDir() {
		return []FileInfo{{Path: source, Size: info.Size()}}, nil
	}
	return w.Walk(source)
}

// Walk returns the files under root matching the include patterns and none
// of the exclude patterns, sorted by path.
func (w *Walker) Walk(root string) ([]FileInfo, error) {
	var files []FileInfo

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrUnreadableSource, "%s: %v", root, err)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && w.matchAny(w.excludes, relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.matchAny(w.includes, relPath) && !w.matchAny(w.excludes, relPath) {
			info, err := d.Info()
			if err != nil {
				return err
			}
			files = append(files, FileInfo{
				Path: path,
				Size: info.Size(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(domain.ErrUnreadableSource, "walking %s: %v", root, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

func (w *Walker) matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

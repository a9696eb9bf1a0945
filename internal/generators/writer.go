package generators

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// GenerationError reports a failed generation or write. Files touched
// before the failure have been restored when it is returned from
// Writer.Transaction.
type GenerationError struct {
	File      string // layout or output path
	Generator string
	Err       error
}

func (e *GenerationError) Error() string {
	if e.Generator != "" {
		return fmt.Sprintf("generating %s (%s): %v", e.File, e.Generator, e.Err)
	}
	return fmt.Sprintf("generating %s: %v", e.File, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// backup holds a file's state before the first write in a transaction.
type backup struct {
	existed bool
	content []byte
	mode    os.FileMode
}

// Writer writes generated files under a root directory. Each file is
// written atomically through a temporary file and rename. Within a
// transaction the previous content of every touched file is kept so it can
// be restored if anything fails.
type Writer struct {
	root    string
	backups map[string]backup
	order   []string
	writes  int
}

// NewWriter creates a Writer rooted at root.
func NewWriter(root string) *Writer {
	return &Writer{root: root, backups: make(map[string]backup)}
}

// Root returns the directory files are written under.
func (w *Writer) Root() string {
	return w.root
}

// Writes returns the number of files written or removed so far.
func (w *Writer) Writes() int {
	return w.writes
}

func (w *Writer) abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// Write stores content at rel. Identical content is not rewritten, so
// regenerating unchanged layouts touches nothing. It reports whether the
// file changed.
func (w *Writer) Write(rel string, content []byte) (bool, error) {
	path := w.abs(rel)
	old, err := os.ReadFile(path)
	switch {
	case err == nil:
		if bytes.Equal(old, content) {
			return false, nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := w.remember(path, old, err == nil); err != nil {
		return false, err
	}
	if err := writeAtomic(path, content); err != nil {
		return false, err
	}
	w.writes++
	return true, nil
}

// Remove deletes the file at rel if it exists.
func (w *Writer) Remove(rel string) (bool, error) {
	path := w.abs(rel)
	old, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := w.remember(path, old, true); err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("removing %s: %w", path, err)
	}
	w.writes++
	return true, nil
}

func (w *Writer) remember(path string, old []byte, existed bool) error {
	if _, ok := w.backups[path]; ok {
		return nil
	}
	b := backup{existed: existed, content: old, mode: 0o644}
	if existed {
		if info, err := os.Stat(path); err == nil {
			b.mode = info.Mode().Perm()
		}
	}
	w.backups[path] = b
	w.order = append(w.order, path)
	return nil
}

// Commit forgets the backups, making all writes so far permanent.
func (w *Writer) Commit() {
	w.backups = make(map[string]backup)
	w.order = nil
}

// Rollback restores every file touched since the last Commit, newest
// first. Files that did not exist before are removed.
func (w *Writer) Rollback() error {
	var errs []error
	for i := len(w.order) - 1; i >= 0; i-- {
		path := w.order[i]
		b := w.backups[path]
		if !b.existed {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if err := writeAtomic(path, b.content); err != nil {
			errs = append(errs, err)
			continue
		}
		_ = os.Chmod(path, b.mode)
	}
	w.Commit()
	return errors.Join(errs...)
}

// Transaction runs fn and commits its writes. If fn returns an error or
// panics, every file it touched is restored and a GenerationError naming
// file is returned.
func (w *Writer) Transaction(file string, fn func(w *Writer) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err == nil {
			w.Commit()
			return
		}
		if rbErr := w.Rollback(); rbErr != nil {
			log.Printf("[generators] restoring files after %s failed: %v", file, rbErr)
		}
		var ge *GenerationError
		if !errors.As(err, &ge) {
			err = &GenerationError{File: file, Err: err}
		}
	}()
	return fn(w)
}

// writeAtomic writes content to a temporary file next to path and renames
// it into place.
func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

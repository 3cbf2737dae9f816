package fluxio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// staged is a complete temporary file waiting to be renamed onto path.
type staged struct {
	tmp, path string
}

// stage writes through a temporary file in the target directory, so a
// rename can later move it into place without readers seeing a partial file.
func stage(path string, write func(w io.Writer) error) (st staged, err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return st, err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return st, err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, os.Remove(f.Name()))
		}
	}()

	if err = write(f); err != nil {
		return st, errors.Join(err, f.Close())
	}
	if err = f.Sync(); err != nil {
		return st, errors.Join(err, f.Close())
	}
	if err = f.Close(); err != nil {
		return st, err
	}
	if err = os.Chmod(f.Name(), 0o644); err != nil {
		return st, err
	}
	return staged{tmp: f.Name(), path: path}, nil
}

// Batch stages a set of output files and moves them into place together.
// Either every file of the batch ends up on disk or none does.
type Batch struct {
	files []staged
}

// Add writes one file of the batch to its temporary location.
func (b *Batch) Add(path string, write func(w io.Writer) error) error {
	st, err := stage(path, write)
	if err != nil {
		return err
	}
	b.files = append(b.files, st)
	return nil
}

// Commit renames every staged file onto its path and returns the paths.
// When a rename fails the files already moved are removed again, along
// with the temporaries not yet renamed.
func (b *Batch) Commit() ([]string, error) {
	done := make([]string, 0, len(b.files))
	for i, st := range b.files {
		if err := os.Rename(st.tmp, st.path); err != nil {
			for _, p := range done {
				err = errors.Join(err, os.Remove(p))
			}
			for _, rest := range b.files[i:] {
				err = errors.Join(err, os.Remove(rest.tmp))
			}
			b.files = nil
			return nil, err
		}
		done = append(done, st.path)
	}
	b.files = nil
	return done, nil
}

// Discard removes every staged temporary without touching the targets.
func (b *Batch) Discard() error {
	var err error
	for _, st := range b.files {
		err = errors.Join(err, os.Remove(st.tmp))
	}
	b.files = nil
	return err
}

func writeAtomic(path string, write func(w io.Writer) error) error {
	var b Batch
	if err := b.Add(path, write); err != nil {
		return err
	}
	_, err := b.Commit()
	return err
}

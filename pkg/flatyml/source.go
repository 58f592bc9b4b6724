package flatyml

import (
	"errors"
	"io"
	"os"
)

// Source loads the complete text of a configuration file.
type Source interface {
	Load(path string) ([]byte, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(path string) ([]byte, error)

// Load implements Source.
func (f SourceFunc) Load(path string) ([]byte, error) {
	return f(path)
}

// FileSource reads sources from the local filesystem.
//
// MaxSize, if positive, caps the accepted file size; larger files fail with
// ErrOutOfMemory.
type FileSource struct {
	MaxSize int64
}

// Load implements Source.
func (s FileSource) Load(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Path: path, Op: "open", Kind: ErrInvalidFile, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &SourceError{Path: path, Op: "stat", Kind: ErrFileError, Err: err}
	}
	if info.IsDir() {
		return nil, &SourceError{Path: path, Op: "read", Kind: ErrFileError, Err: errors.New("is a directory")}
	}
	if s.MaxSize > 0 && info.Size() > s.MaxSize {
		return nil, &SourceError{Path: path, Op: "allocate", Kind: ErrOutOfMemory}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &SourceError{Path: path, Op: "read", Kind: ErrFileError, Err: err}
	}
	return data, nil
}

// limitSource applies a size cap to s. A FileSource checks the file size
// before reading; any other Source is checked after loading.
func limitSource(s Source, limit int64) Source {
	if limit <= 0 {
		return s
	}
	if fs, ok := s.(FileSource); ok {
		fs.MaxSize = limit
		return fs
	}
	return SourceFunc(func(path string) ([]byte, error) {
		data, err := s.Load(path)
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > limit {
			return nil, &SourceError{Path: path, Op: "allocate", Kind: ErrOutOfMemory}
		}
		return data, nil
	})
}

// classify makes sure a Source failure carries one of the load sentinels.
func classify(path string, err error) error {
	for _, kind := range []error{ErrInvalidFile, ErrFileError, ErrOutOfMemory, ErrMutexError} {
		if errors.Is(err, kind) {
			return err
		}
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return &SourceError{Path: path, Op: "open", Kind: ErrInvalidFile, Err: err}
	}
	return &SourceError{Path: path, Op: "read", Kind: ErrFileError, Err: err}
}

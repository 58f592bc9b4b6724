package flatyml

import (
	"errors"
	"fmt"
)

// Code is a stable negative integer identifying an error class.
type Code int

// Stable error codes. Values never change between releases.
const (
	CodeOK             Code = 0
	CodeInvalidPointer Code = -1
	CodeOutOfMemory    Code = -2
	CodeInvalidFile    Code = -3
	CodeFileError      Code = -4
	CodeMutexError     Code = -5
	CodeAlreadyParsed  Code = -6
	CodeKindMismatch   Code = -7
	CodeClosed         Code = -8
	CodeUnknown        Code = -99
)

// Sentinel errors. Use errors.Is to test for them; CodeOf maps them to Codes.
var (
	// ErrInvalidPointer indicates a missing reader, path, key, or destination.
	ErrInvalidPointer = errors.New("invalid pointer")

	// ErrOutOfMemory indicates an allocation was refused, such as a source
	// larger than the configured maximum size.
	ErrOutOfMemory = errors.New("not enough memory")

	// ErrInvalidFile indicates the source path could not be opened.
	ErrInvalidFile = errors.New("invalid file")

	// ErrFileError indicates the source could be opened but not sized or read.
	ErrFileError = errors.New("file error")

	// ErrMutexError indicates a lock could not be acquired or released.
	// sync.Mutex cannot fail, so this package never returns it; the code is
	// reserved so external Source implementations can report lock failures.
	ErrMutexError = errors.New("mutex error")

	// ErrAlreadyParsed indicates Parse was called more than once.
	ErrAlreadyParsed = errors.New("parser already executed")

	// ErrKindMismatch indicates a destination that cannot hold the stored kind.
	ErrKindMismatch = errors.New("value kind does not match destination")

	// ErrClosed indicates the reader has been closed.
	ErrClosed = errors.New("reader closed")
)

var codes = []struct {
	err  error
	code Code
}{
	{ErrInvalidPointer, CodeInvalidPointer},
	{ErrOutOfMemory, CodeOutOfMemory},
	{ErrInvalidFile, CodeInvalidFile},
	{ErrFileError, CodeFileError},
	{ErrMutexError, CodeMutexError},
	{ErrAlreadyParsed, CodeAlreadyParsed},
	{ErrKindMismatch, CodeKindMismatch},
	{ErrClosed, CodeClosed},
}

// CodeOf returns the stable code for err. nil maps to CodeOK and errors that
// wrap none of the sentinels map to CodeUnknown.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeUnknown
}

// SourceError wraps a failure to load source text.
type SourceError struct {
	// Path is the requested source path.
	Path string
	// Op is the step that failed ("open", "stat", "read", "allocate").
	Op string
	// Kind is the sentinel classifying the failure.
	Kind error
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is/As.
func (e *SourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ParseError wraps a failure during the parse phase.
type ParseError struct {
	// Source names the text being parsed.
	Source string
	// Pass is the scan pass that was running ("int", "string" or "line").
	Pass string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s pass: %v", e.Source, e.Pass, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ParseError) Unwrap() error {
	return e.Err
}

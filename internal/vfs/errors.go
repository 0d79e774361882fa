package vfs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("no such file or directory")
	ErrNotADirectory = errors.New("not a directory")
	ErrNotAFile      = errors.New("not a file")
	ErrAlreadyExists = errors.New("already exists")
)

// PathError records the operation and absolute path that failed.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return e.Op + ": " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error { return e.Err }

func pathErr(op string, components []string, err error) error {
	return &PathError{Op: op, Path: Join(components), Err: err}
}

// ParseError reports a malformed source description.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s source: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

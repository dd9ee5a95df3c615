// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/frozolotl/classfile/internal/log"
)

// MinPrefixSize is the length of the fixed class-file prefix: magic,
// minor, major and constant_pool_count. File.Parse rejects shorter input
// with ErrFileTooSmall.
const MinPrefixSize = 10

// Options customizes how a File is opened and parsed.
type Options struct {
	// Logger receives diagnostic messages; defaults to a stderr logger
	// filtered to LevelError.
	Logger log.Logger
}

// File is a memory-mapped class file on disk, or an in-memory byte
// buffer handed to OpenBytes. It owns the bytes a *Class parsed from it
// borrows, so it must outlive every Class/Attribute/Instruction derived
// from it.
type File struct {
	data   []byte
	mapped mmap.MMap
	f      *os.File
	logger *log.Helper
}

func newLogger(opts *Options) *log.Helper {
	if opts != nil && opts.Logger != nil {
		return log.NewHelper(opts.Logger)
	}
	base := log.NewStdLogger(os.Stderr)
	return log.NewHelper(log.NewFilter(base, log.FilterLevel(log.LevelError)))
}

// Open memory-maps the file at path read-only. The caller must call
// Close when done; until then, every Class parsed from it stays valid.
func Open(path string, opts *Options) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{data: data, mapped: data, f: f, logger: newLogger(opts)}, nil
}

// OpenBytes wraps an in-memory buffer as a File without touching the
// filesystem.
func OpenBytes(data []byte, opts *Options) *File {
	return &File{data: data, logger: newLogger(opts)}
}

// Close unmaps and closes the underlying file, if any. OpenBytes-backed
// Files need not be closed, but doing so is harmless.
func (f *File) Close() error {
	if f.mapped != nil {
		if err := f.mapped.Unmap(); err != nil {
			return err
		}
	}
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// Bytes returns the File's underlying bytes.
func (f *File) Bytes() []byte { return f.data }

// Parse decodes a *Class borrowing f's bytes. The result is only valid
// for as long as f is not Closed.
func (f *File) Parse() (*Class, error) {
	if len(f.data) < MinPrefixSize {
		return nil, ErrFileTooSmall
	}
	f.logger.Debugf("parsing %d bytes", len(f.data))
	class, err := Parse(f.data)
	if err != nil {
		f.logger.Errorf("parse failed: %v", err)
		return nil, err
	}
	return class, nil
}

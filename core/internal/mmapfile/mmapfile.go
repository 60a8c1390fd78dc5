// Package mmapfile provides the shared memory-mapped, read-only file access
// used by core/taxonomy and core/index to load their backing tables without
// copying them into the heap. The split between this file (platform-neutral
// API) and the os-specific mmap/munmap implementations mirrors the pattern
// used for segment loading in large read-heavy stores.
package mmapfile

import (
	"errors"
	"os"
)

// File represents a memory-mapped, read-only file.
type File struct {
	Data []byte
	f    *os.File
}

// Open maps the file at path into memory as read-only. The caller owns the
// returned File and must call Close when done.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return &File{f: f}, nil
	}
	if size < 0 {
		f.Close()
		return nil, errors.New("mmapfile: negative file size")
	}

	data, err := mmap(f, int(size))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{Data: data, f: f}, nil
}

// ReadFile reads path fully into heap memory, for callers that opted out of
// mmap (the Index and Taxonomy constructors accept a mmap flag) and for the
// index-options blob, which is always read this way.
func ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Close unmaps the memory (if any) and closes the underlying file. Safe to
// call on a nil *File.
func (m *File) Close() error {
	if m == nil {
		return nil
	}
	var err error
	if m.Data != nil {
		err = munmap(m.Data)
		m.Data = nil
	}
	if m.f != nil {
		if cerr := m.f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		m.f = nil
	}
	return err
}

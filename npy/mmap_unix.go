// SPDX-License-Identifier: MIT

//go:build unix

package npy

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// mapped is a read-only shared mapping of a whole file.
type mapped struct {
	data []byte
}

// attach maps f and closes the descriptor; the mapping outlives it.
func attach(f *os.File, size int64) (backing, error) {
	defer f.Close()
	if size == 0 {
		return &mapped{}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}

	return &mapped{data: data}, nil
}

func (m *mapped) bytesAt(off int64, n int) ([]byte, error) {
	if off < 0 || off+int64(n) > int64(len(m.data)) {
		return nil, io.ErrUnexpectedEOF
	}

	return m.data[off : off+int64(n)], nil
}

func (m *mapped) close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil

	return err
}

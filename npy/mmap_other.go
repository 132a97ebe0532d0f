// SPDX-License-Identifier: MIT

//go:build !unix

package npy

import "os"

// fileBacked reads elements through ReadAt where mmap is unavailable.
type fileBacked struct {
	f   *os.File
	buf []byte
}

func attach(f *os.File, _ int64) (backing, error) {
	return &fileBacked{f: f, buf: make([]byte, 8)}, nil
}

func (b *fileBacked) bytesAt(off int64, n int) ([]byte, error) {
	if _, err := b.f.ReadAt(b.buf[:n], off); err != nil {
		return nil, err
	}

	return b.buf[:n], nil
}

func (b *fileBacked) close() error { return b.f.Close() }

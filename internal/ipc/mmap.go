package ipc

import (
	"fmt"
	"os"
	"syscall"
)

// RegionSize is the fixed size of the shared verdict region (§6).
const RegionSize = 1 << 20 // 1 MiB

// Region is the shared-memory verdict slot described in §3: single-writer
// (the sandbox), single-reader (the frontend), serialized by the
// request/ack handshake on the sandbox socket rather than by any locking
// inside Region itself (I2).
type Region struct {
	file *os.File
	data []byte
}

// CreateRegion creates (or truncates) the backing file at path and maps it.
// Called by the sandbox, the region's sole writer.
func CreateRegion(path string) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open mmap file %q: %w", path, err)
	}
	if err := f.Truncate(RegionSize); err != nil {
		f.Close()
		return nil, fmt.Errorf("truncate mmap file %q: %w", path, err)
	}
	return mapFile(f)
}

// OpenRegion opens an existing backing file for reading. Called by the
// frontend, the region's sole reader.
func OpenRegion(path string) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open mmap file %q: %w", path, err)
	}
	return mapFile(f)
}

func mapFile(f *os.File) (*Region, error) {
	data, err := syscall.Mmap(int(f.Fd()), 0, RegionSize, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return &Region{file: f, data: data}, nil
}

// Write encodes rec and copies it into the region. Only the sandbox calls
// this; the socket ack that follows is the happens-before edge the reader
// relies on (§5 "Ordering guarantees").
func (r *Region) Write(rec Record) error {
	buf := rec.Encode()
	if len(buf) > len(r.data) {
		return fmt.Errorf("verdict record of %d bytes exceeds region size %d", len(buf), len(r.data))
	}
	copy(r.data, buf)
	// Zero the byte immediately after the payload so a reader that decodes
	// conservatively never sees residue from a previous, larger record.
	if len(buf) < len(r.data) {
		r.data[len(buf)] = 0
	}
	return nil
}

// Read decodes whatever is currently in the region. Only the frontend calls
// this, after receiving the sandbox's socket ack.
func (r *Region) Read() (Record, error) {
	return Decode(r.data)
}

// Close unmaps the region and closes the backing file descriptor.
func (r *Region) Close() error {
	err := syscall.Munmap(r.data)
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// CleanupFile unlinks the mmap backing file (§4.4 shutdown responsibility).
func CleanupFile(path string) {
	_ = os.Remove(path)
}

package pkg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"aimage-backend/fault"
)

// BlobStore persists generated image payloads keyed by an opaque name.
// The one-time-download policy lives above this layer, on the artifact
// metadata record; the store itself only guarantees durable writes and
// idempotent deletes.
type BlobStore interface {
	Put(name string, data []byte) (string, error)
	Open(ref string) (io.ReadCloser, int64, error)
	Delete(ref string) error
}

// DiskStore keeps blobs as PNG files under a single directory
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fault.StorageError(fmt.Sprintf("failed to create storage dir: %v", err))
	}
	return &DiskStore{dir: dir}, nil
}

// Put durably writes the payload and returns its storage reference. The
// blob is visible to Open only once the rename has completed.
func (s *DiskStore) Put(name string, data []byte) (string, error) {
	ref := name + ".png"
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return "", fault.StorageError(fmt.Sprintf("failed to stage blob: %v", err))
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fault.StorageError(fmt.Sprintf("failed to write blob: %v", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fault.StorageError(fmt.Sprintf("failed to close blob: %v", err))
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, ref)); err != nil {
		os.Remove(tmp.Name())
		return "", fault.StorageError(fmt.Sprintf("failed to publish blob: %v", err))
	}
	return ref, nil
}

// Open returns a streaming reader for the payload plus its size
func (s *DiskStore) Open(ref string) (io.ReadCloser, int64, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fault.ErrArtifactNotFound
		}
		return nil, 0, fault.StorageError(fmt.Sprintf("failed to open blob: %v", err))
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fault.StorageError(fmt.Sprintf("failed to stat blob: %v", err))
	}
	return f, info.Size(), nil
}

// Delete removes the payload; deleting an absent blob is a no-op
func (s *DiskStore) Delete(ref string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil && !os.IsNotExist(err) {
		return fault.StorageError(fmt.Sprintf("failed to delete blob: %v", err))
	}
	return nil
}

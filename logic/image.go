package logic

import (
	"io"
	"log"

	"github.com/google/uuid"

	"aimage-backend/models"
	"aimage-backend/pkg"
)

// ImageLogic handles artifact metadata queries and the one-time
// download lifecycle
type ImageLogic struct {
	images ImageStore
	blobs  pkg.BlobStore
}

func NewImageLogic(images ImageStore, blobs pkg.BlobStore) *ImageLogic {
	return &ImageLogic{images: images, blobs: blobs}
}

// GetImage retrieves one of the user's images
func (l *ImageLogic) GetImage(userID uint64, id uuid.UUID) (*models.Image, error) {
	return l.images.GetUserImage(userID, id)
}

// GetHistory returns a page of the user's generated images
func (l *ImageLogic) GetHistory(userID uint64, page, limit int) ([]models.Image, int64, error) {
	return l.images.ListImages(userID, page, limit)
}

// DeleteImage removes the metadata record and its blob
func (l *ImageLogic) DeleteImage(userID uint64, id uuid.UUID) error {
	img, err := l.images.DeleteImage(userID, id)
	if err != nil {
		return err
	}
	if err := l.blobs.Delete(img.StorageRef); err != nil {
		log.Printf("Failed to delete blob %s: %v", img.StorageRef, err)
	}
	return nil
}

// OpenDownload serves the one-time retrieval of an artifact. The
// consumed transition is committed before streaming begins, so a client
// that disconnects mid-stream does not get a second chance; the payload
// is deleted when the returned stream is closed. Possession of the
// artifact id is the only access control at this boundary.
func (l *ImageLogic) OpenDownload(id uuid.UUID) (io.ReadCloser, int64, error) {
	img, err := l.images.ConsumeImage(id)
	if err != nil {
		return nil, 0, err
	}

	rc, size, err := l.blobs.Open(img.StorageRef)
	if err != nil {
		// consumed already recorded: the reference is spent either way
		if derr := l.blobs.Delete(img.StorageRef); derr != nil {
			log.Printf("Failed to delete blob %s: %v", img.StorageRef, derr)
		}
		return nil, 0, err
	}

	return &consumingStream{
		ReadCloser: rc,
		blobs:      l.blobs,
		ref:        img.StorageRef,
	}, size, nil
}

// consumingStream deletes the blob once the retrieval stream is done,
// whether it completed or failed terminally
type consumingStream struct {
	io.ReadCloser
	blobs pkg.BlobStore
	ref   string
}

func (s *consumingStream) Close() error {
	err := s.ReadCloser.Close()
	if derr := s.blobs.Delete(s.ref); derr != nil {
		log.Printf("Failed to delete blob %s: %v", s.ref, derr)
	}
	return err
}

package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"schooltalk/internal/common"
)

// BlobStorage persists attachment bytes in GridFS and serves them back by
// stored name. It implements common.BlobStorage.
type BlobStorage struct {
	gridFS *gridfs.Bucket
}

func NewBlobStorage(mongoClient *MongoClient) *BlobStorage {
	return &BlobStorage{gridFS: mongoClient.GridFS}
}

func (s *BlobStorage) Put(ctx context.Context, name, mimetype string, content io.Reader) (common.BlobRef, error) {
	metadata := bson.M{
		"mime_type":   mimetype,
		"uploaded_at": time.Now().UTC(),
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := s.gridFS.OpenUploadStream(name, opts)
	if err != nil {
		return common.BlobRef{}, fmt.Errorf("%w: gridfs open: %v", common.ErrUpstreamUnavailable, err)
	}

	if _, err := io.Copy(stream, content); err != nil {
		stream.Close()
		return common.BlobRef{}, fmt.Errorf("%w: gridfs write: %v", common.ErrUpstreamUnavailable, err)
	}
	if err := stream.Close(); err != nil {
		return common.BlobRef{}, fmt.Errorf("%w: gridfs close: %v", common.ErrUpstreamUnavailable, err)
	}

	storedName := stream.FileID.(primitive.ObjectID).Hex()
	return common.BlobRef{
		URL:        "/media/" + storedName,
		StoredName: storedName,
	}, nil
}

// Open streams a stored attachment back out, with its size for the
// Content-Length header.
func (s *BlobStorage) Open(ctx context.Context, storedName string) (io.ReadCloser, int64, error) {
	objectID, err := primitive.ObjectIDFromHex(storedName)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid file id: %w", common.ErrNotFound)
	}

	stream, err := s.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: gridfs read: %v", common.ErrUpstreamUnavailable, err)
	}
	return stream, stream.GetFile().Length, nil
}

func (s *BlobStorage) Delete(ctx context.Context, storedName string) error {
	objectID, err := primitive.ObjectIDFromHex(storedName)
	if err != nil {
		return fmt.Errorf("invalid file id: %w", common.ErrNotFound)
	}
	if err := s.gridFS.Delete(objectID); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: gridfs delete: %v", common.ErrUpstreamUnavailable, err)
	}
	return nil
}

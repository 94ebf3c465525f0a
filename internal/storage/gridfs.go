package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const gridFSBucketName = "photos"

// GridFSStore keeps objects in a Mongo GridFS bucket. Objects are served back by
// GET /api/photos/:id, so URLs are built from the service's public base URL.
type GridFSStore struct {
	db      *mongo.Database
	baseURL string
}

func NewGridFSStore(db *mongo.Database, baseURL string) *GridFSStore {
	return &GridFSStore{db: db, baseURL: baseURL}
}

// bucket returns a fresh bucket per call; deadlines are set on the bucket, not per operation.
func (s *GridFSStore) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(gridFSBucketName))
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
		if err := b.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *GridFSStore) Put(ctx context.Context, key, contentType string, body io.Reader, _ int64) (string, error) {
	b, err := s.bucket(ctx)
	if err != nil {
		return "", fmt.Errorf("GridFSStore.Put: %w", err)
	}

	id := primitive.NewObjectID()
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	if err := b.UploadFromStreamWithID(id, key, body, opts); err != nil {
		return "", fmt.Errorf("GridFSStore.Put %s: %w", key, err)
	}
	return fmt.Sprintf("%s/api/photos/%s", s.baseURL, id.Hex()), nil
}

// Open returns the stored bytes and the content type recorded at upload.
func (s *GridFSStore) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, "", ErrNotFound
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("GridFSStore.Open: %w", err)
	}

	stream, err := b.OpenDownloadStream(objID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("GridFSStore.Open: %w", err)
	}

	contentType := "application/octet-stream"
	if meta := stream.GetFile().Metadata; len(meta) > 0 {
		if ct, ok := meta.Lookup("contentType").StringValueOK(); ok && ct != "" {
			contentType = ct
		}
	}
	return stream, contentType, nil
}

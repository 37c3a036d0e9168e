// Package attachment validates uploads and delegates the bytes to blob
// storage. It knows nothing about threads or messages.
package attachment

import (
	"context"
	"fmt"
	"io"

	"schooltalk/internal/common"
	"schooltalk/internal/config"
)

type Service interface {
	Store(ctx context.Context, content io.Reader, size int64, mimetype, name string) (common.Attachment, error)
}

type service struct {
	blobs    common.BlobStorage
	maxBytes int64
	allowed  map[string]struct{}
}

func NewService(blobs common.BlobStorage, cfg *config.Config) Service {
	allowed := make(map[string]struct{}, len(cfg.Attachment.AllowedMimetypes))
	for _, m := range cfg.Attachment.AllowedMimetypes {
		allowed[m] = struct{}{}
	}
	return &service{
		blobs:    blobs,
		maxBytes: cfg.Attachment.MaxBytes,
		allowed:  allowed,
	}
}

func (s *service) Store(ctx context.Context, content io.Reader, size int64, mimetype, name string) (common.Attachment, error) {
	if _, ok := s.allowed[mimetype]; !ok {
		return common.Attachment{}, fmt.Errorf("%w: mimetype %q not allowed", common.ErrInvalidAttachment, mimetype)
	}
	if size <= 0 || size > s.maxBytes {
		return common.Attachment{}, fmt.Errorf("%w: size %d exceeds limit %d", common.ErrInvalidAttachment, size, s.maxBytes)
	}

	// The declared size is enforced on the stream too; a lying client
	// cannot push more bytes than it claimed.
	ref, err := s.blobs.Put(ctx, name, mimetype, io.LimitReader(content, size))
	if err != nil {
		return common.Attachment{}, err
	}

	return common.Attachment{
		StoredName:   ref.StoredName,
		OriginalName: name,
		URL:          ref.URL,
		Mimetype:     mimetype,
		SizeBytes:    size,
	}, nil
}

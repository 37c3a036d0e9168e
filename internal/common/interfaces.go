package common

import (
	"context"
	"io"
)

// RosterDirectory resolves cohorts against the school directory. It is
// read-only and idempotent; the messaging core never writes through it.
type RosterDirectory interface {
	ClassMembers(ctx context.Context, classID string) ([]string, error)
	AllGuardians(ctx context.Context) ([]string, error)
}

// BlobStorage persists attachment bytes. Durable once Put returns nil.
type BlobStorage interface {
	Put(ctx context.Context, name, mimetype string, content io.Reader) (BlobRef, error)
}

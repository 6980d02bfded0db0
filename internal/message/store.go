package message

import (
	"context"

	"avviso/pkg/domain"
)

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks

// Store persists message metadata. Upsert is idempotent on the message ID so
// the dispatch activity can be retried safely.
type Store interface {
	Upsert(ctx context.Context, meta *Metadata) error
	Find(ctx context.Context, id domain.MessageID) (*Metadata, error)
}

// ContentStore persists message content blobs. Put overwrites any existing
// blob for the same message, which is fine: on retry we cannot know whether
// the first write succeeded, and the content is identical.
type ContentStore interface {
	Put(ctx context.Context, id domain.MessageID, content *Content) error
	Get(ctx context.Context, id domain.MessageID) (*Content, error)
}

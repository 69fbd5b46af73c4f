package contract

import (
	"context"

	"school-assist-be/pkg/store"
)

// SessionRepository persists dialog sessions keyed by the transport session id.
// Get returns a copy; callers must Save to commit changes.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (*store.Session, bool, error)
	Save(ctx context.Context, session *store.Session) error
	Delete(ctx context.Context, sessionID string) error
}

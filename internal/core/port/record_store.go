package port

import (
	"context"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
)

// UpsertOutcome reports the result of a conflict-resolving write. When the
// write is rejected as stale, Latest carries the record that won. Latest is
// nil when the stored value could not be parsed (the write is then accepted
// rather than preserving unreadable state).
type UpsertOutcome struct {
	Stored bool
	Latest *domain.ProgressSyncRecord
}

// ProgressRecordStore persists sync records keyed by hashed sync key. Upsert
// must be atomic at the store: of two concurrent writers the one with the
// later UpdatedAtMs wins regardless of arrival order, and equal timestamps
// are accepted so retries stay idempotent.
type ProgressRecordStore interface {
	Fetch(ctx context.Context, storageKey string) (*domain.ProgressSyncRecord, error)
	Upsert(ctx context.Context, storageKey string, record domain.ProgressSyncRecord) (UpsertOutcome, error)
}

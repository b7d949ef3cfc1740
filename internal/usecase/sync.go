package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/port"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/infra/security"
)

// SyncResult reports the outcome of a submit. A rejected write is not an
// error: Latest carries the record that won so the client can reconcile.
type SyncResult struct {
	Synced bool
	Record domain.ProgressSyncRecord
	Latest *domain.ProgressSyncRecord
}

// SyncService orchestrates the two sync operations: fetch-latest and
// submit-update. It owns no record state; every record lives at the shared
// store for at most the length of one request.
type SyncService struct {
	store  port.ProgressRecordStore
	logger *zap.Logger
	now    func() time.Time
}

// NewSyncService wires the service to its record store.
func NewSyncService(store port.ProgressRecordStore, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock injects a custom clock (primarily for testing).
func (s *SyncService) WithClock(now func() time.Time) *SyncService {
	if now != nil {
		s.now = now
	}
	return s
}

// FetchLatest returns the record stored for the sync key, or
// repository.ErrNotFound when none exists.
func (s *SyncService) FetchLatest(ctx context.Context, syncKey string) (*domain.ProgressSyncRecord, error) {
	key, err := security.ValidateSyncKey(syncKey)
	if err != nil {
		return nil, err
	}

	record, err := s.store.Fetch(ctx, security.StorageKey(key))
	if err != nil {
		return nil, err
	}
	return record, nil
}

// SubmitUpdate validates the payload, stamps the record, and attempts the
// conflict-resolving write.
func (s *SyncService) SubmitUpdate(ctx context.Context, syncKey string, body []byte) (*SyncResult, error) {
	key, err := security.ValidateSyncKey(syncKey)
	if err != nil {
		return nil, err
	}

	update, err := ValidateSyncRequest(body)
	if err != nil {
		return nil, err
	}

	record := domain.ProgressSyncRecord{
		SchemaVersion:   domain.RecordSchemaVersion,
		UpdatedAt:       update.UpdatedAt,
		UpdatedAtMs:     update.UpdatedAtMs,
		Snapshot:        update.Snapshot,
		ServerUpdatedAt: s.now().UTC().Format(isoMillisLayout),
	}

	outcome, err := s.store.Upsert(ctx, security.StorageKey(key), record)
	if err != nil {
		return nil, fmt.Errorf("upsert sync record: %w", err)
	}

	if !outcome.Stored {
		return &SyncResult{Synced: false, Latest: outcome.Latest}, nil
	}

	return &SyncResult{Synced: true, Record: record}, nil
}

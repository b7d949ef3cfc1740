package domain

import "errors"

// RecordSchemaVersion tags persisted sync records so future shapes can be
// migrated without guessing.
const RecordSchemaVersion = 1

// ProgressSnapshot is the client-owned payload replicated across devices.
// The three segments are opaque flat maps; at least one must be present for
// the snapshot to be worth syncing.
type ProgressSnapshot struct {
	Version     string         `json:"version"`
	CreatedAt   string         `json:"createdAt"`
	Theme       map[string]any `json:"theme,omitempty"`
	CustomTheme map[string]any `json:"customTheme,omitempty"`
	Stats       map[string]any `json:"stats,omitempty"`
}

// HasContent reports whether the snapshot carries at least one syncable segment.
func (s ProgressSnapshot) HasContent() bool {
	return s.Theme != nil || s.CustomTheme != nil || s.Stats != nil
}

// ProgressSyncRecord is the unit persisted at the shared store. UpdatedAtMs is
// the conflict-resolution timestamp; ServerUpdatedAt is informational only and
// never participates in comparisons.
type ProgressSyncRecord struct {
	SchemaVersion   int              `json:"schemaVersion"`
	UpdatedAt       string           `json:"updatedAt"`
	UpdatedAtMs     int64            `json:"updatedAtMs"`
	Snapshot        ProgressSnapshot `json:"snapshot"`
	ServerUpdatedAt string           `json:"serverUpdatedAt"`
}

var (
	// ErrInvalidSyncKey indicates the x-sync-key header is missing or malformed.
	ErrInvalidSyncKey = errors.New("invalid sync key")
	// ErrInvalidPayload indicates the sync payload failed structural validation.
	ErrInvalidPayload = errors.New("invalid sync payload")
	// ErrPayloadTooLarge indicates the serialized payload exceeds the size cap.
	ErrPayloadTooLarge = errors.New("sync payload too large")
	// ErrSyncUnavailable indicates the shared store is not configured.
	ErrSyncUnavailable = errors.New("sync storage unavailable")
)

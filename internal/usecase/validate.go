package usecase

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
)

// MaxPayloadBytes caps the serialized size of a sync payload at 512 KiB.
const MaxPayloadBytes = 512 * 1024

// isoMillisLayout is the canonical timestamp form persisted in records.
const isoMillisLayout = "2006-01-02T15:04:05.000Z07:00"

// isoTimestampPattern accepts date, time with seconds, optional fractional
// seconds, and either Z or a numeric offset. Anything looser is rejected so
// equivalent client representations collapse to one canonical form.
var isoTimestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)

// SyncUpdate is a validated, normalized submit request. UpdatedAt has been
// re-serialized from the parsed timestamp; the snapshot is the client's,
// untouched.
type SyncUpdate struct {
	UpdatedAt   string
	UpdatedAtMs int64
	Snapshot    domain.ProgressSnapshot
}

// ValidateSyncRequest checks a raw request body against the sync payload
// rules, first failure wins: structured object, size cap, strict updatedAt,
// then snapshot shape with at least one syncable segment.
func ValidateSyncRequest(body []byte) (*SyncUpdate, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, domain.ErrInvalidPayload
	}

	if len(body) > MaxPayloadBytes {
		return nil, domain.ErrPayloadTooLarge
	}

	updatedAtRaw, _ := obj["updatedAt"].(string)
	updatedAt, err := parseISOTimestamp(updatedAtRaw)
	if err != nil {
		return nil, domain.ErrInvalidPayload
	}

	snapshotRaw, ok := obj["snapshot"].(map[string]any)
	if !ok {
		return nil, domain.ErrInvalidPayload
	}

	version, _ := snapshotRaw["version"].(string)
	if version == "" {
		return nil, domain.ErrInvalidPayload
	}

	createdAt, _ := snapshotRaw["createdAt"].(string)
	if _, err := parseISOTimestamp(createdAt); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	snapshot := domain.ProgressSnapshot{
		Version:   version,
		CreatedAt: createdAt,
	}

	if snapshot.Theme, err = optionalSegment(snapshotRaw, "theme"); err != nil {
		return nil, err
	}
	if snapshot.CustomTheme, err = optionalSegment(snapshotRaw, "customTheme"); err != nil {
		return nil, err
	}
	if snapshot.Stats, err = optionalSegment(snapshotRaw, "stats"); err != nil {
		return nil, err
	}

	if !snapshot.HasContent() {
		return nil, domain.ErrInvalidPayload
	}

	return &SyncUpdate{
		UpdatedAt:   updatedAt.UTC().Format(isoMillisLayout),
		UpdatedAtMs: updatedAt.UnixMilli(),
		Snapshot:    snapshot,
	}, nil
}

// optionalSegment returns the named segment map if present. A present
// segment that is not a structured object fails validation.
func optionalSegment(snapshot map[string]any, name string) (map[string]any, error) {
	value, present := snapshot[name]
	if !present {
		return nil, nil
	}
	segment, ok := value.(map[string]any)
	if !ok {
		return nil, domain.ErrInvalidPayload
	}
	return segment, nil
}

func parseISOTimestamp(value string) (time.Time, error) {
	if !isoTimestampPattern.MatchString(value) {
		return time.Time{}, domain.ErrInvalidPayload
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, domain.ErrInvalidPayload
	}
	return parsed, nil
}

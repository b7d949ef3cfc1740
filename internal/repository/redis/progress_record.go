package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/port"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/repository"
)

const defaultRecordTTL = 365 * 24 * time.Hour

// upsertScript performs the read-compare-write as one atomic step at the
// store. A stored record that is strictly newer wins and is returned as the
// conflict payload; an unreadable stored value is overwritten rather than
// preserved, but flagged so the caller does not trust it as a conflict.
// Equal timestamps accept the write, keeping retries idempotent.
var upsertScript = red.NewScript(`
local stored = redis.call("GET", KEYS[1])
if not stored then
	redis.call("SET", KEYS[1], ARGV[1], "EX", ARGV[3])
	return {1, ""}
end
local ok, decoded = pcall(cjson.decode, stored)
if not ok or type(decoded) ~= "table" or type(decoded.updatedAtMs) ~= "number" then
	redis.call("SET", KEYS[1], ARGV[1], "EX", ARGV[3])
	return {1, "corrupt"}
end
if decoded.updatedAtMs > tonumber(ARGV[2]) then
	return {0, stored}
end
redis.call("SET", KEYS[1], ARGV[1], "EX", ARGV[3])
return {1, ""}
`)

// ProgressRecordRepository persists sync records in Redis with a
// last-write-wins upsert. Records expire after a year of inactivity; every
// accepted write refreshes the TTL.
type ProgressRecordRepository struct {
	client *red.Client
	ttl    time.Duration
}

// NewProgressRecordRepository constructs the repository. A non-positive TTL
// falls back to the 365-day default.
func NewProgressRecordRepository(client *red.Client, ttl time.Duration) *ProgressRecordRepository {
	if ttl <= 0 {
		ttl = defaultRecordTTL
	}
	return &ProgressRecordRepository{client: client, ttl: ttl}
}

// Fetch loads the record stored at the hashed key. A missing key and an
// unreadable stored value both report ErrNotFound; there is nothing a caller
// could do with corrupt state.
func (r *ProgressRecordRepository) Fetch(ctx context.Context, storageKey string) (*domain.ProgressSyncRecord, error) {
	value, err := r.client.Get(ctx, storageKey).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get sync record: %w", err)
	}

	var record domain.ProgressSyncRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, repository.ErrNotFound
	}

	return &record, nil
}

// Upsert writes the candidate unless the stored record is strictly newer.
func (r *ProgressRecordRepository) Upsert(ctx context.Context, storageKey string, record domain.ProgressSyncRecord) (port.UpsertOutcome, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return port.UpsertOutcome{}, fmt.Errorf("marshal sync record: %w", err)
	}

	ttlSeconds := int64(r.ttl / time.Second)
	raw, err := upsertScript.Run(ctx, r.client, []string{storageKey}, payload, record.UpdatedAtMs, ttlSeconds).Result()
	if err != nil {
		return port.UpsertOutcome{}, fmt.Errorf("redis upsert sync record: %w", err)
	}

	reply, ok := raw.([]interface{})
	if !ok || len(reply) != 2 {
		return port.UpsertOutcome{}, fmt.Errorf("unexpected upsert reply %T", raw)
	}

	stored, ok := reply[0].(int64)
	if !ok {
		return port.UpsertOutcome{}, fmt.Errorf("unexpected upsert status %T", reply[0])
	}

	if stored == 1 {
		return port.UpsertOutcome{Stored: true}, nil
	}

	latestRaw, _ := reply[1].(string)
	var latest domain.ProgressSyncRecord
	if err := json.Unmarshal([]byte(latestRaw), &latest); err != nil {
		// The stored value won the comparison but cannot be presented as a
		// conflict payload.
		return port.UpsertOutcome{Stored: false, Latest: nil}, nil
	}

	return port.UpsertOutcome{Stored: false, Latest: &latest}, nil
}

var _ port.ProgressRecordStore = (*ProgressRecordRepository)(nil)

package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
)

func validBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"updatedAt": "2025-06-01T12:00:00.000Z",
		"snapshot": map[string]any{
			"version":   "1.0",
			"createdAt": "2025-05-01T08:30:00.000Z",
			"stats":     map[string]any{"streak": 3},
		},
	})
	if err != nil {
		t.Fatalf("failed to build body: %v", err)
	}
	return body
}

func TestValidateSyncRequestAcceptsSingleSegment(t *testing.T) {
	update, err := ValidateSyncRequest(validBody(t))
	if err != nil {
		t.Fatalf("ValidateSyncRequest returned error: %v", err)
	}
	if update.Snapshot.Stats == nil {
		t.Fatalf("expected stats segment to survive validation")
	}
	if update.Snapshot.Theme != nil || update.Snapshot.CustomTheme != nil {
		t.Fatalf("expected absent segments to stay nil")
	}
	if update.UpdatedAtMs != 1748779200000 {
		t.Fatalf("expected updatedAtMs 1748779200000, got %d", update.UpdatedAtMs)
	}
}

func TestValidateSyncRequestRejectsEmptySnapshot(t *testing.T) {
	body := []byte(`{
		"updatedAt": "2025-06-01T12:00:00.000Z",
		"snapshot": {"version": "1.0", "createdAt": "2025-05-01T08:30:00.000Z"}
	}`)

	if _, err := ValidateSyncRequest(body); !errors.Is(err, domain.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload for snapshot without segments, got %v", err)
	}
}

func TestValidateSyncRequestRejectsNonObjectBodies(t *testing.T) {
	for name, body := range map[string]string{
		"array":   `[1, 2, 3]`,
		"null":    `null`,
		"string":  `"progress"`,
		"number":  `42`,
		"garbage": `{not json`,
	} {
		if _, err := ValidateSyncRequest([]byte(body)); !errors.Is(err, domain.ErrInvalidPayload) {
			t.Fatalf("%s: expected ErrInvalidPayload, got %v", name, err)
		}
	}
}

func TestValidateSyncRequestRejectsOversizedPayload(t *testing.T) {
	blob := strings.Repeat("a", MaxPayloadBytes)
	body := fmt.Sprintf(`{
		"updatedAt": "2025-06-01T12:00:00.000Z",
		"snapshot": {
			"version": "1.0",
			"createdAt": "2025-05-01T08:30:00.000Z",
			"stats": {"blob": %q}
		}
	}`, blob)

	if _, err := ValidateSyncRequest([]byte(body)); !errors.Is(err, domain.ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestValidateSyncRequestRejectsLooseTimestamps(t *testing.T) {
	for name, updatedAt := range map[string]string{
		"missing seconds":      "2025-06-01T12:00Z",
		"missing timezone":     "2025-06-01T12:00:00",
		"space separator":      "2025-06-01 12:00:00Z",
		"impossible date":      "2025-13-40T12:00:00Z",
		"offset without colon": "2025-06-01T12:00:00+0200",
		"empty":                "",
	} {
		body := fmt.Sprintf(`{
			"updatedAt": %q,
			"snapshot": {
				"version": "1.0",
				"createdAt": "2025-05-01T08:30:00.000Z",
				"stats": {"streak": 3}
			}
		}`, updatedAt)

		if _, err := ValidateSyncRequest([]byte(body)); !errors.Is(err, domain.ErrInvalidPayload) {
			t.Fatalf("%s: expected ErrInvalidPayload, got %v", name, err)
		}
	}
}

func TestValidateSyncRequestCanonicalizesUpdatedAt(t *testing.T) {
	body := []byte(`{
		"updatedAt": "2025-06-01T14:00:00+02:00",
		"snapshot": {
			"version": "1.0",
			"createdAt": "2025-05-01T08:30:00.000Z",
			"stats": {"streak": 3}
		}
	}`)

	update, err := ValidateSyncRequest(body)
	if err != nil {
		t.Fatalf("ValidateSyncRequest returned error: %v", err)
	}
	if update.UpdatedAt != "2025-06-01T12:00:00.000Z" {
		t.Fatalf("expected canonical UTC form, got %q", update.UpdatedAt)
	}
	if update.UpdatedAtMs != 1748779200000 {
		t.Fatalf("expected updatedAtMs 1748779200000, got %d", update.UpdatedAtMs)
	}
}

func TestValidateSyncRequestRejectsMalformedSnapshot(t *testing.T) {
	for name, snapshot := range map[string]string{
		"missing version":     `{"createdAt": "2025-05-01T08:30:00.000Z", "stats": {}}`,
		"empty version":       `{"version": "", "createdAt": "2025-05-01T08:30:00.000Z", "stats": {}}`,
		"bad createdAt":       `{"version": "1.0", "createdAt": "yesterday", "stats": {}}`,
		"segment not object":  `{"version": "1.0", "createdAt": "2025-05-01T08:30:00.000Z", "theme": "dark"}`,
		"snapshot not object": `"snapshot"`,
	} {
		body := fmt.Sprintf(`{"updatedAt": "2025-06-01T12:00:00.000Z", "snapshot": %s}`, snapshot)
		if _, err := ValidateSyncRequest([]byte(body)); !errors.Is(err, domain.ErrInvalidPayload) {
			t.Fatalf("%s: expected ErrInvalidPayload, got %v", name, err)
		}
	}
}

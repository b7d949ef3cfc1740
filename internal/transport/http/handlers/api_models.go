package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/transport/http/middleware"
)

// Error codes exposed to clients. These are an external contract; clients
// branch on them, so they never change shape.
const (
	CodeInvalidSyncKey  = "INVALID_SYNC_KEY"
	CodeInvalidPayload  = "INVALID_PAYLOAD"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	CodeRateLimit       = "RATE_LIMIT"
	CodeConflict        = "CONFLICT"
	CodeNotFound        = "NOT_FOUND"
	CodeSyncUnavailable = "SYNC_UNAVAILABLE"
	CodeServerError     = "SERVER_ERROR"
)

// ErrorResponse represents a generic error payload with the request id for
// debugging.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// NewErrorResponse creates an error response carrying the correlation id.
func NewErrorResponse(c *gin.Context, code string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		RequestID: middleware.GetRequestID(c),
	}
}

// SyncRecordView is the client-facing projection of a stored record.
type SyncRecordView struct {
	UpdatedAt       string                  `json:"updatedAt"`
	ServerUpdatedAt string                  `json:"serverUpdatedAt"`
	Snapshot        domain.ProgressSnapshot `json:"snapshot"`
}

// NewSyncRecordView projects a record, dropping storage-only fields.
func NewSyncRecordView(record *domain.ProgressSyncRecord) *SyncRecordView {
	if record == nil {
		return nil
	}
	return &SyncRecordView{
		UpdatedAt:       record.UpdatedAt,
		ServerUpdatedAt: record.ServerUpdatedAt,
		Snapshot:        record.Snapshot,
	}
}

// SyncSubmitResponse acknowledges an accepted update.
type SyncSubmitResponse struct {
	Synced          bool   `json:"synced"`
	UpdatedAt       string `json:"updatedAt"`
	ServerUpdatedAt string `json:"serverUpdatedAt"`
}

// SyncConflictResponse reports a rejected stale write. Latest is nil when the
// stored record won the comparison but could not be parsed.
type SyncConflictResponse struct {
	Error     string          `json:"error"`
	Latest    *SyncRecordView `json:"latest"`
	RequestID string          `json:"requestId,omitempty"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/repository"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/transport/http/middleware"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/usecase"
)

// SyncKeyHeader carries the client-held secret identifying one progress record.
const SyncKeyHeader = "x-sync-key"

// SyncHandler exposes the two sync operations over HTTP. A nil service means
// the shared store is not configured; both operations then answer 503.
type SyncHandler struct {
	service *usecase.SyncService
	logger  *zap.Logger
}

// NewSyncHandler builds the handler.
func NewSyncHandler(service *usecase.SyncService, logger *zap.Logger) *SyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHandler{service: service, logger: logger}
}

var fetchErrorCases = []ErrorCase{
	{Err: domain.ErrInvalidSyncKey, Status: http.StatusBadRequest, Code: CodeInvalidSyncKey},
	{Err: repository.ErrNotFound, Status: http.StatusNotFound, Code: CodeNotFound},
}

var submitErrorCases = []ErrorCase{
	{Err: domain.ErrInvalidSyncKey, Status: http.StatusBadRequest, Code: CodeInvalidSyncKey},
	{Err: domain.ErrPayloadTooLarge, Status: http.StatusRequestEntityTooLarge, Code: CodePayloadTooLarge},
	{Err: domain.ErrInvalidPayload, Status: http.StatusBadRequest, Code: CodeInvalidPayload},
}

// Fetch returns the latest stored record for the presented sync key.
func (h *SyncHandler) Fetch(c *gin.Context) {
	setSyncResponseHeaders(c)

	if h.service == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, CodeSyncUnavailable))
		return
	}

	record, err := h.service.FetchLatest(c.Request.Context(), c.GetHeader(SyncKeyHeader))
	if err != nil {
		RespondWithMappedError(c, h.logger, err, fetchErrorCases)
		return
	}

	c.JSON(http.StatusOK, NewSyncRecordView(record))
}

// Submit validates and stores an update, reporting a conflict when a newer
// record already exists.
func (h *SyncHandler) Submit(c *gin.Context) {
	setSyncResponseHeaders(c)

	if h.service == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, CodeSyncUnavailable))
		return
	}

	// An oversized declared length short-circuits before any body read.
	if c.Request.ContentLength > usecase.MaxPayloadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse(c, CodePayloadTooLarge))
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, usecase.MaxPayloadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, CodeInvalidPayload))
		return
	}
	if len(body) > usecase.MaxPayloadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse(c, CodePayloadTooLarge))
		return
	}

	result, err := h.service.SubmitUpdate(c.Request.Context(), c.GetHeader(SyncKeyHeader), body)
	if err != nil {
		RespondWithMappedError(c, h.logger, err, submitErrorCases)
		return
	}

	if !result.Synced {
		c.JSON(http.StatusConflict, SyncConflictResponse{
			Error:     CodeConflict,
			Latest:    NewSyncRecordView(result.Latest),
			RequestID: middleware.GetRequestID(c),
		})
		return
	}

	c.JSON(http.StatusOK, SyncSubmitResponse{
		Synced:          true,
		UpdatedAt:       result.Record.UpdatedAt,
		ServerUpdatedAt: result.Record.ServerUpdatedAt,
	})
}

// setSyncResponseHeaders marks sync responses uncacheable and keyed by the
// sync key header. Applied to every response on the resource; success bodies
// tolerate it and error bodies require it.
func setSyncResponseHeaders(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Vary", SyncKeyHeader)
}

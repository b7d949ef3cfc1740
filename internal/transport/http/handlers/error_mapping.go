package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/transport/http/middleware"
)

// ErrorCase maps a sentinel error to an HTTP status code and client error code.
type ErrorCase struct {
	Err    error
	Status int
	Code   string
}

// RespondWithMappedError resolves the provided error against known cases.
// Anything unmapped is an infrastructure failure: it is logged with request
// context and answered as SERVER_ERROR.
func RespondWithMappedError(c *gin.Context, log *zap.Logger, err error, cases []ErrorCase) {
	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Code))
			return
		}
	}

	if log != nil {
		log.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.JSON(http.StatusInternalServerError, NewErrorResponse(c, CodeServerError))
}

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/moogar0880/problems"
	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/core/common"
)

func writeProblem(c *gin.Context, status int, kind, detail string) {
	problem := problems.NewStatusProblem(status).
		WithInstance(c.Request.URL.Path).
		WithType(kind).
		WithDetail(detail)

	c.Header("Content-Type", problems.ProblemMediaType)
	c.AbortWithStatusJSON(status, problem)
}

func badRequest(c *gin.Context, detail string) {
	writeProblem(c, http.StatusBadRequest, "validation_error", detail)
}

// bindingDetail names the fields a request body failed validation on.
// Malformed JSON gets fallback.
func bindingDetail(err error, fallback string) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fallback
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// handleError maps a service error onto a problem document by its kind.
func (s *Server) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		writeProblem(c, http.StatusUnauthorized, "unauthenticated", err.Error())

	case errors.Is(err, common.ErrPrecondition):
		writeProblem(c, http.StatusBadRequest, "validation_error", err.Error())

	case errors.Is(err, common.ErrNotFound):
		writeProblem(c, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, common.ErrConflict):
		writeProblem(c, http.StatusConflict, "already_downloaded", err.Error())

	case errors.Is(err, common.ErrDataShape):
		writeProblem(c, http.StatusUnprocessableEntity, "invalid_data", err.Error())

	case errors.Is(err, common.ErrMisconfigured):
		s.log.Error("upstream credential missing", zap.String("path", c.Request.URL.Path), zap.Error(err))
		writeProblem(c, http.StatusInternalServerError, "misconfigured", "service is not configured")

	case common.IsUpstream(err):
		var upstream *common.UpstreamError
		errors.As(err, &upstream)
		s.log.Error("upstream request failed",
			zap.String("service", upstream.Service),
			zap.Int("status", upstream.Status),
			zap.String("body", upstream.Body))
		writeProblem(c, http.StatusBadGateway, "upstream_error",
			fmt.Sprintf("%s API error: %d - %s", upstream.Service, upstream.Status, upstream.Body))

	default:
		s.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		writeProblem(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

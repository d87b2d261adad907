package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"eventops/internal/common"
	"eventops/internal/models"
	"eventops/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuditMiddleware records mutating inventory requests after they complete.
type AuditMiddleware struct {
	auditRepo repositories.AuditLogsRepository
}

func NewAuditMiddleware(auditRepo repositories.AuditLogsRepository) *AuditMiddleware {
	return &AuditMiddleware{auditRepo: auditRepo}
}

// AuditMutations logs POST/PATCH/PUT/DELETE requests. Failures to record are
// logged and never fail the request itself.
func (m *AuditMiddleware) AuditMutations() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return next(c)
			}

			// The body is consumed by Bind later; buffer it so both the
			// handler and the audit record see it.
			var payload map[string]any
			if c.Request().Body != nil {
				body, readErr := io.ReadAll(c.Request().Body)
				if readErr == nil {
					c.Request().Body = io.NopCloser(bytes.NewReader(body))
					if len(body) > 0 {
						_ = json.Unmarshal(body, &payload)
					}
				}
			}

			err := next(c)

			postedBy, _ := common.GetPostedByFromContext(c.Request().Context())
			status := c.Response().Status
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			}

			entry := &models.AuditLog{
				ID:       uuid.New(),
				Method:   method,
				Path:     c.Request().URL.Path,
				Status:   status,
				PostedBy: postedBy,
				Payload:  payload,
			}
			if insertErr := m.auditRepo.Insert(c.Request().Context(), entry); insertErr != nil {
				log.Printf("Failed to record audit log for %s %s: %v", method, entry.Path, insertErr)
			}

			return err
		}
	}
}

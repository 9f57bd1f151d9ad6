package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
	"github.com/noah-isme/church-admin-api/pkg/response"
	"github.com/noah-isme/church-admin-api/pkg/webhook"
)

const maxWebhookBody = 1 << 20

// WebhookSignature rejects callbacks whose body does not match the
// X-Pix-Signature HMAC. The body is restored for the handler.
func WebhookSignature(verifier *webhook.Verifier, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusRequestEntityTooLarge, "webhook body unreadable or too large"))
			c.Abort()
			return
		}

		if err := verifier.Verify(body, c.GetHeader(webhook.SignatureHeader)); err != nil {
			logger.Warn("pix webhook rejected", zap.String("ip", c.ClientIP()), zap.Error(err))
			message := "invalid webhook signature"
			switch {
			case errors.Is(err, webhook.ErrMissingSignature):
				message = "webhook signature missing"
			case errors.Is(err, webhook.ErrNoSecret):
				message = "webhook signing is not configured"
			}
			response.Error(c, appErrors.Clone(appErrors.ErrInvalidSignature, message))
			c.Abort()
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

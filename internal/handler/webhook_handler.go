package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/church-admin-api/internal/models"
	"github.com/noah-isme/church-admin-api/pkg/response"
)

type webhookApplier interface {
	ApplyWebhookEvent(ctx context.Context, event models.PixWebhookEvent) (*models.PixTransition, error)
}

// WebhookHandler receives PSP status callbacks. Signatures are verified by middleware.
type WebhookHandler struct {
	pix      webhookApplier
	unsigned bool
	logger   *zap.Logger
}

// NewWebhookHandler constructs a WebhookHandler. unsigned is reported by the health endpoint.
func NewWebhookHandler(pix webhookApplier, unsigned bool, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{pix: pix, unsigned: unsigned, logger: logger}
}

// Receive godoc
// @Summary PIX webhook
// @Description Applies a PSP status event. Re-deliveries are acknowledged without side effects.
// @Tags PIX
// @Accept json
// @Produce json
// @Param X-Pix-Signature header string true "hex HMAC-SHA256 of the body"
// @Param payload body models.PixWebhookEvent true "Event"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pix-webhook [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	var event models.PixWebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, invalidPayload(err, "invalid webhook payload"))
		return
	}

	transition, err := h.pix.ApplyWebhookEvent(c.Request.Context(), event)
	if err != nil {
		h.logger.Warn("pix webhook not applied", zap.String("tx_id", event.TxID), zap.String("status", string(event.Status)), zap.Error(err))
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, models.PixWebhookResult{
		OfferingID: transition.OfferingID,
		NewStatus:  transition.NewStatus,
		Applied:    transition.Applied,
	}, nil)
}

// Health godoc
// @Summary PIX webhook health
// @Tags PIX
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /pix-webhook [get]
func (h *WebhookHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"status":          "ok",
		"service":         "pix-webhook",
		"signature_check": !h.unsigned,
	}, nil)
}

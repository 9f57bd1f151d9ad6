// Package psp integrates with the PIX payment service provider.
package psp

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/church-admin-api/internal/models"
)

// ErrChargeNotFound is returned when the provider does not know a transaction id.
var ErrChargeNotFound = errors.New("psp: charge not found")

// Charge is what the provider issues for a new PIX payment.
type Charge struct {
	TxID      string    `json:"txId"`
	QRCode    string    `json:"qrCode"`
	CopyPaste string    `json:"copyPaste"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StatusResult is the provider's view of a charge.
type StatusResult struct {
	TxID   string           `json:"txId"`
	Status models.PixStatus `json:"status"`
	PaidAt *time.Time       `json:"paidAt,omitempty"`
	Amount *int64           `json:"amount,omitempty"`
}

// Provider is the PIX payment service provider.
type Provider interface {
	CreatePayment(ctx context.Context, amount int64, description string, ttl time.Duration) (*Charge, error)
	CheckStatus(ctx context.Context, txID string) (*StatusResult, error)
}

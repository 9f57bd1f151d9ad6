package psp

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/church-admin-api/internal/models"
)

// Merchant identifies the receiving account rendered into BR Codes.
type Merchant struct {
	Key  string
	Name string
	City string
}

type simulatedCharge struct {
	amount    int64
	expiresAt time.Time
	status    models.PixStatus
	paidAt    *time.Time
}

// SimulatedProvider is an in-memory PSP for development and tests. Charges stay
// PENDING until past their expiry. In development, payments are confirmed by
// posting an unsigned webhook event.
type SimulatedProvider struct {
	merchant Merchant
	now      func() time.Time

	mu      sync.Mutex
	charges map[string]*simulatedCharge
}

// NewSimulatedProvider creates a simulator that issues BR Codes for merchant.
func NewSimulatedProvider(merchant Merchant) *SimulatedProvider {
	return &SimulatedProvider{
		merchant: merchant,
		now:      time.Now,
		charges:  make(map[string]*simulatedCharge),
	}
}

// CreatePayment registers a pending charge.
func (s *SimulatedProvider) CreatePayment(ctx context.Context, amount int64, description string, ttl time.Duration) (*Charge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	txID := uuid.NewString()
	expiresAt := s.now().Add(ttl)
	payload := BRCode{
		Key:          s.merchant.Key,
		MerchantName: s.merchant.Name,
		MerchantCity: s.merchant.City,
		Amount:       amount,
		TxID:         txID,
		Description:  description,
	}.String()

	s.mu.Lock()
	s.charges[txID] = &simulatedCharge{amount: amount, expiresAt: expiresAt, status: models.PixStatusPending}
	s.mu.Unlock()

	return &Charge{
		TxID:      txID,
		QRCode:    payload,
		CopyPaste: payload,
		ExpiresAt: expiresAt,
	}, nil
}

// CheckStatus reports the charge state, expiring pending charges lazily.
func (s *SimulatedProvider) CheckStatus(ctx context.Context, txID string) (*StatusResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	charge, ok := s.charges[txID]
	if !ok {
		return nil, ErrChargeNotFound
	}
	if charge.status == models.PixStatusPending && !s.now().Before(charge.expiresAt) {
		charge.status = models.PixStatusExpired
	}

	amount := charge.amount
	return &StatusResult{TxID: txID, Status: charge.status, PaidAt: charge.paidAt, Amount: &amount}, nil
}

var _ Provider = (*SimulatedProvider)(nil)

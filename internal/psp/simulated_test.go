package psp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/church-admin-api/internal/models"
)

func newTestSimulator(now time.Time) *SimulatedProvider {
	sim := NewSimulatedProvider(Merchant{Key: "tesouraria@igreja.org", Name: "Igreja Exemplo", City: "Recife"})
	sim.now = func() time.Time { return now }
	return sim
}

func TestSimulatedCreateAndSettle(t *testing.T) {
	now := time.Date(2024, 5, 5, 10, 0, 0, 0, time.UTC)
	sim := newTestSimulator(now)
	ctx := context.Background()

	charge, err := sim.CreatePayment(ctx, 2500, "Oferta culto", 30*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, charge.TxID)
	assert.Equal(t, now.Add(30*time.Minute), charge.ExpiresAt)
	assert.Contains(t, charge.CopyPaste, "br.gov.bcb.pix")
	assert.Contains(t, charge.CopyPaste, "540525.00")

	status, err := sim.CheckStatus(ctx, charge.TxID)
	require.NoError(t, err)
	assert.Equal(t, models.PixStatusPending, status.Status)

	paidAt := now.Add(5 * time.Minute)
	require.NoError(t, sim.settle(charge.TxID, paidAt))

	status, err = sim.CheckStatus(ctx, charge.TxID)
	require.NoError(t, err)
	assert.Equal(t, models.PixStatusPaid, status.Status)
	require.NotNil(t, status.PaidAt)
	assert.Equal(t, paidAt, *status.PaidAt)

	// terminal states stick
	require.NoError(t, sim.cancel(charge.TxID))
	status, err = sim.CheckStatus(ctx, charge.TxID)
	require.NoError(t, err)
	assert.Equal(t, models.PixStatusPaid, status.Status)
}

func TestSimulatedExpiresPendingCharges(t *testing.T) {
	now := time.Date(2024, 5, 5, 10, 0, 0, 0, time.UTC)
	sim := newTestSimulator(now)

	charge, err := sim.CreatePayment(context.Background(), 100, "", time.Minute)
	require.NoError(t, err)

	sim.now = func() time.Time { return now.Add(2 * time.Minute) }
	status, err := sim.CheckStatus(context.Background(), charge.TxID)
	require.NoError(t, err)
	assert.Equal(t, models.PixStatusExpired, status.Status)
	assert.Nil(t, status.PaidAt)
}

func TestSimulatedUnknownCharge(t *testing.T) {
	sim := newTestSimulator(time.Now())
	_, err := sim.CheckStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrChargeNotFound)
	assert.ErrorIs(t, sim.settle("missing", time.Now()), ErrChargeNotFound)
}

// settle marks a pending charge as paid at the given instant.
func (s *SimulatedProvider) settle(txID string, at time.Time) error {
	return s.finish(txID, models.PixStatusPaid, &at)
}

// cancel marks a pending charge as cancelled.
func (s *SimulatedProvider) cancel(txID string) error {
	return s.finish(txID, models.PixStatusCancelled, nil)
}

func (s *SimulatedProvider) finish(txID string, status models.PixStatus, paidAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	charge, ok := s.charges[txID]
	if !ok {
		return ErrChargeNotFound
	}
	if charge.status == models.PixStatusPending {
		charge.status = status
		charge.paidAt = paidAt
	}
	return nil
}

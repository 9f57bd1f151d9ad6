package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/church-admin-api/internal/models"
	"github.com/noah-isme/church-admin-api/pkg/jobs"
)

type recordingSink struct {
	mu        sync.Mutex
	delivered []PaymentNotification
	err       error
}

func (s *recordingSink) Deliver(_ context.Context, n PaymentNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.delivered = append(s.delivered, n)
	return nil
}

func paidOffering() models.Offering {
	tx := "tx1"
	desc := "Oferta de abertura"
	paid := models.PixStatusPaid
	paidAt := time.Date(2024, 3, 10, 12, 5, 0, 0, time.UTC)
	return models.Offering{ID: "o1", Amount: 5000, Method: models.MethodPix, PixTxID: &tx, Description: &desc, PixStatus: &paid, PixPaidAt: &paidAt}
}

func TestNotificationServiceDeliversPaymentConfirmation(t *testing.T) {
	sink := &recordingSink{}
	metrics := NewMetricsService()
	svc := NewNotificationService(sink, metrics, zap.NewNop(), jobs.QueueConfig{Workers: 1, BufferSize: 4})
	svc.Start(context.Background())

	svc.PaymentConfirmed(context.Background(), paidOffering())
	require.NoError(t, svc.Stop(context.Background()))

	require.Len(t, sink.delivered, 1)
	n := sink.delivered[0]
	assert.Equal(t, "o1", n.OfferingID)
	assert.Equal(t, "tx1", n.TxID)
	assert.Equal(t, int64(5000), n.Amount)
	assert.Equal(t, "Oferta de abertura", n.Description)
	assert.Equal(t, 1.0, counterValue(t, metrics, "payment_notifications_total", "result", "sent"))
}

func TestNotificationServiceRecordsFailures(t *testing.T) {
	sink := &recordingSink{err: errors.New("smtp down")}
	metrics := NewMetricsService()
	svc := NewNotificationService(sink, metrics, nil, jobs.QueueConfig{Workers: 1, BufferSize: 4, MaxRetries: 1, RetryDelay: time.Millisecond})
	svc.Start(context.Background())

	svc.PaymentConfirmed(context.Background(), paidOffering())
	require.Eventually(t, func() bool {
		return counterValue(t, metrics, "payment_notifications_total", "result", "failed") == 1
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, svc.Stop(context.Background()))
}

func TestNotificationServiceDropsWhenStopped(t *testing.T) {
	sink := &recordingSink{}
	svc := NewNotificationService(sink, nil, nil, jobs.QueueConfig{})

	svc.PaymentConfirmed(context.Background(), paidOffering())
	assert.Empty(t, sink.delivered)
}

func TestLogSinkDeliver(t *testing.T) {
	assert.NoError(t, NewLogSink(nil).Deliver(context.Background(), PaymentNotification{OfferingID: "o1", Amount: 123}))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/church-admin-api/internal/models"
	"github.com/noah-isme/church-admin-api/pkg/export"
	"github.com/noah-isme/church-admin-api/pkg/jobs"
)

const jobTypePaymentConfirmed = "payment_confirmed"

// PaymentNotification announces a settled PIX charge.
type PaymentNotification struct {
	OfferingID  string    `json:"offering_id"`
	TxID        string    `json:"tx_id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	PaidAt      time.Time `json:"paid_at"`
}

// NotificationSink delivers notifications to a channel (email, WhatsApp, log).
type NotificationSink interface {
	Deliver(ctx context.Context, n PaymentNotification) error
}

// LogSink writes notifications to the application log.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink constructs a sink backed by logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Deliver logs the notification.
func (s *LogSink) Deliver(_ context.Context, n PaymentNotification) error {
	s.logger.Info("payment confirmed",
		zap.String("offering_id", n.OfferingID),
		zap.String("tx_id", n.TxID),
		zap.String("amount", export.FormatBRL(n.Amount)),
		zap.Time("paid_at", n.PaidAt),
	)
	return nil
}

// NotificationService fans payment confirmations out through a background queue.
type NotificationService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService wires sink behind an in-memory job queue.
func NewNotificationService(sink NotificationSink, metrics *MetricsService, logger *zap.Logger, cfg jobs.QueueConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Logger = logger
	cfg.OnDone = func(_ jobs.Job, err error) {
		metrics.RecordNotification(err == nil)
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		n, ok := job.Payload.(PaymentNotification)
		if !ok {
			return fmt.Errorf("unexpected payload %T", job.Payload)
		}
		return sink.Deliver(ctx, n)
	}
	return &NotificationService{
		queue:  jobs.NewQueue("notifications", handler, cfg),
		logger: logger,
	}
}

// Start launches the workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains pending notifications.
func (s *NotificationService) Stop(ctx context.Context) error {
	return s.queue.Stop(ctx)
}

// PaymentConfirmed enqueues a notification for a newly PAID offering. It never blocks.
func (s *NotificationService) PaymentConfirmed(_ context.Context, offering models.Offering) {
	n := PaymentNotification{
		OfferingID: offering.ID,
		Amount:     offering.Amount,
	}
	if offering.PixTxID != nil {
		n.TxID = *offering.PixTxID
	}
	if offering.Description != nil {
		n.Description = *offering.Description
	}
	if offering.PixPaidAt != nil {
		n.PaidAt = *offering.PixPaidAt
	}

	err := s.queue.Enqueue(jobs.Job{ID: offering.ID, Type: jobTypePaymentConfirmed, Payload: n})
	if err != nil {
		level := s.logger.Warn
		if errors.Is(err, jobs.ErrQueueClosed) {
			level = s.logger.Debug
		}
		level("payment notification dropped", zap.String("offering_id", offering.ID), zap.Error(err))
	}
}

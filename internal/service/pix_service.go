package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/internal/models"
	"github.com/noah-isme/church-admin-api/internal/psp"
	"github.com/noah-isme/church-admin-api/pkg/export"
	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
)

var tracer = otel.Tracer("service")

const (
	pixCachePrefix = "pix:list:"

	transitionSourceWebhook   = "webhook"
	transitionSourceReconcile = "reconcile"
)

type pixOfferingRepository interface {
	Create(ctx context.Context, offering *models.Offering) error
	FindByID(ctx context.Context, id string) (*models.Offering, error)
	FindByPixTxID(ctx context.Context, txID string) (*models.Offering, error)
	ListPix(ctx context.Context, filter models.PixFilter) ([]models.Offering, error)
	ListPendingPix(ctx context.Context, since time.Time) ([]models.Offering, error)
	TransitionPixStatus(ctx context.Context, id string, status models.PixStatus, at time.Time, paidAt *time.Time, audit *models.AuditLog) (bool, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type paymentNotifier interface {
	PaymentConfirmed(ctx context.Context, offering models.Offering)
}

// PixConfig bounds charges and tunes reconciliation.
type PixConfig struct {
	ChargeTTL            time.Duration
	RequestTimeout       time.Duration
	MinAmount            int64
	MaxAmount            int64
	DefaultMaxAgeDays    int
	ReconcileConcurrency int
	CacheTTL             time.Duration
}

// PixService runs the PIX charge lifecycle: create, webhook, reconcile.
type PixService struct {
	offerings pixOfferingRepository
	audit     auditWriter
	provider  psp.Provider
	cache     *CacheService
	metrics   *MetricsService
	notifier  paymentNotifier
	validator *validator.Validate
	logger    *zap.Logger
	config    PixConfig
	now       func() time.Time

	// listGen advances on every applied transition so list reads that
	// raced with one are not left in the cache.
	listGen atomic.Uint64
}

// NewPixService constructs a PixService. cache, metrics and notifier may be nil.
func NewPixService(offerings pixOfferingRepository, audit auditWriter, provider psp.Provider, cache *CacheService, metrics *MetricsService, notifier paymentNotifier, validate *validator.Validate, logger *zap.Logger, config PixConfig) *PixService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.ChargeTTL <= 0 {
		config.ChargeTTL = 30 * time.Minute
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 10 * time.Second
	}
	if config.MinAmount <= 0 {
		config.MinAmount = 100
	}
	if config.MaxAmount < config.MinAmount {
		config.MaxAmount = 100_000_000
	}
	if config.DefaultMaxAgeDays <= 0 {
		config.DefaultMaxAgeDays = 7
	}
	if config.ReconcileConcurrency <= 0 {
		config.ReconcileConcurrency = 4
	}
	return &PixService{
		offerings: offerings,
		audit:     audit,
		provider:  provider,
		cache:     cache,
		metrics:   metrics,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// CreateCharge issues a PSP charge and persists a PENDING offering for it.
// Nothing is persisted when validation or the provider call fails.
func (s *PixService) CreateCharge(ctx context.Context, actor *authz.Actor, req models.CreatePixChargeRequest) (*models.PixChargeResult, error) {
	return authz.Gate(actor, []authz.Permission{authz.OfferingsWrite}, func() (*models.PixChargeResult, error) {
		ctx, span := tracer.Start(ctx, "PixService.CreateCharge")
		defer span.End()

		if err := s.validator.Struct(req); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid pix charge payload")
		}
		if req.Amount < s.config.MinAmount || req.Amount > s.config.MaxAmount {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("amount must be between %s and %s", export.FormatBRL(s.config.MinAmount), export.FormatBRL(s.config.MaxAmount)))
		}
		if req.Origin == "" {
			req.Origin = models.OriginOffering
		}
		if !req.Origin.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid origin")
		}
		span.SetAttributes(attribute.Int64("pix.amount", req.Amount))

		pspCtx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
		charge, err := s.provider.CreatePayment(pspCtx, req.Amount, req.Description, s.config.ChargeTTL)
		cancel()
		if err != nil {
			s.metrics.RecordPSPError("create_payment")
			s.logger.Error("psp create payment failed", zap.Int64("amount", req.Amount), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrProvider.Code, appErrors.ErrProvider.Status, "payment provider unavailable")
		}
		if charge == nil || charge.TxID == "" {
			return nil, appErrors.Clone(appErrors.ErrProvider, "payment provider returned no transaction id")
		}

		now := s.now().UTC()
		pending := models.PixStatusPending
		description := req.Description
		expiresAt := charge.ExpiresAt.UTC()
		offering := &models.Offering{
			Date:         now,
			Origin:       req.Origin,
			Method:       models.MethodPix,
			Amount:       req.Amount,
			Description:  &description,
			ServiceID:    req.ServiceID,
			CampusID:     req.CampusID,
			CreatedBy:    &actor.UserID,
			PixTxID:      &charge.TxID,
			PixStatus:    &pending,
			PixQRCode:    &charge.QRCode,
			PixCopyPaste: &charge.CopyPaste,
			PixExpiresAt: &expiresAt,
			CreatedAt:    now,
		}
		if err := s.offerings.Create(ctx, offering); err != nil {
			s.logger.Error("persist pix offering failed; charge left orphaned at provider", zap.String("tx_id", charge.TxID), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist pix offering")
		}

		s.writeAudit(ctx, &models.AuditLog{
			UserID:     &actor.UserID,
			Action:     models.AuditActionPixChargeCreate,
			Resource:   models.AuditResourceOfferings,
			ResourceID: &offering.ID,
			NewValues:  mustJSON(map[string]any{"pixTxId": charge.TxID, "pixStatus": pending, "amount": req.Amount}),
		})
		s.metrics.RecordPixCharge(req.Amount)
		s.cache.Invalidate(ctx, pixCachePrefix+"*")
		s.logger.Info("pix charge created", zap.String("offering_id", offering.ID), zap.String("tx_id", charge.TxID), zap.Int64("amount", req.Amount))

		return &models.PixChargeResult{
			Offering:  offering,
			QRCode:    charge.QRCode,
			CopyPaste: charge.CopyPaste,
			ExpiresAt: expiresAt,
		}, nil
	})
}

// ApplyWebhookEvent moves a PENDING offering to the reported terminal status.
// Re-deliveries against a terminal offering are successful no-ops.
func (s *PixService) ApplyWebhookEvent(ctx context.Context, event models.PixWebhookEvent) (*models.PixTransition, error) {
	ctx, span := tracer.Start(ctx, "PixService.ApplyWebhookEvent")
	defer span.End()
	span.SetAttributes(attribute.String("pix.tx_id", event.TxID), attribute.String("pix.status", string(event.Status)))

	if err := s.validator.Struct(event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid webhook payload")
	}
	if !event.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown pix status %q", event.Status))
	}

	offering, err := s.offerings.FindByPixTxID(ctx, event.TxID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found for transaction")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}

	current := offering.CurrentPixStatus()
	if current.Terminal() || event.Status == models.PixStatusPending {
		return &models.PixTransition{OfferingID: offering.ID, OldStatus: current, NewStatus: current}, nil
	}

	return s.transition(ctx, offering, event.Status, event.PaidAt, nil, transitionSourceWebhook)
}

// ReconcileBatch polls the provider for every PENDING charge younger than
// maxAgeDays and applies terminal statuses. Per-row failures are reported,
// never returned.
func (s *PixService) ReconcileBatch(ctx context.Context, actor *authz.Actor, maxAgeDays int) (*models.ReconciliationReport, error) {
	return authz.Gate(actor, []authz.Permission{authz.OfferingsWrite}, func() (*models.ReconciliationReport, error) {
		ctx, span := tracer.Start(ctx, "PixService.ReconcileBatch")
		defer span.End()

		if maxAgeDays < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "max age days must not be negative")
		}
		if maxAgeDays == 0 {
			maxAgeDays = s.config.DefaultMaxAgeDays
		}

		started := s.now()
		runAt := started.UTC()
		since := runAt.AddDate(0, 0, -maxAgeDays)
		rows, err := s.offerings.ListPendingPix(ctx, since)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending pix offerings")
		}
		span.SetAttributes(attribute.Int("pix.pending", len(rows)), attribute.Int("pix.max_age_days", maxAgeDays))

		results := make([]models.ReconciliationResult, len(rows))
		applied := make([]bool, len(rows))
		actorID := actor.UserID

		var g errgroup.Group
		g.SetLimit(s.config.ReconcileConcurrency)
		for i := range rows {
			i := i
			g.Go(func() error {
				results[i], applied[i] = s.reconcileRow(ctx, &rows[i], &actorID)
				return nil
			})
		}
		_ = g.Wait()

		report := &models.ReconciliationReport{
			RunAt:      runAt,
			MaxAgeDays: maxAgeDays,
			Checked:    len(rows),
			Results:    results,
		}
		for i, result := range results {
			if result.Error != "" {
				report.Errors++
				continue
			}
			if !applied[i] {
				continue
			}
			report.Updated++
			switch result.NewStatus {
			case models.PixStatusPaid:
				report.Paid++
			case models.PixStatusExpired:
				report.Expired++
			case models.PixStatusCancelled:
				report.Cancelled++
			}
		}

		s.metrics.ObserveReconciliation(report, s.now().Sub(started))
		s.logger.Info("pix reconciliation finished",
			zap.Int("checked", report.Checked),
			zap.Int("updated", report.Updated),
			zap.Int("errors", report.Errors),
			zap.Int("max_age_days", maxAgeDays),
		)
		return report, nil
	})
}

func (s *PixService) reconcileRow(ctx context.Context, offering *models.Offering, actorID *string) (models.ReconciliationResult, bool) {
	result := models.ReconciliationResult{
		OfferingID: offering.ID,
		OldStatus:  offering.CurrentPixStatus(),
		Amount:     offering.Amount,
	}
	if offering.PixTxID != nil {
		result.TxID = *offering.PixTxID
	}

	status, err := s.provider.CheckStatus(ctx, result.TxID)
	if err != nil {
		s.metrics.RecordPSPError("check_status")
		s.logger.Warn("psp status check failed", zap.String("offering_id", offering.ID), zap.String("tx_id", result.TxID), zap.Error(err))
		result.Error = err.Error()
		return result, false
	}
	if status.Status == models.PixStatusPending {
		result.NewStatus = models.PixStatusPending
		return result, false
	}

	transition, err := s.transition(ctx, offering, status.Status, status.PaidAt, actorID, transitionSourceReconcile)
	if err != nil {
		s.logger.Warn("reconcile transition failed", zap.String("offering_id", offering.ID), zap.Error(err))
		result.Error = err.Error()
		return result, false
	}
	result.NewStatus = transition.NewStatus
	return result, transition.Applied
}

// transition applies the PENDING guarded update. A lost race re-reads the row
// and reports the winner's status with Applied false.
func (s *PixService) transition(ctx context.Context, offering *models.Offering, status models.PixStatus, paidAt *time.Time, actorID *string, source string) (*models.PixTransition, error) {
	now := s.now().UTC()
	if status == models.PixStatusPaid {
		if paidAt == nil {
			paidAt = &now
		} else {
			utc := paidAt.UTC()
			paidAt = &utc
		}
	} else {
		paidAt = nil
	}

	// Webhooks audit payments only. Reconcile runs audit every status they settle.
	var audit *models.AuditLog
	if status == models.PixStatusPaid || source == transitionSourceReconcile {
		audit = &models.AuditLog{
			UserID:     actorID,
			Action:     models.AuditActionPixStatusChange,
			Resource:   models.AuditResourceOfferings,
			ResourceID: &offering.ID,
			OldValues:  mustJSON(map[string]any{"pixStatus": models.PixStatusPending}),
			NewValues:  mustJSON(map[string]any{"pixStatus": status, "paidAt": paidAt, "source": source}),
			CreatedAt:  now,
		}
	}

	applied, err := s.offerings.TransitionPixStatus(ctx, offering.ID, status, now, paidAt, audit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update pix status")
	}

	if !applied {
		latest, err := s.offerings.FindByID(ctx, offering.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "offering disappeared during update")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload offering")
		}
		return &models.PixTransition{
			OfferingID: offering.ID,
			OldStatus:  models.PixStatusPending,
			NewStatus:  latest.CurrentPixStatus(),
		}, nil
	}

	s.metrics.RecordPixTransition(status, source)
	s.listGen.Add(1)
	s.cache.Invalidate(ctx, pixCachePrefix+"*")
	s.logger.Info("pix status changed",
		zap.String("offering_id", offering.ID),
		zap.String("status", string(status)),
		zap.String("source", source),
	)

	if status == models.PixStatusPaid && s.notifier != nil {
		paid := *offering
		paid.PixStatus = &status
		paid.PixPaidAt = paidAt
		s.notifier.PaymentConfirmed(ctx, paid)
	}

	return &models.PixTransition{
		OfferingID: offering.ID,
		OldStatus:  models.PixStatusPending,
		NewStatus:  status,
		Applied:    true,
	}, nil
}

// ListPixPayments returns PIX offerings newest first with per-status counts.
func (s *PixService) ListPixPayments(ctx context.Context, actor *authz.Actor, filter models.PixFilter) (*models.PixPaymentList, error) {
	return authz.Gate(actor, []authz.Permission{authz.OfferingsRead}, func() (*models.PixPaymentList, error) {
		if filter.Status != nil && !filter.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid pix status filter")
		}

		key := pixCacheKey(filter)
		var cached models.PixPaymentList
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
		gen := s.listGen.Load()

		payments, err := s.offerings.ListPix(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pix payments")
		}
		if payments == nil {
			payments = []models.Offering{}
		}

		list := &models.PixPaymentList{Payments: payments, Summary: summarizePix(payments)}
		if s.listGen.Load() == gen {
			s.cache.Set(ctx, key, list, s.config.CacheTTL)
			// A transition may have invalidated between the check and the write.
			if s.listGen.Load() != gen {
				s.cache.Invalidate(ctx, key)
			}
		}
		return list, nil
	})
}

func summarizePix(payments []models.Offering) models.PixSummary {
	summary := models.PixSummary{Total: len(payments)}
	for _, p := range payments {
		switch p.CurrentPixStatus() {
		case models.PixStatusPending:
			summary.Pending++
		case models.PixStatusPaid:
			summary.Paid++
			summary.TotalAmount += p.Amount
		case models.PixStatusExpired:
			summary.Expired++
		case models.PixStatusCancelled:
			summary.Cancelled++
		}
	}
	return summary
}

func pixCacheKey(filter models.PixFilter) string {
	status := "all"
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	return fmt.Sprintf("%s%s:%s:%s", pixCachePrefix, status, formatKeyTime(filter.DateFrom), formatKeyTime(filter.DateTo))
}

func formatKeyTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func (s *PixService) writeAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", log.Action), zap.Error(err))
	}
}

func mustJSON(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return raw
}

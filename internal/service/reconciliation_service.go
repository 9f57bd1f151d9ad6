package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/internal/models"
	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
)

const historyLimit = 100

type pixReconciler interface {
	ReconcileBatch(ctx context.Context, actor *authz.Actor, maxAgeDays int) (*models.ReconciliationReport, error)
}

type auditReader interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

// ReconciliationService drives PIX reconciliation runs and exposes their history.
type ReconciliationService struct {
	pix    pixReconciler
	audit  auditReader
	writer auditWriter
	logger *zap.Logger
}

// NewReconciliationService constructs a ReconciliationService.
func NewReconciliationService(pix pixReconciler, audit auditReader, writer auditWriter, logger *zap.Logger) *ReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationService{pix: pix, audit: audit, writer: writer, logger: logger}
}

// Run executes one reconciliation batch and records who triggered it.
func (s *ReconciliationService) Run(ctx context.Context, actor *authz.Actor, maxAgeDays int) (*models.ReconciliationReport, error) {
	report, err := s.pix.ReconcileBatch(ctx, actor, maxAgeDays)
	if err != nil {
		return nil, err
	}

	if s.writer != nil {
		entry := &models.AuditLog{
			UserID:   &actor.UserID,
			Action:   models.AuditActionReconcileTrigger,
			Resource: models.AuditResourceOfferings,
			NewValues: mustJSON(map[string]any{
				"checked":    report.Checked,
				"updated":    report.Updated,
				"paid":       report.Paid,
				"expired":    report.Expired,
				"cancelled":  report.Cancelled,
				"errors":     report.Errors,
				"maxAgeDays": report.MaxAgeDays,
			}),
		}
		if err := s.writer.CreateAuditLog(ctx, entry); err != nil {
			s.logger.Warn("failed to record reconciliation audit log", zap.Error(err))
		}
	}

	for _, result := range report.Results {
		if result.Error != "" {
			s.logger.Warn("reconciliation row failed", zap.String("offering_id", result.OfferingID), zap.String("tx_id", result.TxID), zap.String("error", result.Error))
		}
	}
	return report, nil
}

// History lists the most recent PIX status changes, newest first.
func (s *ReconciliationService) History(ctx context.Context, actor *authz.Actor, filter models.ReconciliationHistoryFilter) (*models.ReconciliationHistory, error) {
	return authz.Gate(actor, []authz.Permission{authz.OfferingsRead}, func() (*models.ReconciliationHistory, error) {
		if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "dateTo must not be before dateFrom")
		}

		entries, err := s.audit.List(ctx, models.AuditFilter{
			Action:   models.AuditActionPixStatusChange,
			Resource: models.AuditResourceOfferings,
			DateFrom: filter.DateFrom,
			DateTo:   filter.DateTo,
			Limit:    historyLimit,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reconciliation history")
		}
		if entries == nil {
			entries = []models.AuditLog{}
		}

		history := &models.ReconciliationHistory{
			Entries: entries,
			Summary: models.ReconciliationHistorySummary{Total: len(entries)},
		}
		if len(entries) > 0 {
			last := entries[0].CreatedAt
			history.Summary.LastReconciliation = &last
		}
		return history, nil
	})
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/internal/models"
	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
	"github.com/noah-isme/church-admin-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var offeringExportHeaders = []string{
	"ID", "Data", "Origem", "Método", "Valor", "Descrição", "Observações",
	"ID PIX", "Status PIX", "Serviço", "Campus", "Criado em",
}

type offeringRepository interface {
	Create(ctx context.Context, offering *models.Offering) error
	FindByID(ctx context.Context, id string) (*models.Offering, error)
	List(ctx context.Context, filter models.OfferingFilter) ([]models.Offering, int, int64, error)
	ListAll(ctx context.Context, filter models.OfferingFilter) ([]models.Offering, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered export ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// OfferingService manages direct offering entry, listing and export.
type OfferingService struct {
	repo      offeringRepository
	audit     auditWriter
	csv       csvRenderer
	pdf       pdfRenderer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewOfferingService constructs an OfferingService. Nil renderers fall back to the defaults.
func NewOfferingService(repo offeringRepository, audit auditWriter, csv csvRenderer, pdf pdfRenderer, validate *validator.Validate, logger *zap.Logger) *OfferingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &OfferingService{repo: repo, audit: audit, csv: csv, pdf: pdf, validator: validate, logger: logger, now: time.Now}
}

// Create records a non-PIX offering. PIX offerings only come from CreateCharge.
func (s *OfferingService) Create(ctx context.Context, actor *authz.Actor, req models.CreateOfferingRequest) (*models.Offering, error) {
	return authz.Gate(actor, []authz.Permission{authz.OfferingsWrite}, func() (*models.Offering, error) {
		if err := s.validator.Struct(req); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offering payload")
		}
		if !req.Origin.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid origin")
		}
		if !req.Method.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid payment method")
		}
		if req.Method == models.MethodPix {
			return nil, appErrors.Clone(appErrors.ErrValidation, "pix offerings must be created through a pix charge")
		}

		now := s.now().UTC()
		offering := &models.Offering{
			Date:        now,
			Origin:      req.Origin,
			Method:      req.Method,
			Amount:      req.Amount,
			Description: trimmed(req.Description),
			Notes:       trimmed(req.Notes),
			ServiceID:   req.ServiceID,
			CampusID:    req.CampusID,
			CreatedBy:   &actor.UserID,
			CreatedAt:   now,
		}
		if req.Date != nil {
			offering.Date = req.Date.UTC()
		}

		if err := s.repo.Create(ctx, offering); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create offering")
		}

		if s.audit != nil {
			if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
				UserID:     &actor.UserID,
				Action:     models.AuditActionOfferingCreate,
				Resource:   models.AuditResourceOfferings,
				ResourceID: &offering.ID,
				NewValues:  mustJSON(map[string]any{"amount": offering.Amount, "method": offering.Method, "origin": offering.Origin}),
			}); err != nil {
				s.logger.Warn("failed to record offering audit log", zap.Error(err))
			}
		}
		return offering, nil
	})
}

// Get returns one offering.
func (s *OfferingService) Get(ctx context.Context, actor *authz.Actor, id string) (*models.Offering, error) {
	return authz.Gate(actor, []authz.Permission{authz.OfferingsRead}, func() (*models.Offering, error) {
		offering, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
		}
		return offering, nil
	})
}

// List returns a filtered page of offerings with the total amount across all pages.
func (s *OfferingService) List(ctx context.Context, actor *authz.Actor, filter models.OfferingFilter) (*models.OfferingList, error) {
	return authz.Gate(actor, []authz.Permission{authz.OfferingsRead}, func() (*models.OfferingList, error) {
		if err := validateOfferingFilter(filter); err != nil {
			return nil, err
		}
		if filter.Page < 1 {
			filter.Page = 1
		}
		if filter.PageSize <= 0 || filter.PageSize > 100 {
			filter.PageSize = 20
		}

		offerings, total, amount, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
		}
		if offerings == nil {
			offerings = []models.Offering{}
		}
		return &models.OfferingList{
			Offerings: offerings,
			Summary: models.OfferingSummary{
				TotalAmount:          amount,
				TotalAmountFormatted: export.FormatBRL(amount),
			},
			Pagination: models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total},
		}, nil
	})
}

// Export renders every offering matching filter as CSV or PDF.
func (s *OfferingService) Export(ctx context.Context, actor *authz.Actor, filter models.OfferingFilter, format string) (*ExportFile, error) {
	return authz.Gate(actor, []authz.Permission{authz.OfferingsRead}, func() (*ExportFile, error) {
		format = strings.ToLower(format)
		if format == "" {
			format = ExportFormatCSV
		}
		if format != ExportFormatCSV && format != ExportFormatPDF {
			return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
		}
		if err := validateOfferingFilter(filter); err != nil {
			return nil, err
		}

		offerings, err := s.repo.ListAll(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offerings for export")
		}

		dataset := offeringDataset(offerings)
		stamp := s.now().UTC().Format("2006-01-02")
		switch format {
		case ExportFormatPDF:
			content, err := s.pdf.Render(dataset, "Ofertas")
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
			}
			return &ExportFile{Filename: fmt.Sprintf("ofertas_%s.pdf", stamp), ContentType: "application/pdf", Content: content}, nil
		default:
			content, err := s.csv.Render(dataset)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
			}
			return &ExportFile{Filename: fmt.Sprintf("ofertas_%s.csv", stamp), ContentType: "text/csv; charset=utf-8", Content: content}, nil
		}
	})
}

func offeringDataset(offerings []models.Offering) export.Dataset {
	rows := make([]map[string]string, 0, len(offerings))
	for _, o := range offerings {
		rows = append(rows, map[string]string{
			"ID":          o.ID,
			"Data":        o.Date.Format("02/01/2006"),
			"Origem":      string(o.Origin),
			"Método":      string(o.Method),
			"Valor":       export.FormatBRL(o.Amount),
			"Descrição":   deref(o.Description),
			"Observações": deref(o.Notes),
			"ID PIX":      deref(o.PixTxID),
			"Status PIX":  string(o.CurrentPixStatus()),
			"Serviço":     deref(o.ServiceID),
			"Campus":      deref(o.CampusID),
			"Criado em":   o.CreatedAt.Format("02/01/2006 15:04"),
		})
	}
	return export.Dataset{Headers: offeringExportHeaders, Rows: rows}
}

func validateOfferingFilter(filter models.OfferingFilter) error {
	if filter.Origin != nil && !filter.Origin.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "invalid origin filter")
	}
	if filter.Method != nil && !filter.Method.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "invalid method filter")
	}
	if filter.PixStatus != nil && !filter.PixStatus.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "invalid pix status filter")
	}
	if filter.AmountMin != nil && filter.AmountMax != nil && *filter.AmountMin > *filter.AmountMax {
		return appErrors.Clone(appErrors.ErrValidation, "amountMin must not exceed amountMax")
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return appErrors.Clone(appErrors.ErrValidation, "dateTo must not be before dateFrom")
	}
	return nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

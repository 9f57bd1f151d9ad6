package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/internal/models"
	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
	"github.com/noah-isme/church-admin-api/pkg/export"
)

type donationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	FindByID(ctx context.Context, id string) (*models.Donation, error)
	FindPerson(ctx context.Context, id string) (*models.Person, error)
	ListByPerson(ctx context.Context, personID string, from, to time.Time) ([]models.Donation, error)
	AssignReceiptNumber(ctx context.Context, id, number string, at time.Time) (bool, error)
	UpdateReceiptURL(ctx context.Context, id, url string, at time.Time) error
}

type offeringLookup interface {
	FindByID(ctx context.Context, id string) (*models.Offering, error)
}

type receiptRenderer interface {
	Render(receipt export.Receipt) ([]byte, error)
	RenderAnnualReport(report export.AnnualReport) ([]byte, error)
}

type receiptStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

const minReportYear = 1900

// DonationService records donations and issues their receipts and annual reports.
type DonationService struct {
	donations donationRepository
	offerings offeringLookup
	audit     auditWriter
	renderer  receiptRenderer
	store     receiptStore
	church    export.Church
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewDonationService constructs a DonationService. store may be nil to skip archiving.
func NewDonationService(donations donationRepository, offerings offeringLookup, audit auditWriter, renderer receiptRenderer, store receiptStore, church export.Church, validate *validator.Validate, logger *zap.Logger) *DonationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if renderer == nil {
		renderer = export.NewReceiptRenderer()
	}
	return &DonationService{
		donations: donations,
		offerings: offerings,
		audit:     audit,
		renderer:  renderer,
		store:     store,
		church:    church,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Create attributes a contribution to a person.
func (s *DonationService) Create(ctx context.Context, actor *authz.Actor, req models.CreateDonationRequest) (*models.Donation, error) {
	return authz.Gate(actor, []authz.Permission{authz.OfferingsWrite}, func() (*models.Donation, error) {
		if err := s.validator.Struct(req); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid donation payload")
		}
		if !req.Method.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid payment method")
		}

		if _, err := s.donations.FindPerson(ctx, req.PersonID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load person")
		}
		if req.OfferingID != nil && s.offerings != nil {
			if _, err := s.offerings.FindByID(ctx, *req.OfferingID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
				}
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
			}
		}

		now := s.now().UTC()
		donation := &models.Donation{
			PersonID:    req.PersonID,
			OfferingID:  req.OfferingID,
			Amount:      req.Amount,
			Method:      req.Method,
			Date:        now,
			Description: trimmed(req.Description),
			CreatedBy:   &actor.UserID,
			CreatedAt:   now,
		}
		if req.Date != nil {
			donation.Date = req.Date.UTC()
		}
		if err := s.donations.Create(ctx, donation); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create donation")
		}

		s.recordAudit(ctx, &models.AuditLog{
			UserID:     &actor.UserID,
			Action:     models.AuditActionDonationCreate,
			Resource:   models.AuditResourceDonations,
			ResourceID: &donation.ID,
			NewValues:  mustJSON(map[string]any{"personId": donation.PersonID, "amount": donation.Amount, "method": donation.Method}),
		})
		return donation, nil
	})
}

// Receipt renders the donation receipt, assigning its number on first request.
func (s *DonationService) Receipt(ctx context.Context, actor *authz.Actor, id string) (*models.ReceiptDocument, error) {
	return authz.Gate(actor, []authz.Permission{authz.OfferingsRead}, func() (*models.ReceiptDocument, error) {
		donation, err := s.loadDonation(ctx, id)
		if err != nil {
			return nil, err
		}

		now := s.now().UTC()
		if donation.ReceiptNumber == nil {
			number := ReceiptNumber(donation.ID, now)
			assigned, err := s.donations.AssignReceiptNumber(ctx, donation.ID, number, now)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign receipt number")
			}
			if assigned {
				donation.ReceiptNumber = &number
				s.recordAudit(ctx, &models.AuditLog{
					UserID:     &actor.UserID,
					Action:     models.AuditActionReceiptIssue,
					Resource:   models.AuditResourceDonations,
					ResourceID: &donation.ID,
					NewValues:  mustJSON(map[string]any{"receiptNumber": number}),
				})
			} else if donation, err = s.loadDonation(ctx, id); err != nil {
				return nil, err
			}
		}
		if donation.ReceiptNumber == nil {
			return nil, appErrors.Clone(appErrors.ErrInternal, "receipt number missing after assignment")
		}
		number := *donation.ReceiptNumber

		person, err := s.donations.FindPerson(ctx, donation.PersonID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "donor not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donor")
		}

		content, err := s.renderer.Render(export.Receipt{
			Number:      number,
			Date:        donation.Date,
			Amount:      donation.Amount,
			Method:      string(donation.Method),
			Description: s.describe(ctx, donation),
			DonorName:   person.FullName,
			DonorEmail:  deref(person.Email),
			DonorPhone:  deref(person.Phone),
			Church:      s.church,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
		}

		doc := &models.ReceiptDocument{
			ReceiptNumber: number,
			Filename:      fmt.Sprintf("recibo_%s.pdf", number),
			Content:       content,
		}
		if s.store != nil {
			key := fmt.Sprintf("%d/%s.pdf", donation.Date.Year(), number)
			location, err := s.store.Save(ctx, key, content, "application/pdf")
			if err != nil {
				s.logger.Warn("failed to archive receipt", zap.String("donation_id", donation.ID), zap.Error(err))
			} else {
				doc.Location = location
				if donation.ReceiptURL == nil || *donation.ReceiptURL != location {
					if err := s.donations.UpdateReceiptURL(ctx, donation.ID, location, now); err != nil {
						s.logger.Warn("failed to record receipt location", zap.String("donation_id", donation.ID), zap.Error(err))
					}
				}
			}
		}
		return doc, nil
	})
}

// AnnualReport renders a person's donations for one calendar year (UTC). Year
// zero means the current year. A person without donations in the year is NOT_FOUND.
func (s *DonationService) AnnualReport(ctx context.Context, actor *authz.Actor, personID string, year int) (*models.AnnualReportDocument, error) {
	return authz.Gate(actor, []authz.Permission{authz.OfferingsRead}, func() (*models.AnnualReportDocument, error) {
		now := s.now().UTC()
		if year == 0 {
			year = now.Year()
		}
		if year < minReportYear || year > now.Year() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("year must be between %d and %d", minReportYear, now.Year()))
		}

		person, err := s.donations.FindPerson(ctx, personID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load person")
		}

		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		donations, err := s.donations.ListByPerson(ctx, personID, from, from.AddDate(1, 0, 0))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donations")
		}
		if len(donations) == 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no donations found for %d", year))
		}

		report := export.AnnualReport{
			Year:        year,
			DonorName:   person.FullName,
			DonorEmail:  deref(person.Email),
			DonorPhone:  deref(person.Phone),
			Church:      s.church,
			GeneratedAt: now,
			Lines:       make([]export.AnnualReportLine, 0, len(donations)),
		}
		for i := range donations {
			donation := &donations[i]
			report.Lines = append(report.Lines, export.AnnualReportLine{
				Date:          donation.Date,
				Description:   s.describe(ctx, donation),
				Method:        string(donation.Method),
				Amount:        donation.Amount,
				ReceiptNumber: deref(donation.ReceiptNumber),
			})
		}

		content, err := s.renderer.RenderAnnualReport(report)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render annual report")
		}
		s.logger.Info("annual report rendered",
			zap.String("person_id", personID),
			zap.Int("year", year),
			zap.Int("donations", len(donations)),
		)

		return &models.AnnualReportDocument{
			PersonID: personID,
			Year:     year,
			Count:    len(donations),
			Total:    report.Total(),
			Filename: fmt.Sprintf("relatorio_anual_%d_%s.pdf", year, filenameSafe(person.FullName)),
			Content:  content,
		}, nil
	})
}

// ReceiptNumber formats REC-<year>-<last six id characters, upper case>.
func ReceiptNumber(donationID string, at time.Time) string {
	suffix := donationID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return fmt.Sprintf("REC-%d-%s", at.Year(), strings.ToUpper(suffix))
}

// filenameSafe joins the words of name with underscores, dropping path and quote characters.
func filenameSafe(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(`/\"'`, r)
	})
	if len(words) == 0 {
		return "doador"
	}
	return strings.Join(words, "_")
}

func (s *DonationService) loadDonation(ctx context.Context, id string) (*models.Donation, error) {
	donation, err := s.donations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "donation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donation")
	}
	return donation, nil
}

func (s *DonationService) describe(ctx context.Context, donation *models.Donation) string {
	if donation.Description != nil && *donation.Description != "" {
		return *donation.Description
	}
	if donation.OfferingID != nil && s.offerings != nil {
		offering, err := s.offerings.FindByID(ctx, *donation.OfferingID)
		if err == nil && offering.Description != nil && *offering.Description != "" {
			return *offering.Description
		}
	}
	return "Doação"
}

func (s *DonationService) recordAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record donation audit log", zap.String("action", log.Action), zap.Error(err))
	}
}

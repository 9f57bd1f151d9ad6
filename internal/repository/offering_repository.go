package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/church-admin-api/internal/models"
)

const offeringColumns = `id, date, origin, method, amount, description, notes, service_id, campus_id, created_by, pix_tx_id, pix_status, pix_qr_code, pix_copy_paste, pix_expires_at, pix_paid_at, created_at, updated_at`

// OfferingRepository provides database access for offerings. Offerings are
// financial records and are never deleted.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository creates a new instance of OfferingRepository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// Create inserts a new offering.
func (r *OfferingRepository) Create(ctx context.Context, offering *models.Offering) error {
	if offering.ID == "" {
		offering.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if offering.CreatedAt.IsZero() {
		offering.CreatedAt = now
	}
	if offering.Date.IsZero() {
		offering.Date = offering.CreatedAt
	}
	offering.UpdatedAt = offering.CreatedAt

	const query = `INSERT INTO offerings (` + offeringColumns + `) VALUES (:id, :date, :origin, :method, :amount, :description, :notes, :service_id, :campus_id, :created_by, :pix_tx_id, :pix_status, :pix_qr_code, :pix_copy_paste, :pix_expires_at, :pix_paid_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, offering); err != nil {
		return fmt.Errorf("create offering: %w", err)
	}
	return nil
}

// FindByID returns an offering by identifier.
func (r *OfferingRepository) FindByID(ctx context.Context, id string) (*models.Offering, error) {
	const query = `SELECT ` + offeringColumns + ` FROM offerings WHERE id = $1 LIMIT 1`
	var offering models.Offering
	if err := r.db.GetContext(ctx, &offering, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find offering by id: %w", err)
	}
	return &offering, nil
}

// FindByPixTxID returns the PIX offering carrying the provider transaction id.
func (r *OfferingRepository) FindByPixTxID(ctx context.Context, txID string) (*models.Offering, error) {
	const query = `SELECT ` + offeringColumns + ` FROM offerings WHERE pix_tx_id = $1 LIMIT 1`
	var offering models.Offering
	if err := r.db.GetContext(ctx, &offering, query, txID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find offering by pix tx id: %w", err)
	}
	return &offering, nil
}

// List returns a page of offerings matching the filter, the total count and the summed amount.
func (r *OfferingRepository) List(ctx context.Context, filter models.OfferingFilter) ([]models.Offering, int, int64, error) {
	where, args := buildOfferingWhere(filter, "date")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"date":      "date",
		"amount":    "amount",
		"origin":    "origin",
		"method":    "method",
		"createdAt": "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "date"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s FROM offerings %s ORDER BY %s %s LIMIT %d OFFSET %d", offeringColumns, where, column, sortOrder, pageSize, offset)
	var offerings []models.Offering
	if err := r.db.SelectContext(ctx, &offerings, listQuery, args...); err != nil {
		return nil, 0, 0, fmt.Errorf("list offerings: %w", err)
	}

	var agg struct {
		Count int   `db:"count"`
		Total int64 `db:"total"`
	}
	aggQuery := fmt.Sprintf("SELECT COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total FROM offerings %s", where)
	if err := r.db.GetContext(ctx, &agg, aggQuery, args...); err != nil {
		return nil, 0, 0, fmt.Errorf("summarise offerings: %w", err)
	}

	return offerings, agg.Count, agg.Total, nil
}

// ListAll returns every offering matching the filter ordered by date, newest first.
func (r *OfferingRepository) ListAll(ctx context.Context, filter models.OfferingFilter) ([]models.Offering, error) {
	where, args := buildOfferingWhere(filter, "date")
	query := fmt.Sprintf("SELECT %s FROM offerings %s ORDER BY date DESC", offeringColumns, where)
	var offerings []models.Offering
	if err := r.db.SelectContext(ctx, &offerings, query, args...); err != nil {
		return nil, fmt.Errorf("list offerings for export: %w", err)
	}
	return offerings, nil
}

// ListPix returns PIX offerings matching the filter, newest first.
func (r *OfferingRepository) ListPix(ctx context.Context, filter models.PixFilter) ([]models.Offering, error) {
	method := models.MethodPix
	where, args := buildOfferingWhere(models.OfferingFilter{
		Method:    &method,
		PixStatus: filter.Status,
		DateFrom:  filter.DateFrom,
		DateTo:    filter.DateTo,
	}, "created_at")
	query := fmt.Sprintf("SELECT %s FROM offerings %s ORDER BY created_at DESC", offeringColumns, where)
	var offerings []models.Offering
	if err := r.db.SelectContext(ctx, &offerings, query, args...); err != nil {
		return nil, fmt.Errorf("list pix offerings: %w", err)
	}
	return offerings, nil
}

// ListPendingPix returns PIX offerings still PENDING that were created at or after since, oldest first.
func (r *OfferingRepository) ListPendingPix(ctx context.Context, since time.Time) ([]models.Offering, error) {
	const query = `SELECT ` + offeringColumns + ` FROM offerings WHERE method = 'PIX' AND pix_status = 'PENDING' AND pix_tx_id IS NOT NULL AND created_at >= $1 ORDER BY created_at ASC`
	var offerings []models.Offering
	if err := r.db.SelectContext(ctx, &offerings, query, since); err != nil {
		return nil, fmt.Errorf("list pending pix offerings: %w", err)
	}
	return offerings, nil
}

// TransitionPixStatus moves a PENDING PIX offering to status. The update only
// matches while the stored status is still PENDING, so concurrent deliveries
// apply at most once. When it matches and audit is non-nil the audit entry is
// written in the same transaction. applied is false when nothing matched.
func (r *OfferingRepository) TransitionPixStatus(ctx context.Context, id string, status models.PixStatus, at time.Time, paidAt *time.Time, audit *models.AuditLog) (applied bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin pix transition: %w", err)
	}
	defer func() {
		if err != nil || !applied {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE offerings SET pix_status = $1, pix_paid_at = COALESCE($2, pix_paid_at), updated_at = $3 WHERE id = $4 AND method = 'PIX' AND pix_status = 'PENDING'`
	res, err := tx.ExecContext(ctx, query, status, paidAt, at, id)
	if err != nil {
		return false, fmt.Errorf("update pix status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pix status rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if audit != nil {
		if err = insertAuditLog(ctx, tx, audit); err != nil {
			return false, err
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit pix transition: %w", err)
	}
	return true, nil
}

func buildOfferingWhere(filter models.OfferingFilter, dateColumn string) (string, []interface{}) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(COALESCE(description, '')) LIKE $%d OR LOWER(COALESCE(notes, '')) LIKE $%d OR LOWER(COALESCE(pix_tx_id, '')) LIKE $%d)", idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Origin != nil {
		conditions = append(conditions, fmt.Sprintf("origin = $%d", len(args)+1))
		args = append(args, *filter.Origin)
	}
	if filter.Method != nil {
		conditions = append(conditions, fmt.Sprintf("method = $%d", len(args)+1))
		args = append(args, *filter.Method)
	}
	if filter.ServiceID != nil {
		conditions = append(conditions, fmt.Sprintf("service_id = $%d", len(args)+1))
		args = append(args, *filter.ServiceID)
	}
	if filter.CampusID != nil {
		conditions = append(conditions, fmt.Sprintf("campus_id = $%d", len(args)+1))
		args = append(args, *filter.CampusID)
	}
	if filter.PixStatus != nil {
		conditions = append(conditions, fmt.Sprintf("pix_status = $%d", len(args)+1))
		args = append(args, *filter.PixStatus)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("%s >= $%d", dateColumn, len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("%s <= $%d", dateColumn, len(args)+1))
		args = append(args, *filter.DateTo)
	}
	if filter.AmountMin != nil {
		conditions = append(conditions, fmt.Sprintf("amount >= $%d", len(args)+1))
		args = append(args, *filter.AmountMin)
	}
	if filter.AmountMax != nil {
		conditions = append(conditions, fmt.Sprintf("amount <= $%d", len(args)+1))
		args = append(args, *filter.AmountMax)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

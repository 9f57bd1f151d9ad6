package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/church-admin-api/internal/models"
)

const donationColumns = `id, person_id, offering_id, amount, method, date, description, receipt_number, receipt_url, created_by, created_at, updated_at`

// DonationRepository provides database access for donations and the people they are attributed to.
type DonationRepository struct {
	db *sqlx.DB
}

// NewDonationRepository creates a new instance of DonationRepository.
func NewDonationRepository(db *sqlx.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// Create inserts a new donation.
func (r *DonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	if donation.ID == "" {
		donation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if donation.CreatedAt.IsZero() {
		donation.CreatedAt = now
	}
	if donation.Date.IsZero() {
		donation.Date = donation.CreatedAt
	}
	donation.UpdatedAt = donation.CreatedAt

	const query = `INSERT INTO donations (` + donationColumns + `) VALUES (:id, :person_id, :offering_id, :amount, :method, :date, :description, :receipt_number, :receipt_url, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, donation); err != nil {
		return fmt.Errorf("create donation: %w", err)
	}
	return nil
}

// FindByID returns a donation by identifier.
func (r *DonationRepository) FindByID(ctx context.Context, id string) (*models.Donation, error) {
	const query = `SELECT ` + donationColumns + ` FROM donations WHERE id = $1 LIMIT 1`
	var donation models.Donation
	if err := r.db.GetContext(ctx, &donation, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find donation by id: %w", err)
	}
	return &donation, nil
}

// FindPerson returns the person a donation is attributed to.
func (r *DonationRepository) FindPerson(ctx context.Context, id string) (*models.Person, error) {
	const query = `SELECT id, full_name, email, phone FROM people WHERE id = $1 LIMIT 1`
	var person models.Person
	if err := r.db.GetContext(ctx, &person, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find person by id: %w", err)
	}
	return &person, nil
}

// ListByPerson returns a person's donations dated in [from, to), oldest first.
func (r *DonationRepository) ListByPerson(ctx context.Context, personID string, from, to time.Time) ([]models.Donation, error) {
	const query = `SELECT ` + donationColumns + ` FROM donations WHERE person_id = $1 AND date >= $2 AND date < $3 ORDER BY date ASC, created_at ASC`
	var donations []models.Donation
	if err := r.db.SelectContext(ctx, &donations, query, personID, from, to); err != nil {
		return nil, fmt.Errorf("list donations by person: %w", err)
	}
	return donations, nil
}

// AssignReceiptNumber stores number only when the donation has none yet.
// It reports whether this call assigned it.
func (r *DonationRepository) AssignReceiptNumber(ctx context.Context, id, number string, at time.Time) (bool, error) {
	const query = `UPDATE donations SET receipt_number = $2, updated_at = $3 WHERE id = $1 AND receipt_number IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, number, at)
	if err != nil {
		return false, fmt.Errorf("assign receipt number: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("assign receipt number rows affected: %w", err)
	}
	return affected > 0, nil
}

// UpdateReceiptURL records where the rendered receipt was archived.
func (r *DonationRepository) UpdateReceiptURL(ctx context.Context, id, url string, at time.Time) error {
	const query = `UPDATE donations SET receipt_url = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, url, at); err != nil {
		return fmt.Errorf("update receipt url: %w", err)
	}
	return nil
}

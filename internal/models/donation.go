package models

import "time"

// Donation attributes a contribution to a person, optionally backed by an offering.
type Donation struct {
	ID            string        `db:"id" json:"id"`
	PersonID      string        `db:"person_id" json:"person_id"`
	OfferingID    *string       `db:"offering_id" json:"offering_id,omitempty"`
	Amount        int64         `db:"amount" json:"amount"`
	Method        PaymentMethod `db:"method" json:"method"`
	Date          time.Time     `db:"date" json:"date"`
	Description   *string       `db:"description" json:"description,omitempty"`
	ReceiptNumber *string       `db:"receipt_number" json:"receipt_number,omitempty"`
	ReceiptURL    *string       `db:"receipt_url" json:"receipt_url,omitempty"`
	CreatedBy     *string       `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// Person is the read-only view of a member needed for receipts.
type Person struct {
	ID       string  `db:"id" json:"id"`
	FullName string  `db:"full_name" json:"full_name"`
	Email    *string `db:"email" json:"email,omitempty"`
	Phone    *string `db:"phone" json:"phone,omitempty"`
}

// CreateDonationRequest attributes a contribution to a person.
type CreateDonationRequest struct {
	PersonID    string        `json:"person_id" validate:"required"`
	OfferingID  *string       `json:"offering_id,omitempty"`
	Amount      int64         `json:"amount" validate:"required,gt=0"`
	Method      PaymentMethod `json:"method" validate:"required"`
	Date        *time.Time    `json:"date,omitempty"`
	Description *string       `json:"description,omitempty" validate:"omitempty,max=255"`
}

// ReceiptDocument is a rendered receipt ready for download.
type ReceiptDocument struct {
	ReceiptNumber string
	Filename      string
	Content       []byte
	Location      string
}

// AnnualReportDocument is a donor's rendered giving statement for one year.
type AnnualReportDocument struct {
	PersonID string
	Year     int
	Count    int
	Total    int64
	Filename string
	Content  []byte
}

package models

import "time"

// OfferingOrigin classifies where a contribution came from.
type OfferingOrigin string

const (
	OriginService  OfferingOrigin = "CULTO"
	OriginCampaign OfferingOrigin = "CAMPANHA"
	OriginOffering OfferingOrigin = "OFERTA"
	OriginOther    OfferingOrigin = "OUTRO"
)

// Valid reports whether the origin is a declared value.
func (o OfferingOrigin) Valid() bool {
	switch o {
	case OriginService, OriginCampaign, OriginOffering, OriginOther:
		return true
	}
	return false
}

// PaymentMethod enumerates accepted payment rails.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "CASH"
	MethodCard     PaymentMethod = "CARD"
	MethodPix      PaymentMethod = "PIX"
	MethodTransfer PaymentMethod = "TRANSFER"
	MethodCheck    PaymentMethod = "CHECK"
)

// Valid reports whether the method is a declared value.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodPix, MethodTransfer, MethodCheck:
		return true
	}
	return false
}

// PixStatus is the PIX sub-state of an offering.
type PixStatus string

const (
	PixStatusPending   PixStatus = "PENDING"
	PixStatusPaid      PixStatus = "PAID"
	PixStatusExpired   PixStatus = "EXPIRED"
	PixStatusCancelled PixStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed out of the status.
func (s PixStatus) Terminal() bool {
	switch s {
	case PixStatusPaid, PixStatusExpired, PixStatusCancelled:
		return true
	}
	return false
}

// Valid reports whether the status is a declared value.
func (s PixStatus) Valid() bool {
	return s == PixStatusPending || s.Terminal()
}

// Offering is one contribution event. PIX columns are set iff Method is PIX.
type Offering struct {
	ID           string         `db:"id" json:"id"`
	Date         time.Time      `db:"date" json:"date"`
	Origin       OfferingOrigin `db:"origin" json:"origin"`
	Method       PaymentMethod  `db:"method" json:"method"`
	Amount       int64          `db:"amount" json:"amount"`
	Description  *string        `db:"description" json:"description,omitempty"`
	Notes        *string        `db:"notes" json:"notes,omitempty"`
	ServiceID    *string        `db:"service_id" json:"service_id,omitempty"`
	CampusID     *string        `db:"campus_id" json:"campus_id,omitempty"`
	CreatedBy    *string        `db:"created_by" json:"created_by,omitempty"`
	PixTxID      *string        `db:"pix_tx_id" json:"pix_tx_id,omitempty"`
	PixStatus    *PixStatus     `db:"pix_status" json:"pix_status,omitempty"`
	PixQRCode    *string        `db:"pix_qr_code" json:"pix_qr_code,omitempty"`
	PixCopyPaste *string        `db:"pix_copy_paste" json:"pix_copy_paste,omitempty"`
	PixExpiresAt *time.Time     `db:"pix_expires_at" json:"pix_expires_at,omitempty"`
	PixPaidAt    *time.Time     `db:"pix_paid_at" json:"pix_paid_at,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// CurrentPixStatus returns the PIX status or empty when the offering is not PIX.
func (o *Offering) CurrentPixStatus() PixStatus {
	if o == nil || o.PixStatus == nil {
		return ""
	}
	return *o.PixStatus
}

// OfferingFilter captures filtering criteria for listing offerings.
type OfferingFilter struct {
	Search    string
	Origin    *OfferingOrigin
	Method    *PaymentMethod
	ServiceID *string
	CampusID  *string
	PixStatus *PixStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	AmountMin *int64
	AmountMax *int64
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// OfferingSummary aggregates the filtered set.
type OfferingSummary struct {
	TotalAmount          int64  `json:"total_amount"`
	TotalAmountFormatted string `json:"total_amount_formatted"`
}

// PixFilter narrows PIX payment listings.
type PixFilter struct {
	Status   *PixStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// PixSummary counts PIX payments by status. TotalAmount only sums PAID rows.
type PixSummary struct {
	Total       int   `json:"total"`
	Pending     int   `json:"pending"`
	Paid        int   `json:"paid"`
	Expired     int   `json:"expired"`
	Cancelled   int   `json:"cancelled"`
	TotalAmount int64 `json:"total_amount"`
}

// PixPaymentList is the payload returned by PIX listings.
type PixPaymentList struct {
	Payments []Offering `json:"payments"`
	Summary  PixSummary `json:"summary"`
}

// PixChargeResult is a newly persisted PIX offering plus the PSP display artifacts.
type PixChargeResult struct {
	Offering  *Offering `json:"offering"`
	QRCode    string    `json:"qr_code"`
	CopyPaste string    `json:"copy_paste"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PixTransition is the outcome of applying a status event to a PIX offering.
// Applied is false when the offering was already terminal.
type PixTransition struct {
	OfferingID string    `json:"offering_id"`
	OldStatus  PixStatus `json:"old_status"`
	NewStatus  PixStatus `json:"new_status"`
	Applied    bool      `json:"applied"`
}

// CreatePixChargeRequest is the payload for issuing a PIX charge.
type CreatePixChargeRequest struct {
	Amount      int64          `json:"amount" validate:"required,gt=0"`
	Description string         `json:"description" validate:"required,max=255"`
	Origin      OfferingOrigin `json:"origin"`
	CampusID    *string        `json:"campus_id,omitempty" validate:"omitempty,max=64"`
	ServiceID   *string        `json:"service_id,omitempty" validate:"omitempty,max=64"`
}

// PixWebhookEvent is the PSP callback body. Field names follow the provider's wire format.
type PixWebhookEvent struct {
	TxID   string     `json:"txId" validate:"required"`
	Status PixStatus  `json:"status" validate:"required"`
	PaidAt *time.Time `json:"paidAt,omitempty"`
	Amount *int64     `json:"amount,omitempty"`
}

// PixWebhookResult is returned to the PSP after a callback is processed.
type PixWebhookResult struct {
	OfferingID string    `json:"offering_id"`
	NewStatus  PixStatus `json:"new_status"`
	Applied    bool      `json:"applied"`
}

// CreateOfferingRequest records a non-PIX contribution entered by staff.
type CreateOfferingRequest struct {
	Date        *time.Time     `json:"date,omitempty"`
	Origin      OfferingOrigin `json:"origin" validate:"required"`
	Method      PaymentMethod  `json:"method" validate:"required"`
	Amount      int64          `json:"amount" validate:"required,gt=0"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=255"`
	Notes       *string        `json:"notes,omitempty" validate:"omitempty,max=1000"`
	ServiceID   *string        `json:"service_id,omitempty" validate:"omitempty,max=64"`
	CampusID    *string        `json:"campus_id,omitempty" validate:"omitempty,max=64"`
}

// OfferingList is a page of offerings plus the aggregate over the whole filter.
type OfferingList struct {
	Offerings  []Offering      `json:"offerings"`
	Summary    OfferingSummary `json:"summary"`
	Pagination Pagination      `json:"-"`
}

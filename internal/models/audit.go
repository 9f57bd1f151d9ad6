package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin            = "LOGIN"
	AuditActionOfferingCreate   = "OFFERING_CREATE"
	AuditActionPixChargeCreate  = "PIX_CHARGE_CREATE"
	AuditActionPixStatusChange  = "PIX_STATUS_CHANGE"
	AuditActionDonationCreate   = "DONATION_CREATE"
	AuditActionReceiptIssue     = "RECEIPT_ISSUE"
	AuditActionReconcileTrigger = "RECONCILE_TRIGGER"
)

// Audited resources (table names).
const (
	AuditResourceAuth      = "auth"
	AuditResourceOfferings = "offerings"
	AuditResourceDonations = "donations"
)

// AuditLog represents an append-only audit trail record. The value snapshots
// are JSONB and render as JSON objects.
type AuditLog struct {
	ID         string         `db:"id" json:"id"`
	UserID     *string        `db:"user_id" json:"user_id,omitempty"`
	Action     string         `db:"action" json:"action"`
	Resource   string         `db:"resource" json:"resource"`
	ResourceID *string        `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  types.JSONText `db:"old_values" json:"old_values,omitempty"`
	NewValues  types.JSONText `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string         `db:"ip_address" json:"ip_address"`
	UserAgent  string         `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// AuditFilter narrows audit history queries.
type AuditFilter struct {
	Action   string
	Resource string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}

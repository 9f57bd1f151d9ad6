package models

import "time"

// ReconciliationResult records the outcome for one pending PIX offering.
type ReconciliationResult struct {
	OfferingID string    `json:"offering_id"`
	TxID       string    `json:"tx_id"`
	OldStatus  PixStatus `json:"old_status"`
	NewStatus  PixStatus `json:"new_status,omitempty"`
	Amount     int64     `json:"amount"`
	Error      string    `json:"error,omitempty"`
}

// ReconciliationReport summarises one batch run. Results keep selection order.
type ReconciliationReport struct {
	RunAt      time.Time              `json:"run_at"`
	MaxAgeDays int                    `json:"max_age_days"`
	Checked    int                    `json:"checked"`
	Updated    int                    `json:"updated"`
	Paid       int                    `json:"paid"`
	Expired    int                    `json:"expired"`
	Cancelled  int                    `json:"cancelled"`
	Errors     int                    `json:"errors"`
	Results    []ReconciliationResult `json:"results"`
}

// ReconciliationHistory lists recent PIX status changes from the audit trail.
type ReconciliationHistory struct {
	Entries []AuditLog                   `json:"entries"`
	Summary ReconciliationHistorySummary `json:"summary"`
}

// ReconciliationHistorySummary summarises a history listing.
type ReconciliationHistorySummary struct {
	Total              int        `json:"total"`
	LastReconciliation *time.Time `json:"last_reconciliation,omitempty"`
}

// ReconcileRequest triggers a reconciliation run. Zero MaxAgeDays uses the configured default.
type ReconcileRequest struct {
	MaxAgeDays int `json:"max_age_days" validate:"gte=0,lte=90"`
}

// ReconciliationHistoryFilter narrows the history view.
type ReconciliationHistoryFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
}

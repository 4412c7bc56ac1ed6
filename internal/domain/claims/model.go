package claims

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("claim not found")
	ErrUnknownFilter  = errors.New("unknown claims filter")
	ErrMalformed      = errors.New("malformed claims filter")
	ErrInvalidPayload = errors.New("eob payload is not valid base64")
)

// Claim maps to the claims table.
type Claim struct {
	ID                   uuid.UUID `db:"id" json:"-"`
	MemberID             string    `db:"member_id" json:"-"`
	ClaimNumber          string    `db:"claim_number" json:"claim_number"`
	ServiceDate          time.Time `db:"service_date" json:"service_date"`
	ClaimType            string    `db:"claim_type" json:"claim_type"`
	Status               string    `db:"status" json:"status"`
	ProviderName         string    `db:"provider_name" json:"provider_name"`
	PatientName          string    `db:"patient_name" json:"patient_name"`
	BilledAmount         float64   `db:"billed_amount" json:"billed_amount"`
	MemberResponsibility float64   `db:"member_responsibility" json:"member_responsibility"`
	HasEOB               bool      `db:"has_eob" json:"has_eob"`
}

// EOB maps to the eob_documents table.
type EOB struct {
	MemberID    string    `db:"member_id" json:"member_id"`
	ClaimNumber string    `db:"claim_number" json:"claim_number"`
	Content     string    `db:"content" json:"content"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// View selects the claims list layout.
type View string

const (
	ViewFull    View = "full"
	ViewCompact View = "compact"
)

// ListQuery is one request for a page of the member's claims.
type ListQuery struct {
	Filters []Filter
	Page    int
	View    View
}

// ListResult is a page of claims plus what the UI needs to render filters
// and pagination.
type ListResult struct {
	Claims       []Claim        `json:"claims"`
	Page         int            `json:"page"`
	PageCount    int            `json:"page_count"`
	PageSize     int            `json:"page_size"`
	Total        int            `json:"total"`
	WindowMonths int            `json:"window_months"`
	Options      *FilterOptions `json:"options,omitempty"`
}

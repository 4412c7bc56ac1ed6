package coverage

import (
	"errors"
	"time"

	"github.com/memberportal/planinfo/pkg/fhirmodels"
)

var (
	ErrNotFound       = errors.New("coverage not found")
	ErrInvalidPayload = errors.New("invalid coverage payload")
)

// LineOfBusiness is the coverage category of the member's selected plan.
type LineOfBusiness string

const (
	LOBMedical LineOfBusiness = "medical"
	LOBDental  LineOfBusiness = "dental"
	LOBVision  LineOfBusiness = "vision"
	LOBOther   LineOfBusiness = "other"
)

var validLinesOfBusiness = map[LineOfBusiness]bool{
	LOBMedical: true, LOBDental: true, LOBVision: true, LOBOther: true,
}

// ParseLineOfBusiness maps a path or query value onto a LineOfBusiness.
func ParseLineOfBusiness(s string) (LineOfBusiness, bool) {
	lob := LineOfBusiness(s)
	return lob, validLinesOfBusiness[lob]
}

// MemberPlan maps to the member_plans table: the plan context derived from
// the member's selected coverage.
type MemberPlan struct {
	MemberID             string         `db:"member_id" json:"member_id"`
	PlanIdentifier       string         `db:"plan_identifier" json:"plan_identifier"`
	LineOfBusiness       LineOfBusiness `db:"line_of_business" json:"line_of_business"`
	IsMedicaid           bool           `db:"is_medicaid" json:"is_medicaid"`
	IsMSHO               bool           `db:"is_msho" json:"is_msho"`
	ProductID            string         `db:"product_id" json:"product_id,omitempty"`
	PlanName             string         `db:"plan_name" json:"plan_name,omitempty"`
	GroupNumber          string         `db:"group_number" json:"group_number,omitempty"`
	GroupName            string         `db:"group_name" json:"group_name,omitempty"`
	ClientID             string         `db:"client_id" json:"client_id,omitempty"`
	MaxisID              string         `db:"maxis_id" json:"maxis_id,omitempty"`
	SubscriberID         string         `db:"subscriber_id" json:"subscriber_id,omitempty"`
	FirstName            string         `db:"first_name" json:"first_name,omitempty"`
	LastName             string         `db:"last_name" json:"last_name,omitempty"`
	DateOfBirth          string         `db:"date_of_birth" json:"date_of_birth,omitempty"`
	CoverageStart        string         `db:"coverage_start" json:"coverage_start,omitempty"`
	CoverageEnd          string         `db:"coverage_end" json:"coverage_end,omitempty"`
	Network              string         `db:"network" json:"network,omitempty"`
	CustomerServicePhone string         `db:"customer_service_phone" json:"customer_service_phone,omitempty"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}

// MemberCoverage maps to the coverage_bundles table: the raw FHIR resources
// received for a member, stored as jsonb.
type MemberCoverage struct {
	MemberID             string                     `db:"member_id" json:"member_id"`
	Bundle               *fhirmodels.CoverageBundle `db:"bundle" json:"bundle"`
	Patient              *fhirmodels.Patient        `db:"patient" json:"patient,omitempty"`
	Network              string                     `db:"network" json:"network,omitempty"`
	CustomerServicePhone string                     `db:"customer_service_phone" json:"customer_service_phone,omitempty"`
	UpdatedAt            time.Time                  `db:"updated_at" json:"updated_at"`
}

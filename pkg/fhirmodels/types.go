package fhirmodels

// Common FHIR value set constants and resource shapes used across the application.

// CoverageStatus values per FHIR R4.
const (
	CoverageStatusActive         = "active"
	CoverageStatusCancelled      = "cancelled"
	CoverageStatusDraft          = "draft"
	CoverageStatusEnteredInError = "entered-in-error"
)

// Coverage type codes (HL7 ActCoverageTypeCode) used by the plan administration system.
const (
	CoverageTypeDental          = "DENTPRG"
	CoverageTypeVision          = "VISPOL"
	CoverageTypeHealthInsurance = "HIP"
	CoverageTypeManagedCare     = "MCPOL"
	CoverageTypeHMO             = "HMO"
	CoverageTypePPO             = "PPO"
	CoverageTypePOS             = "POS"
	CoverageTypePublicHealth    = "PUBLICPOL"
)

// Coverage class codes per FHIR R4 coverage-class.
const (
	CoverageClassGroup    = "group"
	CoverageClassSubgroup = "subgroup"
	CoverageClassPlan     = "plan"
)

// Identifier systems.
const (
	MaxisIDSystemSuffix = "CodeSystem/maxis-id"
)

// MedicaidPlanMarker appears in the insurance plan reference of state program coverages.
const MedicaidPlanMarker = "-f"

// MSHOClassPrefix marks Minnesota Senior Health Options plan class values.
const MSHOClassPrefix = "MSHO"

// Coding is a FHIR Coding.
type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// CodeableConcept is a FHIR CodeableConcept.
type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// HasCode reports whether any coding carries code.
func (cc *CodeableConcept) HasCode(code string) bool {
	if cc == nil {
		return false
	}
	for _, c := range cc.Coding {
		if c.Code == code {
			return true
		}
	}
	return false
}

// Reference is a FHIR Reference.
type Reference struct {
	Reference string `json:"reference,omitempty"`
	Display   string `json:"display,omitempty"`
}

// Period is a FHIR Period with date strings kept as sent.
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Identifier is a FHIR Identifier.
type Identifier struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
}

// CoverageClass is a FHIR Coverage.class entry.
type CoverageClass struct {
	Type  CodeableConcept `json:"type"`
	Value string          `json:"value"`
	Name  string          `json:"name,omitempty"`
}

// Coverage is the subset of the FHIR Coverage resource the portal reads.
type Coverage struct {
	ResourceType  string           `json:"resourceType"`
	ID            string           `json:"id"`
	Status        string           `json:"status"`
	Type          *CodeableConcept `json:"type,omitempty"`
	SubscriberID  string           `json:"subscriberId,omitempty"`
	Beneficiary   *Reference       `json:"beneficiary,omitempty"`
	Period        *Period          `json:"period,omitempty"`
	Class         []CoverageClass  `json:"class,omitempty"`
	InsurancePlan *Reference       `json:"insurancePlan,omitempty"`
}

// ClassValue returns the value of the first class carrying code.
func (c *Coverage) ClassValue(code string) (string, bool) {
	for _, cl := range c.Class {
		if cl.Type.HasCode(code) {
			return cl.Value, true
		}
	}
	return "", false
}

// Patient is the subset of the FHIR Patient resource the portal reads.
type Patient struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Name         []HumanName  `json:"name,omitempty"`
	BirthDate    string       `json:"birthDate,omitempty"`
}

// HumanName is a FHIR HumanName.
type HumanName struct {
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
}

// CoverageBundle is a searchset Bundle of Coverage resources.
type CoverageBundle struct {
	ResourceType string          `json:"resourceType"`
	Type         string          `json:"type,omitempty"`
	Total        int             `json:"total,omitempty"`
	Entry        []CoverageEntry `json:"entry,omitempty"`
}

// CoverageEntry is one Bundle.entry holding a Coverage.
type CoverageEntry struct {
	FullURL  string    `json:"fullUrl,omitempty"`
	Resource *Coverage `json:"resource,omitempty"`
}

// Coverages returns the non-nil Coverage resources in entry order.
func (b *CoverageBundle) Coverages() []*Coverage {
	if b == nil {
		return nil
	}
	out := make([]*Coverage, 0, len(b.Entry))
	for _, e := range b.Entry {
		if e.Resource != nil {
			out = append(out, e.Resource)
		}
	}
	return out
}

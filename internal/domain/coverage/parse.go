package coverage

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/memberportal/planinfo/pkg/fhirmodels"
)

// BookletBrand identifies the member brand to the benefit-document service.
const BookletBrand = "MINCR"

var medicalTypeCodes = map[string]bool{
	fhirmodels.CoverageTypeHealthInsurance: true,
	fhirmodels.CoverageTypeManagedCare:     true,
	fhirmodels.CoverageTypeHMO:             true,
	fhirmodels.CoverageTypePPO:             true,
	fhirmodels.CoverageTypePOS:             true,
	fhirmodels.CoverageTypePublicHealth:    true,
}

// LineOfBusinessOf classifies a coverage by its type coding. A coverage with
// no type is treated as medical.
func LineOfBusinessOf(c *fhirmodels.Coverage) LineOfBusiness {
	if c == nil || c.Type == nil || len(c.Type.Coding) == 0 {
		return LOBMedical
	}
	switch {
	case c.Type.HasCode(fhirmodels.CoverageTypeDental):
		return LOBDental
	case c.Type.HasCode(fhirmodels.CoverageTypeVision):
		return LOBVision
	}
	for _, cd := range c.Type.Coding {
		if medicalTypeCodes[cd.Code] {
			return LOBMedical
		}
	}
	return LOBOther
}

// ParseMemberPlan builds the plan context for the coverage whose id matches
// planIdentifier. It returns ErrNotFound when the bundle carries no such
// coverage.
func ParseMemberPlan(mc *MemberCoverage, planIdentifier string) (*MemberPlan, error) {
	if mc == nil || mc.Bundle == nil {
		return nil, ErrNotFound
	}
	planIdentifier = strings.TrimSpace(planIdentifier)

	var selected *fhirmodels.Coverage
	isMSHO := false
	for _, c := range mc.Bundle.Coverages() {
		if hasMSHOClass(c) {
			isMSHO = true
		}
		if selected == nil && planIdentifier != "" && strings.TrimSpace(c.ID) == planIdentifier {
			selected = c
		}
	}
	if selected == nil {
		return nil, fmt.Errorf("plan %q: %w", planIdentifier, ErrNotFound)
	}

	plan := &MemberPlan{
		MemberID:             mc.MemberID,
		PlanIdentifier:       planIdentifier,
		LineOfBusiness:       LineOfBusinessOf(selected),
		IsMSHO:               isMSHO,
		SubscriberID:         selected.SubscriberID,
		Network:              mc.Network,
		CustomerServicePhone: FormatPhoneNumber(mc.CustomerServicePhone),
	}
	if selected.InsurancePlan != nil {
		plan.IsMedicaid = strings.Contains(selected.InsurancePlan.Reference, fhirmodels.MedicaidPlanMarker)
	}
	for _, cl := range selected.Class {
		switch {
		case cl.Type.HasCode(fhirmodels.CoverageClassPlan) && plan.ProductID == "":
			plan.ProductID = cl.Value
			plan.PlanName = cl.Name
		case cl.Type.HasCode(fhirmodels.CoverageClassGroup) && plan.GroupNumber == "":
			plan.GroupNumber = cl.Value
			plan.GroupName = cl.Name
		case cl.Type.HasCode(fhirmodels.CoverageClassSubgroup) && plan.ClientID == "":
			plan.ClientID = cl.Value
		}
	}
	if plan.PlanName == "" && selected.Type != nil {
		plan.PlanName = selected.Type.Text
	}
	if selected.Period != nil {
		plan.CoverageStart = selected.Period.Start
		plan.CoverageEnd = selected.Period.End
	}

	if p := mc.Patient; p != nil {
		if len(p.Name) > 0 {
			plan.LastName = p.Name[0].Family
			if len(p.Name[0].Given) > 0 {
				plan.FirstName = p.Name[0].Given[0]
			}
		}
		plan.DateOfBirth = p.BirthDate
		if plan.IsMedicaid {
			for _, id := range p.Identifier {
				if strings.HasSuffix(id.System, fhirmodels.MaxisIDSystemSuffix) {
					plan.MaxisID = id.Value
					break
				}
			}
		}
	}
	return plan, nil
}

func hasMSHOClass(c *fhirmodels.Coverage) bool {
	for _, cl := range c.Class {
		if strings.HasPrefix(cl.Value, fhirmodels.MSHOClassPrefix) && cl.Type.HasCode(fhirmodels.CoverageClassPlan) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Benefit booklet request
// ---------------------------------------------------------------------------

// BookletRequest is the body the benefit-document service expects.
type BookletRequest struct {
	MemberIdentifiers BookletMemberIdentifiers `json:"memberIdentifiers"`
	MyBenefitRequest  BookletBenefitRequest    `json:"myBenefitRequest"`
}

type BookletMemberIdentifiers struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	MemberID    string `json:"memberId"`
	DateOfBirth string `json:"dateOfBirth"`
	Brand       string `json:"brand"`
}

type BookletBenefitRequest struct {
	VisionCoverage     bool   `json:"visionCoverage"`
	ICISClientID       string `json:"icisClientId"`
	GroupNumber        string `json:"groupNumber"`
	MedicalCoverage    bool   `json:"medicalCoverage"`
	DrugCoverage       bool   `json:"drugCoverage"`
	CoverageCancelDate string `json:"coverageCancelDate"`
	CurEffDate         string `json:"curEffDate"`
	DentalCoverage     bool   `json:"dentalCoverage"`
	AlertCounterReq    string `json:"alertCounterReq"`
}

// BuildBenefitBookletRequest builds the request for the lob booklet. Group
// number and coverage dates come from the first active coverage of that line
// of business in the bundle, so a member who selected a medical plan can
// still retrieve dental and vision booklets.
func BuildBenefitBookletRequest(plan *MemberPlan, bundle *fhirmodels.CoverageBundle, lob LineOfBusiness) *BookletRequest {
	req := &BookletRequest{
		MyBenefitRequest: BookletBenefitRequest{
			VisionCoverage:  lob == LOBVision,
			MedicalCoverage: lob == LOBMedical,
			DentalCoverage:  lob == LOBDental,
			AlertCounterReq: "Y",
		},
	}
	req.MemberIdentifiers.Brand = BookletBrand
	if plan != nil {
		req.MemberIdentifiers.FirstName = plan.FirstName
		req.MemberIdentifiers.LastName = plan.LastName
		req.MemberIdentifiers.MemberID = plan.MemberID
		req.MemberIdentifiers.DateOfBirth = ConvertDateFormat(plan.DateOfBirth)
		req.MyBenefitRequest.ICISClientID = plan.ClientID
	}
	if c := findActiveCoverage(bundle, lob); c != nil {
		req.MyBenefitRequest.GroupNumber, _ = c.ClassValue(fhirmodels.CoverageClassGroup)
		if c.Period != nil {
			req.MyBenefitRequest.CurEffDate = ConvertDateFormat(c.Period.Start)
			req.MyBenefitRequest.CoverageCancelDate = ConvertDateFormat(c.Period.End)
		}
	}
	return req
}

func findActiveCoverage(bundle *fhirmodels.CoverageBundle, lob LineOfBusiness) *fhirmodels.Coverage {
	for _, c := range bundle.Coverages() {
		if c.Status == fhirmodels.CoverageStatusActive && LineOfBusinessOf(c) == lob {
			return c
		}
	}
	return nil
}

// ConvertDateFormat renders a FHIR date (YYYY-MM-DD, optionally with a time
// part) as MM/DD/YYYY. Values it cannot parse are returned unchanged.
func ConvertDateFormat(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) > 10 {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.Format("01/02/2006")
		}
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return s
	}
	return t.Format("01/02/2006")
}

var (
	phone10 = regexp.MustCompile(`^(\d{3})(\d{3})(\d{4})$`)
	phone11 = regexp.MustCompile(`^1(\d{3})(\d{3})(\d{4})$`)
)

// FormatPhoneNumber formats a 10-digit number as (NNN) NNN-NNNN and an
// 11-digit number with a leading 1 as 1-NNN-NNN-NNNN. Anything else yields "".
func FormatPhoneNumber(s string) string {
	if m := phone10.FindStringSubmatch(s); m != nil {
		return "(" + m[1] + ") " + m[2] + "-" + m[3]
	}
	if m := phone11.FindStringSubmatch(s); m != nil {
		return "1-" + m[1] + "-" + m[2] + "-" + m[3]
	}
	return ""
}

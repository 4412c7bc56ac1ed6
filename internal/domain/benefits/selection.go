package benefits

import (
	"strconv"
	"strings"
	"time"

	"github.com/memberportal/planinfo/internal/domain/coverage"
)

// Kind identifies a benefit document family.
type Kind string

const (
	KindSBC            Kind = "sbc"
	KindMedical        Kind = "medical"
	KindDental         Kind = "dental"
	KindVision         Kind = "vision"
	KindMemberHandbook Kind = "member-handbook"
)

// BookletKinds are the kinds fetched from the benefit-document service.
var BookletKinds = []Kind{KindSBC, KindMedical, KindDental, KindVision}

// YearTag marks which plan year a document describes.
type YearTag string

const (
	YearNone    YearTag = ""
	YearCurrent YearTag = "current"
	YearNext    YearTag = "nextyear"
)

const (
	messageHandbook = "View your coverage details within this PDF."
	messageSBC      = "Explore the details of your plan and coverage."
	messageBooklet  = "View all of your benefits within the benefit booklet."
)

// HandbookRef points at an externally hosted Medicaid handbook.
type HandbookRef struct {
	ProductID string  `json:"product_id"`
	YearTag   YearTag `json:"year_tag"`
}

// ContentRef is either inline base64 PDF content or a handbook redirect.
type ContentRef struct {
	Inline   string       `json:"-"`
	Redirect *HandbookRef `json:"redirect,omitempty"`
}

// BenefitDocument describes one document offered to the member.
type BenefitDocument struct {
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Kind      Kind       `json:"kind"`
	YearTag   YearTag    `json:"year_tag,omitempty"`
	Available bool       `json:"available"`
	Content   ContentRef `json:"content"`
	Href      string     `json:"href,omitempty"`
}

// AvailableBooklets holds the base64 PDF payloads fetched for a member.
type AvailableBooklets struct {
	Medical string `json:"medical,omitempty"`
	Dental  string `json:"dental,omitempty"`
	Vision  string `json:"vision,omitempty"`
	SBC     string `json:"sbc,omitempty"`
}

// Get returns the payload stored for kind.
func (a AvailableBooklets) Get(kind Kind) string {
	switch kind {
	case KindMedical:
		return a.Medical
	case KindDental:
		return a.Dental
	case KindVision:
		return a.Vision
	case KindSBC:
		return a.SBC
	}
	return ""
}

// Set stores content for kind. Unknown kinds are ignored.
func (a *AvailableBooklets) Set(kind Kind, content string) {
	switch kind {
	case KindMedical:
		a.Medical = content
	case KindDental:
		a.Dental = content
	case KindVision:
		a.Vision = content
	case KindSBC:
		a.SBC = content
	}
}

// Present reports whether kind carries a non-blank payload.
func (a AvailableBooklets) Present(kind Kind) bool {
	return strings.TrimSpace(a.Get(kind)) != ""
}

// SelectDocuments picks the documents to show using DefaultRenewalWindow.
func SelectDocuments(plan *coverage.MemberPlan, available AvailableBooklets, now time.Time) []BenefitDocument {
	return DefaultRenewalWindow.SelectDocuments(plan, available, now)
}

// SelectDocuments returns the ordered documents for plan. Medicaid members
// get handbook redirects; everyone else gets the SBC plus the booklet for
// their own line of business. Missing content never yields a document.
func (w RenewalWindow) SelectDocuments(plan *coverage.MemberPlan, available AvailableBooklets, now time.Time) []BenefitDocument {
	docs := make([]BenefitDocument, 0, 3)
	if plan == nil {
		return docs
	}
	year := now.Year()
	inWindow := w.Contains(now)

	if plan.IsMedicaid {
		docs = append(docs, handbook(plan.ProductID, year, YearCurrent))
		if inWindow {
			docs = append(docs, handbook(plan.ProductID, year+1, YearNext))
		}
		return docs
	}

	if available.Present(KindSBC) {
		docs = append(docs, inline(KindSBC, "Summary of Benefits & Coverage", messageSBC, YearNone, available.SBC))
	}
	if plan.LineOfBusiness == coverage.LOBMedical && available.Present(KindMedical) {
		docs = append(docs, inline(KindMedical, "Medical Benefit Booklet "+strconv.Itoa(year), messageBooklet, YearCurrent, available.Medical))
		if inWindow {
			docs = append(docs, inline(KindMedical, "Medical Benefit Booklet "+strconv.Itoa(year+1), messageBooklet, YearNext, available.Medical))
		}
	}
	if plan.LineOfBusiness == coverage.LOBVision && available.Present(KindVision) {
		docs = append(docs, inline(KindVision, "Vision Benefit Booklet", messageBooklet, YearNone, available.Vision))
	}
	if plan.LineOfBusiness == coverage.LOBDental && available.Present(KindDental) {
		docs = append(docs, inline(KindDental, "Dental Benefit Booklet", messageBooklet, YearNone, available.Dental))
	}
	return docs
}

func handbook(productID string, year int, tag YearTag) BenefitDocument {
	return BenefitDocument{
		Title:     strconv.Itoa(year) + " Member Handbook",
		Message:   messageHandbook,
		Kind:      KindMemberHandbook,
		YearTag:   tag,
		Available: true,
		Content:   ContentRef{Redirect: &HandbookRef{ProductID: productID, YearTag: tag}},
	}
}

func inline(kind Kind, title, message string, tag YearTag, content string) BenefitDocument {
	return BenefitDocument{
		Title:     title,
		Message:   message,
		Kind:      kind,
		YearTag:   tag,
		Available: true,
		Content:   ContentRef{Inline: content},
	}
}

package planinfo

import (
	"github.com/memberportal/planinfo/internal/domain/banners"
	"github.com/memberportal/planinfo/internal/domain/benefits"
	"github.com/memberportal/planinfo/internal/domain/claims"
	"github.com/memberportal/planinfo/internal/domain/coverage"
)

// Section names a part of the page that can fail on its own.
type Section string

const (
	SectionDocuments Section = "documents"
	SectionClaims    Section = "claims"
	SectionBanners   Section = "banners"
)

// Issue reports a section that could not be loaded.
type Issue struct {
	Section Section `json:"section"`
	Message string  `json:"message"`
}

// Page is the composed plan information page for one member.
type Page struct {
	Plan              *coverage.MemberPlan       `json:"plan"`
	RenewalWindowOpen bool                       `json:"renewal_window_open"`
	Documents         []benefits.BenefitDocument `json:"documents"`
	Claims            *claims.ListResult         `json:"claims,omitempty"`
	Banners           *banners.Placement         `json:"banners"`
	Issues            []Issue                    `json:"issues"`
}

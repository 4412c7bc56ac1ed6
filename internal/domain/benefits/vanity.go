package benefits

import "strings"

// DefaultHandbookBaseURL hosts the public Medicaid handbook pages.
const DefaultHandbookBaseURL = "https://www.bluecrossmn.com"

const medicaidProgramsPath = "/shop-plans/minnesota-health-care-programs"

var handbookPrefixes = map[string]string{
	// Blue Advantage Families and Children
	"PMAP0001": "MH-BAFC",
	"PMAP0002": "MH-BAFC",
	// SecureBlue (MSHO)
	"MSHO0001": "MH-SBMSC",
	// MinnesotaCare
	"MCAR0001": "MH-MNC",
	"MCAR0002": "MH-MNC",
	// Minnesota Senior Care Plus
	"MSCP0001": "MH-MSCP",
	"MSCP0002": "MH-MSCP",
}

// MedicaidVanityURL returns the public handbook URL for a Medicaid product
// and year tag on DefaultHandbookBaseURL.
func MedicaidVanityURL(productID string, tag YearTag) string {
	return HandbookURL(DefaultHandbookBaseURL, productID, tag)
}

// HandbookURL resolves a handbook redirect against baseURL. Unknown products
// land on the state programs overview page.
func HandbookURL(baseURL, productID string, tag YearTag) string {
	if baseURL == "" {
		baseURL = DefaultHandbookBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	prefix, ok := handbookPrefixes[productID]
	if !ok {
		return baseURL + medicaidProgramsPath
	}
	return baseURL + "/" + prefix + "-" + string(tag)
}

package banners

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("banner not found")
	ErrInvalidRule = errors.New("invalid audience rule")
)

// Location is where on the plan information page a banner is rendered.
type Location string

const (
	LocationTop    Location = "top"
	LocationMiddle Location = "middle"
	LocationEnd    Location = "end"
)

var validLocations = map[Location]bool{
	LocationTop: true, LocationMiddle: true, LocationEnd: true,
}

var validTypes = map[string]bool{
	"info": true, "warning": true, "error": true, "success": true,
}

var validFormats = map[string]bool{
	"text": true, "html": true,
}

// Banner maps to the banners table. An empty GroupNumber shows the banner to
// every group; an empty Rule matches every member.
type Banner struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Message     string    `db:"message" json:"message"`
	Type        string    `db:"type" json:"type"`
	Format      string    `db:"format" json:"format"`
	Location    Location  `db:"location" json:"location"`
	Active      bool      `db:"active" json:"active"`
	GroupNumber string    `db:"group_number" json:"group_number,omitempty"`
	Rule        string    `db:"rule" json:"rule,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Placement holds a member's banners by page location, each in creation order.
type Placement struct {
	Top    []Banner `json:"top"`
	Middle []Banner `json:"middle"`
	End    []Banner `json:"end"`
}

func newPlacement() *Placement {
	return &Placement{Top: []Banner{}, Middle: []Banner{}, End: []Banner{}}
}

func (p *Placement) add(b Banner) {
	switch b.Location {
	case LocationTop:
		p.Top = append(p.Top, b)
	case LocationMiddle:
		p.Middle = append(p.Middle, b)
	case LocationEnd:
		p.End = append(p.End, b)
	}
}

// Len returns the number of placed banners.
func (p *Placement) Len() int {
	return len(p.Top) + len(p.Middle) + len(p.End)
}

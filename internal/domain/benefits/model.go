package benefits

import (
	"errors"
	"time"
)

var (
	ErrBookletNotAvailable = errors.New("booklet not available")
	ErrInvalidPayload      = errors.New("booklet payload is not valid base64")
	ErrUpstreamDisabled    = errors.New("benefit booklet service is not configured")
)

// Booklet maps to the benefit_booklets table.
type Booklet struct {
	MemberID  string    `db:"member_id" json:"member_id"`
	Kind      Kind      `db:"kind" json:"kind"`
	Content   string    `db:"content" json:"-"`
	FetchedAt time.Time `db:"fetched_at" json:"fetched_at"`
}

// RefreshResult reports which kinds a refresh stored and which failed upstream.
type RefreshResult struct {
	Refreshed []Kind `json:"refreshed"`
	Empty     []Kind `json:"empty"`
	Failed    []Kind `json:"failed"`
}

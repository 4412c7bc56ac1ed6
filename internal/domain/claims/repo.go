package claims

import (
	"context"
	"time"
)

type ClaimRepository interface {
	// ListByMember returns claims with a service date in [from, to], newest first.
	ListByMember(ctx context.Context, memberID string, from, to time.Time) ([]Claim, error)
	Upsert(ctx context.Context, c *Claim) error
}

type EOBRepository interface {
	Get(ctx context.Context, memberID, claimNumber string) (*EOB, error)
	Upsert(ctx context.Context, e *EOB) error
}

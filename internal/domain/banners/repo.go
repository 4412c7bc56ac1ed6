package banners

import (
	"context"

	"github.com/google/uuid"
)

type BannerRepository interface {
	Create(ctx context.Context, b *Banner) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns one page of all banners, oldest first, and the total count.
	List(ctx context.Context, limit, offset int) ([]*Banner, int, error)
	// ListActive returns active banners for groupNumber plus group-less
	// banners, oldest first.
	ListActive(ctx context.Context, groupNumber string) ([]*Banner, error)
}

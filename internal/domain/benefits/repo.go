package benefits

import "context"

type BookletRepository interface {
	ListByMember(ctx context.Context, memberID string) ([]*Booklet, error)
	Upsert(ctx context.Context, b *Booklet) error
}

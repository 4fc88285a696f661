package repo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/timshannon/bolthold"

	"github.com/ovaphlow/pitchfork/service-subscriber/internal/subscriber/entity"
)

// BoltRepo keeps subscriber documents in an embedded bolthold store.
type BoltRepo struct {
	store *bolthold.Store
}

func NewBoltRepo(store *bolthold.Store) *BoltRepo {
	return &BoltRepo{store: store}
}

func (r *BoltRepo) List(ctx context.Context) ([]entity.Subscriber, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []entity.Subscriber
	if err := r.store.Find(&out, nil); err != nil {
		return nil, fmt.Errorf("finding subscribers: %w", err)
	}
	sortSubscribers(out)
	return out, nil
}

func (r *BoltRepo) GetByID(ctx context.Context, id string) (*entity.Subscriber, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var s entity.Subscriber
	if err := r.store.Get(id, &s); err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting subscriber: %w", err)
	}
	s.ID = id
	return &s, nil
}

func (r *BoltRepo) Create(ctx context.Context, s *entity.Subscriber) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.store.Insert(s.ID, s); err != nil {
		if errors.Is(err, bolthold.ErrKeyExists) {
			return ErrDuplicateID
		}
		return fmt.Errorf("inserting subscriber: %w", err)
	}
	return nil
}

func (r *BoltRepo) Update(ctx context.Context, s *entity.Subscriber) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.store.Update(s.ID, s); err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("updating subscriber: %w", err)
	}
	return nil
}

func (r *BoltRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.store.Delete(id, &entity.Subscriber{}); err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting subscriber: %w", err)
	}
	return nil
}

// sortSubscribers orders by subscribe date, oldest first, then by id.
func sortSubscribers(s []entity.Subscriber) {
	slices.SortFunc(s, func(a, b entity.Subscriber) int {
		if c := a.SubscribeDate.Compare(b.SubscribeDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

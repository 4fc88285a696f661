package subscriber

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/service-subscriber/internal/subscriber/entity"
	"github.com/ovaphlow/pitchfork/service-subscriber/internal/subscriber/repo"
	"github.com/ovaphlow/pitchfork/service-subscriber/pkg/utilities"
)

// Repository is the document store the service writes through.
type Repository interface {
	List(ctx context.Context) ([]entity.Subscriber, error)
	GetByID(ctx context.Context, id string) (*entity.Subscriber, error)
	Create(ctx context.Context, s *entity.Subscriber) error
	Update(ctx context.Context, s *entity.Subscriber) error
	Delete(ctx context.Context, id string) error
}

// ErrNotFound is returned when no subscriber has the requested id.
var ErrNotFound = errors.New("cannot find subscriber")

// ValidationError lists the required fields a write left empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		parts[i] = f + " is required"
	}
	return "subscriber validation failed: " + strings.Join(parts, ", ")
}

// Service holds subscriber business rules on top of a Repository.
type Service struct {
	repo Repository
	ids  *utilities.IDGenerator
	now  func() time.Time
}

// NewService constructs a Service. A nil ids generator falls back to KSUIDs.
func NewService(r Repository, ids *utilities.IDGenerator) *Service {
	return &Service{repo: r, ids: ids, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]entity.Subscriber, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []entity.Subscriber{}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Subscriber, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return sub, nil
}

// Create stores a new subscriber with a fresh id and the current time as
// its subscribe date.
func (s *Service) Create(ctx context.Context, name, channel string) (*entity.Subscriber, error) {
	sub := &entity.Subscriber{
		ID:                  s.ids.Next(),
		Name:                strings.TrimSpace(name),
		SubscribedToChannel: strings.TrimSpace(channel),
		SubscribeDate:       s.now().UTC(),
	}
	if err := validate(sub); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Apply merges p into existing and saves the result. existing is not
// modified when validation or the write fails.
func (s *Service) Apply(ctx context.Context, existing *entity.Subscriber, p entity.Patch) (*entity.Subscriber, error) {
	updated := *existing
	if p.Name != nil {
		updated.Name = strings.TrimSpace(*p.Name)
	}
	if p.SubscribedToChannel != nil {
		updated.SubscribedToChannel = strings.TrimSpace(*p.SubscribedToChannel)
	}
	if err := validate(&updated); err != nil {
		return nil, err
	}
	if p.Empty() {
		return &updated, nil
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, mapNotFound(err)
	}
	return &updated, nil
}

// Update loads the subscriber by id and applies p to it.
func (s *Service) Update(ctx context.Context, id string, p entity.Patch) (*entity.Subscriber, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, existing, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return mapNotFound(s.repo.Delete(ctx, id))
}

func validate(sub *entity.Subscriber) error {
	var missing []string
	if sub.Name == "" {
		missing = append(missing, "name")
	}
	if sub.SubscribedToChannel == "" {
		missing = append(missing, "subscribedToChannel")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

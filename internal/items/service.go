package items

import (
	"context"
	"errors"
	"time"

	"github.com/sharenet/backend/internal/models"
)

// ErrItemNotFound is returned when the requested item does not exist.
var ErrItemNotFound = errors.New("item not found")

// ErrOwnerNotFound is returned when the listing references a missing account.
var ErrOwnerNotFound = errors.New("owner account not found")

// ErrInvalidItem is returned for listings that fail validation.
var ErrInvalidItem = errors.New("invalid item")

// Store is the persistence boundary for item listings.
type Store interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id int64) (*models.Item, error)
	List(ctx context.Context) ([]*models.Item, error)
	ListAvailable(ctx context.Context) ([]*models.Item, error)
}

type Service interface {
	Upload(ctx context.Context, item *models.Item) error
	Get(ctx context.Context, id int64) (*models.Item, error)
	List(ctx context.Context) ([]*models.Item, error)
	ListAvailable(ctx context.Context) ([]*models.Item, error)
}

type service struct {
	store   Store
	timeout time.Duration
}

func NewService(store Store, storageTimeout time.Duration) Service {
	return &service{store: store, timeout: storageTimeout}
}

var _ Service = (*service)(nil)

func (s *service) Upload(ctx context.Context, item *models.Item) error {
	if item.Name == "" || item.OwnerID == 0 {
		return ErrInvalidItem
	}
	if item.PricePerDay.IsNegative() {
		return ErrInvalidItem
	}
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	return s.store.Create(ctx, item)
}

func (s *service) Get(ctx context.Context, id int64) (*models.Item, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	return s.store.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*models.Item, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	return s.store.List(ctx)
}

func (s *service) ListAvailable(ctx context.Context) ([]*models.Item, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	return s.store.ListAvailable(ctx)
}

func (s *service) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

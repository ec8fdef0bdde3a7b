package items

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/stockroom-app/stockroom/internal/listquery"
	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

// Notifier publishes stock alerts for items that dropped to or below their
// threshold. Implemented by the jobs client; nil disables notifications.
type Notifier interface {
	NotifyLowStock(ctx context.Context, itemID int64, name string, quantity, threshold int) error
}

// Input carries validated form fields for create and update.
type Input struct {
	Name        string  `validate:"required,max=200"`
	SKU         string  `validate:"required,max=64"`
	Description string  `validate:"max=2000"`
	Quantity    int     `validate:"min=0"`
	Threshold   int     `validate:"min=0"`
	UnitPrice   float64 `validate:"min=0"`
	CategoryID  int64   `validate:"required,gt=0"`
	LocationID  int64   `validate:"required,gt=0"`
	SupplierID  int64   `validate:"required,gt=0"`
}

// Service wraps item business rules.
type Service struct {
	repo     Repository
	validate *validator.Validate
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validate: validator.New(), notifier: notifier, logger: logger}
}

// List returns one page of the filtered item listing.
func (s *Service) List(ctx context.Context, q listquery.Query) (listquery.Result[Item], error) {
	return s.repo.List(ctx, q)
}

// Get fetches one item by ID.
func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	if id <= 0 {
		return Item{}, fmt.Errorf("%w: invalid item id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Create validates the input, derives the stock status, and persists a new
// item. The stored status is always the derived one, never caller-supplied.
func (s *Service) Create(ctx context.Context, input Input) (Item, error) {
	if err := s.checkInput(input); err != nil {
		return Item{}, err
	}
	item := itemFromInput(input)
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return Item{}, err
	}
	s.notifyIfLow(ctx, created)
	return created, nil
}

// Update validates the input, re-derives the stock status, and persists.
func (s *Service) Update(ctx context.Context, id int64, input Input) (Item, error) {
	if id <= 0 {
		return Item{}, fmt.Errorf("%w: invalid item id", httpx.ErrValidation)
	}
	if err := s.checkInput(input); err != nil {
		return Item{}, err
	}
	item := itemFromInput(input)
	if err := s.repo.Update(ctx, id, item); err != nil {
		return Item{}, err
	}
	item.ID = id
	s.notifyIfLow(ctx, item)
	return item, nil
}

// Delete soft-deletes an item; it disappears from listings but stays
// referenced by historical purchase orders.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid item id", httpx.ErrValidation)
	}
	return s.repo.SoftDelete(ctx, id)
}

// Stats returns dashboard counters.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) checkInput(input Input) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	return nil
}

func itemFromInput(input Input) Item {
	return Item{
		Name:        input.Name,
		SKU:         input.SKU,
		Description: input.Description,
		Quantity:    input.Quantity,
		Threshold:   input.Threshold,
		UnitPrice:   input.UnitPrice,
		CategoryID:  input.CategoryID,
		LocationID:  input.LocationID,
		SupplierID:  input.SupplierID,
		StatusID:    DeriveStatus(input.Quantity, input.Threshold),
	}
}

func (s *Service) notifyIfLow(ctx context.Context, item Item) {
	if s.notifier == nil || item.StatusID == StatusInStock {
		return
	}
	if err := s.notifier.NotifyLowStock(ctx, item.ID, item.Name, item.Quantity, item.Threshold); err != nil {
		s.logger.Warn("enqueue low stock notification", slog.Int64("item_id", item.ID), slog.Any("error", err))
	}
}

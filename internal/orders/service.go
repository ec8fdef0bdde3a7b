package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stockroom-app/stockroom/internal/listquery"
	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

// LineInput is one submitted order line.
type LineInput struct {
	ItemID        int64   `validate:"required,gt=0"`
	Quantity      int     `validate:"required,gt=0"`
	PurchasePrice float64 `validate:"min=0"`
}

// Input carries validated form fields for create and edit.
type Input struct {
	SupplierID           int64       `validate:"required,gt=0"`
	PriorityID           Priority    `validate:"required,min=1,max=3"`
	OrderDate            time.Time   `validate:"required"`
	ExpectedDeliveryDate time.Time   `validate:"required"`
	Lines                []LineInput `validate:"required,min=1,dive"`
}

// Service wraps purchase order business rules.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List returns one page of the filtered order listing.
func (s *Service) List(ctx context.Context, q listquery.Query) (listquery.Result[Order], error) {
	return s.repo.List(ctx, q)
}

// Get fetches one order with its active lines.
func (s *Service) Get(ctx context.Context, id int64) (Detail, error) {
	if id <= 0 {
		return Detail{}, fmt.Errorf("%w: invalid order id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Create validates the input and persists a new order in Pending Approval.
func (s *Service) Create(ctx context.Context, input Input) (int64, error) {
	if err := s.checkInput(input); err != nil {
		return 0, err
	}
	ord := orderFromInput(input)
	ord.StatusID = StatusPendingApproval
	return s.repo.Create(ctx, ord, linesFromInput(input.Lines))
}

// Edit validates the input and reconciles the order's lines with the
// submission. Each item may appear on an order at most once, so submissions
// with a repeated item are rejected before any write.
func (s *Service) Edit(ctx context.Context, id int64, input Input) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid order id", httpx.ErrValidation)
	}
	if err := s.checkInput(input); err != nil {
		return err
	}
	return s.repo.Edit(ctx, id, orderFromInput(input), linesFromInput(input.Lines))
}

// Cancel moves an order to Cancelled when its status allows it.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid order id", httpx.ErrValidation)
	}
	return s.repo.Cancel(ctx, id)
}

// Stats returns dashboard counters.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) checkInput(input Input) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	seen := make(map[int64]struct{}, len(input.Lines))
	for _, l := range input.Lines {
		if _, ok := seen[l.ItemID]; ok {
			return fmt.Errorf("%w: item %d appears more than once", httpx.ErrValidation, l.ItemID)
		}
		seen[l.ItemID] = struct{}{}
	}
	if input.ExpectedDeliveryDate.Before(input.OrderDate) {
		return fmt.Errorf("%w: expected delivery date precedes order date", httpx.ErrValidation)
	}
	return nil
}

func orderFromInput(input Input) Order {
	return Order{
		SupplierID:           input.SupplierID,
		PriorityID:           input.PriorityID,
		OrderDate:            input.OrderDate,
		ExpectedDeliveryDate: input.ExpectedDeliveryDate,
	}
}

func linesFromInput(inputs []LineInput) []Line {
	lines := make([]Line, 0, len(inputs))
	for _, l := range inputs {
		lines = append(lines, Line{
			ItemID:        l.ItemID,
			Quantity:      l.Quantity,
			PurchasePrice: l.PurchasePrice,
		})
	}
	return lines
}

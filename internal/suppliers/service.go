package suppliers

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/stockroom-app/stockroom/internal/listquery"
	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

// Input carries validated form fields for create and update.
type Input struct {
	Name      string `validate:"required,max=200"`
	Street    string `validate:"max=200"`
	City      string `validate:"max=100"`
	StateID   int64  `validate:"required,gt=0"`
	ZipCode   string `validate:"max=20"`
	FirstName string `validate:"required,max=100"`
	LastName  string `validate:"required,max=100"`
	Email     string `validate:"required,email,max=200"`
	Phone     string `validate:"max=40"`
}

// Service wraps supplier business rules.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List returns one page of the filtered supplier listing.
func (s *Service) List(ctx context.Context, q listquery.Query) (listquery.Result[Supplier], error) {
	return s.repo.List(ctx, q)
}

// Get fetches one supplier by ID.
func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, fmt.Errorf("%w: invalid supplier id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Create validates the input and persists a new supplier with its contact.
func (s *Service) Create(ctx context.Context, input Input) (Supplier, error) {
	if err := s.checkInput(input); err != nil {
		return Supplier{}, err
	}
	return s.repo.Create(ctx, supplierFromInput(input))
}

// Update validates the input and persists changes; the submitted contact
// becomes the supplier's current one.
func (s *Service) Update(ctx context.Context, id int64, input Input) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, fmt.Errorf("%w: invalid supplier id", httpx.ErrValidation)
	}
	if err := s.checkInput(input); err != nil {
		return Supplier{}, err
	}
	sup := supplierFromInput(input)
	if err := s.repo.Update(ctx, id, sup); err != nil {
		return Supplier{}, err
	}
	sup.ID = id
	return sup, nil
}

// Delete soft-deletes a supplier.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid supplier id", httpx.ErrValidation)
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

func supplierFromInput(input Input) Supplier {
	return Supplier{
		Name:    input.Name,
		Street:  input.Street,
		City:    input.City,
		StateID: input.StateID,
		ZipCode: input.ZipCode,
		Contact: Contact{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Email:     input.Email,
			Phone:     input.Phone,
		},
	}
}

package locations

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/stockroom-app/stockroom/internal/listquery"
	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

// Input carries validated form fields for create and update.
type Input struct {
	Description string `validate:"required,max=200"`
	TypeID      int64  `validate:"required,gt=0"`
	MinCapacity int    `validate:"min=0"`
	MaxCapacity int    `validate:"min=0,gtefield=MinCapacity"`
	Street      string `validate:"max=200"`
	City        string `validate:"max=100"`
	State       string `validate:"max=100"`
	Country     string `validate:"max=100"`
	ZipCode     string `validate:"max=20"`
}

// Service wraps location business rules.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List returns one page of the filtered location listing.
func (s *Service) List(ctx context.Context, q listquery.Query) (listquery.Result[Location], error) {
	return s.repo.List(ctx, q)
}

// Get fetches one location by ID.
func (s *Service) Get(ctx context.Context, id int64) (Location, error) {
	if id <= 0 {
		return Location{}, fmt.Errorf("%w: invalid location id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Create validates the input and persists a new location.
func (s *Service) Create(ctx context.Context, input Input) (Location, error) {
	if err := s.checkInput(input); err != nil {
		return Location{}, err
	}
	return s.repo.Create(ctx, locationFromInput(input))
}

// Update validates the input and persists changes to a location.
func (s *Service) Update(ctx context.Context, id int64, input Input) (Location, error) {
	if id <= 0 {
		return Location{}, fmt.Errorf("%w: invalid location id", httpx.ErrValidation)
	}
	if err := s.checkInput(input); err != nil {
		return Location{}, err
	}
	loc := locationFromInput(input)
	if err := s.repo.Update(ctx, id, loc); err != nil {
		return Location{}, err
	}
	loc.ID = id
	return loc, nil
}

// Delete soft-deletes a location.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid location id", httpx.ErrValidation)
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

func locationFromInput(input Input) Location {
	return Location{
		Description: input.Description,
		TypeID:      input.TypeID,
		MinCapacity: input.MinCapacity,
		MaxCapacity: input.MaxCapacity,
		Street:      input.Street,
		City:        input.City,
		State:       input.State,
		Country:     input.Country,
		ZipCode:     input.ZipCode,
	}
}

package suppliers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/listquery"
	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

type fakeRepo struct {
	suppliers map[int64]Supplier
	nextID    int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{suppliers: make(map[int64]Supplier), nextID: 1}
}

func (f *fakeRepo) List(ctx context.Context, q listquery.Query) (listquery.Result[Supplier], error) {
	var rows []Supplier
	for _, sup := range f.suppliers {
		if sup.IsActive {
			rows = append(rows, sup)
		}
	}
	return listquery.Result[Supplier]{
		Rows:       rows,
		Pagination: listquery.NewPagination(q.Page, q.PerPage, len(rows)),
	}, nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Supplier, error) {
	sup, ok := f.suppliers[id]
	if !ok {
		return Supplier{}, httpx.ErrNotFound
	}
	return sup, nil
}

func (f *fakeRepo) Create(ctx context.Context, sup Supplier) (Supplier, error) {
	sup.ID = f.nextID
	sup.IsActive = true
	f.nextID++
	f.suppliers[sup.ID] = sup
	return sup, nil
}

func (f *fakeRepo) Update(ctx context.Context, id int64, sup Supplier) error {
	existing, ok := f.suppliers[id]
	if !ok || !existing.IsActive {
		return httpx.ErrNotFound
	}
	sup.ID = id
	sup.IsActive = true
	f.suppliers[id] = sup
	return nil
}

func (f *fakeRepo) SoftDelete(ctx context.Context, id int64) error {
	existing, ok := f.suppliers[id]
	if !ok || !existing.IsActive {
		return httpx.ErrNotFound
	}
	existing.IsActive = false
	f.suppliers[id] = existing
	return nil
}

func (f *fakeRepo) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	for _, sup := range f.suppliers {
		stats.Total++
		if sup.IsActive {
			stats.Active++
			stats.TotalValue += sup.TotalValue
		}
	}
	return stats, nil
}

func validInput() Input {
	return Input{
		Name:      "Acme Industrial",
		City:      "Denver",
		StateID:   6,
		FirstName: "Pat",
		LastName:  "Reyes",
		Email:     "pat.reyes@acme.example",
		Phone:     "555-0100",
	}
}

func TestServiceCreateStoresContact(t *testing.T) {
	svc := NewService(newFakeRepo())

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "Pat", created.Contact.FirstName)
	require.Equal(t, "pat.reyes@acme.example", created.Contact.Email)
}

func TestServiceCreateRejectsBadEmail(t *testing.T) {
	svc := NewService(newFakeRepo())

	input := validInput()
	input.Email = "not-an-email"

	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestServiceCreateRejectsMissingState(t *testing.T) {
	svc := NewService(newFakeRepo())

	input := validInput()
	input.StateID = 0

	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestServiceUpdateReplacesContact(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	input := validInput()
	input.FirstName = "Sam"
	input.Email = "sam.ortiz@acme.example"

	updated, err := svc.Update(context.Background(), created.ID, input)
	require.NoError(t, err)
	require.Equal(t, "Sam", updated.Contact.FirstName)

	stored, err := repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "sam.ortiz@acme.example", stored.Contact.Email)
}

func TestServiceUpdateMissingSupplier(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Update(context.Background(), 7, validInput())
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestServiceDeleteHidesFromListing(t *testing.T) {
	svc := NewService(newFakeRepo())

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	result, err := svc.List(context.Background(), listquery.NewQuery())
	require.NoError(t, err)
	require.Empty(t, result.Rows)
}

package items

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/listquery"
	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

type fakeRepo struct {
	items  map[int64]Item
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[int64]Item), nextID: 1}
}

func (f *fakeRepo) List(ctx context.Context, q listquery.Query) (listquery.Result[Item], error) {
	var rows []Item
	for _, it := range f.items {
		if it.IsActive {
			rows = append(rows, it)
		}
	}
	return listquery.Result[Item]{
		Rows:       rows,
		Pagination: listquery.NewPagination(q.Page, q.PerPage, len(rows)),
	}, nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Item, error) {
	it, ok := f.items[id]
	if !ok {
		return Item{}, httpx.ErrNotFound
	}
	return it, nil
}

func (f *fakeRepo) Create(ctx context.Context, item Item) (Item, error) {
	for _, existing := range f.items {
		if existing.SKU == item.SKU && existing.IsActive {
			return Item{}, httpx.ErrDuplicate
		}
	}
	item.ID = f.nextID
	item.IsActive = true
	f.nextID++
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeRepo) Update(ctx context.Context, id int64, item Item) error {
	existing, ok := f.items[id]
	if !ok || !existing.IsActive {
		return httpx.ErrNotFound
	}
	item.ID = id
	item.IsActive = true
	f.items[id] = item
	return nil
}

func (f *fakeRepo) SoftDelete(ctx context.Context, id int64) error {
	existing, ok := f.items[id]
	if !ok || !existing.IsActive {
		return httpx.ErrNotFound
	}
	existing.IsActive = false
	f.items[id] = existing
	return nil
}

func (f *fakeRepo) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	for _, it := range f.items {
		if !it.IsActive {
			continue
		}
		stats.Total++
		switch it.StatusID {
		case StatusInStock:
			stats.InStock++
		case StatusLowStock:
			stats.LowStock++
		case StatusOutOfStock:
			stats.OutOfStock++
		}
	}
	return stats, nil
}

type recordingNotifier struct {
	itemIDs []int64
}

func (n *recordingNotifier) NotifyLowStock(ctx context.Context, itemID int64, name string, quantity, threshold int) error {
	n.itemIDs = append(n.itemIDs, itemID)
	return nil
}

func validInput() Input {
	return Input{
		Name:       "Widget",
		SKU:        "WID-001",
		Quantity:   20,
		Threshold:  5,
		UnitPrice:  9.99,
		CategoryID: 1,
		LocationID: 1,
		SupplierID: 1,
	}
}

func TestServiceCreateDerivesStatus(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	input := validInput()
	input.Quantity = 3
	input.Threshold = 5

	created, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, StatusLowStock, created.StatusID)
	require.NotZero(t, created.ID)
}

func TestServiceCreateRejectsInvalidInput(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	input := validInput()
	input.Name = ""

	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestServiceCreateRejectsNegativeQuantity(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	input := validInput()
	input.Quantity = -1

	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestServiceCreateDuplicateSKU(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validInput())
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestServiceUpdateRederivesStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, StatusInStock, created.StatusID)

	input := validInput()
	input.Quantity = 0

	updated, err := svc.Update(context.Background(), created.ID, input)
	require.NoError(t, err)
	require.Equal(t, StatusOutOfStock, updated.StatusID)

	stored, err := repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOutOfStock, stored.StatusID)
}

func TestServiceUpdateMissingItem(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	_, err := svc.Update(context.Background(), 99, validInput())
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestServiceDeleteHidesFromListing(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	result, err := svc.List(context.Background(), listquery.NewQuery())
	require.NoError(t, err)
	require.Empty(t, result.Rows)
}

func TestServiceNotifiesWhenLow(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(newFakeRepo(), notifier, nil)

	input := validInput()
	input.Quantity = 2
	input.Threshold = 5

	created, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, []int64{created.ID}, notifier.itemIDs)
}

func TestServiceDoesNotNotifyWhenInStock(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(newFakeRepo(), notifier, nil)

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.Empty(t, notifier.itemIDs)
}

func TestServiceStats(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	for i, qty := range []int{20, 3, 0} {
		input := validInput()
		input.SKU = fmt.Sprintf("WID-%03d", i)
		input.Quantity = qty
		_, err := svc.Create(context.Background(), input)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, Stats{Total: 3, InStock: 1, LowStock: 1, OutOfStock: 1}, stats)
}

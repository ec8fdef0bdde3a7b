package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/listquery"
	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

type fakeRepo struct {
	orders map[int64]Order
	lines  map[int64][]Line
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[int64]Order), lines: make(map[int64][]Line), nextID: 1}
}

func (f *fakeRepo) List(ctx context.Context, q listquery.Query) (listquery.Result[Order], error) {
	var rows []Order
	for _, ord := range f.orders {
		if ord.IsActive {
			rows = append(rows, ord)
		}
	}
	return listquery.Result[Order]{
		Rows:       rows,
		Pagination: listquery.NewPagination(q.Page, q.PerPage, len(rows)),
	}, nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Detail, error) {
	ord, ok := f.orders[id]
	if !ok {
		return Detail{}, httpx.ErrNotFound
	}
	var active []Line
	for _, l := range f.lines[id] {
		if l.IsActive {
			active = append(active, l)
		}
	}
	return Detail{Order: ord, Lines: active}, nil
}

func (f *fakeRepo) Create(ctx context.Context, ord Order, lines []Line) (int64, error) {
	ord.ID = f.nextID
	ord.IsActive = true
	f.nextID++
	f.orders[ord.ID] = ord
	for i := range lines {
		lines[i].OrderID = ord.ID
		lines[i].IsActive = true
	}
	f.lines[ord.ID] = lines
	return ord.ID, nil
}

func (f *fakeRepo) Edit(ctx context.Context, id int64, ord Order, lines []Line) error {
	existing, ok := f.orders[id]
	if !ok || !existing.IsActive {
		return httpx.ErrNotFound
	}
	existing.SupplierID = ord.SupplierID
	existing.PriorityID = ord.PriorityID
	existing.OrderDate = ord.OrderDate
	existing.ExpectedDeliveryDate = ord.ExpectedDeliveryDate
	f.orders[id] = existing

	stored := f.lines[id]
	submitted := make(map[int64]Line, len(lines))
	for _, l := range lines {
		submitted[l.ItemID] = l
	}
	seen := make(map[int64]struct{})
	for i, l := range stored {
		if sub, ok := submitted[l.ItemID]; ok {
			stored[i].Quantity = sub.Quantity
			stored[i].PurchasePrice = sub.PurchasePrice
			stored[i].IsActive = true
			seen[l.ItemID] = struct{}{}
		} else {
			stored[i].IsActive = false
		}
	}
	for _, l := range lines {
		if _, ok := seen[l.ItemID]; ok {
			continue
		}
		l.OrderID = id
		l.IsActive = true
		stored = append(stored, l)
	}
	f.lines[id] = stored
	return nil
}

func (f *fakeRepo) Cancel(ctx context.Context, id int64) error {
	ord, ok := f.orders[id]
	if !ok || !ord.IsActive {
		return httpx.ErrNotFound
	}
	if !ord.StatusID.Cancellable() {
		return httpx.ErrValidation
	}
	ord.StatusID = StatusCancelled
	ord.IsActive = false
	f.orders[id] = ord
	return nil
}

func (f *fakeRepo) Stats(ctx context.Context) (Stats, error) {
	return Stats{}, nil
}

func validInput() Input {
	orderDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return Input{
		SupplierID:           4,
		PriorityID:           PriorityMedium,
		OrderDate:            orderDate,
		ExpectedDeliveryDate: orderDate.AddDate(0, 0, 14),
		Lines: []LineInput{
			{ItemID: 1, Quantity: 10, PurchasePrice: 2.50},
			{ItemID: 2, Quantity: 5, PurchasePrice: 7.00},
		},
	}
}

func TestServiceCreateStartsPendingApproval(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	id, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	detail, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, StatusPendingApproval, detail.StatusID)
	require.Len(t, detail.Lines, 2)
}

func TestServiceCreateRejectsEmptyLines(t *testing.T) {
	svc := NewService(newFakeRepo())

	input := validInput()
	input.Lines = nil

	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestServiceCreateRejectsDuplicateItems(t *testing.T) {
	svc := NewService(newFakeRepo())

	input := validInput()
	input.Lines = append(input.Lines, LineInput{ItemID: 1, Quantity: 3, PurchasePrice: 2.50})

	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestServiceCreateRejectsDeliveryBeforeOrder(t *testing.T) {
	svc := NewService(newFakeRepo())

	input := validInput()
	input.ExpectedDeliveryDate = input.OrderDate.AddDate(0, 0, -1)

	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestServiceEditReconcilesLines(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	id, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	// Item 1 updated, item 2 removed, item 3 added.
	input := validInput()
	input.Lines = []LineInput{
		{ItemID: 1, Quantity: 20, PurchasePrice: 2.25},
		{ItemID: 3, Quantity: 8, PurchasePrice: 4.00},
	}

	require.NoError(t, svc.Edit(context.Background(), id, input))

	detail, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, detail.Lines, 2)

	byItem := make(map[int64]Line)
	for _, l := range detail.Lines {
		byItem[l.ItemID] = l
	}
	require.Equal(t, 20, byItem[1].Quantity)
	require.Equal(t, 8, byItem[3].Quantity)
	require.NotContains(t, byItem, int64(2))
}

func TestServiceEditReactivatesRemovedLine(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	id, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	// Drop item 2, then bring it back with a new quantity.
	input := validInput()
	input.Lines = []LineInput{{ItemID: 1, Quantity: 10, PurchasePrice: 2.50}}
	require.NoError(t, svc.Edit(context.Background(), id, input))

	input.Lines = []LineInput{
		{ItemID: 1, Quantity: 10, PurchasePrice: 2.50},
		{ItemID: 2, Quantity: 9, PurchasePrice: 6.50},
	}
	require.NoError(t, svc.Edit(context.Background(), id, input))

	detail, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, detail.Lines, 2)

	byItem := make(map[int64]Line)
	for _, l := range detail.Lines {
		byItem[l.ItemID] = l
	}
	require.Equal(t, 9, byItem[2].Quantity)
}

func TestServiceEditRejectsDuplicateItems(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	id, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	input := validInput()
	input.Lines = []LineInput{
		{ItemID: 1, Quantity: 10, PurchasePrice: 2.50},
		{ItemID: 1, Quantity: 4, PurchasePrice: 2.50},
	}

	err = svc.Edit(context.Background(), id, input)
	require.ErrorIs(t, err, httpx.ErrValidation)

	// Rejected before any write: lines unchanged.
	detail, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, detail.Lines, 2)
}

func TestServiceCancel(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	id, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), id))

	result, err := svc.List(context.Background(), listquery.NewQuery())
	require.NoError(t, err)
	require.Empty(t, result.Rows)
}

func TestStatusCancellable(t *testing.T) {
	require.True(t, StatusPendingApproval.Cancellable())
	require.True(t, StatusReceivedPartial.Cancellable())
	require.False(t, StatusCompleted.Cancellable())
	require.False(t, StatusCancelled.Cancellable())
	require.False(t, StatusRejected.Cancellable())
}

package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom-app/stockroom/internal/items"
	"github.com/stockroom-app/stockroom/internal/observability"
)

// StockScanner repairs stored stock statuses that drifted from the derived
// rule and refreshes the low stock gauge. Drift can happen when rows are
// touched outside the application.
type StockScanner struct {
	db      *pgxpool.Pool
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewStockScanner constructs a StockScanner.
func NewStockScanner(db *pgxpool.Pool, metrics *observability.Metrics, logger *slog.Logger) *StockScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &StockScanner{db: db, metrics: metrics, logger: logger}
}

// Handle processes TaskStockScan tasks.
func (s *StockScanner) Handle(ctx context.Context, t *asynq.Task) error {
	rows, err := s.db.Query(ctx, `SELECT id, quantity, threshold, status_id FROM items WHERE is_active`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type drifted struct {
		id   int64
		want items.Status
	}
	var repairs []drifted
	lowOrOut := 0
	for rows.Next() {
		var id int64
		var quantity, threshold int
		var stored items.Status
		if err := rows.Scan(&id, &quantity, &threshold, &stored); err != nil {
			return err
		}
		want := items.DeriveStatus(quantity, threshold)
		if want != items.StatusInStock {
			lowOrOut++
		}
		if want != stored {
			repairs = append(repairs, drifted{id: id, want: want})
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, d := range repairs {
		if _, err := s.db.Exec(ctx, `UPDATE items SET status_id = $1, updated_at = $2 WHERE id = $3`,
			d.want, time.Now().UTC(), d.id); err != nil {
			return err
		}
	}
	if len(repairs) > 0 {
		s.logger.Info("stock scan repaired statuses", slog.Int("count", len(repairs)))
	}
	s.metrics.SetLowStockItems(lowOrOut)
	return nil
}

package comps

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vintagevault/pricing-service/internal/database"
)

// DB is the database surface the store needs.
type DB interface {
	database.Executor
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store persists imported comparable sales and serves them back as
// pricing evidence.
type Store struct {
	db DB
}

// NewStore creates a comp store backed by db.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Import inserts parsed comps in one batch, tagged with their source
// sheet. Returns the number of rows inserted.
func (s *Store) Import(ctx context.Context, parsed []ParsedComp, source string) (int, error) {
	if len(parsed) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, c := range parsed {
		batch.Queue(`
			INSERT INTO comparable_sales (id, category, title, sale_price, sold_at, source, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
		`, uuid.New().String(), c.Category, c.Title, c.SalePrice, c.SoldAt, source)
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := range parsed {
		if _, err := br.Exec(); err != nil {
			return i, fmt.Errorf("error inserting comp row %d: %w", parsed[i].RowNumber, err)
		}
	}

	recordImport(source, len(parsed))
	return len(parsed), nil
}

// RecentForCategory returns the most recent comparable sales for a
// category, capped at limit.
func (s *Store) RecentForCategory(ctx context.Context, category string, limit int) ([]database.ComparableSale, error) {
	if limit < 1 || limit > 100 {
		limit = 25
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, category, title, sale_price, sold_at, source, created_at
		FROM comparable_sales
		WHERE category = $1
		ORDER BY sold_at DESC NULLS LAST, created_at DESC
		LIMIT $2
	`, category, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying comps for %q: %w", category, err)
	}
	defer rows.Close()

	var sales []database.ComparableSale
	for rows.Next() {
		var c database.ComparableSale
		if err := rows.Scan(&c.ID, &c.Category, &c.Title, &c.SalePrice, &c.SoldAt, &c.Source, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning comp row: %w", err)
		}
		sales = append(sales, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comp rows: %w", err)
	}

	return sales, nil
}

// PricesForCategory returns just the sale prices of the most recent
// comps for a category. The result plugs directly into the engine's
// historical comps input.
func (s *Store) PricesForCategory(ctx context.Context, category string, limit int) ([]float64, error) {
	sales, err := s.RecentForCategory(ctx, category, limit)
	if err != nil {
		return nil, err
	}

	prices := make([]float64, len(sales))
	for i, c := range sales {
		prices[i] = c.SalePrice
	}
	return prices, nil
}

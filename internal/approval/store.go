// Package approval manages the review queue for AI-drafted listings:
// listing pending drafts, recording approve/reject decisions, and
// promoting approved drafts into the live catalog.
package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vintagevault/pricing-service/internal/catalog"
	"github.com/vintagevault/pricing-service/internal/database"
)

var (
	// ErrNotFound is returned when no draft exists with the given ID.
	ErrNotFound = errors.New("draft not found")

	// ErrAlreadyDecided is returned when a draft has already been approved
	// or rejected. Decisions are terminal; re-review requires a new draft.
	ErrAlreadyDecided = errors.New("draft already decided")
)

// DB is the database surface the store needs: plain queries plus
// transactions for catalog promotion. Both *pgxpool.Pool and pgxmock
// satisfy it.
type DB interface {
	database.Executor
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store persists approval queue state.
type Store struct {
	db DB
}

// NewStore creates an approval store backed by db.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

const draftColumns = `
	id, status, title, description, category, condition, rarity,
	estimated_age, materials, suggested_price, price_range_low,
	price_range_high, confidence, keywords, seo_title, seo_description,
	image_url, final_price, reviewed_by, reviewed_at, rejection_reason,
	created_at, updated_at`

func scanDraft(row pgx.Row) (*database.AIGeneratedProduct, error) {
	var d database.AIGeneratedProduct
	err := row.Scan(
		&d.ID, &d.Status, &d.Title, &d.Description, &d.Category, &d.Condition,
		&d.Rarity, &d.EstimatedAge, &d.Materials, &d.SuggestedPrice,
		&d.PriceRangeLow, &d.PriceRangeHigh, &d.Confidence, &d.Keywords,
		&d.SEOTitle, &d.SEODescription, &d.ImageURL, &d.FinalPrice,
		&d.ReviewedBy, &d.ReviewedAt, &d.RejectionReason,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new PENDING draft. The ID is assigned here.
func (s *Store) Create(ctx context.Context, d *database.AIGeneratedProduct) error {
	d.ID = uuid.New().String()
	d.Status = database.DraftStatusPending

	_, err := s.db.Exec(ctx, `
		INSERT INTO ai_generated_products (
			id, status, title, description, category, condition, rarity,
			estimated_age, materials, suggested_price, price_range_low,
			price_range_high, confidence, keywords, seo_title,
			seo_description, image_url, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
	`, d.ID, d.Status, d.Title, d.Description, d.Category, d.Condition,
		d.Rarity, d.EstimatedAge, d.Materials, d.SuggestedPrice,
		d.PriceRangeLow, d.PriceRangeHigh, d.Confidence, d.Keywords,
		d.SEOTitle, d.SEODescription, d.ImageURL)
	if err != nil {
		return fmt.Errorf("error inserting draft: %w", err)
	}
	return nil
}

// Get returns a single draft by ID.
func (s *Store) Get(ctx context.Context, id string) (*database.AIGeneratedProduct, error) {
	d, err := scanDraft(s.db.QueryRow(ctx,
		`SELECT `+draftColumns+` FROM ai_generated_products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying draft: %w", err)
	}
	return d, nil
}

// List returns drafts filtered by status, newest first, with the total
// count for pagination. An empty status returns all drafts.
func (s *Store) List(ctx context.Context, status string, page, limit int) ([]database.AIGeneratedProduct, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int
	var rows pgx.Rows
	var err error

	if status == "" {
		err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM ai_generated_products`).Scan(&total)
		if err != nil {
			return nil, 0, fmt.Errorf("error counting drafts: %w", err)
		}
		rows, err = s.db.Query(ctx, `
			SELECT `+draftColumns+`
			FROM ai_generated_products
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`, limit, offset)
	} else {
		err = s.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM ai_generated_products WHERE status = $1`, status).Scan(&total)
		if err != nil {
			return nil, 0, fmt.Errorf("error counting drafts: %w", err)
		}
		rows, err = s.db.Query(ctx, `
			SELECT `+draftColumns+`
			FROM ai_generated_products
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, status, limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("error querying drafts: %w", err)
	}
	defer rows.Close()

	var drafts []database.AIGeneratedProduct
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning draft: %w", err)
		}
		drafts = append(drafts, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating drafts: %w", err)
	}

	return drafts, total, nil
}

// History returns decided drafts (approved or rejected), most recent
// decision first.
func (s *Store) History(ctx context.Context, page, limit int) ([]database.AIGeneratedProduct, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM ai_generated_products WHERE status != $1`,
		database.DraftStatusPending).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting history: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+draftColumns+`
		FROM ai_generated_products
		WHERE status != $1
		ORDER BY reviewed_at DESC NULLS LAST
		LIMIT $2 OFFSET $3
	`, database.DraftStatusPending, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying history: %w", err)
	}
	defer rows.Close()

	var drafts []database.AIGeneratedProduct
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning draft: %w", err)
		}
		drafts = append(drafts, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating history: %w", err)
	}

	return drafts, total, nil
}

// Approve transitions a PENDING draft to APPROVED and promotes it into
// the products catalog in the same transaction. The status guard in the
// UPDATE makes the transition a compare-and-swap: a draft decided by a
// concurrent reviewer is left untouched and ErrAlreadyDecided is
// returned. finalPrice overrides the engine's suggestion when non-nil.
func (s *Store) Approve(ctx context.Context, id string, finalPrice *float64, reviewer string) (*database.Product, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	draft, err := scanDraft(tx.QueryRow(ctx, `
		UPDATE ai_generated_products
		SET status = $2,
		    final_price = COALESCE($3, suggested_price),
		    reviewed_by = $4,
		    reviewed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND status = $5
		RETURNING `+draftColumns,
		id, database.DraftStatusApproved, finalPrice, reviewer, database.DraftStatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.decisionConflict(ctx, id)
		}
		return nil, fmt.Errorf("error approving draft: %w", err)
	}

	now := time.Now()
	sku, err := catalog.NextSKU(ctx, tx, now)
	if err != nil {
		return nil, err
	}
	slug, err := catalog.UniqueSlug(ctx, tx, draft.Title)
	if err != nil {
		return nil, err
	}

	product := &database.Product{
		ID:            uuid.New().String(),
		SKU:           sku,
		Slug:          slug,
		Title:         draft.Title,
		Description:   draft.Description,
		Category:      draft.Category,
		Condition:     draft.Condition,
		Price:         *draft.FinalPrice,
		Status:        "ACTIVE",
		SourceDraftID: &draft.ID,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO products (
			id, sku, slug, title, description, category, condition,
			price, status, source_draft_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`, product.ID, product.SKU, product.Slug, product.Title,
		product.Description, product.Category, product.Condition,
		product.Price, product.Status, product.SourceDraftID,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error promoting draft to catalog: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing approval: %w", err)
	}

	recordDecision("approved")
	return product, nil
}

// Reject transitions a PENDING draft to REJECTED with an audit reason.
// The catalog is never touched.
func (s *Store) Reject(ctx context.Context, id, reason, reviewer string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE ai_generated_products
		SET status = $2,
		    rejection_reason = $3,
		    reviewed_by = $4,
		    reviewed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND status = $5
	`, id, database.DraftStatusRejected, reason, reviewer, database.DraftStatusPending)
	if err != nil {
		return fmt.Errorf("error rejecting draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.decisionConflict(ctx, id)
	}

	recordDecision("rejected")
	return nil
}

// BulkApproveResult reports per-draft outcomes of a bulk approval.
type BulkApproveResult struct {
	Approved []database.Product `json:"approved"`
	Failed   map[string]string  `json:"failed,omitempty"` // draft ID -> reason
}

// BulkApprove approves each draft at its suggested price. Drafts that
// fail (missing, already decided) are reported individually; one bad ID
// does not abort the rest.
func (s *Store) BulkApprove(ctx context.Context, ids []string, reviewer string) (*BulkApproveResult, error) {
	result := &BulkApproveResult{Failed: make(map[string]string)}

	for _, id := range ids {
		product, err := s.Approve(ctx, id, nil, reviewer)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyDecided) {
				result.Failed[id] = err.Error()
				continue
			}
			return nil, fmt.Errorf("bulk approve aborted at draft %s: %w", id, err)
		}
		result.Approved = append(result.Approved, *product)
	}

	return result, nil
}

// decisionConflict distinguishes a missing draft from one already
// decided, after a CAS update matched no rows.
func (s *Store) decisionConflict(ctx context.Context, id string) error {
	var status string
	err := s.db.QueryRow(ctx,
		`SELECT status FROM ai_generated_products WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("error checking draft status: %w", err)
	}
	return fmt.Errorf("%w: status is %s", ErrAlreadyDecided, status)
}

package database

import (
	"time"
)

// Draft review statuses for AI-generated products.
const (
	DraftStatusPending  = "PENDING"
	DraftStatusApproved = "APPROVED"
	DraftStatusRejected = "REJECTED"
)

// AIGeneratedProduct is a machine-drafted listing awaiting admin review
type AIGeneratedProduct struct {
	ID              string     `json:"id"`              // UUID
	Status          string     `json:"status"`          // 'PENDING' | 'APPROVED' | 'REJECTED'
	Title           string     `json:"title"`           // AI-drafted listing title
	Description     string     `json:"description"`     // AI-drafted long description
	Category        string     `json:"category"`        // Marketplace category
	Condition       string     `json:"condition"`       // EXCELLENT..POOR
	Rarity          string     `json:"rarity"`          // COMMON..EXTREMELY_RARE
	EstimatedAge    *string    `json:"estimated_age"`   // Year or decade, e.g. "1960"
	Materials       *string    `json:"materials"`       // Comma-separated materials
	SuggestedPrice  float64    `json:"suggested_price"` // Engine output
	PriceRangeLow   float64    `json:"price_range_low"`
	PriceRangeHigh  float64    `json:"price_range_high"`
	Confidence      int        `json:"confidence"` // 0-100
	Keywords        []string   `json:"keywords"`   // Search keywords
	SEOTitle        *string    `json:"seo_title"`
	SEODescription  *string    `json:"seo_description"`
	ImageURL        *string    `json:"image_url"`   // Primary analysis image
	FinalPrice      *float64   `json:"final_price"` // Admin override at approval
	ReviewedBy      *string    `json:"reviewed_by"` // Admin identifier
	ReviewedAt      *time.Time `json:"reviewed_at"`
	RejectionReason *string    `json:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Product is a live catalog listing
type Product struct {
	ID            string    `json:"id"`   // UUID
	SKU           string    `json:"sku"`  // SKU-YYYY-NNN
	Slug          string    `json:"slug"` // URL slug, unique
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Condition     string    `json:"condition"`
	Price         float64   `json:"price"`           // Final listed price
	Status        string    `json:"status"`          // 'ACTIVE' | 'SOLD' | 'ARCHIVED'
	SourceDraftID *string   `json:"source_draft_id"` // FK to ai_generated_products.id
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Order statuses driven by payment webhooks. Orders are created by the
// storefront; this service only transitions their status.
const (
	OrderStatusPending  = "PENDING"
	OrderStatusPaid     = "PAID"
	OrderStatusFailed   = "FAILED"
	OrderStatusRefunded = "REFUNDED"
	OrderStatusDisputed = "DISPUTED"
)

// StripeWebhookEvent is the idempotency ledger row for a delivered event.
// Rows are never deleted; redelivery of a recorded event is a no-op.
type StripeWebhookEvent struct {
	ID            string    `json:"id"`              // UUID
	StripeEventID string    `json:"stripe_event_id"` // evt_..., unique
	EventType     string    `json:"event_type"`
	Processed     bool      `json:"processed"` // false when the handler failed
	Error         *string   `json:"error"`     // last handler error, if any
	CreatedAt     time.Time `json:"created_at"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// ComparableSale is an imported auction-house comp used as pricing evidence
type ComparableSale struct {
	ID        string     `json:"id"` // UUID
	Category  string     `json:"category"`
	Title     string     `json:"title"` // Lot title as sold
	SalePrice float64    `json:"sale_price"`
	SoldAt    *time.Time `json:"sold_at"`
	Source    string     `json:"source"` // Auction house or sheet name
	CreatedAt time.Time  `json:"created_at"`
}

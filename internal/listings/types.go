package listings

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Category classifies what a development is built for.
type Category string

const (
	CategoryResidential Category = "Residential"
	CategoryCommercial  Category = "Commercial"
	CategoryMixedUse    Category = "Mixed-Use"
)

// Status is the lifecycle stage of a development.
type Status string

const (
	StatusRunning   Status = "Running"
	StatusUpcoming  Status = "Upcoming"
	StatusCompleted Status = "Completed"
	// StatusDraft hides a listing from public readers.
	StatusDraft Status = "Draft"
)

// Direction moves a listing one slot in presentation order.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Spec is a label/value pair shown in a listing's specification table.
type Spec struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SEO carries per-listing meta overrides.
type SEO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Listing is a real-estate project record. ID is the stable slug-derived key;
// RowID is the storage primary key derived from it.
type Listing struct {
	bun.BaseModel `bun:"table:listings,alias:l" json:"-"`

	RowID          uuid.UUID `bun:"id,pk,type:uuid" json:"-"`
	ID             string    `bun:"listing_id,notnull,unique" json:"id"`
	Slug           string    `bun:"slug,notnull" json:"slug"`
	Name           string    `bun:"name,notnull" json:"name"`
	Location       string    `bun:"location" json:"location"`
	Category       Category  `bun:"category,notnull" json:"type"`
	Status         Status    `bun:"status,notnull" json:"status"`
	Summary        string    `bun:"summary" json:"description"`
	Narrative      string    `bun:"narrative" json:"longDescription"`
	HeroImageURL   string    `bun:"hero_image_url" json:"imageUrl"`
	Gallery        []string  `bun:"gallery,type:jsonb" json:"gallery"`
	Amenities      []string  `bun:"amenities,type:jsonb" json:"features"`
	Specs          []Spec    `bun:"specs,type:jsonb" json:"specs"`
	PaymentPlan    *string   `bun:"payment_plan" json:"paymentPlan,omitempty"`
	PriceRange     *string   `bun:"price_range" json:"priceRange,omitempty"`
	CompletionDate *string   `bun:"completion_date" json:"completionDate,omitempty"`
	SEO            *SEO      `bun:"seo,type:jsonb" json:"seo,omitempty"`
	DisplayOrder   int       `bun:"display_order,notnull,default:0" json:"displayOrder"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// Clone returns a deep copy of l.
func (l Listing) Clone() Listing {
	out := l
	out.Gallery = cloneStrings(l.Gallery)
	out.Amenities = cloneStrings(l.Amenities)
	if l.Specs != nil {
		out.Specs = append([]Spec(nil), l.Specs...)
	}
	out.PaymentPlan = cloneString(l.PaymentPlan)
	out.PriceRange = cloneString(l.PriceRange)
	out.CompletionDate = cloneString(l.CompletionDate)
	if l.SEO != nil {
		seo := *l.SEO
		seo.Keywords = cloneStrings(l.SEO.Keywords)
		out.SEO = &seo
	}
	return out
}

// CloneAll deep-copies a slice of listings.
func CloneAll(items []Listing) []Listing {
	if items == nil {
		return nil
	}
	out := make([]Listing, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneString(in *string) *string {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

// StringPtr is a convenience for the optional text fields.
func StringPtr(v string) *string {
	return &v
}

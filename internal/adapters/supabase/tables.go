package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/goliatone/go-estate/internal/listings"
	"github.com/goliatone/go-estate/internal/media"
	"github.com/goliatone/go-estate/internal/sitecontent"
)

const (
	listingsTable = "listings"
	mediaTable    = "media"
	contentTable  = "site_content"
)

var preferRepresentation = map[string]string{"Prefer": "return=representation"}

type listingRow struct {
	ID             string          `json:"id"`
	Slug           string          `json:"slug"`
	Name           string          `json:"name"`
	Location       string          `json:"location"`
	Category       string          `json:"category"`
	Status         string          `json:"status"`
	Summary        string          `json:"summary"`
	Narrative      string          `json:"narrative"`
	HeroImageURL   string          `json:"hero_image_url"`
	Gallery        []string        `json:"gallery"`
	Amenities      []string        `json:"amenities"`
	Specs          []listings.Spec `json:"specs"`
	PaymentPlan    *string         `json:"payment_plan"`
	PriceRange     *string         `json:"price_range"`
	CompletionDate *string         `json:"completion_date"`
	SEO            *listings.SEO   `json:"seo"`
	DisplayOrder   *int            `json:"display_order"`
	CreatedAt      *time.Time      `json:"created_at,omitempty"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"`
}

func toListingRow(l *listings.Listing) listingRow {
	order := l.DisplayOrder
	return listingRow{
		ID:             l.ID,
		Slug:           l.Slug,
		Name:           l.Name,
		Location:       l.Location,
		Category:       string(l.Category),
		Status:         string(l.Status),
		Summary:        l.Summary,
		Narrative:      l.Narrative,
		HeroImageURL:   l.HeroImageURL,
		Gallery:        l.Gallery,
		Amenities:      l.Amenities,
		Specs:          l.Specs,
		PaymentPlan:    l.PaymentPlan,
		PriceRange:     l.PriceRange,
		CompletionDate: l.CompletionDate,
		SEO:            l.SEO,
		DisplayOrder:   &order,
	}
}

// fromListingRow treats a missing display order as 0.
func fromListingRow(r listingRow) *listings.Listing {
	l := &listings.Listing{
		ID:             r.ID,
		Slug:           r.Slug,
		Name:           r.Name,
		Location:       r.Location,
		Category:       listings.Category(r.Category),
		Status:         listings.Status(r.Status),
		Summary:        r.Summary,
		Narrative:      r.Narrative,
		HeroImageURL:   r.HeroImageURL,
		Gallery:        r.Gallery,
		Amenities:      r.Amenities,
		Specs:          r.Specs,
		PaymentPlan:    r.PaymentPlan,
		PriceRange:     r.PriceRange,
		CompletionDate: r.CompletionDate,
		SEO:            r.SEO,
	}
	if r.DisplayOrder != nil {
		l.DisplayOrder = *r.DisplayOrder
	}
	if r.CreatedAt != nil {
		l.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		l.UpdatedAt = *r.UpdatedAt
	}
	return l
}

// Listings implements listings.Repository over the listings table.
type Listings struct {
	client *Client
}

var _ listings.Repository = (*Listings)(nil)

func NewListings(client *Client) *Listings {
	return &Listings{client: client}
}

func (r *Listings) List(ctx context.Context) ([]*listings.Listing, error) {
	var rows []listingRow
	if err := r.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/rest/v1/" + listingsTable,
		query:  url.Values{"select": {"*"}, "order": {"display_order.asc.nullsfirst,id.asc"}},
	}, &rows); err != nil {
		return nil, err
	}
	out := make([]*listings.Listing, len(rows))
	for i, row := range rows {
		out[i] = fromListingRow(row)
	}
	return out, nil
}

func (r *Listings) Create(ctx context.Context, l *listings.Listing) (*listings.Listing, error) {
	var rows []listingRow
	if err := r.client.do(ctx, request{
		method:  http.MethodPost,
		path:    "/rest/v1/" + listingsTable,
		body:    toListingRow(l),
		headers: preferRepresentation,
	}, &rows); err != nil {
		if isStatus(err, http.StatusConflict) {
			return nil, listings.ErrDuplicateID
		}
		return nil, err
	}
	if len(rows) == 0 {
		return l, nil
	}
	return fromListingRow(rows[0]), nil
}

func (r *Listings) Update(ctx context.Context, l *listings.Listing) (*listings.Listing, error) {
	var rows []listingRow
	if err := r.client.do(ctx, request{
		method:  http.MethodPatch,
		path:    "/rest/v1/" + listingsTable,
		query:   url.Values{"id": {eq(l.ID)}},
		body:    toListingRow(l),
		headers: preferRepresentation,
	}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &listings.NotFoundError{Resource: "listing", Key: l.ID}
	}
	return fromListingRow(rows[0]), nil
}

func (r *Listings) Delete(ctx context.Context, id string) error {
	var rows []listingRow
	if err := r.client.do(ctx, request{
		method:  http.MethodDelete,
		path:    "/rest/v1/" + listingsTable,
		query:   url.Values{"id": {eq(id)}},
		headers: preferRepresentation,
	}, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return &listings.NotFoundError{Resource: "listing", Key: id}
	}
	return nil
}

type mediaRow struct {
	ID         string     `json:"id"`
	StorageKey *string    `json:"storage_key"`
	URL        string     `json:"url"`
	Name       string     `json:"name"`
	Kind       string     `json:"type"`
	MimeType   string     `json:"mime_type"`
	Size       int64      `json:"size"`
	Tags       []string   `json:"tags"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

func toMediaRow(a *media.Asset) mediaRow {
	row := mediaRow{
		ID:       a.ID,
		URL:      a.URL,
		Name:     a.Name,
		Kind:     string(a.Kind),
		MimeType: a.MimeType,
		Size:     a.Size,
		Tags:     a.Tags,
	}
	if a.StorageKey != "" {
		key := a.StorageKey
		row.StorageKey = &key
	}
	if !a.CreatedAt.IsZero() {
		created := a.CreatedAt
		row.CreatedAt = &created
	}
	return row
}

func fromMediaRow(r mediaRow) *media.Asset {
	a := &media.Asset{
		ID:       r.ID,
		URL:      r.URL,
		Name:     r.Name,
		Kind:     media.Kind(r.Kind),
		MimeType: r.MimeType,
		Size:     r.Size,
		Tags:     r.Tags,
	}
	if r.StorageKey != nil {
		a.StorageKey = *r.StorageKey
	}
	if a.Kind == "" {
		a.Kind = media.InferKind(r.MimeType, r.URL)
	}
	if r.CreatedAt != nil {
		a.CreatedAt = *r.CreatedAt
	}
	return a
}

// Media implements media.Repository over the media table.
type Media struct {
	client *Client
}

var _ media.Repository = (*Media)(nil)

func NewMedia(client *Client) *Media {
	return &Media{client: client}
}

func (r *Media) List(ctx context.Context) ([]*media.Asset, error) {
	var rows []mediaRow
	if err := r.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/rest/v1/" + mediaTable,
		query:  url.Values{"select": {"*"}, "order": {"created_at.desc,id.asc"}},
	}, &rows); err != nil {
		return nil, err
	}
	out := make([]*media.Asset, len(rows))
	for i, row := range rows {
		out[i] = fromMediaRow(row)
	}
	return out, nil
}

func (r *Media) Create(ctx context.Context, a *media.Asset) (*media.Asset, error) {
	var rows []mediaRow
	if err := r.client.do(ctx, request{
		method:  http.MethodPost,
		path:    "/rest/v1/" + mediaTable,
		body:    toMediaRow(a),
		headers: preferRepresentation,
	}, &rows); err != nil {
		if isStatus(err, http.StatusConflict) {
			return nil, media.ErrDuplicateID
		}
		return nil, err
	}
	if len(rows) == 0 {
		return a, nil
	}
	return fromMediaRow(rows[0]), nil
}

func (r *Media) Update(ctx context.Context, a *media.Asset) (*media.Asset, error) {
	var rows []mediaRow
	if err := r.client.do(ctx, request{
		method:  http.MethodPatch,
		path:    "/rest/v1/" + mediaTable,
		query:   url.Values{"id": {eq(a.ID)}},
		body:    toMediaRow(a),
		headers: preferRepresentation,
	}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &media.NotFoundError{Resource: "media", Key: a.ID}
	}
	return fromMediaRow(rows[0]), nil
}

func (r *Media) Delete(ctx context.Context, id string) error {
	var rows []mediaRow
	if err := r.client.do(ctx, request{
		method:  http.MethodDelete,
		path:    "/rest/v1/" + mediaTable,
		query:   url.Values{"id": {eq(id)}},
		headers: preferRepresentation,
	}, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return &media.NotFoundError{Resource: "media", Key: id}
	}
	return nil
}

// SiteContent implements sitecontent.Repository over a key/document table.
type SiteContent struct {
	client *Client
}

var _ sitecontent.Repository = (*SiteContent)(nil)

func NewSiteContent(client *Client) *SiteContent {
	return &SiteContent{client: client}
}

type contentRow struct {
	Key       string          `json:"key"`
	Document  json.RawMessage `json:"document"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (r *SiteContent) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var rows []contentRow
	if err := r.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/rest/v1/" + contentTable,
		query:  url.Values{"select": {"key,document"}, "key": {eq(key)}, "limit": {"1"}},
	}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0].Document) == 0 || string(rows[0].Document) == "null" {
		return nil, sitecontent.ErrDocumentNotFound
	}
	return rows[0].Document, nil
}

// Upsert writes the document under key, replacing any existing row.
func (r *SiteContent) Upsert(ctx context.Context, key string, doc json.RawMessage) error {
	if key == "" {
		return sitecontent.ErrKeyRequired
	}
	return r.client.do(ctx, request{
		method:  http.MethodPost,
		path:    "/rest/v1/" + contentTable,
		query:   url.Values{"on_conflict": {"key"}},
		body:    contentRow{Key: key, Document: doc, UpdatedAt: time.Now().UTC()},
		headers: map[string]string{"Prefer": "resolution=merge-duplicates"},
	}, nil)
}

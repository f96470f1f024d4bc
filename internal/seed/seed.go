// Package seed ships the catalogue a fresh deployment starts from. Each
// listing is a Markdown file: the front matter carries the structured fields
// and the body is the long narrative.
package seed

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-estate/internal/identity"
	"github.com/goliatone/go-estate/internal/listings"
)

//go:embed data/listings/*.md
var files embed.FS

const listingsDir = "data/listings"

type listingFrontMatter struct {
	ID             string          `yaml:"id"`
	Name           string          `yaml:"name"`
	Slug           string          `yaml:"slug"`
	Location       string          `yaml:"location"`
	Category       string          `yaml:"category"`
	Status         string          `yaml:"status"`
	Summary        string          `yaml:"summary"`
	HeroImage      string          `yaml:"hero_image"`
	Gallery        []string        `yaml:"gallery"`
	Amenities      []string        `yaml:"amenities"`
	Specs          []specEntry     `yaml:"specs"`
	PaymentPlan    string          `yaml:"payment_plan"`
	PriceRange     string          `yaml:"price_range"`
	CompletionDate string          `yaml:"completion_date"`
	SEO            *seoFrontMatter `yaml:"seo"`
}

type specEntry struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

type seoFrontMatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
}

// Listings returns the seed catalogue in file order with dense display
// orders. Every entry passes listing validation.
func Listings() ([]listings.Listing, error) {
	return parseDir(files, listingsDir)
}

// MustListings panics when the embedded catalogue is broken.
func MustListings() []listings.Listing {
	items, err := Listings()
	if err != nil {
		panic(err)
	}
	return items
}

func parseDir(fsys fs.FS, dir string) ([]listings.Listing, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)

	out := make([]listings.Listing, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		source, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("seed: read %s: %w", name, err)
		}
		listing, err := ParseListing(source)
		if err != nil {
			return nil, fmt.Errorf("seed: %s: %w", name, err)
		}
		if _, dup := seen[listing.ID]; dup {
			return nil, fmt.Errorf("seed: %s: %w: %s", name, listings.ErrDuplicateID, listing.ID)
		}
		seen[listing.ID] = struct{}{}
		listing.DisplayOrder = i
		out = append(out, listing)
	}
	return out, nil
}

// ParseListing decodes one Markdown listing. A missing id is derived from the
// slug or name the same way the listing store derives it.
func ParseListing(source []byte) (listings.Listing, error) {
	var meta listingFrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return listings.Listing{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	id := identity.Slugify(meta.ID)
	if id == "" {
		id = identity.Slugify(meta.Slug)
	}
	if id == "" {
		id = identity.Slugify(meta.Name)
	}
	if id == "" {
		return listings.Listing{}, listings.ErrIDRequired
	}
	slug := identity.Slugify(meta.Slug)
	if slug == "" {
		slug = id
	}

	listing := listings.Listing{
		ID:             id,
		Slug:           slug,
		Name:           strings.TrimSpace(meta.Name),
		Location:       meta.Location,
		Category:       listings.Category(meta.Category),
		Status:         listings.Status(meta.Status),
		Summary:        meta.Summary,
		Narrative:      strings.Join(strings.Fields(string(body)), " "),
		HeroImageURL:   meta.HeroImage,
		Gallery:        meta.Gallery,
		Amenities:      meta.Amenities,
		PaymentPlan:    optional(meta.PaymentPlan),
		PriceRange:     optional(meta.PriceRange),
		CompletionDate: optional(meta.CompletionDate),
	}
	for _, spec := range meta.Specs {
		listing.Specs = append(listing.Specs, listings.Spec{Label: spec.Label, Value: spec.Value})
	}
	if meta.SEO != nil {
		listing.SEO = &listings.SEO{
			Title:       meta.SEO.Title,
			Description: meta.SEO.Description,
			Keywords:    meta.SEO.Keywords,
		}
	}
	if err := listing.Validate(); err != nil {
		return listings.Listing{}, err
	}
	return listing, nil
}

func optional(v string) *string {
	if v = strings.TrimSpace(v); v == "" {
		return nil
	}
	return &v
}

package seed

import (
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-estate/internal/listings"
)

func TestListingsCatalogue(t *testing.T) {
	items, err := Listings()
	if err != nil {
		t.Fatalf("Listings: %v", err)
	}
	want := []string{"ali-arcade-1", "ali-arcade-2", "ali-arcade-3", "al-kauser-residency"}
	if len(items) != len(want) {
		t.Fatalf("expected %d listings, got %d", len(want), len(items))
	}
	for i, id := range want {
		if items[i].ID != id || items[i].DisplayOrder != i {
			t.Fatalf("item %d: got %s/%d", i, items[i].ID, items[i].DisplayOrder)
		}
		if items[i].Location != "Karachi, Sindh" {
			t.Fatalf("item %d: unexpected location %q", i, items[i].Location)
		}
	}
	if !listings.IsDense(items) {
		t.Fatalf("expected dense display orders")
	}

	arcade3 := items[2]
	if arcade3.Status != listings.StatusRunning || arcade3.Category != listings.CategoryMixedUse {
		t.Fatalf("unexpected enum values %s/%s", arcade3.Status, arcade3.Category)
	}
	if len(arcade3.Specs) != 3 || arcade3.Specs[2].Value != "2025" {
		t.Fatalf("unexpected specs %+v", arcade3.Specs)
	}
	if arcade3.PaymentPlan == nil || *arcade3.PaymentPlan != "20% Booking, Easy 3-Year Installment Plan." {
		t.Fatalf("unexpected payment plan %v", arcade3.PaymentPlan)
	}
	if arcade3.PriceRange != nil {
		t.Fatalf("expected absent price range")
	}
	if arcade3.Narrative == "" || arcade3.Narrative[:16] != "Ali Arcade 3 rep" {
		t.Fatalf("unexpected narrative %q", arcade3.Narrative)
	}
}

func TestParseListingDerivesID(t *testing.T) {
	src := []byte("---\nname: Sea View Towers\ncategory: Residential\nstatus: Upcoming\n---\nBody text.\n")
	l, err := ParseListing(src)
	if err != nil {
		t.Fatalf("ParseListing: %v", err)
	}
	if l.ID != "sea-view-towers" || l.Slug != "sea-view-towers" || l.Narrative != "Body text." {
		t.Fatalf("unexpected listing %+v", l)
	}
}

func TestParseListingRejectsInvalid(t *testing.T) {
	src := []byte("---\nname: Broken\ncategory: Industrial\nstatus: Running\n---\n")
	if _, err := ParseListing(src); err == nil {
		t.Fatalf("expected validation error for unknown category")
	}
}

func TestParseDirRejectsDuplicates(t *testing.T) {
	doc := []byte("---\nid: twin\nname: Twin\ncategory: Commercial\nstatus: Running\n---\n")
	fsys := fstest.MapFS{
		"seed/a.md": {Data: doc},
		"seed/b.md": {Data: doc},
	}
	if _, err := parseDir(fsys, "seed"); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

package listings

import (
	"errors"
	"math/rand/v2"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func sample(id string, order int) Listing {
	return Listing{
		ID:           id,
		Slug:         id,
		Name:         "Listing " + id,
		Category:     CategoryResidential,
		Status:       StatusRunning,
		DisplayOrder: order,
	}
}

func ids(items []Listing) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortForPresentationBreaksTiesByID(t *testing.T) {
	items := []Listing{sample("c", 1), sample("b", 0), sample("a", 1), sample("d", 0)}
	SortForPresentation(items)

	want := []string{"b", "d", "a", "c"}
	if got := ids(items); !equalStrings(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	shuffled := []Listing{sample("a", 1), sample("d", 0), sample("c", 1), sample("b", 0)}
	SortForPresentation(shuffled)
	if got := ids(shuffled); !equalStrings(got, want) {
		t.Fatalf("expected order independent of input, got %v", got)
	}
}

func TestMoveIsNoOpAtBoundaries(t *testing.T) {
	items := []Listing{sample("a", 0), sample("b", 1), sample("c", 2)}

	if _, moved := Move(items, "a", DirectionUp); moved {
		t.Fatalf("expected first item up to be a no-op")
	}
	if _, moved := Move(items, "c", DirectionDown); moved {
		t.Fatalf("expected last item down to be a no-op")
	}
	if _, moved := Move(items, "missing", DirectionDown); moved {
		t.Fatalf("expected unknown id to be a no-op")
	}
}

func TestMoveSwapsAndRenumbers(t *testing.T) {
	items := []Listing{sample("a", 0), sample("b", 4), sample("c", 9)}
	out, moved := Move(items, "c", DirectionUp)
	if !moved {
		t.Fatalf("expected move")
	}
	if got := ids(out); !equalStrings(got, []string{"a", "c", "b"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if !IsDense(out) {
		t.Fatalf("expected dense orders, got %+v", out)
	}
	if items[2].ID != "c" || items[2].DisplayOrder != 9 {
		t.Fatalf("expected input untouched")
	}
}

func TestMoveKeepsDensePermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 50; round++ {
		n := 1 + rng.IntN(8)
		items := make([]Listing, n)
		for i, p := range rng.Perm(n) {
			items[i] = sample(string(rune('a'+i)), p)
		}
		SortForPresentation(items)
		Renumber(items)

		for step := 0; step < 20; step++ {
			target := items[rng.IntN(n)].ID
			dir := DirectionUp
			if rng.IntN(2) == 1 {
				dir = DirectionDown
			}
			items, _ = Move(items, target, dir)

			seen := make(map[int]bool, n)
			for _, item := range items {
				if item.DisplayOrder < 0 || item.DisplayOrder >= n || seen[item.DisplayOrder] {
					t.Fatalf("round %d step %d: orders not a permutation: %+v", round, step, items)
				}
				seen[item.DisplayOrder] = true
			}
		}
	}
}

func TestNextDisplayOrder(t *testing.T) {
	if got := NextDisplayOrder(nil); got != 0 {
		t.Fatalf("expected 0 for empty collection, got %d", got)
	}
	if got := NextDisplayOrder([]Listing{sample("a", 0), sample("b", 5)}); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
}

func TestPublishedHidesDrafts(t *testing.T) {
	draft := sample("b", 1)
	draft.Status = StatusDraft
	got := Published([]Listing{sample("a", 0), draft, sample("c", 2)})
	if !equalStrings(ids(got), []string{"a", "c"}) {
		t.Fatalf("expected drafts hidden, got %v", ids(got))
	}
}

func TestValidateRejectsBadFields(t *testing.T) {
	cases := map[string]func(*Listing){
		"blank name":     func(l *Listing) { l.Name = "  " },
		"bad category":   func(l *Listing) { l.Category = "Industrial" },
		"bad status":     func(l *Listing) { l.Status = "Sold" },
		"negative order": func(l *Listing) { l.DisplayOrder = -1 },
		"spec label":     func(l *Listing) { l.Specs = []Spec{{Value: "12"}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			l := sample("a", 0)
			mutate(&l)
			err := l.Validate()
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected validation.Errors, got %v", err)
			}
		})
	}

	if err := sample("a", 0).Validate(); err != nil {
		t.Fatalf("expected valid listing, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	l := sample("a", 0)
	l.Gallery = []string{"one"}
	l.SEO = &SEO{Keywords: []string{"k"}}
	l.PaymentPlan = StringPtr("20% down")

	c := l.Clone()
	c.Gallery[0] = "two"
	c.SEO.Keywords[0] = "x"
	*c.PaymentPlan = "changed"

	if l.Gallery[0] != "one" || l.SEO.Keywords[0] != "k" || *l.PaymentPlan != "20% down" {
		t.Fatalf("clone shares memory with original: %+v", l)
	}
}

package sitecontent

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-estate/pkg/testsupport"
)

func strPtr(v string) *string { return &v }

func TestMergeWithDefaultsFillsMissingSection(t *testing.T) {
	doc := Document{
		Home: &HomeDocument{HeroTitle: strPtr("New Title")},
	}
	merged := MergeWithDefaults(doc)
	defaults := Defaults()

	if !reflect.DeepEqual(merged.Contact, defaults.Contact) {
		t.Fatalf("expected contact to equal defaults, got %+v", merged.Contact)
	}
	if merged.Home.HeroTitle != "New Title" {
		t.Fatalf("expected hero title override, got %q", merged.Home.HeroTitle)
	}
	if merged.Home.HeroSubtitle != defaults.Home.HeroSubtitle {
		t.Fatalf("expected missing leaf to keep default")
	}
}

func TestMergeWithDefaultsReplacesLeavesWhole(t *testing.T) {
	doc := Document{
		Home: &HomeDocument{
			Highlights: []Highlight{{Label: "Towers", Value: "3"}},
			SEO:        &SEO{Title: "Only title"},
		},
		Global: &GlobalDocument{Navigation: []NavLink{}},
		Contact: &ContactDocument{
			Phone: strPtr(""),
		},
	}
	merged := MergeWithDefaults(doc)

	if len(merged.Home.Highlights) != 1 || merged.Home.Highlights[0].Label != "Towers" {
		t.Fatalf("expected highlights replaced whole, got %+v", merged.Home.Highlights)
	}
	if merged.Home.SEO.Description != "" || len(merged.Home.SEO.Keywords) != 0 {
		t.Fatalf("expected SEO leaf replaced whole, got %+v", merged.Home.SEO)
	}
	if merged.Global.Navigation == nil || len(merged.Global.Navigation) != 0 {
		t.Fatalf("expected explicit empty navigation, got %+v", merged.Global.Navigation)
	}
	if merged.Contact.Phone != "" {
		t.Fatalf("expected explicit empty phone to win, got %q", merged.Contact.Phone)
	}
}

func TestMergeWithDefaultsDoesNotAliasInput(t *testing.T) {
	highlights := []Highlight{{Label: "A", Value: "1"}}
	merged := MergeWithDefaults(Document{Home: &HomeDocument{Highlights: highlights}})
	highlights[0].Label = "mutated"
	if merged.Home.Highlights[0].Label != "A" {
		t.Fatalf("expected merge result to be independent of input")
	}
}

func TestMergeAcceptsLegacyChairmanMessage(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"about":{"chairmanMessage":"legacy"}}`))
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if got := MergeWithDefaults(doc).About.FounderMessage; got != "legacy" {
		t.Fatalf("expected legacy message, got %q", got)
	}

	doc, _ = DecodeDocument([]byte(`{"about":{"chairmanMessage":"legacy","founderMessage":"current"}}`))
	if got := MergeWithDefaults(doc).About.FounderMessage; got != "current" {
		t.Fatalf("expected founder message to win, got %q", got)
	}
}

func TestDecodeDocumentRejectsWrongShape(t *testing.T) {
	_, err := DecodeDocument([]byte(`{"home":{"heroTitle":42}}`))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if !errors.Is(err, ErrDocumentMalformed) {
		t.Fatalf("expected schema error to unwrap to ErrDocumentMalformed")
	}
	if len(schemaErr.Issues) == 0 || !strings.Contains(schemaErr.Issues[0], "/home/heroTitle") {
		t.Fatalf("expected issue location, got %v", schemaErr.Issues)
	}

	if _, err := DecodeDocument([]byte(`{not json`)); !errors.Is(err, ErrDocumentMalformed) {
		t.Fatalf("expected ErrDocumentMalformed for bad json, got %v", err)
	}
}

func TestDefaultsRoundTripThroughDocument(t *testing.T) {
	raw, err := json.Marshal(Defaults())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	doc, err := DecodeDocument(raw)
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if !reflect.DeepEqual(MergeWithDefaults(doc), Defaults()) {
		t.Fatalf("expected defaults to survive a save/load cycle")
	}
}

func TestStoreLoadMissingDocumentYieldsDefaults(t *testing.T) {
	store, _ := NewStore(NewMemoryRepository())
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, Defaults()) {
		t.Fatalf("expected defaults")
	}
}

func TestStoreLoadInvalidSectionKeepsValidSections(t *testing.T) {
	repo := NewMemoryRepository()
	_ = repo.Upsert(context.Background(), DefaultKey, json.RawMessage(`{"home":{"heroTitle":"Custom Title"},"contact":"not an object"}`))
	store, _ := NewStore(repo)

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Contact, Defaults().Contact) {
		t.Fatalf("expected default contact section")
	}
	if got.Home.HeroTitle != "Custom Title" {
		t.Fatalf("expected valid home override to survive, got %q", got.Home.HeroTitle)
	}
}

func TestStoreLoadTreatsNullLeavesAsAbsent(t *testing.T) {
	repo := NewMemoryRepository()
	raw := `{"home":{"heroTitle":"Custom Title","heroSubtitle":null},"contact":{"phone":null},"about":null}`
	_ = repo.Upsert(context.Background(), DefaultKey, json.RawMessage(raw))
	store, _ := NewStore(repo)

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defaults := Defaults()
	if got.Home.HeroTitle != "Custom Title" {
		t.Fatalf("expected custom hero title, got %q", got.Home.HeroTitle)
	}
	if got.Home.HeroSubtitle != defaults.Home.HeroSubtitle {
		t.Fatalf("expected null subtitle to take the default, got %q", got.Home.HeroSubtitle)
	}
	if got.Contact.Phone != defaults.Contact.Phone {
		t.Fatalf("expected null phone to take the default, got %q", got.Contact.Phone)
	}
	if !reflect.DeepEqual(got.About, defaults.About) {
		t.Fatalf("expected null about section to take the defaults")
	}
}

func TestDecodeDocumentReportsDroppedSections(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"global":{"siteName":"Estate"},"home":{"heroTitle":42},"contact":{"phone":[1]}}`))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if !reflect.DeepEqual(schemaErr.Sections, []string{"contact", "home"}) {
		t.Fatalf("expected contact and home to be dropped, got %v", schemaErr.Sections)
	}
	if doc.Home != nil || doc.Contact != nil {
		t.Fatalf("expected invalid sections to be absent from the document")
	}
	if doc.Global == nil || doc.Global.SiteName == nil || *doc.Global.SiteName != "Estate" {
		t.Fatalf("expected valid global section to decode, got %+v", doc.Global)
	}

	if _, err := DecodeDocument([]byte(`[]`)); !errors.As(err, &schemaErr) {
		t.Fatalf("expected root type mismatch to be a schema error, got %v", err)
	}
}

type failingRepo struct {
	getErr    error
	upsertErr error
}

func (f failingRepo) Get(context.Context, string) (json.RawMessage, error) { return nil, f.getErr }
func (f failingRepo) Upsert(context.Context, string, json.RawMessage) error {
	return f.upsertErr
}

func TestStoreLoadTransportErrorKeepsLocalState(t *testing.T) {
	store, _ := NewStore(failingRepo{getErr: errors.New("timeout")})
	got, err := store.Load(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !reflect.DeepEqual(got, Defaults()) {
		t.Fatalf("expected defaults to remain")
	}
}

func TestStoreUpdateIsOptimisticWithoutRollback(t *testing.T) {
	store, _ := NewStore(failingRepo{upsertErr: errors.New("offline")})
	edited := Defaults()
	edited.Home.HeroTitle = "Edited"

	if err := store.Update(context.Background(), edited); err == nil {
		t.Fatal("expected update error")
	}
	if store.Current().Home.HeroTitle != "Edited" {
		t.Fatalf("expected local edit to stay after failed save")
	}
}

func TestStoreUpdateRollsBackWhenEnabled(t *testing.T) {
	store, _ := NewStore(failingRepo{upsertErr: errors.New("offline")}, WithRollbackOnFailure(true))
	edited := Defaults()
	edited.Home.HeroTitle = "Edited"

	if err := store.Update(context.Background(), edited); err == nil {
		t.Fatal("expected update error")
	}
	if store.Current().Home.HeroTitle != Defaults().Home.HeroTitle {
		t.Fatalf("expected rollback to previous document")
	}
}

func TestStoreUpdateOverwritesSingleton(t *testing.T) {
	repo := NewMemoryRepository()
	store, _ := NewStore(repo, WithKey("landing"))
	ctx := context.Background()

	first := Defaults()
	first.Contact.Phone = "111"
	second := Defaults()
	second.Contact.Phone = "222"
	if err := store.Update(ctx, first); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := store.Update(ctx, second); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(repo.docs) != 1 {
		t.Fatalf("expected a single stored document, got %d", len(repo.docs))
	}

	reloaded, _ := NewStore(repo, WithKey("landing"))
	got, err := reloaded.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Contact.Phone != "222" {
		t.Fatalf("expected last write to win, got %q", got.Contact.Phone)
	}
}

type blockingRepo struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (b *blockingRepo) Get(ctx context.Context, key string) (json.RawMessage, error) {
	b.mu.Lock()
	b.calls++
	call := b.calls
	b.mu.Unlock()
	if call == 1 {
		close(b.entered)
		<-b.release
		return json.RawMessage(`{"home":{"heroTitle":"stale"}}`), nil
	}
	return json.RawMessage(`{"home":{"heroTitle":"fresh"}}`), nil
}

func (b *blockingRepo) Upsert(context.Context, string, json.RawMessage) error { return nil }

func TestStoreDiscardsStaleLoad(t *testing.T) {
	repo := &blockingRepo{entered: make(chan struct{}), release: make(chan struct{})}
	store, _ := NewStore(repo)
	ctx := context.Background()

	done := make(chan SiteContent)
	go func() {
		got, _ := store.Load(ctx)
		done <- got
	}()
	<-repo.entered

	if got, _ := store.Load(ctx); got.Home.HeroTitle != "fresh" {
		t.Fatalf("expected fresh load, got %q", got.Home.HeroTitle)
	}
	close(repo.release)
	<-done

	if store.Current().Home.HeroTitle != "fresh" {
		t.Fatalf("expected stale load to be discarded, got %q", store.Current().Home.HeroTitle)
	}
}

func TestBunRepositoryUpsertAndGet(t *testing.T) {
	repo := NewBunRepository(testsupport.NewBunDB(t))
	ctx := context.Background()
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	if _, err := repo.Get(ctx, "site"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := repo.Upsert(ctx, "site", json.RawMessage(`{"home":{"heroTitle":"one"}}`)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(ctx, "site", json.RawMessage(`{"home":{"heroTitle":"two"}}`)); err != nil {
		t.Fatalf("Upsert overwrite: %v", err)
	}

	store, _ := NewStore(repo)
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Home.HeroTitle != "two" {
		t.Fatalf("expected overwritten document, got %q", got.Home.HeroTitle)
	}
}

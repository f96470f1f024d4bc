package admincmd

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goliatone/go-command/dispatcher"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-estate/internal/commands"
	"github.com/goliatone/go-estate/internal/listings"
	"github.com/goliatone/go-estate/internal/media"
	"github.com/goliatone/go-estate/internal/session"
	"github.com/goliatone/go-estate/internal/sitecontent"
	"github.com/goliatone/go-estate/internal/sitedata"
)

type stubProvider struct {
	mu         sync.Mutex
	calls      []string
	admin      bool
	loginErr   error
	reorderErr error
	results    []media.UploadResult
	content    sitecontent.SiteContent
}

func (s *stubProvider) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *stubProvider) Login(_ context.Context, email, _ string) error {
	s.record("login:" + email)
	return s.loginErr
}

func (s *stubProvider) Logout(context.Context) { s.record("logout") }

func (s *stubProvider) Refresh(context.Context) error {
	s.record("refresh")
	return nil
}

func (s *stubProvider) CreateProject(_ context.Context, draft listings.Listing) (listings.Listing, error) {
	s.record("create")
	if !s.admin {
		return listings.Listing{}, sitedata.ErrNotPrivileged
	}
	draft.ID = "sea-view"
	return draft, nil
}

func (s *stubProvider) UpdateProject(_ context.Context, id string, l listings.Listing) (listings.Listing, error) {
	s.record("update:" + id)
	l.ID = id
	return l, nil
}

func (s *stubProvider) DeleteProject(_ context.Context, id string) error {
	s.record("delete:" + id)
	return &listings.NotFoundError{Resource: "listing", Key: id}
}

func (s *stubProvider) ReorderProject(_ context.Context, id string, dir listings.Direction) ([]listings.Listing, error) {
	s.record("reorder:" + id + ":" + string(dir))
	return nil, s.reorderErr
}

func (s *stubProvider) NormalizeProjectOrder(context.Context) ([]listings.Listing, error) {
	s.record("normalize")
	return nil, nil
}

func (s *stubProvider) UploadMediaBatch(_ context.Context, files []media.UploadFile, progress func(done, total int)) ([]media.UploadResult, error) {
	s.record("upload_batch")
	for i := range files {
		if progress != nil {
			progress(i+1, len(files))
		}
	}
	return s.results, nil
}

func (s *stubProvider) RegisterMediaURL(_ context.Context, url, _ string, _ []string) (*media.Asset, error) {
	s.record("register:" + url)
	return &media.Asset{ID: "ext_1", URL: url}, nil
}

func (s *stubProvider) DeleteMedia(_ context.Context, id, _ string) error {
	s.record("delete_media:" + id)
	return nil
}

func (s *stubProvider) SetSiteContent(_ context.Context, content sitecontent.SiteContent) error {
	s.record("content")
	s.content = content
	return nil
}

var _ Provider = (*stubProvider)(nil)

func TestSignInValidationSkipsProvider(t *testing.T) {
	stub := &stubProvider{}
	h := NewSignInHandler(stub, nil)

	err := h.Execute(context.Background(), SignInCommand{Email: "not-an-email", Password: "x"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(stub.calls) != 0 {
		t.Fatalf("expected no provider calls, got %v", stub.calls)
	}
}

func TestSignInFailureIsAuthCategory(t *testing.T) {
	stub := &stubProvider{loginErr: &session.AuthError{Message: "Invalid login credentials"}}
	err := NewSignInHandler(stub, nil).Execute(context.Background(), SignInCommand{Email: "staff@example.com", Password: "nope"})
	if !goerrors.IsCategory(err, goerrors.CategoryAuth) {
		t.Fatalf("expected auth category, got %v", err)
	}
	var authErr *session.AuthError
	if !errors.As(err, &authErr) || authErr.Message != "Invalid login credentials" {
		t.Fatalf("expected backend message to survive, got %v", err)
	}
}

func TestSaveListingCreatesOrUpdates(t *testing.T) {
	stub := &stubProvider{admin: true}
	h := NewSaveListingHandler(stub, nil)
	draft := listings.Listing{Name: "Sea View", Category: listings.CategoryResidential, Status: listings.StatusUpcoming}

	var saved listings.Listing
	if err := h.Execute(context.Background(), SaveListingCommand{Listing: draft, Result: func(l listings.Listing) { saved = l }}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if saved.ID != "sea-view" {
		t.Fatalf("expected result callback with stored listing, got %+v", saved)
	}
	if err := h.Execute(context.Background(), SaveListingCommand{ID: "sea-view", Listing: draft}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if stub.calls[0] != "create" || stub.calls[1] != "update:sea-view" {
		t.Fatalf("unexpected calls %v", stub.calls)
	}

	draft.ID = "other"
	err := h.Execute(context.Background(), SaveListingCommand{ID: "sea-view", Listing: draft})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for id change, got %v", err)
	}
}

func TestSaveListingRequiresPrivilege(t *testing.T) {
	stub := &stubProvider{}
	draft := listings.Listing{Name: "Sea View", Category: listings.CategoryResidential, Status: listings.StatusUpcoming}
	err := NewSaveListingHandler(stub, nil).Execute(context.Background(), SaveListingCommand{Listing: draft})
	if !goerrors.IsCategory(err, goerrors.CategoryAuth) {
		t.Fatalf("expected auth category, got %v", err)
	}
}

func TestReorderValidationAndConflict(t *testing.T) {
	stub := &stubProvider{reorderErr: listings.ErrReorderInProgress}
	h := NewReorderListingHandler(stub, nil)

	if err := h.Execute(context.Background(), ReorderListingCommand{ID: "a", Direction: "sideways"}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	err := h.Execute(context.Background(), ReorderListingCommand{ID: "a", Direction: listings.DirectionUp})
	if !goerrors.IsCategory(err, goerrors.CategoryConflict) {
		t.Fatalf("expected conflict category, got %v", err)
	}
}

func TestDeleteListingNotFound(t *testing.T) {
	err := NewDeleteListingHandler(&stubProvider{}, nil).Execute(context.Background(), DeleteListingCommand{ID: "ghost"})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
}

func TestUploadBatchReportsPartialFailure(t *testing.T) {
	stub := &stubProvider{results: []media.UploadResult{
		{Name: "a.png", Asset: &media.Asset{ID: "1_a.png"}},
		{Name: "b.txt", Err: &media.ValidationError{Field: "type", Reason: media.ErrTypeNotAllowed}},
	}}
	var (
		progress []int
		results  []media.UploadResult
	)
	cmd := UploadBatchCommand{
		Files: []media.UploadFile{
			{Name: "a.png", Body: bytes.NewReader([]byte("a"))},
			{Name: "b.txt", Body: bytes.NewReader([]byte("b"))},
		},
		Progress: func(done, _ int) { progress = append(progress, done) },
		Results:  func(r []media.UploadResult) { results = r },
	}
	err := NewUploadBatchHandler(stub, nil).Execute(context.Background(), cmd)
	if !goerrors.IsCategory(err, goerrors.CategoryConflict) {
		t.Fatalf("expected partial failure conflict, got %v", err)
	}
	var batchErr *BatchError
	if !errors.As(err, &batchErr) || len(batchErr.Failed) != 1 || batchErr.Failed[0].Name != "b.txt" {
		t.Fatalf("expected BatchError naming b.txt, got %v", err)
	}
	if len(progress) != 2 || len(results) != 2 {
		t.Fatalf("expected progress and results callbacks, got %v %d", progress, len(results))
	}

	if err := NewUploadBatchHandler(stub, nil).Execute(context.Background(), UploadBatchCommand{}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for empty batch, got %v", err)
	}
}

func TestRegisterURLAndContentValidation(t *testing.T) {
	stub := &stubProvider{}
	if err := NewRegisterURLHandler(stub, nil).Execute(context.Background(), RegisterURLCommand{URL: "not a url"}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := NewRegisterURLHandler(stub, nil).Execute(context.Background(), RegisterURLCommand{URL: "https://example.com/a.jpg"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	content := sitecontent.Defaults()
	content.Home.HeroTitle = ""
	if err := NewSaveContentHandler(stub, nil).Execute(context.Background(), SaveContentCommand{Content: content}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := NewSaveContentHandler(stub, nil).Execute(context.Background(), SaveContentCommand{Content: sitecontent.Defaults()}); err != nil {
		t.Fatalf("save content: %v", err)
	}
}

func TestDispatcherRoutesAdminCommands(t *testing.T) {
	stub := &stubProvider{}
	sub := dispatcher.SubscribeCommand(NewDeleteMediaHandler(stub, nil, commands.WithOperation[DeleteMediaCommand]("media.delete.dispatch")))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), DeleteMediaCommand{ID: "1_a.png"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(stub.calls) != 1 || stub.calls[0] != "delete_media:1_a.png" {
		t.Fatalf("unexpected calls %v", stub.calls)
	}
}

package usecase

import (
	"context"
	"fmt"
	"sync"

	"mx-social/domain/dto"
	"mx-social/domain/model"
)

// fakeAdapter scripts adapter behavior for use case tests.
type fakeAdapter struct {
	redirectURL string
	authState   *model.AuthState

	exchangedCodes     []string
	exchangedVerifiers []string
	exchangeErr        error
	token              *dto.TokenResponse

	refreshResult *dto.TokenResult
	refreshErr    error

	completed   int
	saveResult  *dto.SaveResult
	sendResult  *dto.PublishResult
	sendCalls   int
	activity    *dto.ActivityResult
	activityErr error
}

func (f *fakeAdapter) AuthRedirect(_ *model.MediaPlatform) (string, *model.AuthState, error) {
	return f.redirectURL, f.authState, nil
}

func (f *fakeAdapter) ExchangeCode(_ context.Context, code, codeVerifier string, _ *model.MediaPlatform) (*dto.TokenResponse, error) {
	f.exchangedCodes = append(f.exchangedCodes, code)
	f.exchangedVerifiers = append(f.exchangedVerifiers, codeVerifier)
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.token, nil
}

func (f *fakeAdapter) RefreshAccessToken(_ context.Context, _ *model.MediaPlatform, _ string) (*dto.TokenResult, error) {
	return f.refreshResult, f.refreshErr
}

func (f *fakeAdapter) GetAccount(_ context.Context, _ string, _ *model.MediaPlatform) (*dto.ProfileResult, error) {
	return &dto.ProfileResult{StatusCode: 200}, nil
}

func (f *fakeAdapter) CompleteConnection(_ context.Context, _ *dto.TokenResponse, _ string, _ *model.MediaPlatform, _, _ string, _ *int64) (*dto.SaveResult, error) {
	f.completed++
	return f.saveResult, nil
}

func (f *fakeAdapter) Send(_ context.Context, _ *model.SocialPost) *dto.PublishResult {
	f.sendCalls++
	return f.sendResult
}

func (f *fakeAdapter) AccountDetails(_ context.Context, _ *model.SocialAccount) *dto.ActivityResult {
	return f.activity
}

// fakePlatformCatalog serves a fixed platform list.
type fakePlatformCatalog struct {
	platforms []*model.MediaPlatform
}

func (f *fakePlatformCatalog) GetBySlug(_ context.Context, slug string) (*model.MediaPlatform, error) {
	for _, p := range f.platforms {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, fmt.Errorf("platform %q is not configured", slug)
}

func (f *fakePlatformCatalog) List(_ context.Context) ([]*model.MediaPlatform, error) {
	return f.platforms, nil
}

// fakeAccountStore is an in-memory ISocialAccount.
type fakeAccountStore struct {
	mu          sync.Mutex
	accounts    map[int64]*model.SocialAccount
	expiring    []*model.SocialAccount
	disconnects []int64
	updated     map[int64]*dto.TokenResponse
}

func newFakeAccountStore(accounts ...*model.SocialAccount) *fakeAccountStore {
	s := &fakeAccountStore{
		accounts: make(map[int64]*model.SocialAccount),
		updated:  make(map[int64]*dto.TokenResponse),
	}
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return s
}

func (s *fakeAccountStore) SaveAccount(_ context.Context, _ string, _ *model.MediaPlatform, _ *dto.AccountInfo, _, _ string, _ *int64) (*dto.SaveResult, error) {
	return &dto.SaveResult{Status: "success", Message: "Account connected successfully"}, nil
}

func (s *fakeAccountStore) DisconnectAccount(_ context.Context, account *model.SocialAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnects = append(s.disconnects, account.ID)
	account.Status = model.AccountStatusDisconnected
	return nil
}

func (s *fakeAccountStore) GetByID(_ context.Context, id int64) (*model.SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %d not found", id)
	}
	return account, nil
}

func (s *fakeAccountStore) ListByGuard(_ context.Context, guard string) ([]*model.SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*model.SocialAccount
	for _, a := range s.accounts {
		if a.Guard == guard {
			list = append(list, a)
		}
	}
	return list, nil
}

func (s *fakeAccountStore) ListExpiring(_ context.Context, _ int) ([]*model.SocialAccount, error) {
	return s.expiring, nil
}

func (s *fakeAccountStore) UpdateTokens(_ context.Context, id int64, tok *dto.TokenResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated[id] = tok
	return nil
}

// fakePostStore is an in-memory ISocialPost.
type fakePostStore struct {
	mu       sync.Mutex
	posts    map[int64]*model.SocialPost
	nextID   int64
	statuses []string
}

func newFakePostStore(posts ...*model.SocialPost) *fakePostStore {
	s := &fakePostStore{posts: make(map[int64]*model.SocialPost), nextID: 100}
	for _, p := range posts {
		s.posts[p.ID] = p
	}
	return s
}

func (s *fakePostStore) Create(_ context.Context, post *model.SocialPost) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	post.ID = s.nextID
	if post.Status == "" {
		post.Status = model.PostStatusPending
	}
	s.posts[post.ID] = post
	return post.ID, nil
}

func (s *fakePostStore) GetByID(_ context.Context, id int64) (*model.SocialPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %d not found", id)
	}
	return post, nil
}

func (s *fakePostStore) FetchDue(_ context.Context, _ int) ([]*model.SocialPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*model.SocialPost
	for _, p := range s.posts {
		if p.Status == model.PostStatusPending {
			due = append(due, p)
		}
	}
	return due, nil
}

func (s *fakePostStore) UpdateStatus(_ context.Context, id int64, status string, response *string, externalID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
	if post, ok := s.posts[id]; ok {
		post.Status = status
		if response != nil {
			post.Response = response
		}
		if externalID != nil {
			post.ExternalID = externalID
		}
	}
	return nil
}

// fakeHub records broadcast statuses.
type fakeHub struct {
	mu       sync.Mutex
	statuses []string
}

func (h *fakeHub) BroadcastPostStatus(post *model.SocialPost) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, post.Status)
}

// fakeEvents records published post events.
type fakeEvents struct {
	mu   sync.Mutex
	refs []string
}

func (e *fakeEvents) PostPublished(_ context.Context, _ *model.SocialPost, externalRef string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refs = append(e.refs, externalRef)
	return nil
}

// fakeAudit records audit entries.
type fakeAudit struct {
	mu      sync.Mutex
	entries []*model.PublishAudit
}

func (a *fakeAudit) Record(_ context.Context, audit *model.PublishAudit) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, audit)
	return nil
}

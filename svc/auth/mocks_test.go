package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/communitylabs/authcore/pkg/kvstore"
)

// memoryUserRepo is an in-memory UserRepository for tests.
type memoryUserRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{byID: make(map[int64]*User)}
}

func (r *memoryUserRepo) FindByPseudonym(_ context.Context, pseudonym string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Email == pseudonym {
			userCopy := *u
			return &userCopy, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUserRepo) FindByID(_ context.Context, id int64) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	userCopy := *u
	return &userCopy, nil
}

func (r *memoryUserRepo) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	userCopy := *user
	r.byID[user.ID] = &userCopy
	return nil
}

func (r *memoryUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// stubAdapter is a canned ProviderAdapter.
type stubAdapter struct {
	mu          sync.Mutex
	id          string
	profile     Profile
	exchangeErr error
	profileErr  error
	codes       []string
}

func newStubAdapter(profile Profile) *stubAdapter {
	return &stubAdapter{id: ProviderGoogle, profile: profile}
}

func (a *stubAdapter) ProviderID() string { return a.id }

func (a *stubAdapter) AuthURL(state string) (string, error) {
	return "https://provider.test/authorize?state=" + url.QueryEscape(state), nil
}

func (a *stubAdapter) Exchange(_ context.Context, code string) (string, error) {
	if a.exchangeErr != nil {
		return "", a.exchangeErr
	}
	a.mu.Lock()
	a.codes = append(a.codes, code)
	a.mu.Unlock()
	return "provider-access-token", nil
}

func (a *stubAdapter) FetchProfile(_ context.Context, _ string) (Profile, error) {
	if a.profileErr != nil {
		return Profile{}, a.profileErr
	}
	return a.profile, nil
}

// staticIssuer mints predictable access tokens.
type staticIssuer struct {
	err error
}

func (i staticIssuer) Issue(userID int64) (string, error) {
	if i.err != nil {
		return "", i.err
	}
	return fmt.Sprintf("access-token-%d", userID), nil
}

// brokenDeleteStore wraps a store and fails every Delete, simulating a
// revocation backend outage.
type brokenDeleteStore struct {
	kvstore.Store
}

func (brokenDeleteStore) Delete(context.Context, string) error {
	return errors.New("delete unavailable")
}

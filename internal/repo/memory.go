package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fin100x/server/internal/model"
)

// In-memory repo implementations with the same semantics as the Postgres
// ones, used by tests that exercise service and handler logic without a
// database. Mutations hold a mutex so the conditional-update invariants
// (single-use OTP, one rotation winner) survive concurrent callers.

// MemoryUserRepo is an in-memory UserRepo.
type MemoryUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

// NewMemoryUserRepo creates an empty MemoryUserRepo.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[uuid.UUID]model.User)}
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryUserRepo) GetByPhone(_ context.Context, phone string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (r *MemoryUserRepo) EnsureByPhone(_ context.Context, phone, masked string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if u.Phone == phone {
			u.IsNew = false
			r.users[id] = u
			return u, nil
		}
	}
	u := model.User{
		ID:          uuid.New(),
		Phone:       phone,
		PhoneMasked: masked,
		Language:    "en-IN",
		IsNew:       true,
		KYCStatus:   "none",
		CreatedAt:   time.Now(),
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *MemoryUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, patch ProfileUpdate) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	if patch.FirstName != nil {
		u.FirstName = patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = patch.LastName
	}
	if patch.Email != nil {
		u.Email = patch.Email
	}
	if patch.Language != nil {
		u.Language = *patch.Language
	}
	r.users[id] = u
	return u, nil
}

// MemoryOTPRepo is an in-memory OTPRepo.
type MemoryOTPRepo struct {
	mu       sync.Mutex
	requests map[string]model.OTPRequest
}

// NewMemoryOTPRepo creates an empty MemoryOTPRepo.
func NewMemoryOTPRepo() *MemoryOTPRepo {
	return &MemoryOTPRepo{requests: make(map[string]model.OTPRequest)}
}

func (r *MemoryOTPRepo) Create(_ context.Context, req model.OTPRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.CreatedAt = time.Now()
	r.requests[req.ID] = req
	return nil
}

func (r *MemoryOTPRepo) GetByID(_ context.Context, id string) (model.OTPRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return model.OTPRequest{}, ErrNotFound
	}
	return req, nil
}

func (r *MemoryOTPRepo) MarkVerified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Verified {
		return ErrNotFound
	}
	req.Verified = true
	r.requests[id] = req
	return nil
}

// MemorySessionRepo is an in-memory SessionRepo.
type MemorySessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]model.Session
}

// NewMemorySessionRepo creates an empty MemorySessionRepo.
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{sessions: make(map[uuid.UUID]model.Session)}
}

func (r *MemorySessionRepo) Replace(_ context.Context, userID uuid.UUID, tokenHash string, deviceID *string, expiresAt time.Time) (model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	s := model.Session{
		ID:               uuid.New(),
		UserID:           userID,
		RefreshTokenHash: tokenHash,
		DeviceID:         deviceID,
		ExpiresAt:        expiresAt,
		CreatedAt:        time.Now(),
	}
	r.sessions[s.ID] = s
	return s, nil
}

func (r *MemorySessionRepo) GetByID(_ context.Context, id uuid.UUID) (model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return model.Session{}, ErrNotFound
	}
	return s, nil
}

func (r *MemorySessionRepo) GetByUserID(_ context.Context, userID uuid.UUID) (model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest model.Session
	found := false
	for _, s := range r.sessions {
		if s.UserID == userID && (!found || s.CreatedAt.After(latest.CreatedAt)) {
			latest = s
			found = true
		}
	}
	if !found {
		return model.Session{}, ErrNotFound
	}
	return latest, nil
}

func (r *MemorySessionRepo) Rotate(_ context.Context, id uuid.UUID, oldHash, newHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.RefreshTokenHash != oldHash {
		return ErrNotFound
	}
	s.RefreshTokenHash = newHash
	s.ExpiresAt = expiresAt
	s.Revoked = false
	r.sessions[id] = s
	return nil
}

func (r *MemorySessionRepo) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.UserID == userID && !s.Revoked {
			s.Revoked = true
			r.sessions[id] = s
		}
	}
	return nil
}

// MemoryAdminRepo is an in-memory AdminRepo seeded through Put.
type MemoryAdminRepo struct {
	mu     sync.Mutex
	admins map[uuid.UUID]model.Admin
}

// NewMemoryAdminRepo creates an empty MemoryAdminRepo.
func NewMemoryAdminRepo() *MemoryAdminRepo {
	return &MemoryAdminRepo{admins: make(map[uuid.UUID]model.Admin)}
}

// Put seeds an admin account.
func (r *MemoryAdminRepo) Put(a model.Admin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[a.ID] = a
}

func (r *MemoryAdminRepo) GetByEmail(_ context.Context, email string) (model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return model.Admin{}, ErrNotFound
}

func (r *MemoryAdminRepo) GetByID(_ context.Context, id uuid.UUID) (model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return model.Admin{}, ErrNotFound
	}
	return a, nil
}

// MemoryAdminTokenRepo is an in-memory AdminTokenRepo.
type MemoryAdminTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]model.AdminRefreshToken
}

// NewMemoryAdminTokenRepo creates an empty MemoryAdminTokenRepo.
func NewMemoryAdminTokenRepo() *MemoryAdminTokenRepo {
	return &MemoryAdminTokenRepo{tokens: make(map[string]model.AdminRefreshToken)}
}

// Count returns the number of stored tokens.
func (r *MemoryAdminTokenRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

func (r *MemoryAdminTokenRepo) Replace(_ context.Context, adminID uuid.UUID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for t, rec := range r.tokens {
		if rec.AdminID == adminID {
			delete(r.tokens, t)
		}
	}
	r.tokens[token] = model.AdminRefreshToken{Token: token, AdminID: adminID, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	return nil
}

func (r *MemoryAdminTokenRepo) Create(_ context.Context, adminID uuid.UUID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = model.AdminRefreshToken{Token: token, AdminID: adminID, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	return nil
}

func (r *MemoryAdminTokenRepo) GetByToken(_ context.Context, token string) (model.AdminRefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.tokens[token]
	if !ok {
		return model.AdminRefreshToken{}, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryAdminTokenRepo) DeleteByToken(_ context.Context, token string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; !ok {
		return 0, nil
	}
	delete(r.tokens, token)
	return 1, nil
}

// MemoryBlacklistRepo is an in-memory BlacklistRepo. Setting Err makes every
// lookup fail, for exercising the guard's fail-closed path.
type MemoryBlacklistRepo struct {
	mu      sync.Mutex
	entries map[string]time.Time

	Err error
}

// NewMemoryBlacklistRepo creates an empty MemoryBlacklistRepo.
func NewMemoryBlacklistRepo() *MemoryBlacklistRepo {
	return &MemoryBlacklistRepo{entries: make(map[string]time.Time)}
}

func (r *MemoryBlacklistRepo) Add(_ context.Context, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[token]; !ok {
		r.entries[token] = expiresAt
	}
	return nil
}

func (r *MemoryBlacklistRepo) Contains(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	_, ok := r.entries[token]
	return ok, nil
}

func (r *MemoryBlacklistRepo) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for token, exp := range r.entries {
		if !exp.After(now) {
			delete(r.entries, token)
			n++
		}
	}
	return n, nil
}

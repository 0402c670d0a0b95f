package tokens

import (
	"sync"
	"time"

	"github.com/campus-hub/campus-services/internal/apperrors"
	"github.com/google/uuid"
)

// TTL is how long a download token stays redeemable.
const TTL = 5 * time.Minute

// MaxPayloadBytes bounds the combined size of the target URL and filename a
// token may be bound to.
const MaxPayloadBytes = 4000

// DownloadToken binds a single-use token to a target URL and filename.
type DownloadToken struct {
	Token     string
	TargetURL string
	FileName  string
	ExpiresAt time.Time
}

// Registry issues and redeems single-use download tokens. A token is deleted
// on first redemption or expiry, whichever comes first.
type Registry interface {
	Register(targetURL, fileName string) (*DownloadToken, error)
	Redeem(token string) (*DownloadToken, bool)
}

type memoryRegistry struct {
	mu      sync.Mutex
	entries map[string]*DownloadToken
	now     func() time.Time
}

// NewMemoryRegistry returns an in-process token registry. Expired entries
// are evicted lazily on registration.
func NewMemoryRegistry() Registry {
	return &memoryRegistry{
		entries: make(map[string]*DownloadToken),
		now:     time.Now,
	}
}

// Register issues a new token bound to the target URL and filename. Payloads
// over MaxPayloadBytes are rejected before a token is issued.
func (r *memoryRegistry) Register(targetURL, fileName string) (*DownloadToken, error) {
	if targetURL == "" || fileName == "" {
		return nil, apperrors.Validation("url and fileName are required")
	}
	if len(targetURL)+len(fileName) > MaxPayloadBytes {
		return nil, apperrors.Validation("download payload exceeds storage limit")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictExpired()

	entry := &DownloadToken{
		Token:     uuid.NewString(),
		TargetURL: targetURL,
		FileName:  fileName,
		ExpiresAt: r.now().Add(TTL),
	}
	r.entries[entry.Token] = entry

	return entry, nil
}

// Redeem returns the entry bound to token and deletes it. Expired or unknown
// tokens report false, so redemption is at most once.
func (r *memoryRegistry) Redeem(token string) (*DownloadToken, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[token]
	if !ok {
		return nil, false
	}
	delete(r.entries, token)

	if r.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry, true
}

// evictExpired drops entries past their expiry. Caller must hold the lock.
func (r *memoryRegistry) evictExpired() {
	now := r.now()
	for token, entry := range r.entries {
		if now.After(entry.ExpiresAt) {
			delete(r.entries, token)
		}
	}
}

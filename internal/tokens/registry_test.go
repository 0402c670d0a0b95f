package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegisterAndRedeem(t *testing.T) {

	registry := NewMemoryRegistry()

	entry, err := registry.Register("https://example.com/f.pdf", "f.pdf")
	assert.NoError(t, err)
	assert.NotEmpty(t, entry.Token)

	got, ok := registry.Redeem(entry.Token)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/f.pdf", got.TargetURL)
	assert.Equal(t, "f.pdf", got.FileName)
}

func TestRedeemIsSingleUse(t *testing.T) {

	registry := NewMemoryRegistry()

	entry, err := registry.Register("https://example.com/f.pdf", "f.pdf")
	assert.NoError(t, err)

	_, ok := registry.Redeem(entry.Token)
	assert.True(t, ok)

	_, ok = registry.Redeem(entry.Token)
	assert.False(t, ok, "a token must not be redeemable twice")
}

func TestExpiredTokenIsNotRedeemable(t *testing.T) {

	now := time.Now()
	registry := &memoryRegistry{
		entries: make(map[string]*DownloadToken),
		now:     func() time.Time { return now },
	}

	entry, err := registry.Register("https://example.com/f.pdf", "f.pdf")
	assert.NoError(t, err)

	// Jump past the TTL
	now = now.Add(TTL + time.Second)

	_, ok := registry.Redeem(entry.Token)
	assert.False(t, ok)
}

func TestRegisterEnforcesPayloadCap(t *testing.T) {

	registry := NewMemoryRegistry()

	url := "https://example.com/" + strings.Repeat("a", MaxPayloadBytes)
	_, err := registry.Register(url, "f.pdf")
	assert.Error(t, err)

	// Exactly at the cap is fine
	url = strings.Repeat("a", MaxPayloadBytes-5)
	_, err = registry.Register(url, "f.pdf")
	assert.NoError(t, err)
}

func TestExpiredEntriesAreEvictedOnRegister(t *testing.T) {

	now := time.Now()
	registry := &memoryRegistry{
		entries: make(map[string]*DownloadToken),
		now:     func() time.Time { return now },
	}

	stale, _ := registry.Register("https://example.com/old.pdf", "old.pdf")

	now = now.Add(TTL + time.Second)
	_, err := registry.Register("https://example.com/new.pdf", "new.pdf")
	assert.NoError(t, err)

	assert.Len(t, registry.entries, 1, "the stale entry should be gone")
	_, ok := registry.entries[stale.Token]
	assert.False(t, ok)
}

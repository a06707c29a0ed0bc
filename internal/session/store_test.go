package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreSetGetClear(t *testing.T) {
	s := NewStore(0)
	defer s.Close()

	_, ok := s.Get(42)
	require.False(t, ok)

	s.Set(42, &Session{Flow: "client", State: "client_name"})
	sess, ok := s.Get(42)
	require.True(t, ok)
	require.Equal(t, "client", sess.Flow)
	require.Equal(t, "client_name", sess.State)
	require.NotNil(t, sess.Data)
	require.False(t, sess.CreatedAt.IsZero())

	s.Clear(42)
	_, ok = s.Get(42)
	require.False(t, ok)
}

func TestStoreReplacesExistingSession(t *testing.T) {
	s := NewStore(0)
	defer s.Close()

	s.Set(7, &Session{Flow: "client", State: "client_name", Data: map[string]any{"name": "Acme Co"}})
	s.Set(7, &Session{Flow: "invoice", State: "invoice_client"})

	sess, ok := s.Get(7)
	require.True(t, ok)
	require.Equal(t, "invoice", sess.Flow)
	require.Empty(t, sess.Data)
	require.Equal(t, 1, s.Len())
}

func TestStoreExpiry(t *testing.T) {
	s := NewStore(20 * time.Millisecond)
	defer s.Close()

	s.Set(1, &Session{Flow: "expense", State: "expense_amount"})
	_, ok := s.Get(1)
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = s.Get(1)
	require.False(t, ok)
}

func TestStoreTouchExtendsExpiry(t *testing.T) {
	s := NewStore(60 * time.Millisecond)
	defer s.Close()

	s.Set(1, &Session{Flow: "gig", State: "gig_title"})
	time.Sleep(40 * time.Millisecond)
	s.Touch(1)
	time.Sleep(40 * time.Millisecond)

	_, ok := s.Get(1)
	require.True(t, ok)
}

func TestStoreZeroTTLNeverExpires(t *testing.T) {
	s := NewStore(0)
	defer s.Close()

	s.Set(1, &Session{Flow: "contract", State: "contract_client", ExpiresAt: time.Now().Add(-time.Hour)})
	_, ok := s.Get(1)
	require.True(t, ok)
}

package flow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"freelancebot/internal/session"
)

type finalizeCall struct {
	userID int64
	data   map[string]any
}

func clientDefinition(calls *[]finalizeCall, finalizeErr error) *Definition {
	return &Definition{
		Name: "client",
		Steps: []Step{
			{State: "client_name", Prompt: "Client name?", Field: "name", Kind: KindText},
			{State: "client_email", Prompt: "Client email?", Field: "email", Kind: KindEmail},
			{State: "client_address", Prompt: "Address?", Field: "address", Kind: KindText, Optional: true},
			{State: "client_tax_id", Prompt: "Tax ID?", Field: "tax_id", Kind: KindText, Optional: true},
		},
		Finalize: func(_ context.Context, userID int64, data map[string]any) (string, error) {
			*calls = append(*calls, finalizeCall{userID: userID, data: data})
			if finalizeErr != nil {
				return "", finalizeErr
			}
			return "Client created.", nil
		},
	}
}

func contractDefinition(calls *[]finalizeCall) *Definition {
	return &Definition{
		Name: "contract",
		Steps: []Step{
			{State: "contract_type", Prompt: "Contract type?", Field: "type", Kind: KindSelect, Options: []Option{
				{Label: "Hourly", Value: "hourly"},
				{Label: "Fixed", Value: "fixed"},
			}},
			{State: "contract_rate", Prompt: "Rate?", Field: "rate", Kind: KindNumber},
		},
		Finalize: func(_ context.Context, userID int64, data map[string]any) (string, error) {
			*calls = append(*calls, finalizeCall{userID: userID, data: data})
			return "Contract created.", nil
		},
	}
}

func newTestEngine(t *testing.T, defs ...*Definition) (*Engine, *session.Store) {
	t.Helper()
	store := session.NewStore(0)
	t.Cleanup(store.Close)
	eng, err := NewEngine(store, defs...)
	require.NoError(t, err)
	return eng, store
}

func TestFullFlowCollectsUnionOfFields(t *testing.T) {
	var calls []finalizeCall
	eng, store := newTestEngine(t, clientDefinition(&calls, nil))
	ctx := context.Background()
	const user = int64(100)

	r, err := eng.Start(ctx, user, "client")
	require.NoError(t, err)
	require.Contains(t, r.Text, "Client name?")

	r, err = eng.Input(ctx, user, "Acme Co")
	require.NoError(t, err)
	require.Contains(t, r.Text, "Client email?")

	r, err = eng.Input(ctx, user, "a@acme.com")
	require.NoError(t, err)
	require.Contains(t, r.Text, "Address?")

	r, err = eng.Input(ctx, user, "/skip")
	require.NoError(t, err)
	require.Contains(t, r.Text, "Tax ID?")

	r, err = eng.Input(ctx, user, "/skip")
	require.NoError(t, err)
	require.True(t, r.Done)
	require.Equal(t, "Client created.", r.Text)

	require.Len(t, calls, 1)
	require.Equal(t, user, calls[0].userID)
	require.Equal(t, map[string]any{
		"name":    "Acme Co",
		"email":   "a@acme.com",
		"address": "",
		"tax_id":  "",
	}, calls[0].data)

	_, ok := store.Get(user)
	require.False(t, ok)
}

func TestInvalidInputLeavesStateUnchanged(t *testing.T) {
	var calls []finalizeCall
	eng, store := newTestEngine(t, contractDefinition(&calls))
	ctx := context.Background()
	const user = int64(7)

	_, err := eng.Start(ctx, user, "contract")
	require.NoError(t, err)

	r, err := eng.Select(ctx, user, "hourly")
	require.NoError(t, err)
	require.Contains(t, r.Text, "Rate?")

	// "abc" is rejected: state and data stay untouched.
	r, err = eng.Input(ctx, user, "abc")
	require.NoError(t, err)
	require.False(t, r.Done)

	sess, ok := store.Get(user)
	require.True(t, ok)
	require.Equal(t, "contract_rate", sess.State)
	require.NotContains(t, sess.Data, "rate")
	require.Empty(t, calls)

	r, err = eng.Input(ctx, user, "1500.50")
	require.NoError(t, err)
	require.True(t, r.Done)
	require.Len(t, calls, 1)
	require.Equal(t, 1500.50, calls[0].data["rate"])
	require.Equal(t, "hourly", calls[0].data["type"])
}

func TestSelectStepRejectsTextInput(t *testing.T) {
	var calls []finalizeCall
	eng, store := newTestEngine(t, contractDefinition(&calls))
	ctx := context.Background()
	const user = int64(8)

	_, err := eng.Start(ctx, user, "contract")
	require.NoError(t, err)

	r, err := eng.Input(ctx, user, "hourly")
	require.NoError(t, err)
	require.Contains(t, r.Text, "pick one of the options")
	require.NotEmpty(t, r.Options)

	sess, ok := store.Get(user)
	require.True(t, ok)
	require.Equal(t, "contract_type", sess.State)
}

func TestSelectRejectsUnknownOption(t *testing.T) {
	var calls []finalizeCall
	eng, store := newTestEngine(t, contractDefinition(&calls))
	ctx := context.Background()
	const user = int64(9)

	_, err := eng.Start(ctx, user, "contract")
	require.NoError(t, err)

	r, err := eng.Select(ctx, user, "weekly")
	require.NoError(t, err)
	require.Contains(t, r.Text, "Unknown option")

	sess, ok := store.Get(user)
	require.True(t, ok)
	require.Equal(t, "contract_type", sess.State)
}

func TestSkipOnRequiredStepReprompts(t *testing.T) {
	var calls []finalizeCall
	eng, store := newTestEngine(t, clientDefinition(&calls, nil))
	ctx := context.Background()
	const user = int64(10)

	_, err := eng.Start(ctx, user, "client")
	require.NoError(t, err)

	r, err := eng.Input(ctx, user, "/skip")
	require.NoError(t, err)
	require.Contains(t, r.Text, "can't be skipped")

	sess, ok := store.Get(user)
	require.True(t, ok)
	require.Equal(t, "client_name", sess.State)
}

func TestStartingNewFlowDiscardsOldSession(t *testing.T) {
	var clientCalls, contractCalls []finalizeCall
	eng, store := newTestEngine(t,
		clientDefinition(&clientCalls, nil),
		contractDefinition(&contractCalls),
	)
	ctx := context.Background()
	const user = int64(11)

	_, err := eng.Start(ctx, user, "client")
	require.NoError(t, err)
	_, err = eng.Input(ctx, user, "Acme Co")
	require.NoError(t, err)

	_, err = eng.Start(ctx, user, "contract")
	require.NoError(t, err)

	sess, ok := store.Get(user)
	require.True(t, ok)
	require.Equal(t, "contract", sess.Flow)
	require.Empty(t, sess.Data)
	require.Empty(t, clientCalls)
}

func TestCancelClearsSessionWithoutRemoteCall(t *testing.T) {
	var calls []finalizeCall
	eng, store := newTestEngine(t, clientDefinition(&calls, nil))
	ctx := context.Background()
	const user = int64(12)

	_, err := eng.Start(ctx, user, "client")
	require.NoError(t, err)
	_, err = eng.Input(ctx, user, "Acme Co")
	require.NoError(t, err)

	require.True(t, eng.Cancel(user))
	_, ok := store.Get(user)
	require.False(t, ok)
	require.Empty(t, calls)
	require.False(t, eng.Cancel(user))
}

func TestFinalizeFailureSurfacesErrorAndClearsSession(t *testing.T) {
	var calls []finalizeCall
	remoteErr := errors.New("client with this email already exists")
	eng, store := newTestEngine(t, clientDefinition(&calls, remoteErr))
	ctx := context.Background()
	const user = int64(13)

	_, err := eng.Start(ctx, user, "client")
	require.NoError(t, err)
	for _, input := range []string{"Acme Co", "a@acme.com", "/skip"} {
		_, err = eng.Input(ctx, user, input)
		require.NoError(t, err)
	}
	r, err := eng.Input(ctx, user, "/skip")
	require.NoError(t, err)
	require.True(t, r.Done)
	require.Equal(t, remoteErr.Error(), r.Text)

	_, ok := store.Get(user)
	require.False(t, ok)
	require.Len(t, calls, 1)
}

func TestInputWithoutSessionAsksForRestart(t *testing.T) {
	var calls []finalizeCall
	eng, _ := newTestEngine(t, clientDefinition(&calls, nil))

	r, err := eng.Input(context.Background(), 99, "Acme Co")
	require.NoError(t, err)
	require.True(t, r.Done)
	require.Contains(t, r.Text, "restart")
}

func TestEngineRejectsDuplicateStateTags(t *testing.T) {
	store := session.NewStore(0)
	defer store.Close()

	dup := &Definition{
		Name: "dup",
		Steps: []Step{
			{State: "client_name", Prompt: "p", Field: "f", Kind: KindText},
		},
		Finalize: func(context.Context, int64, map[string]any) (string, error) { return "", nil },
	}
	var calls []finalizeCall
	_, err := NewEngine(store, clientDefinition(&calls, nil), dup)
	require.Error(t, err)
}

func TestConcurrentInputsAreSerializedPerUser(t *testing.T) {
	var mu sync.Mutex
	var calls []finalizeCall
	def := &Definition{
		Name: "gig",
		Steps: []Step{
			{State: "gig_title", Prompt: "Gig title?", Field: "title", Kind: KindText},
		},
		Finalize: func(_ context.Context, userID int64, data map[string]any) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, finalizeCall{userID: userID, data: data})
			return "Gig created.", nil
		},
	}
	eng, store := newTestEngine(t, def)
	ctx := context.Background()
	const user = int64(700)

	_, err := eng.Start(ctx, user, "gig")
	require.NoError(t, err)

	const workers = 8
	replies := make([]Reply, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			replies[i], errs[i] = eng.Input(ctx, user, "Landing page")
		}(i)
	}
	wg.Wait()

	// Exactly one input wins the terminal step; the rest arrive with the
	// session already cleared and are told to restart.
	require.Len(t, calls, 1)
	require.Equal(t, map[string]any{"title": "Landing page"}, calls[0].data)
	_, ok := store.Get(user)
	require.False(t, ok)

	finished := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.True(t, replies[i].Done)
		if replies[i].Text == "Gig created." {
			finished++
		}
	}
	require.Equal(t, 1, finished)
}

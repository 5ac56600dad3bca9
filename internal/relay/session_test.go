package relay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errBridge = errors.New("bridge down")

type fakeBridge struct {
	mu        sync.Mutex
	failStart bool
	// When set, StartInit signals entered and waits for release.
	entered  chan struct{}
	release  chan struct{}
	failSend map[string]bool
	tokens   []string
	logouts  int
	batches  [][]Message
	texts    []string
	media    []string
}

func (f *fakeBridge) StartInit(ctx context.Context, _ Credential) (string, error) {
	if f.release != nil {
		close(f.entered)
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.failStart {
		return "", errBridge
	}
	return "hash-1", nil
}

func (f *fakeBridge) CompleteInit(_ context.Context, cred Credential, code, ref string) (string, error) {
	if ref != "hash-1" || code == "" {
		return "", errBridge
	}
	return "token-" + cred.Phone, nil
}

func (f *fakeBridge) InitSession(_ context.Context, token string) error {
	f.tokens = append(f.tokens, token)
	if token == "" {
		return errBridge
	}
	return nil
}

func (f *fakeBridge) Logout(context.Context) error {
	f.logouts++
	return nil
}

func (f *fakeBridge) SendBatch(_ context.Context, _ string, msgs []Message) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, msgs)
	return json.RawMessage(`[{"status":"success"}]`), nil
}

func (f *fakeBridge) SendText(_ context.Context, _ string, text string) (json.RawMessage, error) {
	f.texts = append(f.texts, text)
	return json.RawMessage(`{"id":1}`), nil
}

func (f *fakeBridge) SendMedia(_ context.Context, _ string, href string) (json.RawMessage, error) {
	if f.failSend[href] {
		return nil, errBridge
	}
	f.media = append(f.media, href)
	return json.RawMessage(`{"id":2}`), nil
}

type memStore struct {
	rows map[string][2]string
}

func newMemStore() *memStore { return &memStore{rows: map[string][2]string{}} }

func (m *memStore) SaveSession(_ context.Context, backend, state, token string) error {
	m.rows[backend] = [2]string{state, token}
	return nil
}

func (m *memStore) LoadSession(_ context.Context, backend string) (string, string, error) {
	row, ok := m.rows[backend]
	if !ok {
		return "", "", errors.New("not found")
	}
	return row[0], row[1], nil
}

func (m *memStore) DeleteSession(_ context.Context, backend string) error {
	delete(m.rows, backend)
	return nil
}

func TestSessionLoginFlow(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := NewSession(BackendTelegram, &fakeBridge{}, store)
	require.Equal(t, StateUninitialized, s.State())

	require.NoError(t, s.Begin(ctx))
	require.Equal(t, StateAwaitingCredential, s.State())

	ref, err := s.SubmitCredential(ctx, Credential{Phone: "+15550100"})
	require.NoError(t, err)
	require.Equal(t, "hash-1", ref)
	require.Equal(t, StateAwaitingChallenge, s.State())

	require.NoError(t, s.SubmitChallenge(ctx, "12345"))
	require.True(t, s.Ready())
	require.Equal(t, [2]string{"ready", "token-+15550100"}, store.rows["telegram"])

	require.NoError(t, s.Logout(ctx))
	require.Equal(t, StateClosed, s.State())
	require.Empty(t, store.rows)
}

func TestSessionInvalidTransitions(t *testing.T) {
	ctx := context.Background()
	s := NewSession(BackendTelegram, &fakeBridge{}, nil)

	_, err := s.SubmitCredential(ctx, Credential{Phone: "1"})
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.ErrorIs(t, s.SubmitChallenge(ctx, "1"), ErrInvalidTransition)
	require.ErrorIs(t, s.Logout(ctx), ErrSessionNotReady)

	require.NoError(t, s.Restore(ctx, "tok"))
	require.ErrorIs(t, s.Begin(ctx), ErrInvalidTransition)
	require.ErrorIs(t, s.Restore(ctx, "tok"), ErrInvalidTransition)
}

func TestSessionBridgeFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	s := NewSession(BackendWhatsApp, &fakeBridge{failStart: true}, nil)
	require.NoError(t, s.Begin(ctx))

	_, err := s.SubmitCredential(ctx, Credential{Phone: "1"})
	require.ErrorIs(t, err, errBridge)
	require.Equal(t, StateAwaitingCredential, s.State())
}

func TestSessionRestoreFromStore(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.rows["whatsapp"] = [2]string{"ready", "saved"}
	bridge := &fakeBridge{}

	reg := NewRegistry(
		NewSession(BackendWhatsApp, bridge, store),
		NewSession(BackendTelegram, &fakeBridge{}, store),
	)
	require.Equal(t, 1, reg.RestoreAll(ctx))
	require.Equal(t, []string{"saved"}, bridge.tokens)

	statuses := reg.Statuses()
	require.Len(t, statuses, 2)
	require.Equal(t, BackendTelegram, statuses[0].Backend)
	require.False(t, statuses[0].Ready)
	require.True(t, statuses[1].Ready)
}

func TestRegistryUnknownBackend(t *testing.T) {
	_, err := NewRegistry().Get("signal")
	require.ErrorIs(t, err, ErrUnknownBackend)
}

func TestSenderRequiresReady(t *testing.T) {
	_, err := NewSession(BackendTelegram, &fakeBridge{}, nil).Sender()
	require.ErrorIs(t, err, ErrSessionNotReady)
}

func TestSessionStatusDoesNotWaitForBridge(t *testing.T) {
	bridge := &fakeBridge{entered: make(chan struct{}), release: make(chan struct{})}
	s := NewSession(BackendTelegram, bridge, nil)
	require.NoError(t, s.Begin(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := s.SubmitCredential(context.Background(), Credential{Phone: "+15550001"})
		done <- err
	}()
	<-bridge.entered

	statusDone := make(chan Status, 1)
	go func() { statusDone <- s.Status() }()
	select {
	case st := <-statusDone:
		require.Equal(t, StateAwaitingCredential, st.State)
		require.False(t, s.Ready())
		_, err := s.Sender()
		require.ErrorIs(t, err, ErrSessionNotReady)
	case <-time.After(2 * time.Second):
		t.Fatal("Status blocked while the bridge call was in flight")
	}

	close(bridge.release)
	require.NoError(t, <-done)
	require.Equal(t, StateAwaitingChallenge, s.State())
}

func TestSessionTransitionsAreSerialized(t *testing.T) {
	bridge := &fakeBridge{entered: make(chan struct{}), release: make(chan struct{})}
	s := NewSession(BackendTelegram, bridge, nil)
	require.NoError(t, s.Begin(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := s.SubmitCredential(context.Background(), Credential{Phone: "+15550001"})
		done <- err
	}()
	<-bridge.entered

	// A second transition waits for the first and then sees its result.
	second := make(chan error, 1)
	go func() { second <- s.SubmitChallenge(context.Background(), "12345") }()
	select {
	case err := <-second:
		t.Fatalf("SubmitChallenge ran during SubmitCredential: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(bridge.release)
	require.NoError(t, <-done)
	require.NoError(t, <-second)
	require.Equal(t, StateReady, s.State())
}

package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrSessionNotReady   = errors.New("messaging session is not initialized")
	ErrUnknownBackend    = errors.New("unknown messaging backend")
)

// Backend names a messaging network reachable through a bridge.
type Backend string

const (
	BackendWhatsApp Backend = "whatsapp"
	BackendTelegram Backend = "telegram"
)

// State is a point in the session login flow.
type State string

const (
	StateUninitialized      State = "uninitialized"
	StateAwaitingCredential State = "awaiting-credential"
	StateAwaitingChallenge  State = "awaiting-challenge"
	StateReady              State = "ready"
	StateClosed             State = "closed"
)

// Credential identifies the account a session logs in as.
type Credential struct {
	Phone   string `json:"phoneNumber"`
	APIID   string `json:"apiId,omitempty"`
	APIHash string `json:"apiHash,omitempty"`
}

// Authenticator drives the login flow of a messaging bridge.
type Authenticator interface {
	StartInit(ctx context.Context, cred Credential) (challengeRef string, err error)
	CompleteInit(ctx context.Context, cred Credential, code, challengeRef string) (token string, err error)
	InitSession(ctx context.Context, token string) error
	Logout(ctx context.Context) error
}

// Sender delivers messages through a logged-in bridge.
type Sender interface {
	SendBatch(ctx context.Context, to string, messages []Message) (json.RawMessage, error)
	SendText(ctx context.Context, to, text string) (json.RawMessage, error)
	SendMedia(ctx context.Context, to, mediaURL string) (json.RawMessage, error)
}

// Bridge is a full messaging bridge client.
type Bridge interface {
	Authenticator
	Sender
}

// SessionStore persists session tokens between restarts.
type SessionStore interface {
	SaveSession(ctx context.Context, backend, state, token string) error
	LoadSession(ctx context.Context, backend string) (state, token string, err error)
	DeleteSession(ctx context.Context, backend string) error
}

// Status is the externally visible view of a session.
type Status struct {
	Backend  Backend `json:"backend"`
	State    State   `json:"state"`
	Ready    bool    `json:"initialized"`
	HasToken bool    `json:"hasToken"`
}

// Session is the login state of one backend. All methods are safe for
// concurrent use. Transitions are serialized by op and may block on the
// bridge; mu only guards the fields, so status reads never wait on I/O.
type Session struct {
	op sync.Mutex

	mu           sync.Mutex
	backend      Backend
	state        State
	cred         Credential
	challengeRef string
	token        string
	bridge       Bridge
	store        SessionStore
}

// NewSession creates an uninitialized session. store may be nil.
func NewSession(backend Backend, bridge Bridge, store SessionStore) *Session {
	return &Session{
		backend: backend,
		state:   StateUninitialized,
		bridge:  bridge,
		store:   store,
	}
}

func (s *Session) Backend() Backend { return s.backend }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Ready() bool {
	return s.State() == StateReady
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Backend:  s.backend,
		State:    s.state,
		Ready:    s.state == StateReady,
		HasToken: s.token != "",
	}
}

// Sender returns the bridge for sending, or ErrSessionNotReady.
func (s *Session) Sender() (Sender, error) {
	if !s.Ready() {
		return nil, fmt.Errorf("%s: %w", s.backend, ErrSessionNotReady)
	}
	return s.bridge, nil
}

func (s *Session) invalid(op string, from State) error {
	return fmt.Errorf("%s: %s from %s: %w", s.backend, op, from, ErrInvalidTransition)
}

// Begin starts a fresh login. A login already in progress is discarded.
func (s *Session) Begin(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateReady {
		return s.invalid("begin", s.state)
	}
	s.cred = Credential{}
	s.challengeRef = ""
	s.state = StateAwaitingCredential
	slog.Info("Messaging login started", "backend", s.backend)
	return nil
}

// SubmitCredential asks the bridge to send a login challenge for cred and
// returns the bridge's reference to it.
func (s *Session) SubmitCredential(ctx context.Context, cred Credential) (string, error) {
	s.op.Lock()
	defer s.op.Unlock()

	if state := s.State(); state != StateAwaitingCredential {
		return "", s.invalid("submit credential", state)
	}
	ref, err := s.bridge.StartInit(ctx, cred)
	if err != nil {
		return "", fmt.Errorf("%s: start init: %w", s.backend, err)
	}

	s.mu.Lock()
	s.cred = cred
	s.challengeRef = ref
	s.state = StateAwaitingChallenge
	s.mu.Unlock()
	return ref, nil
}

// SubmitChallenge completes the login with the code the user received.
func (s *Session) SubmitChallenge(ctx context.Context, code string) error {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	state, cred, ref := s.state, s.cred, s.challengeRef
	s.mu.Unlock()
	if state != StateAwaitingChallenge {
		return s.invalid("submit challenge", state)
	}

	token, err := s.bridge.CompleteInit(ctx, cred, code, ref)
	if err != nil {
		return fmt.Errorf("%s: complete init: %w", s.backend, err)
	}

	s.mu.Lock()
	s.token = token
	s.challengeRef = ""
	s.state = StateReady
	s.mu.Unlock()
	s.persist(ctx, StateReady, token)
	slog.Info("✅ Messaging session ready", "backend", s.backend)
	return nil
}

// Restore logs in with a saved token. An empty token is read from the store.
func (s *Session) Restore(ctx context.Context, token string) error {
	s.op.Lock()
	defer s.op.Unlock()

	if state := s.State(); state == StateReady || state == StateAwaitingChallenge {
		return s.invalid("restore", state)
	}
	if token == "" {
		if s.store == nil {
			return fmt.Errorf("%s: no session token to restore", s.backend)
		}
		_, saved, err := s.store.LoadSession(ctx, string(s.backend))
		if err != nil {
			return fmt.Errorf("%s: load session: %w", s.backend, err)
		}
		token = saved
	}
	if err := s.bridge.InitSession(ctx, token); err != nil {
		return fmt.Errorf("%s: init session: %w", s.backend, err)
	}

	s.mu.Lock()
	s.token = token
	s.state = StateReady
	s.mu.Unlock()
	s.persist(ctx, StateReady, token)
	slog.Info("✅ Messaging session restored", "backend", s.backend)
	return nil
}

// Logout disconnects a ready session and forgets its token.
func (s *Session) Logout(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	if !s.Ready() {
		return fmt.Errorf("%s: %w", s.backend, ErrSessionNotReady)
	}
	if err := s.bridge.Logout(ctx); err != nil {
		return fmt.Errorf("%s: logout: %w", s.backend, err)
	}

	s.mu.Lock()
	s.token = ""
	s.cred = Credential{}
	s.state = StateClosed
	s.mu.Unlock()
	if s.store != nil {
		if err := s.store.DeleteSession(ctx, string(s.backend)); err != nil {
			slog.Warn("Could not delete saved session", "backend", s.backend, "error", err)
		}
	}
	slog.Info("Messaging session closed", "backend", s.backend)
	return nil
}

// persist saves the token best effort; callers hold op.
func (s *Session) persist(ctx context.Context, state State, token string) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveSession(ctx, string(s.backend), string(state), token); err != nil {
		slog.Warn("Could not save session", "backend", s.backend, "error", err)
	}
}

// Registry owns one session per backend.
type Registry struct {
	sessions map[Backend]*Session
}

func NewRegistry(sessions ...*Session) *Registry {
	r := &Registry{sessions: make(map[Backend]*Session, len(sessions))}
	for _, s := range sessions {
		r.sessions[s.backend] = s
	}
	return r
}

// Get returns the session for a backend name.
func (r *Registry) Get(backend string) (*Session, error) {
	s, ok := r.sessions[Backend(backend)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	return s, nil
}

// Statuses lists every session, sorted by backend.
func (r *Registry) Statuses() []Status {
	out := make([]Status, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Backend < out[j].Backend })
	return out
}

// RestoreAll restores every session that has a saved token. Failures are
// logged and leave the session uninitialized.
func (r *Registry) RestoreAll(ctx context.Context) int {
	var restored int
	for _, s := range r.sessions {
		if s.store == nil {
			continue
		}
		if err := s.Restore(ctx, ""); err != nil {
			slog.Debug("No session restored", "backend", s.backend, "error", err)
			continue
		}
		restored++
	}
	return restored
}

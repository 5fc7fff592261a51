// Package session owns the portal's single live session: who is signed in and whether that is
// known yet. Every mutation of auth state goes through a Machine.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
	apperrors "github.com/target/pulsecare-portal/internal/errors"
	"github.com/target/pulsecare-portal/internal/ports"
	"github.com/target/pulsecare-portal/internal/validation"
)

const (
	defaultRestoreTimeout = 10 * time.Second
	abandonTimeout        = 5 * time.Second
)

// ErrClosed is returned by operations on a closed Machine.
var ErrClosed = errors.New("session machine closed")

// Observer is notified after every transition, in transition order. Observers run while the
// machine's transition lock is held and must not call back into the Machine's mutators.
type Observer func(from, to domainauth.Snapshot)

// AttemptFunc is notified once per login or signup attempt with its outcome.
type AttemptFunc func(action string, role domainauth.Role, err error)

// RoleClearer forgets the remembered onboarding role.
type RoleClearer interface {
	Clear(ctx context.Context) error
}

// Options configures a Machine.
type Options struct {
	Transport ports.IdentityTransport
	// Store backs the persisted session token. It may be nil when PersistToken is false.
	Store ports.KeyValueStore
	// Roles is cleared on logout. Optional.
	Roles RoleClearer
	// PersistToken is set under the bearer strategy. Under the cookie strategy the server owns the
	// session and nothing is persisted locally.
	PersistToken bool
	// RestoreTimeout bounds the startup restore. Defaults to 10s.
	RestoreTimeout time.Duration
	Logger         *slog.Logger
	Observers      []Observer
	OnAttempt      AttemptFunc
}

// Machine is the session state machine. It is safe for concurrent use.
type Machine struct {
	transport      ports.IdentityTransport
	tokens         *tokenStore
	roles          RoleClearer
	persistToken   bool
	restoreTimeout time.Duration
	logger         *slog.Logger
	onAttempt      AttemptFunc

	restoreGroup singleflight.Group

	// txMu serializes transitions together with their side effects.
	txMu sync.Mutex

	mu        sync.RWMutex
	snap      domainauth.Snapshot
	epoch     uint64
	lastRole  domainauth.Role
	closed    bool
	changed   chan struct{}
	observers map[int]Observer
	nextObsID int
}

// New builds a Machine in the Uninitialized state.
func New(opts Options) (*Machine, error) {
	if opts.Transport == nil {
		return nil, errors.New("session: transport is required")
	}
	if opts.PersistToken && opts.Store == nil {
		return nil, errors.New("session: a store is required to persist tokens")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.RestoreTimeout
	if timeout <= 0 {
		timeout = defaultRestoreTimeout
	}

	m := &Machine{
		transport:      opts.Transport,
		tokens:         &tokenStore{kv: opts.Store},
		roles:          opts.Roles,
		persistToken:   opts.PersistToken,
		restoreTimeout: timeout,
		logger:         logger.With("component", "session"),
		onAttempt:      opts.OnAttempt,
		snap:           domainauth.Snapshot{Status: domainauth.StatusUninitialized},
		changed:        make(chan struct{}),
		observers:      make(map[int]Observer),
	}
	for _, o := range opts.Observers {
		if o != nil {
			m.observers[m.nextObsID] = o
			m.nextObsID++
		}
	}
	return m, nil
}

// Snapshot returns the current published state.
func (m *Machine) Snapshot() domainauth.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSnapshot(m.snap)
}

// LoginEntry is where a forced logout sends the visitor: the login page of the role last seen.
func (m *Machine) LoginEntry() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domainauth.LoginPath(m.lastRole)
}

// Subscribe registers o and returns a function that removes it.
func (m *Machine) Subscribe(o Observer) func() {
	if o == nil {
		return func() {}
	}
	m.mu.Lock()
	id := m.nextObsID
	m.nextObsID++
	m.observers[id] = o
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.observers, id)
			m.mu.Unlock()
		})
	}
}

// Start moves Uninitialized to Restoring and resolves the session in the background.
// Calls after the first are no-ops.
func (m *Machine) Start(ctx context.Context) {
	if !m.beginRestore(ctx) {
		return
	}
	go func() {
		_, _ = m.Restore(context.WithoutCancel(ctx))
	}()
}

// Restore resolves the session and returns the settled snapshot. Concurrent callers share one
// restore. Once the machine has left Restoring it returns the current snapshot without I/O.
func (m *Machine) Restore(ctx context.Context) (domainauth.Snapshot, error) {
	m.beginRestore(ctx)
	v, err, _ := m.restoreGroup.Do("restore", func() (any, error) {
		return m.runRestore(ctx), nil
	})
	if err != nil {
		return m.Snapshot(), err
	}
	snap, _ := v.(domainauth.Snapshot)
	if m.isClosed() {
		return snap, ErrClosed
	}
	return snap, nil
}

// Wait blocks until the machine has settled or ctx is done.
func (m *Machine) Wait(ctx context.Context) (domainauth.Snapshot, error) {
	for {
		m.mu.RLock()
		snap, changed, closed := cloneSnapshot(m.snap), m.changed, m.closed
		m.mu.RUnlock()

		if snap.Settled() {
			return snap, nil
		}
		if closed {
			return snap, ErrClosed
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

// Login authenticates against role's channel. Validation failures never reach the transport, and
// a failed attempt leaves the session unchanged.
func (m *Machine) Login(
	ctx context.Context,
	role domainauth.Role,
	creds domainauth.Credentials,
) (domainauth.Identity, error) {
	ident, err := m.login(ctx, role, creds)
	m.recordAttempt("login", role, err)
	return ident, err
}

func (m *Machine) login(
	ctx context.Context,
	role domainauth.Role,
	creds domainauth.Credentials,
) (domainauth.Identity, error) {
	if !role.HasChannel() {
		return domainauth.Identity{}, apperrors.ValidationField("role", "Please select a role.")
	}
	if err := validation.Login(creds); err != nil {
		return domainauth.Identity{}, err
	}
	if m.isClosed() {
		return domainauth.Identity{}, ErrClosed
	}

	res, err := m.transport.Login(ctx, role, creds)
	if err != nil {
		m.logger.InfoContext(ctx, "login failed", "role", role, "error", err)
		return domainauth.Identity{}, err
	}
	return m.establish(ctx, "login", res)
}

// Signup registers a role-scoped profile and, on success, authenticates as the new identity.
func (m *Machine) Signup(
	ctx context.Context,
	role domainauth.Role,
	profile domainauth.SignupProfile,
) (domainauth.Identity, error) {
	ident, err := m.signup(ctx, role, profile)
	m.recordAttempt("signup", role, err)
	return ident, err
}

func (m *Machine) signup(
	ctx context.Context,
	role domainauth.Role,
	profile domainauth.SignupProfile,
) (domainauth.Identity, error) {
	if err := validation.Signup(role, profile); err != nil {
		return domainauth.Identity{}, err
	}
	if m.isClosed() {
		return domainauth.Identity{}, ErrClosed
	}

	res, err := m.transport.Signup(ctx, role, profile)
	if err != nil {
		m.logger.InfoContext(ctx, "signup failed", "role", role, "error", err)
		return domainauth.Identity{}, err
	}
	return m.establish(ctx, "signup", res)
}

// Logout ends the session on the server best-effort, then clears all local auth state.
// It is safe to call repeatedly.
func (m *Machine) Logout(ctx context.Context) {
	if m.Snapshot().Authenticated() {
		if err := m.transport.Logout(ctx); err != nil {
			m.logger.WarnContext(ctx, "server logout failed; clearing local session", "error", err)
		}
	}
	m.clear(ctx, "logout")
}

// HandleUnauthorized clears local auth state after the identity service rejected the session.
func (m *Machine) HandleUnauthorized(ctx context.Context) {
	m.clear(ctx, "unauthorized")
}

// RefreshProfile reloads the signed-in identity and publishes it. A nil identity with a nil error
// means the identity service no longer accepts the session; the transport's unauthorized hook has
// cleared it by then. A reply for another role, or one that arrives after a newer transition, is
// returned but not published.
func (m *Machine) RefreshProfile(ctx context.Context) (*domainauth.Identity, error) {
	if m.isClosed() {
		return nil, ErrClosed
	}
	m.mu.RLock()
	epoch := m.epoch
	m.mu.RUnlock()

	ident, err := m.transport.FetchProfile(ctx)
	if err != nil || ident == nil {
		return ident, err
	}
	if !ident.Valid() {
		return nil, apperrors.Transport(errors.New("identity without a known role"))
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()
	m.publishLocked(ctx, "profile_refreshed", func(cur domainauth.Snapshot, e uint64) (domainauth.Snapshot, bool) {
		if e != epoch || !cur.Authenticated() || cur.Identity.Role != ident.Role || *cur.Identity == *ident {
			return cur, false
		}
		return authenticated(*ident), true
	})
	return ident, nil
}

// Close stops the machine. Pending results are dropped and Wait returns ErrClosed.
func (m *Machine) Close() {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.changed)
	m.changed = make(chan struct{})
}

func (m *Machine) beginRestore(ctx context.Context) bool {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return m.publishLocked(ctx, "start", func(cur domainauth.Snapshot, _ uint64) (domainauth.Snapshot, bool) {
		if cur.Status != domainauth.StatusUninitialized {
			return cur, false
		}
		return domainauth.Snapshot{Status: domainauth.StatusRestoring}, true
	})
}

func (m *Machine) runRestore(parent context.Context) domainauth.Snapshot {
	m.mu.RLock()
	cur, epoch := m.snap, m.epoch
	m.mu.RUnlock()
	if cur.Status != domainauth.StatusRestoring {
		return cloneSnapshot(cur)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), m.restoreTimeout)
	defer cancel()

	if err := m.tokens.purgeLegacy(ctx); err != nil {
		m.logger.WarnContext(ctx, "failed to purge legacy tokens", "error", err)
	}

	out, ask := m.attachStored(ctx, epoch)
	if ask {
		out = m.resolve(ctx)
	}

	m.txMu.Lock()
	m.settleLocked(ctx, epoch, out)
	m.txMu.Unlock()

	return m.Snapshot()
}

// restoreOutcome is what a restore decided, applied only if nothing superseded it.
type restoreOutcome struct {
	ident  *domainauth.Identity
	reason string
	// detach drops the attached token. discard also deletes it from the store.
	detach  bool
	discard bool
}

// attachStored installs the persisted token for the restore request. It reports false when the
// restore is already decided without asking the identity service.
func (m *Machine) attachStored(ctx context.Context, epoch uint64) (restoreOutcome, bool) {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	if !m.restoringAt(epoch) {
		return restoreOutcome{reason: "superseded"}, false
	}
	if !m.persistToken {
		if err := m.tokens.clear(ctx); err != nil {
			m.logger.WarnContext(ctx, "failed to clear stale session token", "error", err)
		}
		return restoreOutcome{}, true
	}

	token, ok, err := m.tokens.load(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "session restore failed; continuing anonymous", "error", err)
		return restoreOutcome{reason: "restore_failed"}, false
	}
	if !ok {
		return restoreOutcome{reason: "no_token"}, false
	}
	m.transport.Authorize(token)
	return restoreOutcome{}, true
}

// resolve asks the identity service for the current session. Every error degrades to anonymous.
func (m *Machine) resolve(ctx context.Context) restoreOutcome {
	ident, err := m.transport.RestoreSession(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "session restore failed; continuing anonymous", "error", err)
		// The token stays stored for the next start; it is not attached meanwhile.
		return restoreOutcome{reason: "restore_failed", detach: m.persistToken}
	}
	if ident == nil || !ident.Valid() {
		return restoreOutcome{reason: "no_session", detach: m.persistToken, discard: m.persistToken}
	}
	return restoreOutcome{ident: ident, reason: "restored"}
}

// settleLocked applies out and publishes it. A transition since epoch supersedes the restore,
// together with its token side effects. Callers hold txMu.
func (m *Machine) settleLocked(ctx context.Context, epoch uint64, out restoreOutcome) {
	if !m.restoringAt(epoch) {
		m.logger.DebugContext(ctx, "dropping superseded restore", "reason", out.reason)
		return
	}

	if out.detach {
		m.transport.Authorize("")
	}
	if out.discard {
		if err := m.tokens.clear(ctx); err != nil {
			m.logger.WarnContext(ctx, "failed to discard rejected token", "error", err)
		}
	}

	m.publishLocked(ctx, out.reason, func(domainauth.Snapshot, uint64) (domainauth.Snapshot, bool) {
		if out.ident == nil {
			return domainauth.Snapshot{Status: domainauth.StatusAnonymous}, true
		}
		return authenticated(*out.ident), true
	})
}

// restoringAt reports whether no transition has happened since the restore began at epoch.
// Callers hold txMu.
func (m *Machine) restoringAt(epoch uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.closed && m.epoch == epoch && m.snap.Status == domainauth.StatusRestoring
}

// establish installs a successful auth result and publishes it. Results whose caller has gone
// away, or that arrive after Close, are dropped.
func (m *Machine) establish(ctx context.Context, reason string, res ports.AuthResult) (domainauth.Identity, error) {
	if !res.Identity.Valid() {
		return domainauth.Identity{}, apperrors.Transport(errors.New("identity without a known role"))
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	if m.isClosed() {
		return domainauth.Identity{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		m.logger.DebugContext(ctx, "dropping stale auth result", "reason", reason, "role", res.Identity.Role)
		m.abandonLocked(ctx)
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeCanceled, "request canceled")
	}

	if m.persistToken {
		if res.Token == "" {
			return domainauth.Identity{}, apperrors.Transport(errors.New("missing bearer token"))
		}
		if err := m.tokens.save(ctx, res.Token); err != nil {
			return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to save session")
		}
		m.transport.Authorize(res.Token)
	}

	m.publishLocked(ctx, reason, func(domainauth.Snapshot, uint64) (domainauth.Snapshot, bool) {
		return authenticated(res.Identity), true
	})
	return res.Identity, nil
}

// abandonLocked ends the server session a dropped cookie result created. The jar is only dropped
// when no session is published, since it then holds nothing else. Bearer results are never
// attached, so there is nothing to undo. Callers hold txMu.
func (m *Machine) abandonLocked(ctx context.Context) {
	if m.persistToken || m.Snapshot().Authenticated() {
		return
	}
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abandonTimeout)
	defer cancel()
	if err := m.transport.Logout(lctx); err != nil {
		m.logger.WarnContext(lctx, "failed to end abandoned session", "error", err)
	}
	m.transport.Authorize("")
}

func (m *Machine) clear(ctx context.Context, reason string) {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	if m.isClosed() {
		return
	}

	m.transport.Authorize("")
	if err := m.tokens.clear(ctx); err != nil {
		m.logger.ErrorContext(ctx, "failed to clear session token", "error", err)
	}
	if m.roles != nil {
		if err := m.roles.Clear(ctx); err != nil {
			m.logger.ErrorContext(ctx, "failed to clear selected role", "error", err)
		}
	}

	m.publishLocked(ctx, reason, func(cur domainauth.Snapshot, _ uint64) (domainauth.Snapshot, bool) {
		if cur.Status == domainauth.StatusAnonymous {
			return cur, false
		}
		return domainauth.Snapshot{Status: domainauth.StatusAnonymous}, true
	})
}

// publishLocked applies next to the current snapshot and notifies observers. Callers hold txMu.
func (m *Machine) publishLocked(
	ctx context.Context,
	reason string,
	next func(cur domainauth.Snapshot, epoch uint64) (domainauth.Snapshot, bool),
) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	from := m.snap
	to, ok := next(from, m.epoch)
	if !ok {
		m.mu.Unlock()
		return false
	}
	m.snap = to
	m.epoch++
	if to.Identity != nil {
		m.lastRole = to.Identity.Role
	}
	close(m.changed)
	m.changed = make(chan struct{})
	observers := make([]Observer, 0, len(m.observers))
	for id := 0; id < m.nextObsID; id++ {
		if o, exists := m.observers[id]; exists {
			observers = append(observers, o)
		}
	}
	m.mu.Unlock()

	attrs := []any{"from", from.Status, "to", to.Status, "reason", reason}
	if to.Identity != nil {
		attrs = append(attrs, "role", to.Identity.Role)
	}
	m.logger.InfoContext(ctx, "session transition", attrs...)

	for _, o := range observers {
		o(cloneSnapshot(from), cloneSnapshot(to))
	}
	return true
}

func (m *Machine) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

func (m *Machine) recordAttempt(action string, role domainauth.Role, err error) {
	if m.onAttempt != nil {
		m.onAttempt(action, role, err)
	}
}

func authenticated(ident domainauth.Identity) domainauth.Snapshot {
	return domainauth.Snapshot{Status: domainauth.StatusAuthenticated, Identity: &ident}
}

func cloneSnapshot(s domainauth.Snapshot) domainauth.Snapshot {
	if s.Identity != nil {
		ident := *s.Identity
		s.Identity = &ident
	}
	return s
}

package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dinehub/admin-console/internal/apiclient"
	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/listing"
	"github.com/dinehub/admin-console/internal/logger"
	"github.com/dinehub/admin-console/internal/session"
	"github.com/dinehub/admin-console/internal/ws"
)

// ErrSessionEnded is returned by Open for a session that expired or logged
// out while its request was in flight.
var ErrSessionEnded = errors.New("session has ended")

// Pusher delivers events to a session's browser tabs.
// Satisfied by *ws.Hub; narrow interface for testability.
type Pusher interface {
	Push(sessionID uuid.UUID, typ string, payload any)
	CloseSession(sessionID uuid.UUID)
}

// SessionDeleter drops a session once the backend rejects its token.
type SessionDeleter interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

// Gauge tracks the number of open workspaces.
type Gauge interface {
	WorkspaceOpened()
	WorkspaceClosed()
}

type Options struct {
	// Client is the shared backend client; each workspace binds it to its
	// own bearer token.
	Client      *apiclient.Client
	Pusher      Pusher
	Sessions    SessionDeleter
	Validator   *validator.Validate
	SearchDelay time.Duration
	Recorder    listing.Recorder
	Gauge       Gauge
	Log         logrus.FieldLogger
}

// Registry owns every open workspace. It implements ws.MessageHandler.
type Registry struct {
	opts Options
	log  *logrus.Entry
	ctx  context.Context
	stop context.CancelFunc

	mu     sync.Mutex
	spaces map[uuid.UUID]*Workspace
	ended  map[uuid.UUID]time.Time // session ID -> its ExpiresAt
}

func NewRegistry(opts Options) *Registry {
	ctx, stop := context.WithCancel(context.Background())
	return &Registry{
		opts:   opts,
		log:    logger.Module(opts.Log, "workspace"),
		ctx:    ctx,
		stop:   stop,
		spaces: make(map[uuid.UUID]*Workspace),
		ended:  make(map[uuid.UUID]time.Time),
	}
}

// Open returns the session's workspace, creating it on first use. A session
// that already ended gets ErrSessionEnded.
func (r *Registry) Open(s session.Session) (*Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.spaces[s.ID]; ok {
		return w, nil
	}
	if _, ok := r.ended[s.ID]; ok {
		return nil, ErrSessionEnded
	}

	id := s.ID
	client := r.opts.Client.With(apiclient.StaticToken(s.BackendToken), func(context.Context) {
		r.Expire(id)
	})
	d := deps{
		notifier:    listing.NotifierFunc(func(n listing.Notification) { r.push(id, ws.EventToast, n) }),
		recorder:    r.opts.Recorder,
		log:         r.log.WithField("session", id),
		searchDelay: r.opts.SearchDelay,
		onState:     func(state any) { r.push(id, ws.EventListUpdated, state) },
	}
	w := build(r.ctx, s, backend.New(client), r.opts.Validator, d)
	r.spaces[id] = w
	if r.opts.Gauge != nil {
		r.opts.Gauge.WorkspaceOpened()
	}
	r.log.WithField("session", id).Debug("workspace opened")
	return w, nil
}

// Get returns an open workspace.
func (r *Registry) Get(id uuid.UUID) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.spaces[id]
	return w, ok
}

// Close tears down a session's workspace, e.g. on logout.
func (r *Registry) Close(id uuid.UUID) {
	if w, ok := r.detach(id); ok {
		r.shut(w)
	}
}

// End closes the workspace and disconnects the session's sockets, on logout.
func (r *Registry) End(id uuid.UUID) {
	if w, ok := r.retire(id); ok {
		r.shut(w)
	}
	if r.opts.Pusher != nil {
		r.opts.Pusher.CloseSession(id)
	}
}

// Expire handles a 401 from the backend: the session is dropped, open tabs
// are told to return to the login screen, and the workspace is closed.
// Concurrent 401s for the same session expire it once.
func (r *Registry) Expire(id uuid.UUID) {
	w, ok := r.retire(id)
	if !ok {
		return
	}
	r.log.WithField("session", id).Info("backend rejected session token")

	if r.opts.Sessions != nil {
		if err := r.opts.Sessions.Delete(context.Background(), id); err != nil {
			r.log.WithError(err).WithField("session", id).Error("delete expired session")
		}
	}
	r.push(id, ws.EventSessionExpired, expiredPayload())
	if r.opts.Pusher != nil {
		r.opts.Pusher.CloseSession(id)
	}
	r.shut(w)
}

func (r *Registry) detach(id uuid.UUID) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.spaces[id]
	delete(r.spaces, id)
	return w, ok
}

// retire detaches the workspace and refuses to reopen it until the session
// would have expired anyway.
func (r *Registry) retire(id uuid.UUID) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.spaces[id]
	delete(r.spaces, id)
	if ok {
		r.ended[id] = w.Session.ExpiresAt
	}
	return w, ok
}

func (r *Registry) shut(w *Workspace) {
	w.Close()
	if r.opts.Gauge != nil {
		r.opts.Gauge.WorkspaceClosed()
	}
}

func expiredPayload() map[string]string {
	return map[string]string{"message": apiclient.Message(apiclient.ErrUnauthorized, "")}
}

// CloseExpired closes workspaces whose session expired at now. It is
// registered with the session sweeper.
func (r *Registry) CloseExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	var expired []uuid.UUID
	for id, w := range r.spaces {
		if w.Session.Expired(now) {
			expired = append(expired, id)
		}
	}
	for id, until := range r.ended {
		if !now.Before(until) {
			delete(r.ended, id)
		}
	}
	r.mu.Unlock()

	closed := 0
	for _, id := range expired {
		w, ok := r.detach(id)
		if !ok {
			continue
		}
		r.push(id, ws.EventSessionExpired, expiredPayload())
		r.shut(w)
		closed++
	}
	return closed, nil
}

// CloseAll tears down every workspace, on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	ids := make([]uuid.UUID, 0, len(r.spaces))
	for id := range r.spaces {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Close(id)
	}
	r.stop()
}

// Len reports the number of open workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spaces)
}

// HandleClientMessage routes a browser message to the session's workspace.
func (r *Registry) HandleClientMessage(id uuid.UUID, msg ws.ClientMessage) {
	w, ok := r.Get(id)
	if !ok {
		return
	}
	if msg.Type != "search" {
		return
	}
	if err := w.Search(msg.Screen, msg.Value); err != nil {
		r.log.WithError(err).WithField("session", id).Debug("ignoring client message")
	}
}

func (r *Registry) push(id uuid.UUID, typ string, payload any) {
	if r.opts.Pusher != nil {
		r.opts.Pusher.Push(id, typ, payload)
	}
}

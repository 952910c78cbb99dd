// Package handler holds the browser-facing HTTP endpoints of the console.
// Every screen endpoint answers the screen's list state; mutations answer
// the toast that was shown plus the refetched state.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/dinehub/admin-console/internal/apiclient"
	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/listing"
	"github.com/dinehub/admin-console/internal/logger"
	"github.com/dinehub/admin-console/internal/middleware"
	"github.com/dinehub/admin-console/internal/pagination"
	"github.com/dinehub/admin-console/internal/session"
	"github.com/dinehub/admin-console/internal/validate"
	"github.com/dinehub/admin-console/internal/workspace"
)

// maxUpload bounds multipart requests (menu images, avatars, documents).
const maxUpload = 10 << 20

const sessionExpiredMessage = "Your session has expired. Please sign in again."

// Workspaces resolves a session to its screens.
// Satisfied by *workspace.Registry; narrow interface for testability.
type Workspaces interface {
	Open(s session.Session) (*workspace.Workspace, error)
	End(id uuid.UUID)
}

// workspaceFor returns the caller's workspace. Routes using it sit behind
// middleware.Authenticate.
func workspaceFor(w http.ResponseWriter, r *http.Request, spaces Workspaces) (*workspace.Workspace, bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return nil, false
	}
	space, err := spaces.Open(sess)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": sessionExpiredMessage})
		return nil, false
	}
	return space, true
}

// --- Response helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to encode JSON response")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func parseID(w http.ResponseWriter, r *http.Request, name, what string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + what + " ID"})
		return 0, false
	}
	return id, true
}

// writeBackendError maps a backend failure to the console's answer. The
// server's message is passed through, except on a 401: the session is gone.
func writeBackendError(w http.ResponseWriter, err error, fallback string) {
	status := apiclient.StatusCode(err)
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized), errors.Is(err, listing.ErrClosed):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": sessionExpiredMessage})
		return
	case status == 0 || status >= 500:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": apiclient.Message(err, fallback)})
}

func writeValidation(w http.ResponseWriter, err error) {
	resp := map[string]interface{}{"error": "validation failed"}
	if fields := validate.Fields(err); fields != nil {
		resp["fields"] = fields
	} else {
		resp["error"] = err.Error()
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}

// --- Multipart forms ---

func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return false
	}
	return true
}

// formFile returns the named upload, or nil when the field is absent. The
// returned func closes the upload.
func formFile(r *http.Request, field string) (*apiclient.File, func(), error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return &apiclient.File{
		Field:       field,
		Name:        hdr.Filename,
		ContentType: contentType(hdr),
		Content:     f,
	}, func() { _ = f.Close() }, nil
}

func contentType(hdr *multipart.FileHeader) string {
	if ct := hdr.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// formValues reads typed values from a parsed form, collecting one message
// per malformed field.
type formValues struct {
	r    *http.Request
	errs map[string]string
}

func newFormValues(r *http.Request) *formValues {
	return &formValues{r: r, errs: map[string]string{}}
}

func (f *formValues) text(key string) string {
	return strings.TrimSpace(f.r.FormValue(key))
}

func (f *formValues) integer(key string) int {
	v := f.text(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.errs[key] = "must be a whole number"
	}
	return n
}

func (f *formValues) id(key string) int64 {
	v := f.text(key)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		f.errs[key] = "must be a whole number"
	}
	return n
}

// flag reads a boolean, answering def when the field is absent.
func (f *formValues) flag(key string, def bool) bool {
	v := f.text(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		f.errs[key] = "must be true or false"
	}
	return b
}

func (f *formValues) amount(key string) decimal.Decimal {
	v := f.text(key)
	if v == "" {
		f.errs[key] = "is required"
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		f.errs[key] = "must be a number"
		return decimal.Zero
	}
	if d.IsNegative() {
		f.errs[key] = "must be at least 0"
	}
	return d
}

// check returns a mutation precondition reporting malformed fields first,
// then the validation tags of in.
func (f *formValues) check(v *validator.Validate, in any) func() error {
	return func() error {
		if len(f.errs) > 0 {
			return &validate.Error{Fields: f.errs}
		}
		return validate.Struct(v, in)
	}
}

// --- List screens ---

// queryRequest changes one or more query inputs. Absent fields stay as they are.
type queryRequest[F comparable] struct {
	Search   *string `json:"search"`
	Filter   *F      `json:"filter"`
	Page     *int    `json:"page"`
	Move     string  `json:"move"` // "prev" or "next"
	PageSize *int    `json:"page_size"`
}

// screen serves the state endpoints shared by every list screen.
type screen[T any, F comparable] struct {
	spaces Workspaces
	pick   func(*workspace.Workspace) *listing.Controller[T, F]
	log    *logrus.Entry
}

func newScreen[T any, F comparable](spaces Workspaces, log logrus.FieldLogger, name string, pick func(*workspace.Workspace) *listing.Controller[T, F]) *screen[T, F] {
	return &screen[T, F]{spaces: spaces, pick: pick, log: logger.Module(log, "handler").WithField("screen", name)}
}

func (s *screen[T, F]) register(r chi.Router) {
	r.Get("/", s.State)
	r.Put("/query", s.UpdateQuery)
	r.Post("/refresh", s.Refresh)
}

func (s *screen[T, F]) controller(w http.ResponseWriter, r *http.Request) (*listing.Controller[T, F], bool) {
	ws, ok := workspaceFor(w, r, s.spaces)
	if !ok {
		return nil, false
	}
	return s.pick(ws), true
}

// State returns the screen's state, fetching first when the screen was
// never loaded.
func (s *screen[T, F]) State(w http.ResponseWriter, r *http.Request) {
	ctl, ok := s.controller(w, r)
	if !ok {
		return
	}
	if !s.mount(w, r, ctl) {
		return
	}
	writeJSON(w, http.StatusOK, ctl.State())
}

// mount runs the first fetch of a screen that was never loaded.
func (s *screen[T, F]) mount(w http.ResponseWriter, r *http.Request, ctl *listing.Controller[T, F]) bool {
	res := ctl.Snapshot()
	if res.Pagination != nil || res.Failed() || res.IsLoading {
		return true
	}
	if _, err := ctl.Fetch(r.Context()); err != nil && !s.settled(w, err) {
		return false
	}
	return true
}

// UpdateQuery applies query changes. Search is debounced and answered 202
// right away; the result arrives over the WebSocket. Everything else fetches
// before answering.
func (s *screen[T, F]) UpdateQuery(w http.ResponseWriter, r *http.Request) {
	ctl, ok := s.controller(w, r)
	if !ok {
		return
	}
	var req queryRequest[F]
	if !decodeJSON(w, r, &req) {
		return
	}

	if (req.Page != nil || req.Move != "") && !s.mount(w, r, ctl) {
		return
	}

	ctx := r.Context()
	ev, evErr := ctl.Events(ctx)
	var err error
	if req.Filter != nil {
		_, err = ctl.SetFilter(ctx, *req.Filter)
	}
	if err == nil && req.PageSize != nil {
		if !ctl.State().Footer.ChangeRowsPerPage(ev, *req.PageSize) {
			err = listing.ErrInvalidPageSize
		} else {
			err = evErr()
		}
	}
	if err == nil && (req.Page != nil || req.Move != "") {
		err = s.turnPage(ctl.State().Footer, ev, req)
		if err == nil {
			err = evErr()
		}
	}
	if err != nil {
		if errors.Is(err, listing.ErrInvalidPage) || errors.Is(err, listing.ErrInvalidPageSize) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if !s.settled(w, err) {
			return
		}
	}

	if req.Search != nil {
		ctl.SetSearch(*req.Search)
		writeJSON(w, http.StatusAccepted, ctl.State())
		return
	}
	writeJSON(w, http.StatusOK, ctl.State())
}

// turnPage fires the footer's page event for an explicit page or a prev/next move.
func (s *screen[T, F]) turnPage(footer pagination.View, ev pagination.Events, req queryRequest[F]) error {
	var fired bool
	switch {
	case req.Page != nil:
		fired = footer.GoTo(ev, *req.Page)
	case req.Move == "prev":
		fired = footer.Prev(ev)
	case req.Move == "next":
		fired = footer.Next(ev)
	}
	if !fired {
		return listing.ErrInvalidPage
	}
	return nil
}

// Refresh refetches the current query.
func (s *screen[T, F]) Refresh(w http.ResponseWriter, r *http.Request) {
	ctl, ok := s.controller(w, r)
	if !ok {
		return
	}
	if _, err := ctl.Refetch(r.Context()); err != nil && !s.settled(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, ctl.State())
}

// settled reports whether a fetch error still leaves a state worth
// rendering. A failed fetch is part of the state; a lost session is not.
func (s *screen[T, F]) settled(w http.ResponseWriter, err error) bool {
	if errors.Is(err, apiclient.ErrUnauthorized) || errors.Is(err, listing.ErrClosed) {
		writeBackendError(w, err, "")
		return false
	}
	if !errors.Is(err, listing.ErrSuperseded) {
		s.log.WithError(err).Debug("fetch failed; error is in the list state")
	}
	return true
}

// --- Mutations ---

type mutationResponse[T any, F comparable] struct {
	Notification listing.Notification `json:"notification"`
	State        listing.State[T, F]  `json:"state"`
}

// dispatch runs m on ctl and answers the toast plus the refetched state.
func dispatch[T any, F comparable](w http.ResponseWriter, r *http.Request, ctl *listing.Controller[T, F], m listing.Mutation) {
	n, err := ctl.Dispatch(r.Context(), m)
	if err != nil {
		writeMutationError(w, n, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse[T, F]{Notification: n, State: ctl.State()})
}

func writeMutationError(w http.ResponseWriter, n listing.Notification, err error) {
	if validate.Fields(err) != nil {
		writeValidation(w, err)
		return
	}
	if listing.IsValidation(err) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"error": n.Message, "notification": n})
		return
	}
	status := apiclient.StatusCode(err)
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized), errors.Is(err, listing.ErrClosed):
		writeBackendError(w, err, "")
		return
	case status == 0 || status >= 500:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]interface{}{"error": n.Message, "notification": n})
}

// send adapts a backend call answering an Ack to a mutation's Send.
func send(call func(ctx context.Context) (backend.Ack, error)) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		ack, err := call(ctx)
		return ack.Message, err
	}
}

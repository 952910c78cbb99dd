package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/listing"
	"github.com/dinehub/admin-console/internal/onboarding"
	"github.com/dinehub/admin-console/internal/validate"
)

// OnboardingHandler handles the restaurant onboarding wizard.
type OnboardingHandler struct {
	spaces Workspaces
}

// NewOnboardingHandler creates a new OnboardingHandler.
func NewOnboardingHandler(spaces Workspaces) *OnboardingHandler {
	return &OnboardingHandler{spaces: spaces}
}

// RegisterRoutes registers onboarding endpoints.
// Expected to be mounted at /api/onboarding.
func (h *OnboardingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Progress)
	r.Delete("/", h.Reset)
	r.Post("/submit", h.Submit)
	r.Put("/{step}", h.SaveStep)
}

// --- Handlers ---

// Progress returns the wizard's current step and everything saved so far.
func (h *OnboardingHandler) Progress(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ws.Onboarding.Progress())
}

// SaveStep validates and stores one step. The documents step is a multipart
// upload; the others are JSON.
func (h *OnboardingHandler) SaveStep(w http.ResponseWriter, r *http.Request) {
	step, err := onboarding.ParseStep(chi.URLParam(r, "step"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	wiz := ws.Onboarding

	switch step {
	case onboarding.StepBasic:
		var b onboarding.Basic
		if !decodeJSON(w, r, &b) {
			return
		}
		err = wiz.SaveBasic(b)
	case onboarding.StepAddress:
		var a onboarding.Address
		if !decodeJSON(w, r, &a) {
			return
		}
		err = wiz.SaveAddress(a)
	case onboarding.StepOperations:
		var o onboarding.Operations
		if !decodeJSON(w, r, &o) {
			return
		}
		err = wiz.SaveOperations(o)
	case onboarding.StepDocuments:
		d, ok := readDocuments(w, r)
		if !ok {
			return
		}
		err = wiz.SaveDocuments(d)
	}

	if err != nil {
		writeOnboardingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wiz.Progress())
}

// Submit registers the restaurant. It appears on the restaurant screen as
// Pending, so that list is refetched on success.
func (h *OnboardingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	form, err := ws.Onboarding.Form()
	if err != nil {
		writeOnboardingError(w, err)
		return
	}

	n, err := ws.Restaurants.Dispatch(r.Context(), listing.Mutation{
		Action: "onboard",
		Send: send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.SubmitOnboarding(ctx, form)
		}),
		SuccessMessage: "Restaurant submitted for approval",
		ErrorMessage:   "Failed to submit restaurant",
	})
	if err != nil {
		writeMutationError(w, n, err)
		return
	}
	ws.Onboarding.Reset()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notification": n,
		"progress":     ws.Onboarding.Progress(),
	})
}

// Reset discards the wizard.
func (h *OnboardingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	ws.Onboarding.Reset()
	writeJSON(w, http.StatusOK, ws.Onboarding.Progress())
}

// --- Helpers ---

func readDocuments(w http.ResponseWriter, r *http.Request) (onboarding.Documents, bool) {
	if !parseMultipart(w, r) {
		return onboarding.Documents{}, false
	}
	var d onboarding.Documents
	for _, part := range []struct {
		field string
		dst   **onboarding.Document
	}{
		{onboarding.FieldFSSAI, &d.FSSAI},
		{onboarding.FieldGSTCertificate, &d.GSTCertificate},
		{onboarding.FieldPAN, &d.PAN},
		{onboarding.FieldMenu, &d.Menu},
	} {
		doc, err := readDocument(r, part.field)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid upload for " + part.field})
			return onboarding.Documents{}, false
		}
		*part.dst = doc
	}
	return d, true
}

func readDocument(r *http.Request, field string) (*onboarding.Document, error) {
	f, closeFile, err := formFile(r, field)
	if err != nil || f == nil {
		return nil, err
	}
	defer closeFile()
	data, err := io.ReadAll(f.Content)
	if err != nil {
		return nil, err
	}
	return &onboarding.Document{Name: f.Name, ContentType: f.ContentType, Data: data}, nil
}

func writeOnboardingError(w http.ResponseWriter, err error) {
	switch {
	case validate.Fields(err) != nil:
		writeValidation(w, err)
	case errors.Is(err, onboarding.ErrStepOrder), errors.Is(err, onboarding.ErrIncomplete):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
}

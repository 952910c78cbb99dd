// Package onboarding holds the multi-step restaurant onboarding wizard. Each
// step is validated on save; steps are completed in order and the whole
// registration goes to the backend as one multipart request.
package onboarding

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dinehub/admin-console/internal/apiclient"
	"github.com/dinehub/admin-console/internal/validate"
)

var (
	ErrStepOrder  = errors.New("complete the previous steps first")
	ErrIncomplete = errors.New("onboarding is not complete")
)

// Wizard is one admin's in-progress onboarding. Safe for concurrent use.
type Wizard struct {
	v *validator.Validate

	mu         sync.Mutex
	basic      *Basic
	address    *Address
	operations *Operations
	documents  *Documents
}

func NewWizard(v *validator.Validate) *Wizard {
	if v == nil {
		v = validate.New()
	}
	return &Wizard{v: v}
}

// Progress is the wizard state shown to the browser.
type Progress struct {
	Current    string      `json:"current"`
	Completed  []string    `json:"completed"`
	Basic      *Basic      `json:"basic,omitempty"`
	Address    *Address    `json:"address,omitempty"`
	Operations *Operations `json:"operations,omitempty"`
	Documents  *Documents  `json:"documents,omitempty"`
	Ready      bool        `json:"ready"`
}

func (w *Wizard) SaveBasic(b Basic) error {
	b.GSTNumber = strings.ToUpper(strings.TrimSpace(b.GSTNumber))
	if !b.GSTRegistered {
		b.GSTNumber = ""
	}
	if err := validate.Struct(w.v, b); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.basic = &b
	return nil
}

func (w *Wizard) SaveAddress(a Address) error {
	return save(w, StepAddress, a, func() { w.address = &a })
}

func (w *Wizard) SaveOperations(o Operations) error {
	if !o.OffersDelivery {
		o.DeliveryRadiusKM = 0
	}
	return save(w, StepOperations, o, func() { w.operations = &o })
}

func (w *Wizard) SaveDocuments(d Documents) error {
	w.mu.Lock()
	gst := w.basic != nil && w.basic.GSTRegistered
	w.mu.Unlock()
	if err := validate.Struct(w.v, d); err != nil {
		return err
	}
	if gst && d.GSTCertificate == nil {
		return &validate.Error{Fields: map[string]string{"gst_certificate": "is required"}}
	}
	return save(w, StepDocuments, nil, func() { w.documents = &d })
}

// save validates payload (if any), checks every earlier step is complete and
// stores the step. Later steps are kept when an earlier one is re-saved.
func save(w *Wizard, step Step, payload any, store func()) error {
	if payload != nil {
		if err := validate.Struct(w.v, payload); err != nil {
			return err
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.firstMissingLocked() < step {
		return ErrStepOrder
	}
	store()
	return nil
}

// firstMissingLocked returns the first step without data, or stepCount.
// Documents saved before basic switched to GST registered lack the
// certificate and count as missing.
func (w *Wizard) firstMissingLocked() Step {
	switch {
	case w.basic == nil:
		return StepBasic
	case w.address == nil:
		return StepAddress
	case w.operations == nil:
		return StepOperations
	case w.documents == nil:
		return StepDocuments
	case w.basic.GSTRegistered && w.documents.GSTCertificate == nil:
		return StepDocuments
	}
	return stepCount
}

func (w *Wizard) Progress() Progress {
	w.mu.Lock()
	defer w.mu.Unlock()
	next := w.firstMissingLocked()
	p := Progress{
		Basic:      w.basic,
		Address:    w.address,
		Operations: w.operations,
		Documents:  w.documents,
		Completed:  []string{},
		Ready:      next == stepCount,
	}
	for _, s := range Steps() {
		if s < next {
			p.Completed = append(p.Completed, s.String())
		}
	}
	if next < stepCount {
		p.Current = next.String()
	} else {
		p.Current = StepDocuments.String()
	}
	return p
}

// Reset discards everything, e.g. after a successful submit.
func (w *Wizard) Reset() {
	w.mu.Lock()
	w.basic, w.address, w.operations, w.documents = nil, nil, nil, nil
	w.mu.Unlock()
}

// Form builds the submit request from every completed step.
func (w *Wizard) Form() (apiclient.Form, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.firstMissingLocked() != stepCount {
		return apiclient.Form{}, ErrIncomplete
	}
	b, a, o, d := w.basic, w.address, w.operations, w.documents

	fields := map[string]string{
		"restaurant_name":  b.RestaurantName,
		"owner_name":       b.OwnerName,
		"email":            b.Email,
		"phone":            b.Phone,
		"cuisine":          b.Cuisine,
		"gst_registered":   strconv.FormatBool(b.GSTRegistered),
		"address_line1":    a.Line1,
		"address_line2":    a.Line2,
		"city":             a.City,
		"state":            a.State,
		"pincode":          a.Pincode,
		"opens_at":         o.OpensAt,
		"closes_at":        o.ClosesAt,
		"days":             strings.Join(o.Days, ","),
		"offers_delivery":  strconv.FormatBool(o.OffersDelivery),
		"avg_prep_minutes": strconv.Itoa(o.AvgPrepMinutes),
	}
	if b.GSTRegistered {
		fields["gst_number"] = b.GSTNumber
	}
	if a.Latitude != 0 || a.Longitude != 0 {
		fields["latitude"] = strconv.FormatFloat(a.Latitude, 'f', 6, 64)
		fields["longitude"] = strconv.FormatFloat(a.Longitude, 'f', 6, 64)
	}
	if o.OffersDelivery {
		fields["delivery_radius_km"] = strconv.FormatFloat(o.DeliveryRadiusKM, 'f', -1, 64)
	}

	form := apiclient.Form{Fields: fields}
	for _, doc := range []struct {
		field string
		d     *Document
	}{
		{FieldFSSAI, d.FSSAI},
		{FieldGSTCertificate, d.GSTCertificate},
		{FieldPAN, d.PAN},
		{FieldMenu, d.Menu},
	} {
		if doc.d == nil {
			continue
		}
		form.Files = append(form.Files, apiclient.File{
			Field:       doc.field,
			Name:        doc.d.Name,
			ContentType: doc.d.ContentType,
			Content:     bytes.NewReader(doc.d.Data),
		})
	}
	return form, nil
}

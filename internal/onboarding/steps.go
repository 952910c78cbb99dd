package onboarding

import (
	"fmt"
	"strings"
)

// Step is one page of the onboarding wizard, in the order they must be completed.
type Step int

const (
	StepBasic Step = iota
	StepAddress
	StepOperations
	StepDocuments
	stepCount
)

var stepNames = [...]string{"basic", "address", "operations", "documents"}

func (s Step) String() string {
	if s < 0 || s >= stepCount {
		return ""
	}
	return stepNames[s]
}

func ParseStep(s string) (Step, error) {
	for i, name := range stepNames {
		if strings.EqualFold(name, s) {
			return Step(i), nil
		}
	}
	return 0, fmt.Errorf("unknown onboarding step %q", s)
}

// Steps returns every step in order.
func Steps() []Step {
	return []Step{StepBasic, StepAddress, StepOperations, StepDocuments}
}

type Basic struct {
	RestaurantName string `json:"restaurant_name" validate:"required,min=2,max=120"`
	OwnerName      string `json:"owner_name" validate:"required,max=120"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required,phone"`
	Cuisine        string `json:"cuisine" validate:"required,max=60"`
	GSTRegistered  bool   `json:"gst_registered"`
	GSTNumber      string `json:"gst_number" validate:"required_if=GSTRegistered true,omitempty,gstin"`
}

type Address struct {
	Line1     string  `json:"line1" validate:"required,max=200"`
	Line2     string  `json:"line2" validate:"max=200"`
	City      string  `json:"city" validate:"required,max=80"`
	State     string  `json:"state" validate:"required,max=80"`
	Pincode   string  `json:"pincode" validate:"required,numeric,len=6"`
	Latitude  float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude float64 `json:"longitude" validate:"omitempty,longitude"`
}

type Operations struct {
	OpensAt          string   `json:"opens_at" validate:"required,datetime=15:04"`
	ClosesAt         string   `json:"closes_at" validate:"required,datetime=15:04"`
	Days             []string `json:"days" validate:"required,min=1,dive,oneof=mon tue wed thu fri sat sun"`
	OffersDelivery   bool     `json:"offers_delivery"`
	DeliveryRadiusKM float64  `json:"delivery_radius_km" validate:"required_if=OffersDelivery true,omitempty,gt=0,lte=50"`
	AvgPrepMinutes   int      `json:"avg_prep_minutes" validate:"required,gte=5,lte=180"`
}

// Document is an uploaded file held until the final submit.
type Document struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// Documents are the files of the last step. FSSAI is always required; the
// GST certificate is required when the restaurant is GST registered.
type Documents struct {
	FSSAI          *Document `json:"fssai_document" validate:"required"`
	GSTCertificate *Document `json:"gst_certificate"`
	PAN            *Document `json:"pan_card"`
	Menu           *Document `json:"menu"`
}

// Field names of the document parts in the submit request.
const (
	FieldFSSAI          = "fssai_document"
	FieldGSTCertificate = "gst_certificate"
	FieldPAN            = "pan_card"
	FieldMenu           = "menu"
)

// Package request defines the service request lifecycle shared by the
// patient and nurse sides.
package request

import (
	"time"

	"github.com/nurse24/platform/internal/geo"
)

// Status tracks a request through its lifecycle.
type Status string

const (
	StatusRequested  Status = "requested"
	StatusMatched    Status = "matched"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRated      Status = "rated"
)

// ServiceType distinguishes planned from urgent visits.
type ServiceType string

const (
	ServicePrescribed ServiceType = "prescribed"
	ServiceEmergency  ServiceType = "emergency"
)

// ServiceRequest is an in-home visit request as the backend returns it.
type ServiceRequest struct {
	ID          string           `json:"id"`
	PatientName string           `json:"patientName"`
	PatientAge  string           `json:"patientAge"`
	Address     string           `json:"address"`
	ServiceType ServiceType      `json:"serviceType"`
	Details     string           `json:"details"`
	Coordinates *geo.Coordinates `json:"coordinates,omitempty"`
	Status      Status           `json:"status"`
	NurseID     string           `json:"nurseId,omitempty"`
	Paid        bool             `json:"paid,omitempty"`
	Rating      int              `json:"rating,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// PaymentMethod enumerates the accepted payment channels.
type PaymentMethod string

const (
	PaymentVodafone PaymentMethod = "vodafone"
	PaymentInstapay PaymentMethod = "instapay"
	PaymentCash     PaymentMethod = "cash"
)

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentVodafone, PaymentInstapay, PaymentCash:
		return true
	}
	return false
}

// Electronic reports whether the method needs a transaction reference.
func (m PaymentMethod) Electronic() bool {
	return m == PaymentVodafone || m == PaymentInstapay
}

// Package account defines the account/profile shape shared by the API
// client, the session cache and the mock backend.
package account

import "github.com/nurse24/platform/internal/geo"

// Role distinguishes the two sides of the marketplace.
type Role string

const (
	RolePatient Role = "patient"
	RoleNurse   Role = "nurse"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleNurse
}

// Account is the wire shape of a user as produced by the backend. The
// password is never part of this struct; the mock stores it separately
// so no response can echo it.
type Account struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Role            Role   `json:"userType"`
	Name            string `json:"name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`
	ProfileComplete bool   `json:"profileComplete"`
	ProfileImage    string `json:"profileImage,omitempty"`

	// Patient profile extension, populated by the complete-profile step.
	DateOfBirth       string   `json:"dateOfBirth,omitempty"`
	Gender            string   `json:"gender,omitempty"`
	EmergencyContact  string   `json:"emergencyContact,omitempty"`
	BloodType         string   `json:"bloodType,omitempty"`
	MedicalConditions []string `json:"medicalConditions"`
	Allergies         []string `json:"allergies"`

	// Nurse profile extension. Availability and location are volatile,
	// toggled per session. The bools and slices carry no omitempty: a
	// merge must be able to un-set them.
	NationalID               string           `json:"nationalId,omitempty"`
	LicenseID                string           `json:"licenseId,omitempty"`
	FaceVerificationComplete bool             `json:"faceVerificationComplete"`
	Available                bool             `json:"availabilityStatus"`
	Location                 *geo.Coordinates `json:"location,omitempty"`
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	out := *a
	if a.MedicalConditions != nil {
		out.MedicalConditions = append([]string(nil), a.MedicalConditions...)
	}
	if a.Allergies != nil {
		out.Allergies = append([]string(nil), a.Allergies...)
	}
	if a.Location != nil {
		loc := *a.Location
		out.Location = &loc
	}
	return &out
}

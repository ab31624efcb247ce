package models

import "fmt"

// ContactType classifies an emergency contact.
type ContactType string

const (
	ContactEmergency ContactType = "emergency"
	ContactMedical   ContactType = "medical"
	ContactFamily    ContactType = "family"
)

// ParseContactType validates a wire-format contact type.
func ParseContactType(s string) (ContactType, error) {
	switch t := ContactType(s); t {
	case ContactEmergency, ContactMedical, ContactFamily:
		return t, nil
	default:
		return "", fmt.Errorf("unknown contact type: %q", s)
	}
}

// Contact is one emergency contact shown alongside critical alerts.
type Contact struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Phone string      `json:"phone"`
	Type  ContactType `json:"type"`
}

// DefaultContacts seeds the contact list on first use.
func DefaultContacts() []Contact {
	return []Contact{
		{Name: "Emergency Services", Phone: "911", Type: ContactEmergency},
		{Name: "Primary Doctor", Phone: "", Type: ContactMedical},
		{Name: "Family Contact", Phone: "", Type: ContactFamily},
	}
}

package identity

import "time"

// Registration is a phone number accepted by the stub service. PINs are never
// kept.
type Registration struct {
	ID           string
	PhoneNumber  string
	RegisteredAt time.Time
}

// Request is the body of POST /user/register.
type Request struct {
	PhoneNumber string `json:"phoneNumber"`
	PIN         string `json:"pin"`
}

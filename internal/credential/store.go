// Package credential reads the phone number an earlier onboarding step left on
// the device.
package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// PhoneNumberKey is the storage key shared with the phone entry step.
const PhoneNumberKey = "userPhoneNumber"

// ErrNotFound reports that no phone number has been stored.
var ErrNotFound = errors.New("phone number not stored")

// Store is the read-only view the PIN flow needs.
type Store interface {
	PhoneNumber(ctx context.Context) (string, error)
}

// Writer stores the phone number. Only the phone entry step and tests write.
type Writer interface {
	SavePhoneNumber(ctx context.Context, phone string) error
}

// ReadWriter is implemented by every backend in this package.
type ReadWriter interface {
	Store
	Writer
}

// Key returns the storage key for namespace, e.g. "device-7:userPhoneNumber".
func Key(namespace string) string {
	if namespace == "" {
		return PhoneNumberKey
	}
	return namespace + ":" + PhoneNumberKey
}

func normalize(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", ErrNotFound
	}
	return phone, nil
}

func validateWrite(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", fmt.Errorf("phone number must not be empty")
	}
	return phone, nil
}

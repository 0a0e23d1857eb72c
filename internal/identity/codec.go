// Package identity encodes and decodes the opaque user identifiers handed to
// the identity host. An identifier has the form "f:<instance-id>:<native-key>".
package identity

import (
	"errors"
	"strings"
)

// Tag marks an identifier as belonging to a federated record.
const Tag = "f"

const separator = ":"

var (
	// ErrMalformedIdentity is returned when the identifier does not have exactly
	// three colon separated parts with the federated tag first.
	ErrMalformedIdentity = errors.New("malformed federated identity")
	// ErrInstanceMismatch is returned when the identifier was issued by another
	// adapter instance.
	ErrInstanceMismatch = errors.New("federated identity belongs to another adapter instance")
)

// Encode builds the opaque identifier for nativeKey issued by instanceID.
func Encode(instanceID, nativeKey string) string {
	return Tag + separator + instanceID + separator + nativeKey
}

// Decode returns the native key carried by opaqueID. The key itself is not
// validated; an empty key is accepted and simply never matches a row.
func Decode(opaqueID, expectedInstanceID string) (string, error) {
	parts := strings.Split(opaqueID, separator)
	if len(parts) != 3 || parts[0] != Tag {
		return "", ErrMalformedIdentity
	}
	if parts[1] != expectedInstanceID {
		return "", ErrInstanceMismatch
	}
	return parts[2], nil
}

package directory

import (
	"github.com/SimpnicServerTeam/scs-user-federation/internal/identity"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/models"
)

// MapRecord converts a stored row into the entity handed to the host. Only
// the id is rewritten; every other field is copied as is.
func MapRecord(rec models.ExternalUserRecord, instanceID string) models.UserEntity {
	return models.UserEntity{
		ID:            identity.Encode(instanceID, rec.NativeKey),
		Username:      rec.Username,
		Email:         rec.Email,
		FirstName:     rec.FirstName,
		LastName:      rec.LastName,
		Enabled:       rec.Enabled,
		EmailVerified: rec.EmailVerified,
	}
}

package models

// CredentialValidationRequest is sent by the identity host to check a secret.
type CredentialValidationRequest struct {
	Username string `json:"username" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Value    string `json:"value"`
}

// CredentialValidationResponse reports the verification outcome.
type CredentialValidationResponse struct {
	Valid bool `json:"valid"`
}

// CredentialTypeResponse reports whether a credential type is supported.
type CredentialTypeResponse struct {
	Type      string `json:"type"`
	Supported bool   `json:"supported"`
}

// UserListResponse wraps search results.
type UserListResponse struct {
	Users []UserEntity `json:"users"`
}

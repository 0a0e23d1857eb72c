package models

// ExternalUserRecord is a row read from the external user table. It is an
// immutable snapshot and is never cached.
type ExternalUserRecord struct {
	NativeKey     string
	Username      string
	Email         string
	FirstName     string
	LastName      string
	Enabled       bool
	EmailVerified bool
}

// UserEntity is the user handed to the identity host. ID is the opaque
// federated identity, not the native key.
type UserEntity struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Enabled       bool   `json:"enabled"`
	EmailVerified bool   `json:"emailVerified"`
}

package domain

import (
	"fmt"
	"time"
)

// APIKeyRole represents the privilege level of an API key
type APIKeyRole string

const (
	APIKeyRoleAdmin  APIKeyRole = "admin"
	APIKeyRoleViewer APIKeyRole = "viewer"
)

// APIKey represents an API key for authentication
type APIKey struct {
	ID        string
	Name      string
	KeyHash   string // Never store plaintext keys
	Role      APIKeyRole
	CreatedAt time.Time
	RevokedAt *time.Time
}

// IsRevoked returns true if the API key has been revoked
func (a *APIKey) IsRevoked() bool {
	return a.RevokedAt != nil
}

// IsAdmin returns true if the API key carries the admin role
func (a *APIKey) IsAdmin() bool {
	return a.Role == APIKeyRoleAdmin
}

// ValidateAPIKey validates an APIKey instance
func ValidateAPIKey(a *APIKey) error {
	if a == nil {
		return fmt.Errorf("api key cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("api key ID is required")
	}

	if a.Name == "" {
		return fmt.Errorf("api key Name is required")
	}

	if a.KeyHash == "" {
		return fmt.Errorf("api key KeyHash is required")
	}

	if !isValidAPIKeyRole(a.Role) {
		return fmt.Errorf("api key Role is invalid: %s", a.Role)
	}

	return nil
}

// isValidAPIKeyRole checks if an APIKeyRole is valid
func isValidAPIKeyRole(r APIKeyRole) bool {
	switch r {
	case APIKeyRoleAdmin, APIKeyRoleViewer:
		return true
	}
	return false
}

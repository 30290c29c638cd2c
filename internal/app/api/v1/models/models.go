package models

import "github.com/h44z/wg-agent/internal/domain"

// Error represents an error response.
type Error struct {
	Code    int    `json:"code"`              // HTTP status code.
	Message string `json:"message"`           // Error message.
	Details string `json:"details,omitempty"` // Additional error details, e.g. the stderr of a failed command.
}

// Key wraps a single WireGuard key.
type Key struct {
	Key string `json:"key" validate:"required"`
}

// KeyPair is a freshly generated private key with its public key.
type KeyPair struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
}

func NewKeyPair(src domain.KeyPair) KeyPair {
	return KeyPair{
		PrivateKey: src.PrivateKey.String(),
		PublicKey:  src.PublicKey.String(),
	}
}

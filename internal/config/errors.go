package config

import "errors"

// ErrMissingVaultKey indicates VAULT_KEY is absent or not 32 hex-encoded bytes.
var ErrMissingVaultKey = errors.New("VAULT_KEY must be 32 hex-encoded bytes")

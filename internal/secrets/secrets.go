// Package secrets resolves secret references found in configuration values.
//
// A reference has the form "vault:<path>#<field>", for example
// "vault:secret/data/hzcloud#discovery_token". Both KV version 1 and version 2
// secret engines are supported.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/vault/api"
)

const vaultScheme = "vault:"

var (
	ErrInvalidReference = errors.New("invalid secret reference")
	ErrSecretNotFound   = errors.New("secret not found")
)

// Resolver turns a secret reference into the secret value.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// IsReference reports whether value is a secret reference rather than a literal.
func IsReference(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), vaultScheme)
}

// ParseReference splits a reference into its Vault path and field.
func ParseReference(ref string) (path string, field string, err error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, vaultScheme) {
		return "", "", fmt.Errorf("%w: %q has no %s prefix", ErrInvalidReference, ref, vaultScheme)
	}
	body := strings.TrimPrefix(ref, vaultScheme)
	idx := strings.LastIndexByte(body, '#')
	if idx <= 0 || idx == len(body)-1 {
		return "", "", fmt.Errorf("%w: %q must look like vault:<path>#<field>", ErrInvalidReference, ref)
	}
	return strings.Trim(body[:idx], "/"), body[idx+1:], nil
}

// LogicalReader is the part of the Vault logical API used by the resolver.
type LogicalReader interface {
	ReadWithContext(ctx context.Context, path string) (*api.Secret, error)
}

type vaultResolver struct {
	mux    sync.Mutex
	reader LogicalReader
}

// NewVaultResolver creates a [Resolver] reading from Vault. With a nil reader a client is created on first use
// from the standard VAULT_ADDR and VAULT_TOKEN environment variables.
func NewVaultResolver(reader LogicalReader) Resolver {
	return &vaultResolver{reader: reader}
}

func (r *vaultResolver) logical() (LogicalReader, error) {
	r.mux.Lock()
	defer r.mux.Unlock()
	if r.reader != nil {
		return r.reader, nil
	}
	client, err := api.NewClient(api.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	r.reader = client.Logical()
	return r.reader, nil
}

func (r *vaultResolver) Resolve(ctx context.Context, ref string) (string, error) {
	path, field, err := ParseReference(ref)
	if err != nil {
		return "", err
	}
	reader, err := r.logical()
	if err != nil {
		return "", err
	}
	secret, err := reader.ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read vault path %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, path)
	}
	data := secret.Data
	// KV v2 nests the payload under "data".
	if nested, ok := data["data"].(map[string]interface{}); ok {
		data = nested
	}
	val, ok := data[field]
	if !ok || val == nil {
		return "", fmt.Errorf("%w: field %s at %s", ErrSecretNotFound, field, path)
	}
	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("field %s at %s is %T, not a string", field, path, val)
	}
	return str, nil
}

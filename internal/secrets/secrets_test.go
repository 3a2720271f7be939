package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLogical struct {
	secrets map[string]*api.Secret
	reads   []string
}

func (f *fakeLogical) ReadWithContext(_ context.Context, path string) (*api.Secret, error) {
	f.reads = append(f.reads, path)
	if path == "broken" {
		return nil, errors.New("permission denied")
	}
	return f.secrets[path], nil
}

func TestIsReference(t *testing.T) {
	assert.True(t, IsReference("vault:secret/hz#token"))
	assert.True(t, IsReference("  vault:secret/hz#token"))
	assert.False(t, IsReference("YOUR_SSL_PASSWORD"))
	assert.False(t, IsReference(""))
}

func TestParseReference(t *testing.T) {
	path, field, err := ParseReference("vault:/secret/data/hzcloud/#discovery_token")
	require.NoError(t, err)
	assert.Equal(t, "secret/data/hzcloud", path)
	assert.Equal(t, "discovery_token", field)

	for _, ref := range []string{"secret/hz#token", "vault:secret/hz", "vault:#token", "vault:secret/hz#"} {
		_, _, err = ParseReference(ref)
		require.ErrorIs(t, err, ErrInvalidReference, ref)
	}
}

func TestVaultResolver(t *testing.T) {
	reader := &fakeLogical{secrets: map[string]*api.Secret{
		"kv/hz": {Data: map[string]interface{}{"password": "v1-secret", "port": 5701}},
		"secret/data/hz": {Data: map[string]interface{}{
			"data":     map[string]interface{}{"token": "v2-secret"},
			"metadata": map[string]interface{}{"version": 3},
		}},
	}}
	resolver := NewVaultResolver(reader)
	ctx := context.Background()

	val, err := resolver.Resolve(ctx, "vault:kv/hz#password")
	require.NoError(t, err)
	assert.Equal(t, "v1-secret", val)

	val, err = resolver.Resolve(ctx, "vault:secret/data/hz#token")
	require.NoError(t, err)
	assert.Equal(t, "v2-secret", val)

	_, err = resolver.Resolve(ctx, "vault:kv/hz#missing")
	require.ErrorIs(t, err, ErrSecretNotFound)

	_, err = resolver.Resolve(ctx, "vault:kv/absent#password")
	require.ErrorIs(t, err, ErrSecretNotFound)

	_, err = resolver.Resolve(ctx, "vault:kv/hz#port")
	require.Error(t, err)

	_, err = resolver.Resolve(ctx, "vault:broken#password")
	require.ErrorContains(t, err, "permission denied")

	assert.Equal(t, []string{"kv/hz", "secret/data/hz", "kv/hz", "kv/absent", "kv/hz", "broken"}, reader.reads)
}

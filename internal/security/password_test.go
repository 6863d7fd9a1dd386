package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/elskow/registry-auth/internal/config"
)

func newTestPasswordConfig() *config.PasswordConfig {
	return &config.PasswordConfig{
		Algorithm:         AlgorithmArgon2id,
		Argon2Memory:      8 * 1024,
		Argon2Time:        1,
		Argon2Parallelism: 1,
		Argon2SaltLength:  16,
		Argon2KeyLength:   32,
		BcryptCost:        bcrypt.MinCost,
	}
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		prefix    string
	}{
		{name: "argon2id", algorithm: AlgorithmArgon2id, prefix: "$argon2id$v=19$"},
		{name: "bcrypt", algorithm: AlgorithmBcrypt, prefix: "$2a$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestPasswordConfig()
			cfg.Algorithm = tt.algorithm

			h, err := NewPasswordHasher(cfg)
			require.NoError(t, err)

			hash, err := h.Hash("homeHome123$")
			require.NoError(t, err)
			assert.True(t, len(hash) > len(tt.prefix))
			assert.Equal(t, tt.prefix, hash[:len(tt.prefix)])

			assert.True(t, h.Verify("homeHome123$", hash))
			assert.False(t, h.Verify("homeHome123", hash))
			assert.False(t, h.Verify("", hash))
		})
	}
}

func TestPasswordHasher_SaltsEveryHash(t *testing.T) {
	h, err := NewPasswordHasher(newTestPasswordConfig())
	require.NoError(t, err)

	first, err := h.Hash("homeHome123$")
	require.NoError(t, err)
	second, err := h.Hash("homeHome123$")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPasswordHasher_VerifiesLegacyBcrypt(t *testing.T) {
	h, err := NewPasswordHasher(newTestPasswordConfig())
	require.NoError(t, err)

	legacy, err := bcrypt.GenerateFromPassword([]byte("homeHome123$"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, h.Verify("homeHome123$", string(legacy)))
}

func TestPasswordHasher_MalformedHashIsMismatch(t *testing.T) {
	h, err := NewPasswordHasher(newTestPasswordConfig())
	require.NoError(t, err)

	for _, hash := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=8192,t=1$c2FsdA$a2V5$extra",
	} {
		assert.False(t, h.Verify("homeHome123$", hash), hash)
	}
}

func TestNewPasswordHasher_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.PasswordConfig)
	}{
		{name: "unknown algorithm", modify: func(c *config.PasswordConfig) { c.Algorithm = "md5" }},
		{name: "zero memory", modify: func(c *config.PasswordConfig) { c.Argon2Memory = 0 }},
		{name: "short salt", modify: func(c *config.PasswordConfig) { c.Argon2SaltLength = 4 }},
		{name: "bcrypt cost too high", modify: func(c *config.PasswordConfig) {
			c.Algorithm = AlgorithmBcrypt
			c.BcryptCost = 40
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestPasswordConfig()
			tt.modify(cfg)
			_, err := NewPasswordHasher(cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewSecretKey(t *testing.T) {
	first, err := NewSecretKey()
	require.NoError(t, err)
	second, err := NewSecretKey()
	require.NoError(t, err)

	assert.Len(t, first, 2*secretKeyBytes)
	assert.NotEqual(t, first, second)
}

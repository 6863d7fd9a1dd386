package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/elskow/registry-auth/internal/config"
)

const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

var ErrInvalidHash = errors.New("invalid password hash")

// PasswordHasher produces salted one-way hashes and verifies passwords
// against them. Verify never errors: a malformed hash is a mismatch.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) bool
	// VerifyDummy burns the same work as a real verification. Used when no
	// credential exists so lookups are not distinguishable by timing.
	VerifyDummy(password string)
}

type hasher struct {
	algorithm  string
	argon      argon2Params
	bcryptCost int
	dummyHash  string
}

type argon2Params struct {
	memory      uint32
	time        uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

func NewPasswordHasher(cfg *config.PasswordConfig) (PasswordHasher, error) {
	h := &hasher{
		algorithm: cfg.Algorithm,
		argon: argon2Params{
			memory:      cfg.Argon2Memory,
			time:        cfg.Argon2Time,
			parallelism: cfg.Argon2Parallelism,
			saltLength:  cfg.Argon2SaltLength,
			keyLength:   cfg.Argon2KeyLength,
		},
		bcryptCost: cfg.BcryptCost,
	}
	if h.algorithm == "" {
		h.algorithm = AlgorithmArgon2id
	}

	switch h.algorithm {
	case AlgorithmArgon2id:
		if h.argon.memory == 0 || h.argon.time == 0 || h.argon.parallelism == 0 {
			return nil, fmt.Errorf("argon2id memory, time and parallelism must be positive")
		}
		if h.argon.saltLength < 8 || h.argon.keyLength < 16 {
			return nil, fmt.Errorf("argon2id salt length must be >= 8 and key length >= 16")
		}
	case AlgorithmBcrypt:
		if h.bcryptCost == 0 {
			h.bcryptCost = bcrypt.DefaultCost
		}
		if h.bcryptCost < bcrypt.MinCost || h.bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range", h.bcryptCost)
		}
	default:
		return nil, fmt.Errorf("unsupported password algorithm %q", h.algorithm)
	}

	dummy, err := h.Hash("dummy-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	h.dummyHash = dummy

	return h, nil
}

func (h *hasher) Hash(password string) (string, error) {
	if h.algorithm == AlgorithmBcrypt {
		bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
		return string(bytes), err
	}

	salt := make([]byte, h.argon.saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, h.argon.time, h.argon.memory, h.argon.parallelism, h.argon.keyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		AlgorithmArgon2id,
		argon2.Version,
		h.argon.memory,
		h.argon.time,
		h.argon.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify accepts both argon2id PHC strings and bcrypt hashes, whichever
// algorithm new hashes currently use.
func (h *hasher) Verify(password, encodedHash string) bool {
	if strings.HasPrefix(encodedHash, "$"+AlgorithmArgon2id+"$") {
		params, salt, key, err := parseArgon2(encodedHash)
		if err != nil {
			return false
		}
		computed := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.parallelism, uint32(len(key)))
		return subtle.ConstantTimeCompare(computed, key) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}

func (h *hasher) VerifyDummy(password string) {
	_ = h.Verify(password, h.dummyHash)
}

func parseArgon2(encodedHash string) (argon2Params, []byte, []byte, error) {
	var params argon2Params

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != AlgorithmArgon2id {
		return params, nil, nil, ErrInvalidHash
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || version != argon2.Version {
		return params, nil, nil, ErrInvalidHash
	}

	for _, pair := range strings.Split(parts[3], ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return params, nil, nil, ErrInvalidHash
		}
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil || n == 0 {
			return params, nil, nil, ErrInvalidHash
		}
		switch key {
		case "m":
			params.memory = uint32(n)
		case "t":
			params.time = uint32(n)
		case "p":
			if n > 255 {
				return params, nil, nil, ErrInvalidHash
			}
			params.parallelism = uint8(n)
		default:
			return params, nil, nil, ErrInvalidHash
		}
	}
	if params.memory == 0 || params.time == 0 || params.parallelism == 0 {
		return params, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return params, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return params, nil, nil, ErrInvalidHash
	}

	return params, salt, key, nil
}

package application

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"

	"github.com/example/salon-scheduler/internal/domain"
)

var (
	ErrInvalidPasswordHash         = errors.New("invalid password hash format")
	ErrIncompatiblePasswordVersion = errors.New("incompatible password hash version")
)

// PasswordHasher turns clear-text passwords into stored hashes and back.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns ErrInvalidCredentials when password does not match.
	Verify(hash, password string) error
}

type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Argon2Hasher is the production PasswordHasher.
type Argon2Hasher struct {
	Params Argon2idParams
}

// NewArgon2Hasher returns a hasher using DefaultArgon2idParams.
func NewArgon2Hasher() Argon2Hasher {
	return Argon2Hasher{Params: DefaultArgon2idParams}
}

func (h Argon2Hasher) Hash(password string) (string, error) {
	return CreatePasswordHash(password, h.Params)
}

func (h Argon2Hasher) Verify(hash, password string) error {
	return VerifyPassword(hash, password)
}

func CreatePasswordHash(password string, params Argon2idParams) (string, error) {
	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// $argon2id$v=19$m=...,t=...,p=...$salt$hash
	format := "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"
	return fmt.Sprintf(format, argon2.Version, params.Memory, params.Iterations, params.Parallelism, b64Salt, b64Hash), nil
}

func VerifyPassword(hashedPassword, password string) error {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ErrInvalidPasswordHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return ErrInvalidPasswordHash
	}
	if version != argon2.Version {
		return ErrIncompatiblePasswordVersion
	}

	var params Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return ErrInvalidPasswordHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ErrInvalidPasswordHash
	}

	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return ErrInvalidPasswordHash
	}
	params.KeyLength = uint32(len(decodedHash))

	comparisonHash := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	if subtle.ConstantTimeCompare(decodedHash, comparisonHash) == 1 {
		return nil
	}

	return ErrInvalidCredentials
}

// PasswordRequirements is shown to users whose password fails the policy.
const PasswordRequirements = "password must be at least 8 characters long and contain an uppercase letter, a digit and one of " + domain.PasswordSpecialChars

// PasswordPolicy is the strength rule applied at registration.
type PasswordPolicy struct {
	MinLength    int
	SpecialChars string
}

// DefaultPasswordPolicy returns the salon's password rule.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: domain.MinPasswordLength, SpecialChars: domain.PasswordSpecialChars}
}

// Validate returns a ValidationError on the "password" field when the
// password is too weak.
func (p PasswordPolicy) Validate(password string) error {
	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(p.SpecialChars, r):
			hasSpecial = true
		}
	}
	if len([]rune(password)) < p.MinLength || !hasUpper || !hasDigit || !hasSpecial {
		return newValidationError("password", PasswordRequirements)
	}
	return nil
}

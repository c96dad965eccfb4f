package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// HashParams are Argon2id cost parameters.
type HashParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// PasswordHashParams is the heavy profile for stored passwords, which are
// verified only at login.
var PasswordHashParams = HashParams{
	Memory:      64 * 1024,
	Time:        3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// RefreshTokenHashParams is a deliberately light profile: refresh-token
// hashes are verified on every refresh call, and the raw token is already
// 48 bytes of CSPRNG output, so the hash only needs to be one-way.
var RefreshTokenHashParams = HashParams{
	Memory:      16 * 1024,
	Time:        1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher provides one-way hashing for passwords and refresh-token secrets.
type Hasher struct {
	password HashParams
	refresh  HashParams
}

func NewHasher() *Hasher {
	return &Hasher{password: PasswordHashParams, refresh: RefreshTokenHashParams}
}

func (h *Hasher) HashPassword(plaintext string) (string, error) {
	return encode(plaintext, h.password)
}

// VerifyPassword returns false on mismatch and on malformed hashes; it never
// errors.
func (h *Hasher) VerifyPassword(plaintext, encodedHash string) bool {
	return verify(plaintext, encodedHash)
}

func (h *Hasher) HashRefreshToken(raw string) (string, error) {
	return encode(raw, h.refresh)
}

func (h *Hasher) VerifyRefreshToken(raw, encodedHash string) bool {
	return verify(raw, encodedHash)
}

func encode(plaintext string, p HashParams) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(plaintext), salt, p.Time, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory,
		p.Time,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func verify(plaintext, encodedHash string) bool {
	p, salt, hash, err := decode(encodedHash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(plaintext), salt, p.Time, p.Memory, p.Parallelism, uint32(len(hash)))

	return subtle.ConstantTimeCompare(computed, hash) == 1
}

func decode(encodedHash string) (HashParams, []byte, []byte, error) {
	var p HashParams

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, errors.New("malformed hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errors.New("unsupported argon2 version")
	}

	for _, pair := range strings.Split(parts[3], ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return p, nil, nil, errors.New("malformed hash parameters")
		}
		v, err := strconv.ParseUint(kv[1], 10, 32)
		if err != nil {
			return p, nil, nil, errors.New("malformed hash parameters")
		}
		switch kv[0] {
		case "m":
			p.Memory = uint32(v)
		case "t":
			p.Time = uint32(v)
		case "p":
			p.Parallelism = uint8(v)
		default:
			return p, nil, nil, errors.New("malformed hash parameters")
		}
	}
	if p.Memory == 0 || p.Time == 0 || p.Parallelism == 0 {
		return p, nil, nil, errors.New("malformed hash parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, errors.New("malformed salt")
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return p, nil, nil, errors.New("malformed hash")
	}

	return p, salt, hash, nil
}

// Package password implements the Password Service of spec §4.4,
// grounded on original_source/app/shared/security/password.py's Argon2id
// parameters and k-anonymity breach check, translated from passlib's
// CryptContext to golang.org/x/crypto/argon2 with the parameters encoded
// directly into the stored hash string so future upgrades are
// migration-safe (spec: "parameters are embedded in the hash string").
package password

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params are the memory-hard hashing parameters mandated by spec §4.4.
type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams matches spec §4.4 exactly: memory=65536, time=3, parallelism=4.
var DefaultParams = Params{
	Memory:      65536,
	Time:        3,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

const hashFormat = "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"

// Service hashes, verifies, and enforces the password policy.
type Service struct {
	params  Params
	breach  BreachChecker
	// FailClosedOnBreachOracleError: when true, an unreachable breach
	// oracle rejects registration; the default (false) is "fail-open for
	// availability" per spec §9, logged at WARN by the caller.
	FailClosedOnBreachOracleError bool
}

// BreachChecker abstracts the k-anonymity breach oracle (spec §6) so
// this package has no network dependency of its own; the adapter lives
// in internal/infrastructure/pwned.
type BreachChecker interface {
	// IsCompromised returns (compromised, oracleReachable, error).
	IsCompromised(ctx context.Context, password string) (bool, bool, error)
}

// New builds a password Service with the spec's default hashing params.
func New(breach BreachChecker) *Service {
	return &Service{params: DefaultParams, breach: breach}
}

var (
	hasUpper   = regexp.MustCompile(`[A-Z]`)
	hasLower   = regexp.MustCompile(`[a-z]`)
	hasDigit   = regexp.MustCompile(`[0-9]`)
	hasSpecial = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// ValidateStrength enforces the pre-hash policy from spec §4.4: length
// >= 12, at least one of each character class. It does not perform the
// breach check — that requires network I/O and is a separate method so
// callers can run it under their own deadline.
func ValidateStrength(plain string) error {
	if len(plain) < 12 {
		return fmt.Errorf("password must be at least 12 characters long")
	}
	if !hasUpper.MatchString(plain) {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower.MatchString(plain) {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasDigit.MatchString(plain) {
		return fmt.Errorf("password must contain at least one digit")
	}
	if !hasSpecial.MatchString(plain) {
		return fmt.Errorf("password must contain at least one non-alphanumeric character")
	}
	return nil
}

// Hash produces a self-describing Argon2id hash string using the
// service's configured parameters and a fresh random salt.
func (s *Service) Hash(plain string) (string, error) {
	return hashWithParams(plain, s.params)
}

func hashWithParams(plain string, p Params) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLength)

	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedKey := base64.RawStdEncoding.EncodeToString(key)
	return fmt.Sprintf(hashFormat, argon2.Version, p.Memory, p.Time, p.Parallelism, encodedSalt, encodedKey), nil
}

// parseHash extracts the parameters and digest embedded in a stored hash.
func parseHash(stored string) (Params, []byte, []byte, error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Params{}, nil, nil, fmt.Errorf("unrecognized hash format")
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, fmt.Errorf("parse version: %w", err)
	}
	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return Params{}, nil, nil, fmt.Errorf("parse params: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("decode salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("decode key: %w", err)
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))
	return p, salt, key, nil
}

// Verify performs a constant-time comparison of plain against stored,
// per spec §4.4 "Verification is constant-time."
func (s *Service) Verify(plain, stored string) (bool, error) {
	p, salt, key, err := parseHash(stored)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// CheckBreach consults the k-anonymity breach oracle (spec §4.4 /
// §6). When the oracle is unreachable, the result depends on
// FailClosedOnBreachOracleError: false (the default) lets registration
// proceed — availability over this one defense-in-depth check — while
// true rejects it. Either way the caller is expected to log the oracle
// failure at WARN.
func (s *Service) CheckBreach(ctx context.Context, plain string) (compromised bool, oracleErr error) {
	if s.breach == nil {
		return false, nil
	}
	isCompromised, reachable, err := s.breach.IsCompromised(ctx, plain)
	if err != nil || !reachable {
		if s.FailClosedOnBreachOracleError {
			return true, err
		}
		return false, err
	}
	return isCompromised, nil
}

// VerifyAndRehash implements spec §4.4's
// "verify_and_rehash(plain, stored) returns (ok, new_hash?)": if the
// password is correct but the stored hash's parameters have drifted from
// the service's current DefaultParams, a freshly hashed value is
// returned so the caller can persist it (migration-safe upgrade path).
func (s *Service) VerifyAndRehash(plain, stored string) (ok bool, newHash string, err error) {
	p, _, _, err := parseHash(stored)
	if err != nil {
		return false, "", err
	}
	ok, err = s.Verify(plain, stored)
	if err != nil || !ok {
		return false, "", err
	}
	if p != s.params {
		rehashed, err := s.Hash(plain)
		if err != nil {
			// The caller already has a valid login; a rehash failure
			// must not fail the request.
			return true, "", nil
		}
		return true, rehashed, nil
	}
	return true, "", nil
}

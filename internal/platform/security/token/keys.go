package token

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// LoadSigningKeyPair reads a PEM-encoded RSA private key (PKCS#1 or
// PKCS#8) from path and wraps it with kid as the process's active
// signing key, per spec §4.5's "loaded at startup from configured file
// paths."
func LoadSigningKeyPair(kid, path string) (*KeyPair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key %s: %w", path, err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("decode private key %s: no PEM block found", path)
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		parsed, pkcs8Err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if pkcs8Err != nil {
			return nil, fmt.Errorf("parse private key %s: %w", path, pkcs8Err)
		}
		rsaKey, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("private key %s is not RSA", path)
		}
		key = rsaKey
	}

	return &KeyPair{KID: kid, PrivateKey: key, PublicKey: &key.PublicKey}, nil
}

// LoadTrustedPublicKeys reads a kid -> PEM path map of RSA public keys
// (PKIX), the verification-only half of spec §4.5's multi-key trust
// store that lets a rotated-out key keep verifying tokens it already
// signed.
func LoadTrustedPublicKeys(paths map[string]string) ([]*KeyPair, error) {
	out := make([]*KeyPair, 0, len(paths))
	for kid, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read public key %s: %w", path, err)
		}
		block, _ := pem.Decode(raw)
		if block == nil {
			return nil, fmt.Errorf("decode public key %s: no PEM block found", path)
		}
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse public key %s: %w", path, err)
		}
		pub, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("public key %s is not RSA", path)
		}
		out = append(out, &KeyPair{KID: kid, PublicKey: pub})
	}
	return out, nil
}

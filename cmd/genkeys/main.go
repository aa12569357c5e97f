// genkeys generates an RSA keypair for signing access tokens and writes
// the private key (PKCS#8) and public key (PKIX), both PEM-encoded, to
// the given output paths.
//
// Usage: go run ./cmd/genkeys -kid <key-id> -out-dir ./config/keys [-bits 2048]
// Writes <out-dir>/<kid>.private.pem and <out-dir>/<kid>.public.pem.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	kid := flag.String("kid", "", "key id to embed in the output filenames")
	outDir := flag.String("out-dir", "./config/keys", "directory to write the PEM files into")
	bits := flag.Int("bits", 2048, "RSA key size in bits")
	flag.Parse()

	if *kid == "" {
		fmt.Fprintln(os.Stderr, "genkeys: -kid is required")
		os.Exit(1)
	}

	key, err := rsa.GenerateKey(rand.Reader, *bits)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate key: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	privPath := filepath.Join(*outDir, *kid+".private.pem")
	pubPath := filepath.Join(*outDir, *kid+".public.pem")

	if err := writePrivateKey(privPath, key); err != nil {
		fmt.Fprintf(os.Stderr, "write private key: %v\n", err)
		os.Exit(1)
	}
	if err := writePublicKey(pubPath, &key.PublicKey); err != nil {
		fmt.Fprintf(os.Stderr, "write public key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s and %s\n", privPath, pubPath)
	fmt.Printf("JWT_PRIVATE_KEY_PATH=%s\n", privPath)
	fmt.Printf("JWT_ACTIVE_KID=%s\n", *kid)
	fmt.Printf("JWT_PUBLIC_KEYS=%s=%s\n", *kid, pubPath)
}

func writePrivateKey(path string, key *rsa.PrivateKey) error {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return err
	}
	return writePEM(path, "PRIVATE KEY", der, 0o600)
}

func writePublicKey(path string, key *rsa.PublicKey) error {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return err
	}
	return writePEM(path, "PUBLIC KEY", der, 0o644)
}

func writePEM(path, blockType string, der []byte, mode os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer f.Close()
	return pem.Encode(f, &pem.Block{Type: blockType, Bytes: der})
}

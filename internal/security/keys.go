package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"strings"
)

// ErrInvalidKey reports unusable PEM input or an unsupported key type.
var ErrInvalidKey = errors.New("invalid key")

// decodeKeyPEM accepts either inline PEM or a path to a PEM file and
// returns the first decoded block.
func decodeKeyPEM(src string) (*pem.Block, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrInvalidKey
	}
	raw := []byte(src)
	if !strings.HasPrefix(src, "-----BEGIN") {
		var err error
		if raw, err = os.ReadFile(src); err != nil {
			return nil, err
		}
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, ErrInvalidKey
	}
	return block, nil
}

// ParsePrivateKey loads an RSA or ECDSA signing key from inline PEM or a
// file path. PKCS#1, PKCS#8 and SEC1 encodings are recognized.
func ParsePrivateKey(src string) (crypto.Signer, error) {
	block, err := decodeKeyPEM(src)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		if signer, ok := key.(crypto.Signer); ok {
			return signer, nil
		}
		return nil, ErrInvalidKey
	}
	return nil, ErrInvalidKey
}

// ParsePublicKey loads an RSA or ECDSA verification key from inline PEM or
// a file path.
func ParsePublicKey(src string) (crypto.PublicKey, error) {
	block, err := decodeKeyPEM(src)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	case "PUBLIC KEY":
		return x509.ParsePKIXPublicKey(block.Bytes)
	}
	return nil, ErrInvalidKey
}

// KeyAlg maps a verification key to its JWS algorithm name, "RS256" or
// "ES256". Unknown key types map to the empty string.
func KeyAlg(pub crypto.PublicKey) string {
	switch pub.(type) {
	case *rsa.PublicKey:
		return "RS256"
	case *ecdsa.PublicKey:
		return "ES256"
	}
	return ""
}

// MarshalPublicKeyPEM renders the verification key as a PKIX "PUBLIC KEY"
// PEM block for the key-distribution endpoint.
func MarshalPublicKeyPEM(pub crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

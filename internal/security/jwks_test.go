package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"testing"
)

func TestPublicJWKS_RSA(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	raw, err := PublicJWKS(&key.PublicKey)
	if err != nil {
		t.Fatalf("PublicJWKS: %v", err)
	}

	var set struct {
		Keys []map[string]any `json:"keys"`
	}
	if err := json.Unmarshal(raw, &set); err != nil {
		t.Fatalf("unmarshal JWKS: %v", err)
	}
	if len(set.Keys) != 1 {
		t.Fatalf("keys: got %d, want 1", len(set.Keys))
	}
	k := set.Keys[0]
	if k["kty"] != "RSA" || k["alg"] != "RS256" || k["use"] != "sig" {
		t.Errorf("key fields: kty=%v alg=%v use=%v", k["kty"], k["alg"], k["use"])
	}
	if k["kid"] == "" || k["kid"] == nil {
		t.Error("kid not assigned")
	}
	if _, leaked := k["d"]; leaked {
		t.Error("private exponent present in public JWKS")
	}
}

func TestPublicJWKS_EC(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	raw, err := PublicJWKS(&key.PublicKey)
	if err != nil {
		t.Fatalf("PublicJWKS: %v", err)
	}
	var set struct {
		Keys []map[string]any `json:"keys"`
	}
	if err := json.Unmarshal(raw, &set); err != nil {
		t.Fatalf("unmarshal JWKS: %v", err)
	}
	if len(set.Keys) != 1 || set.Keys[0]["alg"] != "ES256" {
		t.Errorf("unexpected set: %s", raw)
	}
}

func TestPublicJWKS_UnsupportedKey(t *testing.T) {
	if _, err := PublicJWKS("not a key"); err == nil {
		t.Error("unsupported key type accepted")
	}
}

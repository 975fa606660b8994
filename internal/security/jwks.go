package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"encoding/json"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// PublicJWKS renders the verification key as a JWK set for the public-key
// endpoint, so third parties can verify access tokens independently. The kid
// is the RFC 7638 thumbprint assigned by jwx.
func PublicJWKS(pub crypto.PublicKey) ([]byte, error) {
	key, err := jwk.Import(pub)
	if err != nil {
		return nil, err
	}
	if err := jwk.AssignKeyID(key); err != nil {
		return nil, err
	}
	var alg jwa.SignatureAlgorithm
	switch pub.(type) {
	case *rsa.PublicKey:
		alg = jwa.RS256()
	case *ecdsa.PublicKey:
		alg = jwa.ES256()
	default:
		return nil, ErrInvalidKey
	}
	if err := key.Set(jwk.AlgorithmKey, alg); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, err
	}
	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		return nil, err
	}
	return json.Marshal(set)
}

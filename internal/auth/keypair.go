// Package auth derives Snowflake keypair-JWT fingerprints and mints
// RS256 tokens from an operator-supplied RSA private key.
package auth

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeyPair holds a parsed private key and its stable public-key fingerprint.
type KeyPair struct {
	private     *rsa.PrivateKey
	Fingerprint string
}

// ParseKeyPair parses a PEM-encoded RSA private key (PKCS#8 or PKCS#1)
// and derives the fingerprint of its public half.
func ParseKeyPair(pemBytes []byte) (*KeyPair, error) {
	key, err := parsePrivateKey(pemBytes)
	if err != nil {
		return nil, err
	}

	fp, err := fingerprint(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("deriving fingerprint: %w", err)
	}

	return &KeyPair{private: key, Fingerprint: fp}, nil
}

// TokenClaims holds the identity fields needed to mint a JWT.
type TokenClaims struct {
	Organization string
	Account      string
	User         string
	TTL          time.Duration
}

// Mint returns a signed RS256 JWT plus its issued-at and expiry (epoch
// seconds), so a caller can cache the token against its own expiry.
func (kp *KeyPair) Mint(claims TokenClaims) (token string, iat, exp int64, err error) {
	org := strings.ToUpper(claims.Organization)
	acct := strings.ToUpper(claims.Account)
	user := claims.User

	subject := fmt.Sprintf("%s-%s.%s", org, acct, user)
	issuer := fmt.Sprintf("%s.%s", subject, kp.Fingerprint)

	now := time.Now().UTC()
	regClaims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(claims.TTL)),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, regClaims)
	signed, err := tok.SignedString(kp.private)
	if err != nil {
		return "", 0, 0, fmt.Errorf("signing JWT: %w", err)
	}

	return signed, now.Unix(), now.Add(claims.TTL).Unix(), nil
}

// parsePrivateKey parses a PEM block as a PKCS#8 key, falling back to
// PKCS#1 for keys generated the OpenSSL way (openssl genrsa).
func parsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("invalid PEM format for private key")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("PKCS8 key is not an RSA key")
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing private key (tried PKCS8 and PKCS1): %w", err)
	}
	return rsaKey, nil
}

// fingerprint computes "SHA256:" || base64(SHA-256(DER(public_key))).
func fingerprint(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(der)
	return "SHA256:" + base64.StdEncoding.EncodeToString(sum[:]), nil
}

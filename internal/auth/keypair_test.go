package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func generateTestKeyPEM(t *testing.T) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating RSA key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshaling PKCS8 key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

func TestParseKeyPair_FingerprintFormat(t *testing.T) {
	kp, err := ParseKeyPair(generateTestKeyPEM(t))
	if err != nil {
		t.Fatalf("ParseKeyPair: %v", err)
	}
	if len(kp.Fingerprint) < len("SHA256:") || kp.Fingerprint[:7] != "SHA256:" {
		t.Fatalf("fingerprint %q does not start with SHA256:", kp.Fingerprint)
	}
}

func TestParseKeyPair_FingerprintDeterministic(t *testing.T) {
	pemBytes := generateTestKeyPEM(t)

	kp1, err := ParseKeyPair(pemBytes)
	if err != nil {
		t.Fatalf("ParseKeyPair (1): %v", err)
	}
	kp2, err := ParseKeyPair(pemBytes)
	if err != nil {
		t.Fatalf("ParseKeyPair (2): %v", err)
	}

	if kp1.Fingerprint != kp2.Fingerprint {
		t.Fatalf("fingerprint not stable for the same key: %q != %q", kp1.Fingerprint, kp2.Fingerprint)
	}
}

func TestParseKeyPair_DistinctKeysDistinctFingerprints(t *testing.T) {
	kp1, err := ParseKeyPair(generateTestKeyPEM(t))
	if err != nil {
		t.Fatalf("ParseKeyPair (1): %v", err)
	}
	kp2, err := ParseKeyPair(generateTestKeyPEM(t))
	if err != nil {
		t.Fatalf("ParseKeyPair (2): %v", err)
	}

	if kp1.Fingerprint == kp2.Fingerprint {
		t.Fatalf("distinct keys produced the same fingerprint: %q", kp1.Fingerprint)
	}
}

func TestParseKeyPair_InvalidPEM(t *testing.T) {
	if _, err := ParseKeyPair([]byte("not a pem")); err == nil {
		t.Fatal("expected an error for invalid PEM")
	}
}

func TestParseKeyPair_PKCS1(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating RSA key: %v", err)
	}
	der := x509.MarshalPKCS1PrivateKey(key)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: der})

	kp, err := ParseKeyPair(pemBytes)
	if err != nil {
		t.Fatalf("ParseKeyPair (PKCS1): %v", err)
	}
	if kp.Fingerprint == "" {
		t.Fatal("expected a non-empty fingerprint")
	}
}

func TestKeyPair_Mint_IssuerAndSubject(t *testing.T) {
	kp, err := ParseKeyPair(generateTestKeyPEM(t))
	if err != nil {
		t.Fatalf("ParseKeyPair: %v", err)
	}

	token, iat, exp, err := kp.Mint(TokenClaims{
		Organization: "myorg",
		Account:      "myacct",
		User:         "alice",
		TTL:          time.Minute,
	})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}
	if exp <= iat {
		t.Fatalf("expected exp (%d) > iat (%d)", exp, iat)
	}
	if exp-iat != 60 {
		t.Fatalf("expected a 60s TTL window, got %d", exp-iat)
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return &kp.private.PublicKey, nil
	})
	if err != nil {
		t.Fatalf("parsing minted token: %v", err)
	}
	rc := parsed.Claims.(*jwt.RegisteredClaims)
	wantSubject := "MYORG-MYACCT.alice"
	if rc.Subject != wantSubject {
		t.Fatalf("subject = %q, want %q", rc.Subject, wantSubject)
	}
	if wantIssuer := wantSubject + "." + kp.Fingerprint; rc.Issuer != wantIssuer {
		t.Fatalf("issuer = %q, want %q", rc.Issuer, wantIssuer)
	}
}

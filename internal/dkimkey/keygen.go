// Package dkimkey generates DKIM signing keys and reads the DNS TXT record
// files that accompany them.
//
// Keys are produced in the same on-disk layout as opendkim-genkey: a
// PEM-encoded PKCS#1 private key and a BIND-style TXT record for
// {selector}._domainkey.
package dkimkey

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// MinBits is the smallest RSA modulus accepted for signing keys.
const MinBits = 1024

// KeyPair holds a DKIM key pair in ready-to-write formats.
type KeyPair struct {
	// PrivateKey is the RSA private key in PEM-encoded PKCS#1 format.
	PrivateKey []byte
	// Record is the TXT record file content for the public key.
	Record []byte
	// Fingerprint is the SHA256 fingerprint of the public key.
	Fingerprint string
}

// Generate creates a new RSA signing key for selector and domain.
func Generate(selector, domain string, bits int) (*KeyPair, error) {
	if bits < MinBits {
		return nil, fmt.Errorf("key size %d is below the minimum of %d bits", bits, MinBits)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}

	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	pubDER, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}

	fingerprint, err := Fingerprint(&privateKey.PublicKey)
	if err != nil {
		return nil, err
	}

	value := RecordValue(base64.StdEncoding.EncodeToString(pubDER))

	return &KeyPair{
		PrivateKey:  privateKeyPEM,
		Record:      FormatRecord(selector, domain, value),
		Fingerprint: fingerprint,
	}, nil
}

// Fingerprint returns the OpenSSH-style SHA256 fingerprint of pub.
func Fingerprint(pub *rsa.PublicKey) (string, error) {
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to create SSH public key: %w", err)
	}
	return ssh.FingerprintSHA256(sshPub), nil
}

// ParsePrivateKey decodes a PEM private key in PKCS#1 or PKCS#8 form.
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("unsupported private key type %T", key)
		}
		return rsaKey, nil
	default:
		return nil, fmt.Errorf("unsupported PEM block %q", block.Type)
	}
}

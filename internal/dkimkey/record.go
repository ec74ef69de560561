package dkimkey

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"
)

// chunkSize is the longest quoted string written per line, below the 255
// byte limit of a single TXT character-string.
const chunkSize = 250

// Record is a parsed DKIM TXT record file.
type Record struct {
	// Name is the owner name relative to the zone, e.g. "mail._domainkey".
	Name string
	// Value is the concatenated TXT content, e.g. "v=DKIM1; k=rsa; p=...".
	Value string
}

// RecordName returns the owner name of the DKIM record for selector.
func RecordName(selector string) string {
	return selector + "._domainkey"
}

// RecordValue returns the TXT content for a base64 SubjectPublicKeyInfo.
func RecordValue(publicKeyB64 string) string {
	return "v=DKIM1; h=sha256; k=rsa; p=" + publicKeyB64
}

// FormatRecord renders a BIND-style TXT record file for selector and domain.
func FormatRecord(selector, domain, value string) []byte {
	var b strings.Builder

	head, rest := value, ""
	if i := strings.Index(value, "p="); i >= 0 {
		head, rest = value[:i], value[i:]
	}

	fmt.Fprintf(&b, "%s\tIN\tTXT\t( %q", RecordName(selector), head)
	for len(rest) > 0 {
		n := min(chunkSize, len(rest))
		fmt.Fprintf(&b, "\n\t  %q", rest[:n])
		rest = rest[n:]
	}
	fmt.Fprintf(&b, " )  ; ----- DKIM key %s for %s\n", selector, domain)

	return []byte(b.String())
}

// ParseRecord reads a TXT record file as written by opendkim-genkey.
func ParseRecord(data []byte) (*Record, error) {
	text := string(data)

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty record file")
	}
	name := fields[0]

	open := strings.Index(text, "(")
	closing := strings.LastIndex(text, ")")
	if open < 0 || closing < open {
		return nil, fmt.Errorf("record for %s has no parenthesised value", name)
	}

	var value strings.Builder
	body := text[open+1 : closing]
	for {
		start := strings.IndexByte(body, '"')
		if start < 0 {
			break
		}
		end := strings.IndexByte(body[start+1:], '"')
		if end < 0 {
			return nil, fmt.Errorf("record for %s has an unterminated string", name)
		}
		value.WriteString(body[start+1 : start+1+end])
		body = body[start+1+end+1:]
	}

	if value.Len() == 0 {
		return nil, fmt.Errorf("record for %s has no content", name)
	}

	return &Record{Name: name, Value: value.String()}, nil
}

// Tags splits the record value into its tag=value pairs.
func (r *Record) Tags() map[string]string {
	tags := make(map[string]string)
	for _, part := range strings.Split(r.Value, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		tags[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return tags
}

// PublicKey decodes the p= tag into an RSA public key.
func (r *Record) PublicKey() (*rsa.PublicKey, error) {
	p, ok := r.Tags()["p"]
	if !ok || p == "" {
		return nil, fmt.Errorf("record %s has no public key", r.Name)
	}

	der, err := base64.StdEncoding.DecodeString(p)
	if err != nil {
		return nil, fmt.Errorf("record %s: invalid base64 public key: %w", r.Name, err)
	}

	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.Name, err)
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("record %s: unsupported key type %T", r.Name, pub)
	}
	return rsaPub, nil
}

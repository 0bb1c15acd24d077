package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed statement ids.
// Version suffix enables future algorithm migration.
const (
	DomainSelect = "querydoc/select/v1"
	DomainInsert = "querydoc/insert/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StatementID computes the content-addressed id of a query document.
// Two documents that differ only in key order or Unicode normalization
// share an id; select and insert documents never collide.
func StatementID(kind StatementKind, doc IRValue) (string, error) {
	var domain string
	switch kind {
	case KindSelect:
		domain = DomainSelect
	case KindInsert:
		domain = DomainInsert
	default:
		return "", fmt.Errorf("StatementID: unknown statement kind %q", kind)
	}

	canonical, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("StatementID: failed to marshal: %w", err)
	}

	return hashWithDomain(domain, canonical), nil
}

// MustStatementID is like StatementID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustStatementID(kind StatementKind, doc IRValue) string {
	id, err := StatementID(kind, doc)
	if err != nil {
		panic(err)
	}
	return id
}

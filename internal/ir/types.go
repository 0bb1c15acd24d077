package ir

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// StatementKind names the top-level document kinds.
type StatementKind string

const (
	KindSelect StatementKind = "select"
	KindInsert StatementKind = "insert"
)

// ParseStatementKind validates a kind name.
func ParseStatementKind(s string) (StatementKind, error) {
	switch StatementKind(s) {
	case KindSelect, KindInsert:
		return StatementKind(s), nil
	default:
		return "", fmt.Errorf("unknown statement kind %q: must be select or insert", s)
	}
}

// LogEntry is one translated statement recorded in the query log.
type LogEntry struct {
	ID          string        `json:"id"`           // UUIDv7 per execution
	StatementID string        `json:"statement_id"` // Content-addressed document id
	Kind        StatementKind `json:"kind"`
	SQL         string        `json:"sql"`
	Params      IRArray       `json:"params"`
	UserName    string        `json:"user_name"`
	Message     *string       `json:"message,omitempty"`
	Seq         int64         `json:"seq"` // Assigned by the store
}

// DocumentFromYAML decodes a YAML query document. The YAML is converted to
// JSON first so numbers follow the same rules as UnmarshalDocument.
func DocumentFromYAML(data []byte) (IRValue, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("converting YAML document: %w", err)
	}
	return UnmarshalDocument(jsonData)
}

// Package ir provides the document value model for querydoc.
//
// Query documents arrive as JSON (or YAML converted to JSON) and are decoded
// into the sealed IRValue union: IRNull, IRString, IRInt, IRNumber, IRBool,
// IRArray and IRObject. Every other internal package consumes documents in
// this form; ir imports nothing internal.
//
// Key design constraints:
//   - Integers decode to IRInt (int64); every other JSON number decodes to
//     IRNumber, an exact decimal. Documents never carry float64.
//   - IRObject iteration uses SortedKeys for deterministic output.
//   - Content ids (StatementID) hash RFC 8785 canonical JSON with domain
//     separation, so the same document always yields the same id.
package ir

// Package queryir defines the composed statement produced by translating a
// query document.
//
// ARCHITECTURE:
//
//	[query document] -> translator -> [queryir statement] -> querysql -> SQL + params
//
// The IR is backend-neutral. Identifiers in it have already passed the
// identifier guard; literal values are carried as ir.IRValue and become bound
// parameters at render time.
//
// SEALED INTERFACES:
//
// Expr, FromItem and Statement are sealed with the marker method pattern.
// Only types in this package implement them, so renderers can switch
// exhaustively:
//
//	switch e := expr.(type) {
//	case *Column:
//	    // render column
//	case *Binary:
//	    // render operator
//	default:
//	    // impossible for well-formed trees
//	}
//
// DIALECTS:
//
// Two dialects are supported: Postgres (the reference backend) and SQLite.
// CheckDialect reports features a statement uses that the target dialect
// renders differently or lacks, without failing the translation.
package queryir

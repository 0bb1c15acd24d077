// Package translator turns declarative query documents into composed
// queryir statements.
//
// A document is a JSON-shaped tree. Expression nodes carry a "type" tag from
// a closed set (column, grouping, operator, modifier, function, slice, star,
// value, label, sequence, select); untagged scalars are literals. The
// translator walks the tree recursively:
//
//	ParseSelect / ParseInsert
//	  -> ParseFromItem    tables, joins, aliases, subselects
//	  -> ParseExpression  columns, operators, functions, ...
//	       -> ParseOperator / ParseModifier
//
// Every identifier is checked by the ident package before it is embedded.
// Literal values stay values; querysql binds them as parameters.
//
// Table metadata comes from a catalog.SchemaCatalog injected at
// construction. Descriptors are cached for the translator's lifetime, so a
// table is introspected at most once however many documents reference it.
//
// Errors are *Error values carrying a Code; use IsCode to test for one.
package translator

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/querydoc/internal/catalog"
	"github.com/roach88/querydoc/internal/ddl"
	"github.com/roach88/querydoc/internal/ident"
	"github.com/roach88/querydoc/internal/ir"
)

var _ catalog.SchemaCatalog = (*Store)(nil)

// TableExists reports whether schema.table is a table or view. An empty
// schema means the driver's default schema.
func (s *Store) TableExists(ctx context.Context, schema, table string) (bool, error) {
	if schema == "" {
		schema = s.driver.DefaultSchema()
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var exists bool
	var err error
	switch s.driver {
	case DriverPostgres:
		err = s.db.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = $1 AND table_name = $2
			)
		`, schema, table).Scan(&exists)
	default:
		exists, err = s.sqliteTableExists(ctx, schema, table)
	}
	if err != nil {
		return false, fmt.Errorf("table exists %s.%s: %w", schema, table, err)
	}
	return exists, nil
}

func (s *Store) sqliteTableExists(ctx context.Context, schema, table string) (bool, error) {
	var attached int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pragma_database_list WHERE name = ?", schema,
	).Scan(&attached); err != nil {
		return false, err
	}
	if attached == 0 {
		return false, nil
	}

	// The schema name is embedded in the query text, so it must pass the
	// identifier guard first.
	if _, err := ident.ReadPgID(schema); err != nil {
		return false, err
	}
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+ident.Quote(schema)+".sqlite_master WHERE type IN ('table', 'view') AND name = ?",
		table,
	).Scan(&count)
	return count > 0, err
}

// IntrospectTable describes the columns of schema.table. Tables without
// columns, or missing tables, yield catalog.ErrTableNotFound.
func (s *Store) IntrospectTable(ctx context.Context, schema, table string) (*catalog.TableDescriptor, error) {
	if schema == "" {
		schema = s.driver.DefaultSchema()
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var raws []rawColumn
	var err error
	switch s.driver {
	case DriverPostgres:
		raws, err = s.postgresColumns(ctx, schema, table)
	default:
		raws, err = s.sqliteColumns(ctx, schema, table)
	}
	if err != nil {
		return nil, fmt.Errorf("introspect %s.%s: %w", schema, table, err)
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("introspect %s.%s: %w", schema, table, catalog.ErrTableNotFound)
	}

	desc := &catalog.TableDescriptor{Schema: schema, Name: table}
	for _, raw := range raws {
		change := ddl.ColumnDescriptionFromRaw(schema, table, raw.name, raw.fields)
		desc.Columns = append(desc.Columns, catalog.ColumnDescriptor{
			Name:     change.ColumnName,
			DataType: change.DataType,
			Nullable: !change.NotNull,
			Default:  raw.dflt,
			Position: raw.position,
		})
	}

	cons, err := s.Constraints(ctx, schema, table)
	if err != nil {
		return nil, fmt.Errorf("introspect %s.%s: %w", schema, table, err)
	}
	desc.ForeignKeys = foreignKeys(cons)

	slog.Debug("table introspected", "schema", schema, "table", table,
		"columns", len(desc.Columns), "foreign_keys", len(desc.ForeignKeys))
	return desc, nil
}

// foreignKeys collects the foreign key constraints. SQLite reports one
// row per column of a composite key, all under the same name.
func foreignKeys(cons []ddl.ConstraintChange) []catalog.ForeignKey {
	var out []catalog.ForeignKey
	byName := map[string]int{}
	for _, c := range cons {
		if c.ConstraintType != "f" || c.ReferenceTable == nil || c.ReferenceColumn == nil {
			continue
		}
		cols, refCols := identList(c.ConstraintParameter), identList(*c.ReferenceColumn)
		if i, ok := byName[c.ConstraintName]; ok {
			out[i].Columns = append(out[i].Columns, cols...)
			out[i].RefColumns = append(out[i].RefColumns, refCols...)
			continue
		}

		fk := catalog.ForeignKey{Columns: cols, RefColumns: refCols}
		ref := strings.ReplaceAll(*c.ReferenceTable, `"`, "")
		if i := strings.LastIndex(ref, "."); i >= 0 {
			fk.RefSchema, ref = ref[:i], ref[i+1:]
		}
		fk.RefTable = ref

		byName[c.ConstraintName] = len(out)
		out = append(out, fk)
	}
	return out
}

// identList splits a comma-separated column list and drops identifier quotes.
func identList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.Trim(strings.TrimSpace(part), `"`); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// rawColumn is one backend metadata row before normalization.
type rawColumn struct {
	name     string
	position int
	dflt     *string
	fields   ir.IRObject
}

func (s *Store) postgresColumns(ctx context.Context, schema, table string) ([]rawColumn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT column_name, data_type, character_maximum_length, is_nullable, column_default, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rawColumn
	for rows.Next() {
		var (
			name, dataType, nullable string
			maxLen                   sql.NullInt64
			dflt                     sql.NullString
			position                 int
		)
		if err := rows.Scan(&name, &dataType, &maxLen, &nullable, &dflt, &position); err != nil {
			return nil, err
		}
		fields := ir.IRObject{
			"data_type":   ir.IRString(dataType),
			"is_nullable": ir.IRString(nullable),
		}
		if maxLen.Valid {
			fields["character_maximum_length"] = ir.IRInt(maxLen.Int64)
		}
		out = append(out, rawColumn{name: name, position: position, dflt: nullString(dflt), fields: fields})
	}
	return out, rows.Err()
}

func (s *Store) sqliteColumns(ctx context.Context, schema, table string) ([]rawColumn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cid, name, type, "notnull", dflt_value
		FROM pragma_table_info(?, ?)
		ORDER BY cid
	`, table, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rawColumn
	for rows.Next() {
		var (
			cid      int
			name     string
			dataType string
			notNull  bool
			dflt     sql.NullString
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt); err != nil {
			return nil, err
		}
		fields := ir.IRObject{
			"data_type":   ir.IRString(dataType),
			"is_nullable": ir.IRBool(!notNull),
		}
		out = append(out, rawColumn{name: name, position: cid + 1, dflt: nullString(dflt), fields: fields})
	}
	return out, rows.Err()
}

// Constraints lists the constraints of schema.table. On sqlite only
// foreign keys are reported.
func (s *Store) Constraints(ctx context.Context, schema, table string) ([]ddl.ConstraintChange, error) {
	if schema == "" {
		schema = s.driver.DefaultSchema()
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var query string
	switch s.driver {
	case DriverPostgres:
		query = `
			SELECT con.conname, con.contype::text, pg_get_constraintdef(con.oid)
			FROM pg_constraint con
			JOIN pg_class rel ON rel.oid = con.conrelid
			JOIN pg_namespace nsp ON nsp.oid = rel.relnamespace
			WHERE nsp.nspname = $1 AND rel.relname = $2
			ORDER BY con.conname
		`
	default:
		query = `
			SELECT 'fk_' || ? || '_' || id, 'f',
			       'FOREIGN KEY (' || "from" || ') REFERENCES ' || "table" || '(' || "to" || ')'
			FROM pragma_foreign_key_list(?, ?)
			ORDER BY id, seq
		`
	}

	var rows *sql.Rows
	var err error
	if s.driver == DriverPostgres {
		rows, err = s.db.QueryContext(ctx, query, schema, table)
	} else {
		rows, err = s.db.QueryContext(ctx, query, table, table, schema)
	}
	if err != nil {
		return nil, fmt.Errorf("constraints %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	out := []ddl.ConstraintChange{}
	for rows.Next() {
		var name, typ, def string
		if err := rows.Scan(&name, &typ, &def); err != nil {
			return nil, fmt.Errorf("constraints %s.%s: %w", schema, table, err)
		}
		raw := ir.IRObject{"constraint_typ": ir.IRString(typ), "definition": ir.IRString(def)}
		out = append(out, ddl.ConstraintDescriptionFromRaw(schema, table, name, raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("constraints %s.%s: %w", schema, table, err)
	}
	return out, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

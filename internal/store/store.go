// Package store persists command schemas in a normalized SQLite layout.
// Every table name carries a caller-supplied prefix so several schema sets
// can live side by side in one database file.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/ex1tium/cmdschema/internal/schema"
)

// Store wraps a SQLite database holding command schemas.
type Store struct {
	db     *sql.DB
	prefix string
}

// Open creates the database file (and parent directories) if needed and
// ensures the table layout exists. The prefix must be non-empty and contain
// only alphanumerics and underscores.
func Open(path, prefix string) (*Store, error) {
	if err := validatePrefix(prefix); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schemaSQL(prefix)); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing tables: %w", err)
	}
	return &Store{db: db, prefix: prefix}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) table(name string) string {
	return s.prefix + name
}

// Save upserts a schema by command name: any existing row for the same
// command is removed (cascading to its flags, subcommands, and arguments)
// before the full tree is inserted in a single transaction.
func (s *Store) Save(c *schema.CommandSchema) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE name = ?", s.table("commands")), c.Command,
	); err != nil {
		return fmt.Errorf("removing previous schema for %q: %w", c.Command, err)
	}

	res, err := tx.Exec(
		fmt.Sprintf(
			"INSERT INTO %s (name, description, version, source, confidence, schema_version) VALUES (?, ?, ?, ?, ?, ?)",
			s.table("commands"),
		),
		c.Command, nullString(c.Description), nullString(c.Version),
		c.Source.String(), c.Confidence, nullString(c.SchemaVersion),
	)
	if err != nil {
		return fmt.Errorf("inserting command %q: %w", c.Command, err)
	}
	commandID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading command id: %w", err)
	}

	ins := &inserter{tx: tx, prefix: s.prefix, globalFlags: map[string]int64{}}
	if err := ins.flags(commandID, sql.NullInt64{}, c.GlobalFlags); err != nil {
		return err
	}
	if err := ins.positionalArgs(nullInt64(commandID), sql.NullInt64{}, c.Positional); err != nil {
		return err
	}
	if err := ins.subcommands(commandID, sql.NullInt64{}, c.Subcommands); err != nil {
		return err
	}
	return tx.Commit()
}

// inserter carries the per-save state through the recursive tree insert.
// globalFlags maps canonical flag names to row ids so flag relationships in
// nested scopes can still resolve against flags defined elsewhere.
type inserter struct {
	tx          *sql.Tx
	prefix      string
	globalFlags map[string]int64
}

type pendingRelation struct {
	flagID   int64
	target   string
	relation string
}

func (in *inserter) flags(commandID int64, subcommandID sql.NullInt64, flags []schema.FlagSchema) error {
	local := map[string]int64{}
	var pending []pendingRelation

	for i := range flags {
		f := &flags[i]
		res, err := in.tx.Exec(
			fmt.Sprintf(
				"INSERT INTO %sflags (command_id, subcommand_id, short, long, value_type, takes_value, description, multiple) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
				in.prefix,
			),
			commandID, subcommandID, nullString(f.Short), nullString(f.Long),
			f.ValueType.Kind.String(), f.TakesValue, nullString(f.Description), f.Multiple,
		)
		if err != nil {
			return fmt.Errorf("inserting flag %q: %w", f.CanonicalName(), err)
		}
		flagID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading flag id: %w", err)
		}
		name := f.CanonicalName()
		if _, ok := local[name]; !ok {
			local[name] = flagID
		}
		if _, ok := in.globalFlags[name]; !ok {
			in.globalFlags[name] = flagID
		}
		for _, choice := range f.ValueType.Choices {
			if _, err := in.tx.Exec(
				fmt.Sprintf("INSERT INTO %sflag_choices (flag_id, choice) VALUES (?, ?)", in.prefix),
				flagID, choice,
			); err != nil {
				return fmt.Errorf("inserting choice for flag %q: %w", name, err)
			}
		}
		for _, target := range f.ConflictsWith {
			pending = append(pending, pendingRelation{flagID, target, "conflicts"})
		}
		for _, target := range f.Requires {
			pending = append(pending, pendingRelation{flagID, target, "requires"})
		}
	}

	// Relationships resolve against flags in the same scope first, then fall
	// back to any flag seen earlier in this save. Unresolvable targets are
	// dropped rather than failing the whole save.
	for _, rel := range pending {
		relatedID, ok := local[rel.target]
		if !ok {
			relatedID, ok = in.globalFlags[rel.target]
		}
		if !ok {
			continue
		}
		if _, err := in.tx.Exec(
			fmt.Sprintf("INSERT INTO %sflag_relationships (flag_id, related_flag_id, relationship_type) VALUES (?, ?, ?)", in.prefix),
			rel.flagID, relatedID, rel.relation,
		); err != nil {
			return fmt.Errorf("inserting %s relationship: %w", rel.relation, err)
		}
	}
	return nil
}

func (in *inserter) positionalArgs(commandID, subcommandID sql.NullInt64, args []schema.ArgSchema) error {
	for i := range args {
		a := &args[i]
		res, err := in.tx.Exec(
			fmt.Sprintf(
				"INSERT INTO %spositional_args (command_id, subcommand_id, position, name, value_type, required, multiple, description) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
				in.prefix,
			),
			commandID, subcommandID, i, a.Name, a.ValueType.Kind.String(),
			a.Required, a.Multiple, nullString(a.Description),
		)
		if err != nil {
			return fmt.Errorf("inserting positional arg %q: %w", a.Name, err)
		}
		argID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading arg id: %w", err)
		}
		for _, choice := range a.ValueType.Choices {
			if _, err := in.tx.Exec(
				fmt.Sprintf("INSERT INTO %sarg_choices (arg_id, choice) VALUES (?, ?)", in.prefix),
				argID, choice,
			); err != nil {
				return fmt.Errorf("inserting choice for arg %q: %w", a.Name, err)
			}
		}
	}
	return nil
}

func (in *inserter) subcommands(commandID int64, parentID sql.NullInt64, subs []schema.SubcommandSchema) error {
	for i := range subs {
		sub := &subs[i]
		res, err := in.tx.Exec(
			fmt.Sprintf("INSERT INTO %ssubcommands (command_id, parent_id, name, description) VALUES (?, ?, ?, ?)", in.prefix),
			commandID, parentID, sub.Name, nullString(sub.Description),
		)
		if err != nil {
			return fmt.Errorf("inserting subcommand %q: %w", sub.Name, err)
		}
		subID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading subcommand id: %w", err)
		}
		for _, alias := range sub.Aliases {
			if _, err := in.tx.Exec(
				fmt.Sprintf("INSERT INTO %ssubcommand_aliases (subcommand_id, alias) VALUES (?, ?)", in.prefix),
				subID, alias,
			); err != nil {
				return fmt.Errorf("inserting alias for %q: %w", sub.Name, err)
			}
		}
		if err := in.flags(commandID, nullInt64(subID), sub.Flags); err != nil {
			return err
		}
		if err := in.positionalArgs(sql.NullInt64{}, nullInt64(subID), sub.Positional); err != nil {
			return err
		}
		if err := in.subcommands(commandID, nullInt64(subID), sub.Subcommands); err != nil {
			return err
		}
	}
	return nil
}

// Load reconstructs the schema for a command name. It returns (nil, nil)
// when the command is not stored.
func (s *Store) Load(command string) (*schema.CommandSchema, error) {
	row := s.db.QueryRow(
		fmt.Sprintf("SELECT id, name, description, version, source, confidence, schema_version FROM %s WHERE name = ?", s.table("commands")),
		command,
	)
	var (
		id                                 int64
		name                               string
		description, version, schemaVerStr sql.NullString
		sourceLabel                        string
		confidence                         float64
	)
	if err := row.Scan(&id, &name, &description, &version, &sourceLabel, &confidence, &schemaVerStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("loading command %q: %w", command, err)
	}

	var source schema.Source
	if err := source.UnmarshalText([]byte(sourceLabel)); err != nil {
		return nil, fmt.Errorf("loading command %q: %w", command, err)
	}
	c := &schema.CommandSchema{
		SchemaVersion: schemaVerStr.String,
		Command:       name,
		Description:   description.String,
		Source:        source,
		Confidence:    confidence,
		Version:       version.String,
	}

	names, err := s.flagNamesByID(id)
	if err != nil {
		return nil, err
	}
	ld := &loader{db: s.db, prefix: s.prefix, flagNames: names}
	if c.GlobalFlags, err = ld.flags("command_id = ? AND subcommand_id IS NULL", id); err != nil {
		return nil, err
	}
	if c.Positional, err = ld.positionalArgs("command_id = ?", id); err != nil {
		return nil, err
	}
	if c.Subcommands, err = ld.subcommands("command_id = ? AND parent_id IS NULL", id); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadAll returns every stored schema ordered by command name.
func (s *Store) LoadAll() ([]*schema.CommandSchema, error) {
	names, err := s.ListCommands()
	if err != nil {
		return nil, err
	}
	out := make([]*schema.CommandSchema, 0, len(names))
	for _, name := range names {
		c, err := s.Load(name)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListCommands returns the stored command names in sorted order.
func (s *Store) ListCommands() ([]string, error) {
	rows, err := s.db.Query(fmt.Sprintf("SELECT name FROM %s ORDER BY name", s.table("commands")))
	if err != nil {
		return nil, fmt.Errorf("listing commands: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("listing commands: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a stored schema and everything hanging off it. It reports
// whether a schema was actually present.
func (s *Store) Delete(command string) (bool, error) {
	res, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE name = ?", s.table("commands")), command)
	if err != nil {
		return false, fmt.Errorf("deleting command %q: %w", command, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting command %q: %w", command, err)
	}
	return n > 0, nil
}

// flagNamesByID maps flag row ids to canonical names for the whole command
// so relationship rows can be turned back into name references.
func (s *Store) flagNamesByID(commandID int64) (map[int64]string, error) {
	rows, err := s.db.Query(
		fmt.Sprintf("SELECT id, short, long FROM %s WHERE command_id = ?", s.table("flags")),
		commandID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading flag names: %w", err)
	}
	defer rows.Close()
	names := map[int64]string{}
	for rows.Next() {
		var (
			id          int64
			short, long sql.NullString
		)
		if err := rows.Scan(&id, &short, &long); err != nil {
			return nil, fmt.Errorf("loading flag names: %w", err)
		}
		f := schema.FlagSchema{Short: short.String, Long: long.String}
		names[id] = f.CanonicalName()
	}
	return names, rows.Err()
}

type loader struct {
	db        *sql.DB
	prefix    string
	flagNames map[int64]string
}

func (ld *loader) flags(where string, args ...any) ([]schema.FlagSchema, error) {
	rows, err := ld.db.Query(
		fmt.Sprintf("SELECT id, short, long, value_type, takes_value, description, multiple FROM %sflags WHERE %s ORDER BY id", ld.prefix, where),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("loading flags: %w", err)
	}
	defer rows.Close()

	var flags []schema.FlagSchema
	var ids []int64
	for rows.Next() {
		var (
			id                       int64
			short, long, description sql.NullString
			kindLabel                string
			takesValue, multiple     bool
		)
		if err := rows.Scan(&id, &short, &long, &kindLabel, &takesValue, &description, &multiple); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
		var kind schema.ValueKind
		if err := kind.UnmarshalText([]byte(kindLabel)); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
		flags = append(flags, schema.FlagSchema{
			Short:       short.String,
			Long:        long.String,
			ValueType:   schema.ValueType{Kind: kind},
			TakesValue:  takesValue,
			Description: description.String,
			Multiple:    multiple,
		})
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		f := &flags[i]
		if f.ValueType.Kind == schema.ValueChoice {
			choices, err := ld.stringColumn(
				fmt.Sprintf("SELECT choice FROM %sflag_choices WHERE flag_id = ? ORDER BY id", ld.prefix), id)
			if err != nil {
				return nil, err
			}
			f.ValueType.Choices = choices
		}
		if err := ld.fillRelationships(f, id); err != nil {
			return nil, err
		}
	}
	return flags, nil
}

func (ld *loader) fillRelationships(f *schema.FlagSchema, flagID int64) error {
	rows, err := ld.db.Query(
		fmt.Sprintf("SELECT related_flag_id, relationship_type FROM %sflag_relationships WHERE flag_id = ? ORDER BY id", ld.prefix),
		flagID,
	)
	if err != nil {
		return fmt.Errorf("loading flag relationships: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			relatedID int64
			relation  string
		)
		if err := rows.Scan(&relatedID, &relation); err != nil {
			return fmt.Errorf("loading flag relationships: %w", err)
		}
		name, ok := ld.flagNames[relatedID]
		if !ok {
			continue
		}
		switch relation {
		case "conflicts":
			f.ConflictsWith = append(f.ConflictsWith, name)
		case "requires":
			f.Requires = append(f.Requires, name)
		}
	}
	return rows.Err()
}

func (ld *loader) positionalArgs(where string, args ...any) ([]schema.ArgSchema, error) {
	rows, err := ld.db.Query(
		fmt.Sprintf("SELECT id, name, value_type, required, multiple, description FROM %spositional_args WHERE %s ORDER BY position", ld.prefix, where),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("loading positional args: %w", err)
	}
	defer rows.Close()

	var out []schema.ArgSchema
	var ids []int64
	for rows.Next() {
		var (
			id                 int64
			name, kindLabel    string
			required, multiple bool
			description        sql.NullString
		)
		if err := rows.Scan(&id, &name, &kindLabel, &required, &multiple, &description); err != nil {
			return nil, fmt.Errorf("loading positional args: %w", err)
		}
		var kind schema.ValueKind
		if err := kind.UnmarshalText([]byte(kindLabel)); err != nil {
			return nil, fmt.Errorf("loading positional args: %w", err)
		}
		out = append(out, schema.ArgSchema{
			Name:        name,
			ValueType:   schema.ValueType{Kind: kind},
			Required:    required,
			Multiple:    multiple,
			Description: description.String,
		})
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		if out[i].ValueType.Kind != schema.ValueChoice {
			continue
		}
		choices, err := ld.stringColumn(
			fmt.Sprintf("SELECT choice FROM %sarg_choices WHERE arg_id = ? ORDER BY id", ld.prefix), id)
		if err != nil {
			return nil, err
		}
		out[i].ValueType.Choices = choices
	}
	return out, nil
}

func (ld *loader) subcommands(where string, args ...any) ([]schema.SubcommandSchema, error) {
	rows, err := ld.db.Query(
		fmt.Sprintf("SELECT id, name, description FROM %ssubcommands WHERE %s ORDER BY id", ld.prefix, where),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("loading subcommands: %w", err)
	}
	var subs []schema.SubcommandSchema
	var ids []int64
	for rows.Next() {
		var (
			id          int64
			name        string
			description sql.NullString
		)
		if err := rows.Scan(&id, &name, &description); err != nil {
			rows.Close()
			return nil, fmt.Errorf("loading subcommands: %w", err)
		}
		subs = append(subs, schema.SubcommandSchema{Name: name, Description: description.String})
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i, id := range ids {
		sub := &subs[i]
		aliases, err := ld.stringColumn(
			fmt.Sprintf("SELECT alias FROM %ssubcommand_aliases WHERE subcommand_id = ? ORDER BY id", ld.prefix), id)
		if err != nil {
			return nil, err
		}
		sub.Aliases = aliases
		if sub.Flags, err = ld.flags("subcommand_id = ?", id); err != nil {
			return nil, err
		}
		if sub.Positional, err = ld.positionalArgs("subcommand_id = ?", id); err != nil {
			return nil, err
		}
		if sub.Subcommands, err = ld.subcommands("parent_id = ?", id); err != nil {
			return nil, err
		}
	}
	return subs, nil
}

func (ld *loader) stringColumn(query string, args ...any) ([]string, error) {
	rows, err := ld.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading rows: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("loading rows: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

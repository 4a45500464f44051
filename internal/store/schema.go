package store

import (
	"fmt"
	"strings"
)

// validatePrefix accepts only alphanumerics and underscores so the prefix
// can be spliced into SQL identifiers safely.
func validatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("invalid table prefix %q: must not be empty", prefix)
	}
	for _, ch := range prefix {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' {
			continue
		}
		return fmt.Errorf("invalid table prefix %q: only alphanumerics and underscores allowed", prefix)
	}
	return nil
}

// schemaSQL generates the normalized table layout. All eight tables carry
// the prefix so multiple isolated schema sets can share one database file.
func schemaSQL(prefix string) string {
	sql := `
CREATE TABLE IF NOT EXISTS {p}commands (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    description TEXT,
    version TEXT,
    source TEXT NOT NULL DEFAULT 'help_command',
    confidence REAL NOT NULL DEFAULT 1.0,
    schema_version TEXT,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS {p}subcommands (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    command_id INTEGER NOT NULL,
    parent_id INTEGER,
    name TEXT NOT NULL,
    description TEXT,
    FOREIGN KEY (command_id) REFERENCES {p}commands(id) ON DELETE CASCADE,
    FOREIGN KEY (parent_id) REFERENCES {p}subcommands(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS {p}flags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    command_id INTEGER NOT NULL,
    subcommand_id INTEGER,
    short TEXT,
    long TEXT,
    value_type TEXT NOT NULL DEFAULT 'bool',
    takes_value INTEGER NOT NULL DEFAULT 0,
    description TEXT,
    multiple INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (command_id) REFERENCES {p}commands(id) ON DELETE CASCADE,
    FOREIGN KEY (subcommand_id) REFERENCES {p}subcommands(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS {p}positional_args (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    command_id INTEGER,
    subcommand_id INTEGER,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    value_type TEXT NOT NULL DEFAULT 'any',
    required INTEGER NOT NULL DEFAULT 0,
    multiple INTEGER NOT NULL DEFAULT 0,
    description TEXT,
    CHECK ((command_id IS NOT NULL AND subcommand_id IS NULL) OR (command_id IS NULL AND subcommand_id IS NOT NULL)),
    FOREIGN KEY (command_id) REFERENCES {p}commands(id) ON DELETE CASCADE,
    FOREIGN KEY (subcommand_id) REFERENCES {p}subcommands(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS {p}flag_choices (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    flag_id INTEGER NOT NULL,
    choice TEXT NOT NULL,
    FOREIGN KEY (flag_id) REFERENCES {p}flags(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS {p}arg_choices (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    arg_id INTEGER NOT NULL,
    choice TEXT NOT NULL,
    FOREIGN KEY (arg_id) REFERENCES {p}positional_args(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS {p}subcommand_aliases (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    subcommand_id INTEGER NOT NULL,
    alias TEXT NOT NULL,
    FOREIGN KEY (subcommand_id) REFERENCES {p}subcommands(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS {p}flag_relationships (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    flag_id INTEGER NOT NULL,
    related_flag_id INTEGER NOT NULL,
    relationship_type TEXT NOT NULL CHECK (relationship_type IN ('conflicts', 'requires')),
    FOREIGN KEY (flag_id) REFERENCES {p}flags(id) ON DELETE CASCADE,
    FOREIGN KEY (related_flag_id) REFERENCES {p}flags(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_{p}flags_command ON {p}flags(command_id);
CREATE INDEX IF NOT EXISTS idx_{p}flags_subcommand ON {p}flags(subcommand_id);
CREATE INDEX IF NOT EXISTS idx_{p}subcommands_command ON {p}subcommands(command_id);
CREATE INDEX IF NOT EXISTS idx_{p}subcommands_parent ON {p}subcommands(parent_id);
CREATE INDEX IF NOT EXISTS idx_{p}positional_command ON {p}positional_args(command_id);
CREATE INDEX IF NOT EXISTS idx_{p}positional_subcommand ON {p}positional_args(subcommand_id);
CREATE INDEX IF NOT EXISTS idx_{p}commands_source ON {p}commands(source);
`
	return strings.ReplaceAll(sql, "{p}", prefix)
}

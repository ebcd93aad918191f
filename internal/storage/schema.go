package storage

// schemaVersion is bumped whenever migrate adds or changes tables. Store
// refuses to operate against a schema_version ahead of what this binary
// knows how to read (spec.md §6.1 "schema versioned ... with migrations").
const schemaVersion = 1

const schemaDDL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
	absolute_path  TEXT PRIMARY KEY,
	relative_path  TEXT NOT NULL,
	language       TEXT NOT NULL,
	checksum       TEXT NOT NULL,
	line_count     INTEGER NOT NULL,
	parse_status   TEXT NOT NULL,
	parse_warnings TEXT,
	summary        TEXT
);
CREATE INDEX IF NOT EXISTS idx_files_relative_path ON files(relative_path);
CREATE INDEX IF NOT EXISTS idx_files_language ON files(language);

CREATE TABLE IF NOT EXISTS symbols (
	id             TEXT PRIMARY KEY,
	file_path      TEXT NOT NULL,
	name           TEXT NOT NULL,
	qualified_name TEXT NOT NULL,
	kind           TEXT NOT NULL,
	start_line     INTEGER NOT NULL,
	end_line       INTEGER NOT NULL,
	is_exported    INTEGER NOT NULL,
	documentation  TEXT,
	data           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_kind ON symbols(kind);
CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_path);

CREATE VIRTUAL TABLE IF NOT EXISTS symbols_fts USING fts5(
	id UNINDEXED, name, qualified_name
);

CREATE TABLE IF NOT EXISTS references_ (
	id                      TEXT PRIMARY KEY,
	symbol_id               TEXT,
	symbol_name             TEXT NOT NULL,
	referencing_file        TEXT NOT NULL,
	referencing_symbol_id   TEXT,
	referencing_symbol_name TEXT,
	line                    INTEGER NOT NULL,
	column                  INTEGER NOT NULL,
	context                 TEXT,
	reference_kind          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_references_symbol_name ON references_(symbol_name);
CREATE INDEX IF NOT EXISTS idx_references_file ON references_(referencing_file);

CREATE TABLE IF NOT EXISTS call_edges (
	id                TEXT PRIMARY KEY,
	file_path         TEXT NOT NULL,
	caller_symbol_id  TEXT,
	caller_name       TEXT,
	callee_symbol_id  TEXT,
	callee_name       TEXT NOT NULL,
	call_count        INTEGER NOT NULL,
	is_async          INTEGER NOT NULL,
	is_conditional    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_call_edges_caller ON call_edges(caller_symbol_id);
CREATE INDEX IF NOT EXISTS idx_call_edges_callee_name ON call_edges(callee_name);

CREATE TABLE IF NOT EXISTS type_relationships (
	id                 TEXT PRIMARY KEY,
	file_path          TEXT NOT NULL,
	source_symbol_id   TEXT,
	source_name        TEXT NOT NULL,
	target_symbol_id   TEXT,
	target_name        TEXT NOT NULL,
	relationship_kind  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_type_rel_source ON type_relationships(source_name);
CREATE INDEX IF NOT EXISTS idx_type_rel_target ON type_relationships(target_name);

CREATE TABLE IF NOT EXISTS imports (
	file_path    TEXT NOT NULL,
	source       TEXT NOT NULL,
	specifiers   TEXT,
	is_type_only INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_imports_file ON imports(file_path);

CREATE TABLE IF NOT EXISTS exports (
	file_path  TEXT NOT NULL,
	name       TEXT NOT NULL,
	local_name TEXT NOT NULL,
	is_default INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exports_file ON exports(file_path);

CREATE TABLE IF NOT EXISTS markov_chains (
	id         TEXT PRIMARY KEY,
	chain_type TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	config     TEXT
);

CREATE TABLE IF NOT EXISTS markov_transitions (
	chain_id      TEXT NOT NULL,
	from_state_id TEXT NOT NULL,
	from_state_name TEXT NOT NULL,
	to_state_id   TEXT NOT NULL,
	to_state_name TEXT NOT NULL,
	raw_count     INTEGER NOT NULL,
	probability   REAL NOT NULL,
	PRIMARY KEY (chain_id, from_state_id, to_state_id)
);
CREATE INDEX IF NOT EXISTS idx_markov_transitions_from ON markov_transitions(chain_id, from_state_id);
`

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return err
	}

	row := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1")
	var version int
	if err := row.Scan(&version); err != nil {
		_, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
		return err
	}
	if version > schemaVersion {
		return errUnsupportedSchema(version)
	}
	if version < schemaVersion {
		if _, err := s.db.Exec("UPDATE schema_version SET version = ?", schemaVersion); err != nil {
			return err
		}
	}
	return nil
}

// Package storage is the single embedded relational store spec.md §4.4/§6.1
// describes: one file per project, schema-versioned, with transactional
// per-file writes and the secondary indexes the query layer depends on.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/standardbeagle/codeindex/internal/codeerrors"
	"github.com/standardbeagle/codeindex/internal/types"
)

// Store wraps the sqlite-backed index. All per-file writes go through
// SaveFile, which is transactional (spec.md §4.4 invariant 1: "the index
// always reflects the last successfully parsed version of each file,
// atomically").
type Store struct {
	db *sql.DB
}

func errUnsupportedSchema(found int) error {
	return codeerrors.New(codeerrors.StoreIntegrity, "",
		fmt.Sprintf("database schema_version %d is newer than this binary supports (%d)", found, schemaVersion))
}

// Open creates the database file (and its parent directory) if needed and
// migrates it to the current schema.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, codeerrors.Wrap(codeerrors.IOError, dbPath, err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, dbPath, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers on one *DB
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, dbPath, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveFile implements spec.md §4.4's per-file transactional write: delete
// every row keyed by absolutePath across all per-file tables, then insert
// the new FileRecord and its child rows, all inside one transaction.
func (s *Store) SaveFile(file types.FileRecord, result *types.ParseResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return codeerrors.Wrap(codeerrors.StoreIntegrity, file.AbsolutePath, err)
	}
	defer tx.Rollback()

	if err := deleteFileRows(tx, file.AbsolutePath); err != nil {
		return codeerrors.Wrap(codeerrors.StoreIntegrity, file.AbsolutePath, err)
	}

	warnings, err := json.Marshal(file.ParseWarnings)
	if err != nil {
		return codeerrors.Wrap(codeerrors.StoreIntegrity, file.AbsolutePath, err)
	}
	if _, err := tx.Exec(`
		INSERT INTO files (absolute_path, relative_path, language, checksum, line_count, parse_status, parse_warnings, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, file.AbsolutePath, file.RelativePath, file.Language, file.Checksum, file.LineCount,
		string(file.ParseStatus), string(warnings), file.Summary); err != nil {
		return codeerrors.Wrap(codeerrors.StoreIntegrity, file.AbsolutePath, err)
	}

	if result != nil {
		if err := insertSymbols(tx, file.AbsolutePath, result.AllSymbols()); err != nil {
			return codeerrors.Wrap(codeerrors.StoreIntegrity, file.AbsolutePath, err)
		}
		if err := insertReferences(tx, result.References); err != nil {
			return codeerrors.Wrap(codeerrors.StoreIntegrity, file.AbsolutePath, err)
		}
		if err := insertCallEdges(tx, file.AbsolutePath, result.CallEdges); err != nil {
			return codeerrors.Wrap(codeerrors.StoreIntegrity, file.AbsolutePath, err)
		}
		if err := insertTypeRelationships(tx, file.AbsolutePath, result.TypeRelationships); err != nil {
			return codeerrors.Wrap(codeerrors.StoreIntegrity, file.AbsolutePath, err)
		}
		if err := insertImports(tx, file.AbsolutePath, result.Imports); err != nil {
			return codeerrors.Wrap(codeerrors.StoreIntegrity, file.AbsolutePath, err)
		}
		if err := insertExports(tx, file.AbsolutePath, result.Exports); err != nil {
			return codeerrors.Wrap(codeerrors.StoreIntegrity, file.AbsolutePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return codeerrors.Wrap(codeerrors.StoreIntegrity, file.AbsolutePath, err)
	}
	return nil
}

// RemoveFile deletes every row keyed by absolutePath, used when the watcher
// observes a deletion (spec.md §4.7).
func (s *Store) RemoveFile(absolutePath string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return codeerrors.Wrap(codeerrors.StoreIntegrity, absolutePath, err)
	}
	defer tx.Rollback()
	if err := deleteFileRows(tx, absolutePath); err != nil {
		return codeerrors.Wrap(codeerrors.StoreIntegrity, absolutePath, err)
	}
	return tx.Commit()
}

func deleteFileRows(tx *sql.Tx, absolutePath string) error {
	stmts := []string{
		"DELETE FROM symbols_fts WHERE id IN (SELECT id FROM symbols WHERE file_path = ?)",
		"DELETE FROM symbols WHERE file_path = ?",
		"DELETE FROM references_ WHERE referencing_file = ?",
		"DELETE FROM call_edges WHERE file_path = ?",
		"DELETE FROM type_relationships WHERE file_path = ?",
		"DELETE FROM imports WHERE file_path = ?",
		"DELETE FROM exports WHERE file_path = ?",
		"DELETE FROM files WHERE absolute_path = ?",
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt, absolutePath); err != nil {
			return err
		}
	}
	return nil
}

func insertSymbols(tx *sql.Tx, filePath string, symbols []types.Symbol) error {
	for _, sym := range symbols {
		data, err := json.Marshal(sym)
		if err != nil {
			return err
		}
		var doc []byte
		if d := symbolDoc(sym); d != nil {
			doc, err = json.Marshal(d)
			if err != nil {
				return err
			}
		}
		qname := symbolQualifiedName(sym)
		if _, err := tx.Exec(`
			INSERT INTO symbols (id, file_path, name, qualified_name, kind, start_line, end_line, is_exported, documentation, data)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sym.ID(), filePath, sym.Name(), qname, string(sym.Kind()), sym.Loc().StartLine, sym.Loc().EndLine,
			boolToInt(symbolExported(sym)), string(doc), string(data)); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO symbols_fts (id, name, qualified_name) VALUES (?, ?, ?)`,
			sym.ID(), sym.Name(), qname); err != nil {
			return err
		}
	}
	return nil
}

func symbolDoc(sym types.Symbol) *types.DocumentationInfo {
	switch t := sym.(type) {
	case types.FunctionSignature:
		return t.Documentation
	case types.ClassSignature:
		return t.Documentation
	case types.InterfaceSignature:
		return t.Documentation
	case types.TypeAliasSignature:
		return t.Documentation
	case types.VariableSignature:
		return t.Documentation
	case types.PropertySignature:
		return t.Documentation
	case types.ConfigEntrySignature:
		return t.Documentation
	}
	return nil
}

func symbolExported(sym types.Symbol) bool {
	switch t := sym.(type) {
	case types.FunctionSignature:
		return t.IsExported
	case types.ClassSignature:
		return t.IsExported
	case types.InterfaceSignature:
		return t.IsExported
	case types.TypeAliasSignature:
		return t.IsExported
	case types.VariableSignature:
		return t.IsExported
	case types.PropertySignature:
		return false
	case types.ConfigEntrySignature:
		return t.IsExported
	}
	return false
}

func symbolQualifiedName(sym types.Symbol) string {
	switch t := sym.(type) {
	case types.FunctionSignature:
		return t.FullyQualifiedName
	case types.ClassSignature:
		return t.FullyQualifiedName
	case types.InterfaceSignature:
		return t.FullyQualifiedName
	case types.TypeAliasSignature:
		return t.FullyQualifiedName
	case types.VariableSignature:
		return t.FullyQualifiedName
	case types.PropertySignature:
		return t.FullyQualifiedName
	case types.ConfigEntrySignature:
		return t.FullyQualifiedName
	}
	return sym.Name()
}

func insertReferences(tx *sql.Tx, refs []types.SymbolReference) error {
	for _, r := range refs {
		if _, err := tx.Exec(`
			INSERT INTO references_ (id, symbol_id, symbol_name, referencing_file, referencing_symbol_id, referencing_symbol_name, line, column, context, reference_kind)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, r.SymbolID, r.SymbolName, r.ReferencingFile, r.ReferencingSymbolID, r.ReferencingSymbolName,
			r.Line, r.Column, r.Context, string(r.ReferenceKind)); err != nil {
			return err
		}
	}
	return nil
}

func insertCallEdges(tx *sql.Tx, filePath string, edges []types.CallGraphEdge) error {
	for _, e := range edges {
		if _, err := tx.Exec(`
			INSERT INTO call_edges (id, file_path, caller_symbol_id, caller_name, callee_symbol_id, callee_name, call_count, is_async, is_conditional)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, e.ID, filePath, e.CallerSymbolID, e.CallerName, e.CalleeSymbolID, e.CalleeName,
			e.CallCount, boolToInt(e.IsAsync), boolToInt(e.IsConditional)); err != nil {
			return err
		}
	}
	return nil
}

func insertTypeRelationships(tx *sql.Tx, filePath string, rels []types.TypeRelationship) error {
	for _, r := range rels {
		if _, err := tx.Exec(`
			INSERT INTO type_relationships (id, file_path, source_symbol_id, source_name, target_symbol_id, target_name, relationship_kind)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, r.ID, filePath, r.SourceSymbolID, r.SourceName, r.TargetSymbolID, r.TargetName, string(r.RelationshipKind)); err != nil {
			return err
		}
	}
	return nil
}

func insertImports(tx *sql.Tx, filePath string, imports []types.ImportInfo) error {
	for _, i := range imports {
		specs, err := json.Marshal(i.Specifiers)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO imports (file_path, source, specifiers, is_type_only) VALUES (?, ?, ?, ?)
		`, filePath, i.Source, string(specs), boolToInt(i.IsTypeOnly)); err != nil {
			return err
		}
	}
	return nil
}

func insertExports(tx *sql.Tx, filePath string, exports []types.ExportInfo) error {
	for _, e := range exports {
		if _, err := tx.Exec(`
			INSERT INTO exports (file_path, name, local_name, is_default) VALUES (?, ?, ?, ?)
		`, filePath, e.Name, e.LocalName, boolToInt(e.IsDefault)); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package storage

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/standardbeagle/codeindex/internal/codeerrors"
	"github.com/standardbeagle/codeindex/internal/types"
)

// ListFilesOptions filters ListFiles (spec.md §4.4 public operation list).
type ListFilesOptions struct {
	Directory    string
	Language     string
	IncludeTests bool
	Limit        int
	Offset       int
}

func (s *Store) GetFile(path string) (*types.FileRecord, error) {
	row := s.db.QueryRow(`
		SELECT absolute_path, relative_path, language, checksum, line_count, parse_status, parse_warnings, summary
		FROM files WHERE absolute_path = ? OR relative_path = ?
	`, path, path)
	rec, err := scanFileRecord(row)
	if err == sql.ErrNoRows {
		return nil, codeerrors.New(codeerrors.PathNotFound, path, "file not indexed")
	}
	if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, path, err)
	}
	return rec, nil
}

func scanFileRecord(row *sql.Row) (*types.FileRecord, error) {
	var rec types.FileRecord
	var status, warnings string
	if err := row.Scan(&rec.AbsolutePath, &rec.RelativePath, &rec.Language, &rec.Checksum,
		&rec.LineCount, &status, &warnings, &rec.Summary); err != nil {
		return nil, err
	}
	rec.ParseStatus = types.ParseStatus(status)
	if warnings != "" {
		json.Unmarshal([]byte(warnings), &rec.ParseWarnings)
	}
	return &rec, nil
}

func (s *Store) ListFiles(opts ListFilesOptions) ([]types.FileRecord, error) {
	q := "SELECT absolute_path, relative_path, language, checksum, line_count, parse_status, parse_warnings, summary FROM files WHERE 1=1"
	var args []any
	if opts.Directory != "" {
		q += " AND relative_path LIKE ?"
		args = append(args, strings.TrimSuffix(opts.Directory, "/")+"/%")
	}
	if opts.Language != "" {
		q += " AND language = ?"
		args = append(args, opts.Language)
	}
	if !opts.IncludeTests {
		q += " AND relative_path NOT LIKE '%.test.%' AND relative_path NOT LIKE '%.spec.%' AND relative_path NOT LIKE '%_test.%'"
	}
	q += " ORDER BY relative_path"
	if opts.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}
	defer rows.Close()

	var out []types.FileRecord
	for rows.Next() {
		var rec types.FileRecord
		var status, warnings string
		if err := rows.Scan(&rec.AbsolutePath, &rec.RelativePath, &rec.Language, &rec.Checksum,
			&rec.LineCount, &status, &warnings, &rec.Summary); err != nil {
			return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
		}
		rec.ParseStatus = types.ParseStatus(status)
		if warnings != "" {
			json.Unmarshal([]byte(warnings), &rec.ParseWarnings)
		}
		out = append(out, rec)
	}
	return out, nil
}

// AllRelativePaths / RelativePathsIn implement pathresolve.FileLister.
func (s *Store) AllRelativePaths() []string {
	rows, err := s.db.Query("SELECT relative_path FROM files")
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if rows.Scan(&p) == nil {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) RelativePathsIn(directory string) []string {
	rows, err := s.db.Query("SELECT relative_path FROM files WHERE relative_path LIKE ?",
		strings.TrimSuffix(directory, "/")+"/%")
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if rows.Scan(&p) == nil {
			out = append(out, p)
		}
	}
	return out
}

// SearchSymbolsOptions filters SearchSymbols.
type SearchSymbolsOptions struct {
	Kind     types.SymbolKind
	Language string
	Limit    int
	Offset   int
}

// SearchSymbols ranks matches: exact name match first, then FTS prefix
// match on name/qualified_name (spec.md §4.4 "FTS + case-insensitive
// exact").
func (s *Store) SearchSymbols(query string, opts SearchSymbolsOptions) ([]types.Symbol, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	q := `
		SELECT sy.id, sy.kind, sy.data, CASE WHEN sy.name = ? THEN 0 ELSE 1 END AS rank
		FROM symbols sy
		JOIN symbols_fts fts ON fts.id = sy.id
		WHERE symbols_fts MATCH ?
	`
	args := []any{query, ftsQuery(query)}
	if opts.Kind != "" {
		q += " AND sy.kind = ?"
		args = append(args, string(opts.Kind))
	}
	if opts.Language != "" {
		q += " AND sy.file_path IN (SELECT absolute_path FROM files WHERE language = ?)"
		args = append(args, opts.Language)
	}
	q += " ORDER BY rank, sy.name LIMIT ? OFFSET ?"
	args = append(args, limit, opts.Offset)

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}
	defer rows.Close()

	var out []types.Symbol
	for rows.Next() {
		var id, kind, data string
		var rank int
		if err := rows.Scan(&id, &kind, &data, &rank); err != nil {
			return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
		}
		sym, err := decodeSymbol(kind, []byte(data))
		if err != nil {
			continue
		}
		out = append(out, sym)
	}
	return out, nil
}

// ftsQuery escapes query for fts5's MATCH syntax, treating it as a prefix
// search over both indexed columns.
func ftsQuery(query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return `""`
	}
	return `"` + strings.ReplaceAll(q, `"`, `""`) + `"*`
}

func (s *Store) getSymbolByFileAndName(path, name string, kinds ...types.SymbolKind) (types.Symbol, error) {
	placeholders := make([]string, len(kinds))
	args := []any{path, path, name}
	for i, k := range kinds {
		placeholders[i] = "?"
		args = append(args, string(k))
	}
	q := "SELECT kind, data FROM symbols WHERE (file_path = ? OR file_path LIKE '%' || ?) AND name = ?"
	if len(kinds) > 0 {
		q += " AND kind IN (" + strings.Join(placeholders, ",") + ")"
	}
	q += " LIMIT 1"
	row := s.db.QueryRow(q, args...)
	var kind, data string
	if err := row.Scan(&kind, &data); err == sql.ErrNoRows {
		return nil, codeerrors.New(codeerrors.SymbolNotFound, path, name)
	} else if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, path, err)
	}
	return decodeSymbol(kind, []byte(data))
}

func (s *Store) GetFunction(path, name string) (*types.FunctionSignature, error) {
	sym, err := s.getSymbolByFileAndName(path, name, types.KindFunction, types.KindMethod, types.KindConstructor, types.KindCallback)
	if err != nil {
		return nil, err
	}
	fn := sym.(types.FunctionSignature)
	return &fn, nil
}

func (s *Store) GetClass(path, name string) (*types.ClassSignature, error) {
	sym, err := s.getSymbolByFileAndName(path, name, types.KindClass)
	if err != nil {
		return nil, err
	}
	cls := sym.(types.ClassSignature)
	return &cls, nil
}

func (s *Store) GetInterface(path, name string) (*types.InterfaceSignature, error) {
	sym, err := s.getSymbolByFileAndName(path, name, types.KindInterface)
	if err != nil {
		return nil, err
	}
	iface := sym.(types.InterfaceSignature)
	return &iface, nil
}

func (s *Store) GetTypeAlias(path, name string) (*types.TypeAliasSignature, error) {
	sym, err := s.getSymbolByFileAndName(path, name, types.KindTypeAlias)
	if err != nil {
		return nil, err
	}
	alias := sym.(types.TypeAliasSignature)
	return &alias, nil
}

func (s *Store) GetCallersByName(name string) ([]types.CallGraphEdge, error) {
	return s.queryCallEdges("callee_name = ?", name)
}

func (s *Store) GetCallers(symbolID string) ([]types.CallGraphEdge, error) {
	return s.queryCallEdges("callee_symbol_id = ?", symbolID)
}

func (s *Store) GetCalleesByName(callerName string) ([]types.CallGraphEdge, error) {
	return s.queryCallEdges("caller_name = ?", callerName)
}

func (s *Store) GetCallees(symbolID string) ([]types.CallGraphEdge, error) {
	return s.queryCallEdges("caller_symbol_id = ?", symbolID)
}

func (s *Store) queryCallEdges(where string, args ...any) ([]types.CallGraphEdge, error) {
	rows, err := s.db.Query(`
		SELECT id, caller_symbol_id, caller_name, callee_symbol_id, callee_name, call_count, is_async, is_conditional
		FROM call_edges WHERE `+where, args...)
	if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}
	defer rows.Close()
	var out []types.CallGraphEdge
	for rows.Next() {
		var e types.CallGraphEdge
		var isAsync, isCond int
		if err := rows.Scan(&e.ID, &e.CallerSymbolID, &e.CallerName, &e.CalleeSymbolID, &e.CalleeName,
			&e.CallCount, &isAsync, &isCond); err != nil {
			return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
		}
		e.IsAsync = isAsync != 0
		e.IsConditional = isCond != 0
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) GetReferencesByName(name string) ([]types.SymbolReference, error) {
	return s.queryReferences("symbol_name = ?", name)
}

func (s *Store) GetReferencesInFile(path string) ([]types.SymbolReference, error) {
	return s.queryReferences("referencing_file = ?", path)
}

func (s *Store) queryReferences(where string, args ...any) ([]types.SymbolReference, error) {
	rows, err := s.db.Query(`
		SELECT id, symbol_id, symbol_name, referencing_file, referencing_symbol_id, referencing_symbol_name, line, column, context, reference_kind
		FROM references_ WHERE `+where, args...)
	if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}
	defer rows.Close()
	var out []types.SymbolReference
	for rows.Next() {
		var r types.SymbolReference
		var kind string
		if err := rows.Scan(&r.ID, &r.SymbolID, &r.SymbolName, &r.ReferencingFile, &r.ReferencingSymbolID,
			&r.ReferencingSymbolName, &r.Line, &r.Column, &r.Context, &kind); err != nil {
			return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
		}
		r.ReferenceKind = types.ReferenceKind(kind)
		out = append(out, r)
	}
	return out, nil
}

// GetTypeHierarchyByName returns the parent types name extends/implements/
// mixes in (spec.md §4.4).
func (s *Store) GetTypeHierarchyByName(name string) ([]types.TypeRelationship, error) {
	return s.queryTypeRelationships("source_name = ?", name)
}

// GetSubtypes returns every type that names name as a parent.
func (s *Store) GetSubtypes(name string) ([]types.TypeRelationship, error) {
	return s.queryTypeRelationships("target_name = ?", name)
}

// FindImplementations returns every type implementing (not extending) name.
func (s *Store) FindImplementations(name string) ([]types.TypeRelationship, error) {
	rows, err := s.db.Query(`
		SELECT id, source_symbol_id, source_name, target_symbol_id, target_name, relationship_kind
		FROM type_relationships WHERE target_name = ? AND relationship_kind = ?
	`, name, string(types.RelImplements))
	if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}
	defer rows.Close()
	return scanTypeRelationships(rows)
}

func (s *Store) queryTypeRelationships(where string, args ...any) ([]types.TypeRelationship, error) {
	rows, err := s.db.Query(`
		SELECT id, source_symbol_id, source_name, target_symbol_id, target_name, relationship_kind
		FROM type_relationships WHERE `+where, args...)
	if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}
	defer rows.Close()
	return scanTypeRelationships(rows)
}

func scanTypeRelationships(rows *sql.Rows) ([]types.TypeRelationship, error) {
	var out []types.TypeRelationship
	for rows.Next() {
		var r types.TypeRelationship
		var kind string
		if err := rows.Scan(&r.ID, &r.SourceSymbolID, &r.SourceName, &r.TargetSymbolID, &r.TargetName, &kind); err != nil {
			return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
		}
		r.RelationshipKind = types.TypeRelationshipKind(kind)
		out = append(out, r)
	}
	return out, nil
}

// AllSymbolRows returns every symbol in the store, used by the cross-file
// resolver and the Markov chain builders (spec.md §4.4/§4.8).
func (s *Store) AllSymbolRows() ([]types.Symbol, error) {
	rows, err := s.db.Query("SELECT kind, data FROM symbols")
	if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}
	defer rows.Close()
	var out []types.Symbol
	for rows.Next() {
		var kind, data string
		if err := rows.Scan(&kind, &data); err != nil {
			return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
		}
		sym, err := decodeSymbol(kind, []byte(data))
		if err != nil {
			continue
		}
		out = append(out, sym)
	}
	return out, nil
}

// UnresolvedCallEdges / UnresolvedReferences / UnresolvedTypeRelationships
// feed the cross-file resolver pass (spec.md §4.4 "Cross-file ID
// resolution").
func (s *Store) UnresolvedCallEdges() ([]types.CallGraphEdge, error) {
	return s.queryCallEdges("callee_symbol_id IS NULL OR callee_symbol_id = ''")
}

func (s *Store) UnresolvedReferences() ([]types.SymbolReference, error) {
	return s.queryReferences("symbol_id IS NULL OR symbol_id = ''")
}

func (s *Store) UnresolvedTypeRelationships() ([]types.TypeRelationship, error) {
	return s.queryTypeRelationships("target_symbol_id IS NULL OR target_symbol_id = ''")
}

func (s *Store) SetCallEdgeCallee(id, symbolID string) error {
	_, err := s.db.Exec("UPDATE call_edges SET callee_symbol_id = ? WHERE id = ?", symbolID, id)
	return err
}

func (s *Store) SetReferenceSymbol(id, symbolID string) error {
	_, err := s.db.Exec("UPDATE references_ SET symbol_id = ? WHERE id = ?", symbolID, id)
	return err
}

func (s *Store) SetTypeRelationshipTarget(id, symbolID string) error {
	_, err := s.db.Exec("UPDATE type_relationships SET target_symbol_id = ? WHERE id = ?", symbolID, id)
	return err
}

// SymbolsByName returns every symbol named exactly name, across all files,
// for ambiguity resolution (spec.md §4.4 cross-file resolution rules).
func (s *Store) SymbolsByName(name string) ([]types.Symbol, error) {
	rows, err := s.db.Query("SELECT kind, data FROM symbols WHERE name = ? ORDER BY file_path, start_line", name)
	if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}
	defer rows.Close()
	var out []types.Symbol
	for rows.Next() {
		var kind, data string
		if err := rows.Scan(&kind, &data); err != nil {
			return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
		}
		sym, err := decodeSymbol(kind, []byte(data))
		if err != nil {
			continue
		}
		out = append(out, sym)
	}
	return out, nil
}

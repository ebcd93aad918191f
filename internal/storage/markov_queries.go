package storage

import (
	"database/sql"
	"encoding/json"

	"github.com/standardbeagle/codeindex/internal/codeerrors"
	"github.com/standardbeagle/codeindex/internal/types"
)

// FileSource is one file's "imports this source" fact, the raw material
// import_cluster groups by shared source.
type FileSource struct {
	FilePath string
	Source   string
}

// AllCallEdges returns every recorded call edge, resolved or not: the
// call_flow builder groups by CallerSymbolID/CalleeSymbolID and tolerates
// edges whose ends never resolved (it simply can't place them in a graph
// keyed by symbol id, and skips them).
func (s *Store) AllCallEdges() ([]types.CallGraphEdge, error) {
	return s.queryCallEdges("1 = 1")
}

// AllTypeRelationships returns every recorded type relationship.
func (s *Store) AllTypeRelationships() ([]types.TypeRelationship, error) {
	return s.queryTypeRelationships("1 = 1")
}

// AllImportSources returns one (file, source) pair per import statement,
// feeding the import_cluster builder's per-source file grouping.
func (s *Store) AllImportSources() ([]FileSource, error) {
	rows, err := s.db.Query("SELECT file_path, source FROM imports")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FileSource
	for rows.Next() {
		var fs FileSource
		if err := rows.Scan(&fs.FilePath, &fs.Source); err != nil {
			return nil, err
		}
		out = append(out, fs)
	}
	return out, nil
}

// GetSymbolByID resolves a single symbol by its primary key, used by the
// Markov query to translate a startStateId into a startStateName and file.
func (s *Store) GetSymbolByID(id string) (types.Symbol, error) {
	row := s.db.QueryRow("SELECT kind, data FROM symbols WHERE id = ?", id)
	var kind, data string
	if err := row.Scan(&kind, &data); err == sql.ErrNoRows {
		return nil, codeerrors.New(codeerrors.SymbolNotFound, id, "no symbol with this id")
	} else if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, id, err)
	}
	return decodeSymbol(kind, []byte(data))
}

// FileImport pairs one import record with the file that declared it, for
// get_module_dependencies' reverse-dependency scan.
type FileImport struct {
	FilePath string
	Import   types.ImportInfo
}

// ImportsForFile returns filePath's own import declarations, in source
// order.
func (s *Store) ImportsForFile(filePath string) ([]types.ImportInfo, error) {
	rows, err := s.db.Query("SELECT source, specifiers, is_type_only FROM imports WHERE file_path = ?", filePath)
	if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, filePath, err)
	}
	defer rows.Close()
	return scanImportRows(rows)
}

// AllImportRows returns every import declaration in the store, tagged with
// its owning file.
func (s *Store) AllImportRows() ([]FileImport, error) {
	rows, err := s.db.Query("SELECT file_path, source, specifiers, is_type_only FROM imports")
	if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
	}
	defer rows.Close()
	var out []FileImport
	for rows.Next() {
		var fi FileImport
		var specifiers string
		var typeOnly int
		if err := rows.Scan(&fi.FilePath, &fi.Import.Source, &specifiers, &typeOnly); err != nil {
			return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
		}
		_ = json.Unmarshal([]byte(specifiers), &fi.Import.Specifiers)
		fi.Import.IsTypeOnly = typeOnly != 0
		out = append(out, fi)
	}
	return out, nil
}

func scanImportRows(rows *sql.Rows) ([]types.ImportInfo, error) {
	var out []types.ImportInfo
	for rows.Next() {
		var imp types.ImportInfo
		var specifiers string
		var typeOnly int
		if err := rows.Scan(&imp.Source, &specifiers, &typeOnly); err != nil {
			return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, "", err)
		}
		_ = json.Unmarshal([]byte(specifiers), &imp.Specifiers)
		imp.IsTypeOnly = typeOnly != 0
		out = append(out, imp)
	}
	return out, nil
}

// SymbolsInFile returns every symbol recorded for filePath (absolute path),
// ordered by start line, for list_functions-style whole-file listings.
func (s *Store) SymbolsInFile(filePath string) ([]types.Symbol, error) {
	rows, err := s.db.Query("SELECT kind, data FROM symbols WHERE file_path = ? ORDER BY start_line", filePath)
	if err != nil {
		return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, filePath, err)
	}
	defer rows.Close()
	var out []types.Symbol
	for rows.Next() {
		var kind, data string
		if err := rows.Scan(&kind, &data); err != nil {
			return nil, codeerrors.Wrap(codeerrors.StoreIntegrity, filePath, err)
		}
		sym, err := decodeSymbol(kind, []byte(data))
		if err != nil {
			continue
		}
		out = append(out, sym)
	}
	return out, nil
}

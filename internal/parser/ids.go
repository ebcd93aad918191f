package parser

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/standardbeagle/codeindex/internal/types"
)

// SymbolID computes the deterministic id spec.md §3 requires:
// hash(filePath, symbolQualifiedName, kind, startLine). Re-running this on
// identical inputs always yields the same id (spec.md §8 invariant 4); any
// shift in the inputs (e.g. an edit above the symbol moving startLine)
// yields a new one by design (spec.md §9 "symbol ID stability" note).
func SymbolID(filePath, qualifiedName string, kind types.SymbolKind, startLine int) string {
	h := xxhash.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d", filePath, qualifiedName, kind, startLine)
	return fmt.Sprintf("%016x", h.Sum64())
}

// ReferenceID / CallEdgeID / TypeRelID are derived the same way but keyed
// on the fields that make each row unique, so re-parsing identical content
// reproduces identical rows (idempotent re-index).
func ReferenceID(referencingFile string, line, column int, symbolName string) string {
	h := xxhash.New()
	fmt.Fprintf(h, "ref\x00%s\x00%d\x00%d\x00%s", referencingFile, line, column, symbolName)
	return fmt.Sprintf("%016x", h.Sum64())
}

func CallEdgeID(callerFile, callerName, calleeName string) string {
	h := xxhash.New()
	fmt.Fprintf(h, "call\x00%s\x00%s\x00%s", callerFile, callerName, calleeName)
	return fmt.Sprintf("%016x", h.Sum64())
}

func TypeRelID(sourceFile, sourceName, targetName string, kind types.TypeRelationshipKind) string {
	h := xxhash.New()
	fmt.Fprintf(h, "typerel\x00%s\x00%s\x00%s\x00%s", sourceFile, sourceName, targetName, kind)
	return fmt.Sprintf("%016x", h.Sum64())
}

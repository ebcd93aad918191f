package types

// ParseStatus reflects how much of a file the parser managed to extract.
type ParseStatus string

const (
	ParseComplete ParseStatus = "complete"
	ParsePartial  ParseStatus = "partial"
	ParseFailed   ParseStatus = "failed"
)

// FileRecord is the content-addressed, one-per-file row the storage engine
// keeps. Identity is AbsolutePath; it is replaced in-place on re-index.
type FileRecord struct {
	AbsolutePath  string
	RelativePath  string
	Language      string
	Checksum      string
	LineCount     int
	ParseStatus   ParseStatus
	ParseWarnings []string
	Summary       string
}

// ReferenceKind classifies why an identifier occurrence was recorded.
type ReferenceKind string

const (
	RefRead   ReferenceKind = "read"
	RefWrite  ReferenceKind = "write"
	RefCall   ReferenceKind = "call"
	RefType   ReferenceKind = "type"
	RefImport ReferenceKind = "import"
)

// SymbolReference is one non-definition occurrence of an identifier.
// SymbolID is populated lazily by the cross-file resolver; it stays empty
// for names that never resolve, and the reference remains searchable by
// name regardless.
type SymbolReference struct {
	ID                    string
	SymbolID              string
	SymbolName            string
	ReferencingFile       string
	ReferencingSymbolID   string
	ReferencingSymbolName string
	Line                  int
	Column                int
	Context               string
	ReferenceKind         ReferenceKind
}

// CallGraphEdge is a directed, deduplicated caller->callee relationship.
type CallGraphEdge struct {
	ID              string
	CallerSymbolID  string
	CallerName      string
	CalleeSymbolID  string
	CalleeName      string
	CallCount       int
	IsAsync         bool
	IsConditional   bool
}

// TypeRelationshipKind enumerates how one type relates to another.
type TypeRelationshipKind string

const (
	RelExtends    TypeRelationshipKind = "extends"
	RelImplements TypeRelationshipKind = "implements"
	RelMixin      TypeRelationshipKind = "mixin"
)

// TypeRelationship is a directed source->target inheritance-family edge.
type TypeRelationship struct {
	ID               string
	SourceSymbolID   string
	SourceName       string
	TargetSymbolID   string
	TargetName       string
	RelationshipKind TypeRelationshipKind
}

// ImportSpecifier is one named/aliased/default/namespace binding pulled in
// by an ImportInfo.
type ImportSpecifier struct {
	Name        string
	Alias       string
	IsDefault   bool
	IsNamespace bool
}

// ImportInfo is one `import ... from "source"` (or `require(...)`) record.
type ImportInfo struct {
	Source      string
	Specifiers  []ImportSpecifier
	IsTypeOnly  bool
}

// ExportInfo is one re-exported or declared-exported binding.
type ExportInfo struct {
	Name      string
	LocalName string
	IsDefault bool
}

// ParseError is a non-fatal parse diagnostic recorded on a partial
// ParseResult.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

// ParseResult is what a LanguageParser produces for one source buffer. It is
// normalized across languages before being handed to storage.
type ParseResult struct {
	Functions         []FunctionSignature
	Classes           []ClassSignature
	Interfaces        []InterfaceSignature
	TypeAliases       []TypeAliasSignature
	Variables         []VariableSignature
	Properties        []PropertySignature
	ConfigEntries     []ConfigEntrySignature
	Imports           []ImportInfo
	Exports           []ExportInfo
	References        []SymbolReference
	CallEdges         []CallGraphEdge
	TypeRelationships []TypeRelationship
	Warnings          []string
	Errors            []ParseError
	LineCount         int
}

// AllSymbols returns every symbol extracted, in a stable declaration order,
// as the closed Symbol union.
func (p *ParseResult) AllSymbols() []Symbol {
	out := make([]Symbol, 0, len(p.Functions)+len(p.Classes)+len(p.Interfaces)+
		len(p.TypeAliases)+len(p.Variables)+len(p.Properties)+len(p.ConfigEntries))
	for i := range p.Functions {
		out = append(out, p.Functions[i])
	}
	for i := range p.Classes {
		out = append(out, p.Classes[i])
	}
	for i := range p.Interfaces {
		out = append(out, p.Interfaces[i])
	}
	for i := range p.TypeAliases {
		out = append(out, p.TypeAliases[i])
	}
	for i := range p.Variables {
		out = append(out, p.Variables[i])
	}
	for i := range p.Properties {
		out = append(out, p.Properties[i])
	}
	for i := range p.ConfigEntries {
		out = append(out, p.ConfigEntries[i])
	}
	return out
}

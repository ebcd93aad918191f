// Package types holds the data model shared by every component of the index:
// symbols, references, call edges, type relationships, and the Markov chain
// tables built on top of them.
package types

// SymbolKind discriminates the closed set of symbol variants.
type SymbolKind string

const (
	KindFunction    SymbolKind = "function"
	KindMethod      SymbolKind = "method"
	KindConstructor SymbolKind = "constructor"
	KindCallback    SymbolKind = "callback"
	KindClass       SymbolKind = "class"
	KindInterface   SymbolKind = "interface"
	KindTypeAlias   SymbolKind = "type_alias"
	KindVariable    SymbolKind = "variable"
	KindProperty    SymbolKind = "property"
	KindConfigEntry SymbolKind = "config_entry"
)

// Location pins a symbol or reference to a byte range within one file.
type Location struct {
	FilePath  string
	StartLine int
	EndLine   int
}

// Symbol is the closed union of everything the index tracks as a named
// language entity. Each concrete type embeds Base and satisfies Symbol.
type Symbol interface {
	symbolNode()
	ID() string
	Name() string
	Kind() SymbolKind
	Loc() Location
}

// Base carries the attributes shared by every Symbol variant.
type Base struct {
	IDValue            string
	Name_              string
	FullyQualifiedName string
	Kind_              SymbolKind
	Location           Location
	IsExported         bool
	Documentation      *DocumentationInfo
}

func (b Base) ID() string        { return b.IDValue }
func (b Base) Name() string      { return b.Name_ }
func (b Base) Kind() SymbolKind  { return b.Kind_ }
func (b Base) Loc() Location     { return b.Location }

// Parameter describes one function/method parameter.
type Parameter struct {
	Name         string
	Type         string
	DefaultValue string
	IsOptional   bool
	IsRest       bool
}

// Modifiers carries the boolean/flag attributes of a function signature.
type Modifiers struct {
	IsAsync          bool
	IsStatic         bool
	IsPrivate        bool
	IsProtected      bool
	IsAbstract       bool
	IsGenerator      bool
	IsExported       bool
	CallbackContext  string
}

// FunctionSignature is the Symbol variant for functions, methods,
// constructors and tagged callbacks.
type FunctionSignature struct {
	Base
	Parameters      []Parameter
	ReturnType      string
	Modifiers       Modifiers
	ParentClass     string
	ParentFunction  string
	NestingDepth    int
	LocalName       string
	Decorators      []string
	Signature       string
}

func (FunctionSignature) symbolNode() {}

// ClassSignature is the Symbol variant for classes.
type ClassSignature struct {
	Base
	Extends             string
	Implements          []string
	Methods             []string // method symbol IDs
	Properties          []string // property symbol IDs
	MethodCount         int
	PropertyCount       int
	ConstructorSignature *FunctionSignature
	IsAbstract          bool
}

func (ClassSignature) symbolNode() {}

// InterfaceSignature is the Symbol variant for interfaces.
type InterfaceSignature struct {
	Base
	Extends    []string
	Methods    []string
	Properties []string
}

func (InterfaceSignature) symbolNode() {}

// TypeAliasSignature is the Symbol variant for TS `type X = ...` aliases.
type TypeAliasSignature struct {
	Base
	AliasedType string
}

func (TypeAliasSignature) symbolNode() {}

// VariableSignature is the Symbol variant for top-level / module-scope
// variable and constant declarations.
type VariableSignature struct {
	Base
	DeclaredType string
	IsConst      bool
}

func (VariableSignature) symbolNode() {}

// PropertySignature is the Symbol variant for class fields / interface
// property signatures / Python class-body assignments.
type PropertySignature struct {
	Base
	DeclaredType string
	ParentClass  string
	IsStatic     bool
	IsReadonly   bool
}

func (PropertySignature) symbolNode() {}

// ConfigValueType enumerates the scalar/container shapes a config value can
// take after flattening.
type ConfigValueType string

const (
	ConfigString  ConfigValueType = "string"
	ConfigNumber  ConfigValueType = "number"
	ConfigBoolean ConfigValueType = "boolean"
	ConfigNull    ConfigValueType = "null"
	ConfigObject  ConfigValueType = "object"
	ConfigArray   ConfigValueType = "array"
)

// ConfigFormat enumerates the file syntaxes the config parser accepts.
type ConfigFormat string

const (
	FormatJSON ConfigFormat = "json"
	FormatYAML ConfigFormat = "yaml"
	FormatTOML ConfigFormat = "toml"
)

// ConfigEntrySignature is the Symbol variant for one flattened, dotted path
// inside a recognized configuration file.
type ConfigEntrySignature struct {
	Base
	Path             string
	ValueType        ConfigValueType
	StringifiedValue string
	RawValue         any
	Depth            int
	ParentPath       string
	Format           ConfigFormat
	ConfigType       string
}

func (ConfigEntrySignature) symbolNode() {}

// DocumentationInfo is the normalized result of JSDoc / docstring parsing.
type DocumentationInfo struct {
	Description string
	Params      []DocParam
	Returns     string
	Throws      []string
	Examples    []string
	Tags        []string
}

// DocParam is one parsed @param / Args entry.
type DocParam struct {
	Name        string
	Type        string
	Description string
}

package parser

// Grammar-produced node-type string tags, centralized per spec.md §9
// ("Node types are identified by grammar-produced string tags ... keep
// these as constants in one module"). Tags are shared across the
// JavaScript and TypeScript grammars; TypeScript-only tags are marked.
const (
	nkFunctionDeclaration  = "function_declaration"
	nkGeneratorDeclaration = "generator_function_declaration"
	nkFunctionExpression   = "function_expression"
	nkGeneratorExpression  = "generator_function"
	nkArrowFunction        = "arrow_function"
	nkMethodDefinition     = "method_definition"
	nkClassDeclaration     = "class_declaration"
	nkClassHeritage        = "class_heritage"
	nkExtendsClause        = "extends_clause" // TS
	nkImplementsClause     = "implements_clause"
	nkVariableDeclaration  = "variable_declaration"
	nkLexicalDeclaration   = "lexical_declaration"
	nkVariableDeclarator   = "variable_declarator"
	nkInterfaceDeclaration = "interface_declaration" // TS
	nkTypeAliasDeclaration = "type_alias_declaration" // TS
	nkPropertySignature    = "property_signature"     // TS
	nkMethodSignature      = "method_signature"        // TS
	nkPublicFieldDef       = "public_field_definition"
	nkImportStatement      = "import_statement"
	nkImportClause         = "import_clause"
	nkNamedImports         = "named_imports"
	nkImportSpecifier      = "import_specifier"
	nkNamespaceImport      = "namespace_import"
	nkExportStatement      = "export_statement"
	nkExportClause         = "export_clause"
	nkExportSpecifier      = "export_specifier"
	nkCallExpression       = "call_expression"
	nkMemberExpression     = "member_expression"
	nkIdentifier           = "identifier"
	nkPropertyIdentifier   = "property_identifier"
	nkTypeIdentifier       = "type_identifier"
	nkString               = "string"
	nkAwaitExpression      = "await_expression"
	nkIfStatement          = "if_statement"
	nkTryStatement         = "try_statement"
	nkTernary              = "ternary_expression"
	nkStatementBlock       = "statement_block"
	nkAssignmentExpr       = "assignment_expression"
	nkComment              = "comment"
	nkDecorator            = "decorator"
	nkRequiredParameter    = "required_parameter" // TS
	nkOptionalParameter    = "optional_parameter" // TS
	nkRestPattern          = "rest_pattern"
	nkTypeAnnotation       = "type_annotation" // TS
	nkYield                = "yield_expression"

	// Python grammar tags.
	nkPyFunctionDef    = "function_definition"
	nkPyClassDef       = "class_definition"
	nkPyAssignment     = "assignment"
	nkPyAnnAssign      = "expression_statement" // wraps typed assignment
	nkPyImport         = "import_statement"
	nkPyImportFrom     = "import_from_statement"
	nkPyCall           = "call"
	nkPyAttribute      = "attribute"
	nkPyIdentifier     = "identifier"
	nkPyString         = "string"
	nkPyBlock          = "block"
	nkPyIfStatement    = "if_statement"
	nkPyTryStatement   = "try_statement"
	nkPyConditionalExp = "conditional_expression"
	nkPyParameters     = "parameters"
	nkPyParameter      = "identifier"
	nkPyDefaultParam   = "default_parameter"
	nkPyTypedParam     = "typed_parameter"
	nkPyTypedDefault   = "typed_default_parameter"
	nkPyListSplat      = "list_splat_pattern"
	nkPyDecorator      = "decorator"
	nkPyReturnType     = "type"
	nkPyYield          = "yield"
)

// callbackFrameworkCallers lists the plain callee names (test-framework
// calls) whose function arguments are tagged as callbacks (spec.md §4.1.1).
// Event (on/once/addEventListener) and CLI (action) callers are matched by
// member-method name in calleeIdentifier instead.
var callbackFrameworkCallers = map[string]bool{
	"describe": true, "it": true, "test": true,
	"before": true, "after": true, "beforeEach": true, "afterEach": true,
	"beforeAll": true, "afterAll": true,
}

// arrayIterationMethods are the built-in callback sinks nested functions
// are NOT emitted for unless they also pass the body-length significance
// filter as a standalone statement (spec.md §4.1.1).
var arrayIterationMethods = map[string]bool{
	"map": true, "filter": true, "forEach": true, "reduce": true,
	"find": true, "some": true, "every": true, "flatMap": true, "sort": true,
}

// referenceStoplist is the tunable keyword/short-name stoplist spec.md §9
// documents as an open question (Python-shaped, with a few JS additions).
var referenceStoplist = map[string]bool{
	"if": true, "in": true, "is": true, "or": true, "as": true, "of": true,
	"and": true, "not": true, "else": true, "elif": true, "for": true,
	"while": true, "return": true, "yield": true, "import": true, "from": true,
	"def": true, "class": true, "pass": true, "break": true, "continue": true,
	"true": true, "false": true, "none": true, "null": true, "this": true,
	"self": true, "const": true, "let": true, "var": true, "new": true,
	"function": true, "await": true, "async": true, "try": true, "except": true,
	"finally": true, "with": true, "lambda": true, "global": true, "nonlocal": true,
}

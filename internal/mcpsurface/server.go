// Package mcpsurface registers the indexed-code query API as MCP tools. It
// is a thin registration shim: every handler unmarshals its arguments,
// forwards verbatim to internal/query.API, and marshals the result. No
// business logic lives here.
package mcpsurface

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codeindex/internal/query"
)

// Server wraps the go-sdk MCP server bound to one query.API.
type Server struct {
	api    *query.API
	server *mcp.Server
}

// NewServer builds the MCP server and registers every tool-surface
// operation against api.
func NewServer(api *query.API, name, version string) *Server {
	s := &Server{
		api: api,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    name,
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Start blocks serving the MCP protocol over stdio until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func strSchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc}
}

func intSchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: desc}
}

func boolSchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean", Description: desc}
}

func numberSchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number", Description: desc}
}

func strArraySchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: desc}
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "list_files",
		Description: "List indexed files, optionally narrowed by directory and language.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"directory":     strSchema("Directory to list, relative to the project root"),
				"language":      strSchema("Filter by parsed language"),
				"limit":         intSchema("Maximum rows to return"),
				"offset":        intSchema("Rows to skip before collecting results"),
				"include_tests": boolSchema("Include test files in the listing"),
			},
		},
	}, s.handleListFiles)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_functions",
		Description: "List the functions, classes, interfaces and other top-level symbols declared in one file.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file_path":       strSchema("File to list symbols from"),
				"include_private": boolSchema("Include non-exported/private symbols"),
			},
			Required: []string{"file_path"},
		},
	}, s.handleListFunctions)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_function",
		Description: "Fetch one function/method/constructor signature by name within a file.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file_path":     strSchema("File the function is declared in"),
				"function_name": strSchema("Function name"),
			},
			Required: []string{"file_path", "function_name"},
		},
	}, s.handleGetFunction)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_class",
		Description: "Fetch one class's metadata (methods, properties, extends/implements) by name within a file.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file_path":  strSchema("File the class is declared in"),
				"class_name": strSchema("Class name"),
			},
			Required: []string{"file_path", "class_name"},
		},
	}, s.handleGetClass)

	s.server.AddTool(&mcp.Tool{
		Name:        "search_symbols",
		Description: "Ranked symbol search by name, or independently by return_type/param_type.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query":           strSchema("Name query"),
				"return_type":     strSchema("Return-type filter (runs independently of name search)"),
				"param_type":      strSchema("Parameter-type filter (runs independently of name search)"),
				"match_mode":      strSchema("exact | base | inner | partial (type filters only)"),
				"type":            strSchema("Symbol kind filter (function, class, interface, ...)"),
				"language":        strSchema("Language filter"),
				"limit":           intSchema("Maximum results"),
				"expand_synonyms": boolSchema("Blend in a small get/set/create/delete/find thesaurus"),
			},
		},
	}, s.handleSearchSymbols)

	s.server.AddTool(&mcp.Tool{
		Name:        "find_references",
		Description: "Every recorded occurrence of a symbol name, optionally narrowed to one file.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"symbol_name": strSchema("Symbol name to find references to"),
				"file_path":   strSchema("Restrict the search to this file"),
				"limit":       intSchema("Maximum references to return"),
			},
			Required: []string{"symbol_name"},
		},
	}, s.handleFindReferences)

	s.server.AddTool(&mcp.Tool{
		Name:        "trace_calls",
		Description: "Walk the call graph from a function name up to depth hops of callers, callees, or both.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"function_name": strSchema("Function to trace from"),
				"direction":     strSchema("callers | callees | both"),
				"depth":         intSchema("Hops to walk (1-3)"),
			},
			Required: []string{"function_name"},
		},
	}, s.handleTraceCalls)

	s.server.AddTool(&mcp.Tool{
		Name:        "trace_types",
		Description: "Walk a class/interface's extends/implements/mixin hierarchy, or find its implementations.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"class_name": strSchema("Class or interface to trace from"),
				"mode":       strSchema("hierarchy | implementations"),
				"direction":  strSchema("up | down | both (hierarchy mode only)"),
				"limit":      intSchema("Maximum relationships to return"),
			},
			Required: []string{"class_name"},
		},
	}, s.handleTraceTypes)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_module_dependencies",
		Description: "Resolve a file's import graph (and, optionally, its dependents and cycles).",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file_path":         strSchema("File to resolve dependencies from"),
				"depth":             intSchema("Hops to walk (1-5)"),
				"include_reverse":   boolSchema("Also include files that import this one"),
				"include_external":  boolSchema("Include unresolvable/external import sources"),
				"include_type_only": boolSchema("Include type-only imports"),
				"detect_cycles":     boolSchema("Run cycle detection over the forward graph"),
			},
			Required: []string{"file_path"},
		},
	}, s.handleGetModuleDependencies)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_architecture_overview",
		Description: "Aggregate project-level view: module grouping, entry points, dependency fan-out, public API, core classes, naming patterns.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"focus":    strSchema("full | modules | entry_points | dependencies | public_api | core_classes | patterns"),
				"group_by": strSchema("directory | language"),
			},
		},
	}, s.handleGetArchitectureOverview)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_related_context",
		Description: "Bundle a symbol's definition with its type relationships, callees and references, within a token budget.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"symbol_name":     strSchema("Symbol to bundle context for"),
				"file_path":       strSchema("Scope symbol resolution to this file"),
				"include_types":   boolSchema("Include type relationships"),
				"include_callees": boolSchema("Include transitive callees"),
				"include_tests":   boolSchema("Include references from test files"),
				"callee_depth":    intSchema("Callee BFS depth (1-2)"),
				"max_tokens":      intSchema("Approximate token budget for the bundle"),
			},
			Required: []string{"symbol_name"},
		},
	}, s.handleGetRelatedContext)

	s.server.AddTool(&mcp.Tool{
		Name:        "suggest_related",
		Description: "Markov-chain suggestion: symbols learned to relate to the given one across call flow, co-occurrence, type affinity and import clusters.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"symbol_name":     strSchema("Symbol to suggest related symbols for"),
				"file_path":       strSchema("Scope symbol resolution to this file"),
				"chain_types":     strArraySchema("Subset of call_flow, cooccurrence, type_affinity, import_cluster"),
				"depth":           intSchema("Walk depth (1-5)"),
				"min_probability": numberSchema("Prune transitions below this probability (0-1)"),
				"limit":           intSchema("Maximum suggestions"),
				"explain":         boolSchema("Include a textual rationale per suggestion"),
			},
			Required: []string{"symbol_name"},
		},
	}, s.handleSuggestRelated)

	s.server.AddTool(&mcp.Tool{
		Name:        "sync_index",
		Description: "Reindex targeted files (or the whole project if none given), optionally rebuilding the Markov chains.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"files":          strArraySchema("Paths to reindex; omit for a full walk"),
				"rebuild_chains": boolSchema("Rebuild the Markov suggestion chains after syncing"),
			},
		},
	}, s.handleSyncIndex)
}

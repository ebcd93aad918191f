package mcpsurface

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codeindex/internal/query"
	"github.com/standardbeagle/codeindex/internal/types"
)

type listFilesArgs struct {
	Directory    string `json:"directory,omitempty"`
	Language     string `json:"language,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
	IncludeTests bool   `json:"include_tests,omitempty"`
}

func (s *Server) handleListFiles(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args listFilesArgs
	if err := unmarshalArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse("list_files", err)
	}
	files, err := s.api.ListFiles(query.ListFilesArgs{
		Directory:    args.Directory,
		Language:     args.Language,
		Limit:        args.Limit,
		Offset:       args.Offset,
		IncludeTests: args.IncludeTests,
	})
	if err != nil {
		return errorResponse("list_files", err)
	}
	return jsonResponse(files)
}

type listFunctionsArgs struct {
	FilePath       string `json:"file_path"`
	IncludePrivate bool   `json:"include_private,omitempty"`
}

func (s *Server) handleListFunctions(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args listFunctionsArgs
	if err := unmarshalArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse("list_functions", err)
	}
	result, err := s.api.ListFunctions(args.FilePath, args.IncludePrivate)
	if err != nil {
		return errorResponse("list_functions", err)
	}
	return jsonResponse(result)
}

type getFunctionArgs struct {
	FilePath     string `json:"file_path"`
	FunctionName string `json:"function_name"`
}

func (s *Server) handleGetFunction(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args getFunctionArgs
	if err := unmarshalArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse("get_function", err)
	}
	fn, err := s.api.GetFunction(args.FilePath, args.FunctionName)
	if err != nil {
		return errorResponse("get_function", err)
	}
	return jsonResponse(fn)
}

type getClassArgs struct {
	FilePath  string `json:"file_path"`
	ClassName string `json:"class_name"`
}

func (s *Server) handleGetClass(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args getClassArgs
	if err := unmarshalArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse("get_class", err)
	}
	cls, err := s.api.GetClass(args.FilePath, args.ClassName)
	if err != nil {
		return errorResponse("get_class", err)
	}
	return jsonResponse(cls)
}

type searchSymbolsArgs struct {
	Query          string           `json:"query,omitempty"`
	ReturnType     string           `json:"return_type,omitempty"`
	ParamType      string           `json:"param_type,omitempty"`
	MatchMode      string           `json:"match_mode,omitempty"`
	Type           types.SymbolKind `json:"type,omitempty"`
	Language       string           `json:"language,omitempty"`
	Limit          int              `json:"limit,omitempty"`
	ExpandSynonyms bool             `json:"expand_synonyms,omitempty"`
}

func (s *Server) handleSearchSymbols(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args searchSymbolsArgs
	if err := unmarshalArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse("search_symbols", err)
	}
	results, err := s.api.SearchSymbols(query.SearchSymbolsArgs{
		Query:          args.Query,
		ReturnType:     args.ReturnType,
		ParamType:      args.ParamType,
		MatchMode:      args.MatchMode,
		Kind:           args.Type,
		Language:       args.Language,
		Limit:          args.Limit,
		ExpandSynonyms: args.ExpandSynonyms,
	})
	if err != nil {
		return errorResponse("search_symbols", err)
	}
	return jsonResponse(results)
}

type findReferencesArgs struct {
	SymbolName string `json:"symbol_name"`
	FilePath   string `json:"file_path,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

func (s *Server) handleFindReferences(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args findReferencesArgs
	if err := unmarshalArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse("find_references", err)
	}
	refs, err := s.api.FindReferences(args.SymbolName, args.FilePath, args.Limit)
	if err != nil {
		return errorResponse("find_references", err)
	}
	return jsonResponse(refs)
}

type traceCallsArgs struct {
	FunctionName string `json:"function_name"`
	Direction    string `json:"direction,omitempty"`
	Depth        int    `json:"depth,omitempty"`
}

func (s *Server) handleTraceCalls(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args traceCallsArgs
	if err := unmarshalArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse("trace_calls", err)
	}
	if args.Direction == "" {
		args.Direction = "both"
	}
	levels, err := s.api.TraceCalls(args.FunctionName, args.Direction, args.Depth)
	if err != nil {
		return errorResponse("trace_calls", err)
	}
	return jsonResponse(levels)
}

type traceTypesArgs struct {
	ClassName string `json:"class_name"`
	Mode      string `json:"mode,omitempty"`
	Direction string `json:"direction,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

func (s *Server) handleTraceTypes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args traceTypesArgs
	if err := unmarshalArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse("trace_types", err)
	}
	rels, err := s.api.TraceTypes(args.ClassName, args.Mode, args.Direction, args.Limit)
	if err != nil {
		return errorResponse("trace_types", err)
	}
	return jsonResponse(rels)
}

type getModuleDependenciesArgs struct {
	FilePath        string `json:"file_path"`
	Depth           int    `json:"depth,omitempty"`
	IncludeReverse  bool   `json:"include_reverse,omitempty"`
	IncludeExternal bool   `json:"include_external,omitempty"`
	IncludeTypeOnly bool   `json:"include_type_only,omitempty"`
	DetectCycles    bool   `json:"detect_cycles,omitempty"`
}

func (s *Server) handleGetModuleDependencies(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args getModuleDependenciesArgs
	if err := unmarshalArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse("get_module_dependencies", err)
	}
	deps, err := s.api.GetModuleDependencies(args.FilePath, args.Depth, args.IncludeReverse, args.IncludeExternal, args.IncludeTypeOnly, args.DetectCycles)
	if err != nil {
		return errorResponse("get_module_dependencies", err)
	}
	return jsonResponse(deps)
}

type getArchitectureOverviewArgs struct {
	Focus   string `json:"focus,omitempty"`
	GroupBy string `json:"group_by,omitempty"`
}

func (s *Server) handleGetArchitectureOverview(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args getArchitectureOverviewArgs
	if err := unmarshalArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse("get_architecture_overview", err)
	}
	overview, err := s.api.GetArchitectureOverview(args.Focus, args.GroupBy)
	if err != nil {
		return errorResponse("get_architecture_overview", err)
	}
	return jsonResponse(overview)
}

type getRelatedContextArgs struct {
	SymbolName     string `json:"symbol_name"`
	FilePath       string `json:"file_path,omitempty"`
	IncludeTypes   bool   `json:"include_types,omitempty"`
	IncludeCallees bool   `json:"include_callees,omitempty"`
	IncludeTests   bool   `json:"include_tests,omitempty"`
	CalleeDepth    int    `json:"callee_depth,omitempty"`
	MaxTokens      int    `json:"max_tokens,omitempty"`
}

func (s *Server) handleGetRelatedContext(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args getRelatedContextArgs
	if err := unmarshalArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse("get_related_context", err)
	}
	related, err := s.api.GetRelatedContext(args.SymbolName, args.FilePath, args.IncludeTypes, args.IncludeCallees, args.IncludeTests, args.CalleeDepth, args.MaxTokens)
	if err != nil {
		return errorResponse("get_related_context", err)
	}
	return jsonResponse(related)
}

type suggestRelatedArgs struct {
	SymbolName     string            `json:"symbol_name"`
	FilePath       string            `json:"file_path,omitempty"`
	ChainTypes     []types.ChainType `json:"chain_types,omitempty"`
	Depth          int               `json:"depth,omitempty"`
	MinProbability float64           `json:"min_probability,omitempty"`
	Limit          int               `json:"limit,omitempty"`
	Explain        bool              `json:"explain,omitempty"`
}

func (s *Server) handleSuggestRelated(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args suggestRelatedArgs
	if err := unmarshalArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse("suggest_related", err)
	}
	result, err := s.api.SuggestRelated(args.SymbolName, args.FilePath, args.ChainTypes, args.Depth, args.MinProbability, args.Limit, args.Explain)
	if err != nil {
		return errorResponse("suggest_related", err)
	}
	return jsonResponse(result)
}

type syncIndexArgs struct {
	Files         []string `json:"files,omitempty"`
	RebuildChains bool     `json:"rebuild_chains,omitempty"`
}

func (s *Server) handleSyncIndex(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args syncIndexArgs
	if err := unmarshalArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse("sync_index", err)
	}
	summary, err := s.api.SyncIndex(ctx, args.Files, args.RebuildChains)
	if err != nil {
		return errorResponse("sync_index", err)
	}
	return jsonResponse(summary)
}

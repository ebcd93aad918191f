// Package query implements the tool surface every MCP operation forwards
// to verbatim: list/search/trace/related-context/sync, all backed by one
// Store (SPEC_FULL.md §6.3).
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/standardbeagle/codeindex/internal/config"
	"github.com/standardbeagle/codeindex/internal/pathresolve"
	"github.com/standardbeagle/codeindex/internal/storage"
	"github.com/standardbeagle/codeindex/internal/syncengine"
)

// API is the single entry point every tool-surface operation hangs off.
type API struct {
	Store    *storage.Store
	Resolver *pathresolve.Resolver
	Cfg      *config.Config
	Sync     *syncengine.Engine
}

func New(store *storage.Store, resolver *pathresolve.Resolver, cfg *config.Config, sync *syncengine.Engine) *API {
	return &API{Store: store, Resolver: resolver, Cfg: cfg, Sync: sync}
}

// resolvePath runs the path resolver and turns a Failure into a plain Go
// error the caller can report; callers that need the suggestions detail
// (ambiguous candidates, fuzzy matches) call Resolver.Resolve directly.
func (a *API) resolvePath(_ context.Context, input string) (string, error) {
	res := a.Resolver.Resolve(input)
	if res.Ok {
		return res.ResolvedPath, nil
	}
	if res.FailureType == "ambiguous" {
		return "", fmt.Errorf("ambiguous path %q: matches %s", input, strings.Join(res.AvailablePaths, ", "))
	}
	return "", fmt.Errorf("path %q not found (searched %s); suggestions: %s",
		input, res.SearchedDirectory, strings.Join(res.Suggestions, ", "))
}

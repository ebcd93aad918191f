package query

import (
	"context"

	"github.com/standardbeagle/codeindex/internal/syncengine"
)

// SyncIndex implements sync_index, forwarding straight to the sync engine.
func (a *API) SyncIndex(ctx context.Context, files []string, rebuildChains bool) (*syncengine.Summary, error) {
	return a.Sync.Sync(ctx, syncengine.Request{Files: files, RebuildChains: rebuildChains})
}

package query

import "github.com/standardbeagle/codeindex/internal/types"

// TraceTypes implements trace_types: hierarchy (extends/implements/mixin
// parents and/or children) or implementations (interface satisfiers).
func (a *API) TraceTypes(className, mode, direction string, limit int) ([]types.TypeRelationship, error) {
	var out []types.TypeRelationship

	switch mode {
	case "implementations":
		rels, err := a.Store.FindImplementations(className)
		if err != nil {
			return nil, err
		}
		out = rels
	default: // hierarchy
		if direction == "up" || direction == "both" || direction == "" {
			rels, err := a.Store.GetTypeHierarchyByName(className)
			if err != nil {
				return nil, err
			}
			out = append(out, rels...)
		}
		if direction == "down" || direction == "both" {
			rels, err := a.Store.GetSubtypes(className)
			if err != nil {
				return nil, err
			}
			out = append(out, rels...)
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

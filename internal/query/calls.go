package query

import "github.com/standardbeagle/codeindex/internal/types"

// CallLevel is one hop's worth of call edges in a trace_calls result.
type CallLevel struct {
	Depth int
	Edges []types.CallGraphEdge
}

// TraceCalls implements trace_calls: walk the call graph by name up to
// depth hops in the requested direction(s).
func (a *API) TraceCalls(functionName, direction string, depth int) ([]CallLevel, error) {
	if depth < 1 {
		depth = 1
	}
	if depth > 3 {
		depth = 3
	}

	var levels []CallLevel
	frontier := []string{functionName}
	visited := map[string]bool{functionName: true}

	for d := 1; d <= depth; d++ {
		var edges []types.CallGraphEdge
		var next []string

		if direction == "callers" || direction == "both" {
			for _, name := range frontier {
				e, err := a.Store.GetCallersByName(name)
				if err != nil {
					continue
				}
				edges = append(edges, e...)
				for _, edge := range e {
					if !visited[edge.CallerName] {
						visited[edge.CallerName] = true
						next = append(next, edge.CallerName)
					}
				}
			}
		}
		if direction == "callees" || direction == "both" {
			for _, name := range frontier {
				e, err := a.Store.GetCalleesByName(name)
				if err != nil {
					continue
				}
				edges = append(edges, e...)
				for _, edge := range e {
					if !visited[edge.CalleeName] {
						visited[edge.CalleeName] = true
						next = append(next, edge.CalleeName)
					}
				}
			}
		}

		if len(edges) == 0 {
			break
		}
		levels = append(levels, CallLevel{Depth: d, Edges: edges})
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}
	return levels, nil
}

package markov

import (
	"fmt"
	"sort"
	"time"

	"github.com/standardbeagle/codeindex/internal/config"
	"github.com/standardbeagle/codeindex/internal/storage"
	"github.com/standardbeagle/codeindex/internal/types"
)

// QueryOptions parameterizes Query (§4.9).
type QueryOptions struct {
	ChainTypes     []types.ChainType
	Depth          int
	MinProbability float64
	MaxResults     int
	DecayFactor    float64
	Explain        bool
}

// DefaultQueryOptions mirrors the defaults named in §4.9.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		ChainTypes:     []types.ChainType{types.ChainCallFlow, types.ChainCooccurrence},
		Depth:          2,
		MinProbability: 0.05,
		MaxResults:     20,
		DecayFactor:    0.7,
	}
}

// ChainContribution records how much one chain contributed to a Suggestion.
type ChainContribution struct {
	ChainType   types.ChainType
	Probability float64
}

// Suggestion is one related-symbol result.
type Suggestion struct {
	SymbolID    string
	SymbolName  string
	Score       float64
	Path        []string
	Chains      []ChainContribution
	Explanation string
	Fallback    bool
}

// Result is Query's full return value.
type Result struct {
	StartSymbol     string
	Suggestions     []Suggestion
	ChainsUsed      []types.ChainType
	Options         QueryOptions
	ExecutionTimeMs int64
}

type activeChain struct {
	chainType types.ChainType
	chainID   string
}

type visitedState struct {
	bestProb float64
	bestPath []string // state names, start to this state inclusive
}

// Query runs the BFS/Viterbi walk described in §4.9, falling back to
// queryWithFallback when the walk surfaces nothing.
func Query(store *storage.Store, cfg config.MarkovConfig, startStateID string, opts QueryOptions) (*Result, error) {
	start := time.Now()
	opts = fillDefaults(opts)

	startName := startStateID
	if sym, err := store.GetSymbolByID(startStateID); err == nil {
		startName = sym.Name()
	}

	var active []activeChain
	for _, ct := range opts.ChainTypes {
		chainID, err := store.GetChainID(ct)
		if err != nil {
			continue
		}
		if store.HasChainSupport(chainID, startStateID) {
			active = append(active, activeChain{ct, chainID})
		}
	}

	combined := make(map[string]*combinedSuggestion)
	var chainsUsed []types.ChainType

	if len(active) > 0 {
		weights := redistributeWeights(cfg.ChainWeights, active)
		for _, ac := range active {
			chainsUsed = append(chainsUsed, ac.chainType)
			visited := bfsChain(store, ac.chainID, startStateID, startName, opts)
			weight := weights[string(ac.chainType)]
			for stateID, v := range visited {
				cs, ok := combined[stateID]
				if !ok {
					cs = &combinedSuggestion{symbolID: stateID, symbolName: v.bestPath[len(v.bestPath)-1]}
					combined[stateID] = cs
				}
				cs.score += v.bestProb * weight
				cs.chains = append(cs.chains, ChainContribution{ChainType: ac.chainType, Probability: v.bestProb})
				if cs.bestPath == nil || len(v.bestPath) < len(cs.bestPath) ||
					(len(v.bestPath) == len(cs.bestPath) && v.bestProb > cs.bestPathProb) {
					cs.bestPath = v.bestPath
					cs.bestPathProb = v.bestProb
				}
			}
		}
	}

	suggestions := make([]Suggestion, 0, len(combined))
	for _, cs := range combined {
		s := Suggestion{
			SymbolID:   cs.symbolID,
			SymbolName: cs.symbolName,
			Score:      cs.score,
			Path:       cs.bestPath,
			Chains:     cs.chains,
		}
		if opts.Explain {
			s.Explanation = explain(s)
		}
		suggestions = append(suggestions, s)
	}
	sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].Score > suggestions[j].Score })
	if len(suggestions) > opts.MaxResults {
		suggestions = suggestions[:opts.MaxResults]
	}

	if len(suggestions) == 0 {
		fb, err := fallback(store, startStateID, startName, opts.MaxResults)
		if err == nil {
			suggestions = fb
		}
	}

	return &Result{
		StartSymbol:     startName,
		Suggestions:     suggestions,
		ChainsUsed:      chainsUsed,
		Options:         opts,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

type combinedSuggestion struct {
	symbolID     string
	symbolName   string
	score        float64
	bestPath     []string
	bestPathProb float64
	chains       []ChainContribution
}

func fillDefaults(opts QueryOptions) QueryOptions {
	d := DefaultQueryOptions()
	if len(opts.ChainTypes) == 0 {
		opts.ChainTypes = d.ChainTypes
	}
	if opts.Depth <= 0 {
		opts.Depth = d.Depth
	}
	if opts.MinProbability <= 0 {
		opts.MinProbability = d.MinProbability
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = d.MaxResults
	}
	if opts.DecayFactor <= 0 {
		opts.DecayFactor = d.DecayFactor
	}
	return opts
}

func redistributeWeights(defaults map[string]float64, active []activeChain) map[string]float64 {
	var sum float64
	for _, ac := range active {
		sum += defaults[string(ac.chainType)]
	}
	out := make(map[string]float64, len(active))
	if sum <= 0 {
		// Degenerate config: split evenly across active chains.
		for _, ac := range active {
			out[string(ac.chainType)] = 1.0 / float64(len(active))
		}
		return out
	}
	for _, ac := range active {
		out[string(ac.chainType)] = defaults[string(ac.chainType)] / sum
	}
	return out
}

// bfsChain runs the bounded BFS/Viterbi walk for one chain, returning the
// best-probability path to every state reached within opts.Depth hops.
func bfsChain(store *storage.Store, chainID, startID, startName string, opts QueryOptions) map[string]visitedState {
	visited := map[string]visitedState{startID: {bestProb: 1.0, bestPath: []string{startName}}}
	frontier := []string{startID}

	for hop := 0; hop < opts.Depth; hop++ {
		var next []string
		for _, stateID := range frontier {
			cur := visited[stateID]
			transitions, err := store.GetTransitionsFrom(chainID, stateID)
			if err != nil {
				continue
			}
			for _, t := range transitions {
				newProb := cur.bestProb * t.Probability * opts.DecayFactor
				if newProb < opts.MinProbability {
					continue
				}
				existing, ok := visited[t.ToStateID]
				if ok && existing.bestProb >= newProb {
					continue
				}
				path := append(append([]string{}, cur.bestPath...), t.ToStateName)
				visited[t.ToStateID] = visitedState{bestProb: newProb, bestPath: path}
				next = append(next, t.ToStateID)
			}
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}

	delete(visited, startID)
	return visited
}

func explain(s Suggestion) string {
	out := fmt.Sprintf("path: %v", s.Path)
	for _, c := range s.Chains {
		out += fmt.Sprintf("; %s contributed p=%.3f", c.ChainType, c.Probability)
	}
	return out
}

// fallback implements queryWithFallback: when the Markov walk surfaces
// nothing, synthesize substitutes from the raw call graph and references.
func fallback(store *storage.Store, startID, startName string, maxResults int) ([]Suggestion, error) {
	var out []Suggestion
	seen := make(map[string]bool)

	add := func(id, name string, score float64, path []string) {
		if id == "" || id == startID || seen[id] || len(out) >= maxResults {
			return
		}
		seen[id] = true
		out = append(out, Suggestion{SymbolID: id, SymbolName: name, Score: score, Path: path, Fallback: true})
	}

	if callers, err := store.GetCallers(startID); err == nil {
		for _, e := range callers {
			add(e.CallerSymbolID, e.CallerName, 0.8, []string{startName, e.CallerName})
		}
	}
	if len(out) < maxResults {
		if callees, err := store.GetCallees(startID); err == nil {
			for _, e := range callees {
				add(e.CalleeSymbolID, e.CalleeName, 0.7, []string{startName, e.CalleeName})
			}
		}
	}
	if len(out) < maxResults {
		if sym, err := store.GetSymbolByID(startID); err == nil {
			if refs, err := store.GetReferencesInFile(sym.Loc().FilePath); err == nil {
				for _, r := range refs {
					add(r.SymbolID, r.SymbolName, 0.5, []string{startName, r.SymbolName})
				}
			}
		}
	}
	return out, nil
}

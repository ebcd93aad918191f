package query

import (
	"fmt"

	"github.com/standardbeagle/codeindex/internal/markov"
	"github.com/standardbeagle/codeindex/internal/types"
)

// SuggestRelated implements suggest_related: resolve symbolName (scoped to
// filePath if given) to a state id and run the Markov query.
func (a *API) SuggestRelated(symbolName, filePath string, chainTypes []types.ChainType, depth int, minProbability float64, limit int, explain bool) (*markov.Result, error) {
	var sym types.Symbol
	if filePath != "" {
		resolved, err := a.resolvePath(nil, filePath)
		if err != nil {
			return nil, err
		}
		syms, err := a.Store.SymbolsInFile(resolved)
		if err != nil {
			return nil, err
		}
		for _, s := range syms {
			if s.Name() == symbolName {
				sym = s
				break
			}
		}
	} else {
		matches, err := a.Store.SymbolsByName(symbolName)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			sym = matches[0]
		}
	}
	if sym == nil {
		return nil, fmt.Errorf("symbol %q not found", symbolName)
	}

	opts := markov.QueryOptions{
		ChainTypes:     chainTypes,
		Depth:          depth,
		MinProbability: minProbability,
		MaxResults:     limit,
		DecayFactor:    0.7,
		Explain:        explain,
	}
	return markov.Query(a.Store, a.Cfg.Markov, sym.ID(), opts)
}

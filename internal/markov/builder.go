// Package markov builds and queries the four transition graphs that back
// the "related symbol" suggestion surface: call_flow, cooccurrence,
// type_affinity and import_cluster (SPEC_FULL.md §4.8/§4.9).
package markov

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/codeindex/internal/config"
	"github.com/standardbeagle/codeindex/internal/storage"
	"github.com/standardbeagle/codeindex/internal/types"
)

// cooccurrenceKinds are the symbol kinds §4.8.2 groups by same-file
// affinity; config entries, plain variables and type aliases don't
// participate.
var cooccurrenceKinds = map[types.SymbolKind]bool{
	types.KindFunction:    true,
	types.KindMethod:      true,
	types.KindConstructor: true,
	types.KindCallback:    true,
	types.KindClass:       true,
	types.KindInterface:   true,
}

type accumulator struct {
	fromName string
	toName   string
	weight   float64
	count    int
}

type chainBuilder struct {
	rows map[string]map[string]*accumulator // fromID -> toID -> accum
}

func newChainBuilder() *chainBuilder {
	return &chainBuilder{rows: make(map[string]map[string]*accumulator)}
}

func (b *chainBuilder) add(fromID, fromName, toID, toName string, weight float64) {
	if fromID == "" || toID == "" || fromID == toID {
		return
	}
	row, ok := b.rows[fromID]
	if !ok {
		row = make(map[string]*accumulator)
		b.rows[fromID] = row
	}
	a, ok := row[toID]
	if !ok {
		a = &accumulator{fromName: fromName, toName: toName}
		row[toID] = a
	}
	a.weight += weight
	a.count++
}

// normalize turns accumulated raw weights into the stored transitions: each
// row's outgoing weights are divided by their sum so they form a probability
// distribution (§4.8.5). Rows whose sum is 0 are dropped.
func (b *chainBuilder) normalize() []types.MarkovTransition {
	var out []types.MarkovTransition
	for fromID, row := range b.rows {
		var rowSum float64
		for _, a := range row {
			rowSum += a.weight
		}
		if rowSum <= 0 {
			continue
		}
		for toID, a := range row {
			out = append(out, types.MarkovTransition{
				FromStateID:   fromID,
				FromStateName: a.fromName,
				ToStateID:     toID,
				ToStateName:   a.toName,
				RawCount:      float64(a.count),
				Probability:   a.weight / rowSum,
			})
		}
	}
	return out
}

// RebuildAll recomputes every chain from the current contents of store and
// persists them, returning the chain ids touched.
func RebuildAll(store *storage.Store, cfg config.MarkovConfig) ([]string, error) {
	var ids []string
	for _, build := range []func(*storage.Store, config.MarkovConfig) (types.ChainType, []types.MarkovTransition, error){
		buildCallFlow, buildCooccurrence, buildTypeAffinity, buildImportCluster,
	} {
		chainType, transitions, err := build(store, cfg)
		if err != nil {
			return ids, err
		}
		configJSON, _ := json.Marshal(cfg)
		meta, err := store.GetOrCreateChain(chainType, string(configJSON))
		if err != nil {
			return ids, err
		}
		if err := store.ClearChain(meta.ID); err != nil {
			return ids, err
		}
		if err := store.SaveTransitions(meta.ID, transitions); err != nil {
			return ids, err
		}
		ids = append(ids, meta.ID)
	}
	return ids, nil
}

// buildCallFlow implements §4.8.1: co-callee affinity among the callees of
// every caller with fan-out >= 2.
func buildCallFlow(store *storage.Store, cfg config.MarkovConfig) (types.ChainType, []types.MarkovTransition, error) {
	edges, err := store.AllCallEdges()
	if err != nil {
		return types.ChainCallFlow, nil, err
	}
	fc := cfg.CallFlow

	byCaller := make(map[string][]types.CallGraphEdge)
	for _, e := range edges {
		if e.CallerSymbolID == "" || e.CalleeSymbolID == "" {
			continue
		}
		if e.CallCount < fc.MinCallCount {
			continue
		}
		byCaller[e.CallerSymbolID] = append(byCaller[e.CallerSymbolID], e)
	}

	b := newChainBuilder()
	for _, callees := range byCaller {
		distinct := dedupeCallees(callees)
		fanout := len(distinct)
		if fanout < 2 {
			continue
		}
		fanoutFactor := 1.0
		if fc.FanoutNormalization {
			fanoutFactor = math.Sqrt(float64(fanout - 1))
		}
		if fanoutFactor == 0 {
			fanoutFactor = 1
		}

		for i, a := range distinct {
			for j, bEdge := range distinct {
				if i == j {
					continue
				}
				var base float64
				if fc.UseGeometricMean {
					base = math.Sqrt(math.Log(1+float64(a.CallCount)) * math.Log(1+float64(bEdge.CallCount)))
				} else {
					base = math.Min(float64(a.CallCount), float64(bEdge.CallCount))
				}
				base /= fanoutFactor

				if bEdge.IsAsync {
					base *= 1 + fc.AsyncBonus
				}
				if bEdge.IsConditional {
					base *= 1 - fc.ConditionalPenalty
				}
				b.add(a.CalleeSymbolID, a.CalleeName, bEdge.CalleeSymbolID, bEdge.CalleeName, base)
			}
		}
	}
	return types.ChainCallFlow, b.normalize(), nil
}

func dedupeCallees(edges []types.CallGraphEdge) []types.CallGraphEdge {
	seen := make(map[string]bool, len(edges))
	var out []types.CallGraphEdge
	for _, e := range edges {
		if seen[e.CalleeSymbolID] {
			continue
		}
		seen[e.CalleeSymbolID] = true
		out = append(out, e)
	}
	return out
}

// buildCooccurrence implements §4.8.2: same-file (or same-class) affinity
// between every pair of a file's significant symbols, IDF-weighted.
func buildCooccurrence(store *storage.Store, cfg config.MarkovConfig) (types.ChainType, []types.MarkovTransition, error) {
	symbols, err := store.AllSymbolRows()
	if err != nil {
		return types.ChainCooccurrence, nil, err
	}
	cc := cfg.Cooccurrence

	byFile := make(map[string][]types.Symbol)
	docFreq := make(map[string]map[string]bool) // name -> set of files
	for _, sym := range symbols {
		if !cooccurrenceKinds[sym.Kind()] {
			continue
		}
		file := sym.Loc().FilePath
		byFile[file] = append(byFile[file], sym)
		if docFreq[sym.Name()] == nil {
			docFreq[sym.Name()] = make(map[string]bool)
		}
		docFreq[sym.Name()][file] = true
	}
	totalDocs := len(byFile)
	if totalDocs == 0 {
		return types.ChainCooccurrence, nil, nil
	}

	idf := func(name string) float64 {
		if !cc.UseIDF {
			return 1
		}
		df := len(docFreq[name])
		if df == 0 {
			df = 1
		}
		ratio := float64(totalDocs) / float64(df)
		if ratio <= 0 {
			return 0
		}
		v := math.Log(ratio)
		if v <= 0 {
			return 0.01
		}
		return v
	}

	b := newChainBuilder()
	for _, syms := range byFile {
		for i := 0; i < len(syms); i++ {
			for j := 0; j < len(syms); j++ {
				if i == j {
					continue
				}
				a, c := syms[i], syms[j]
				scope := cc.SameFileWeight
				if sameParentClass(a, c) {
					scope = cc.SameClassWeight
				}
				weight := scope * math.Sqrt(idf(a.Name())*idf(c.Name()))
				b.add(a.ID(), a.Name(), c.ID(), c.Name(), weight)
			}
		}
	}
	return types.ChainCooccurrence, b.normalize(), nil
}

func sameParentClass(a, c types.Symbol) bool {
	pa, ok1 := parentClassOf(a)
	pc, ok2 := parentClassOf(c)
	return ok1 && ok2 && pa != "" && pa == pc
}

func parentClassOf(sym types.Symbol) (string, bool) {
	switch t := sym.(type) {
	case types.FunctionSignature:
		return t.ParentClass, true
	case types.PropertySignature:
		return t.ParentClass, true
	}
	return "", false
}

// buildTypeAffinity implements §4.8.3: extends/implements/mixin edges, plus
// a weaker reverse edge in the other direction.
func buildTypeAffinity(store *storage.Store, cfg config.MarkovConfig) (types.ChainType, []types.MarkovTransition, error) {
	rels, err := store.AllTypeRelationships()
	if err != nil {
		return types.ChainTypeAffinity, nil, err
	}
	ta := cfg.TypeAffinity

	b := newChainBuilder()
	for _, r := range rels {
		if r.SourceSymbolID == "" || r.TargetSymbolID == "" {
			continue
		}
		var weight float64
		switch r.RelationshipKind {
		case types.RelExtends:
			weight = ta.ExtendsWeight
		case types.RelImplements:
			weight = ta.ImplementsWeight
		case types.RelMixin:
			weight = ta.MixinWeight
		default:
			weight = ta.DefaultWeight
		}
		b.add(r.SourceSymbolID, r.SourceName, r.TargetSymbolID, r.TargetName, weight)
		b.add(r.TargetSymbolID, r.TargetName, r.SourceSymbolID, r.SourceName, weight*ta.ReverseFactor)
	}
	return types.ChainTypeAffinity, b.normalize(), nil
}

// buildImportCluster implements §4.8.4: files that import the same source
// are pulled together, weighted by how many sources they share.
func buildImportCluster(store *storage.Store, cfg config.MarkovConfig) (types.ChainType, []types.MarkovTransition, error) {
	pairs, err := store.AllImportSources()
	if err != nil {
		return types.ChainImportCluster, nil, err
	}
	ic := cfg.ImportCluster

	bySource := make(map[string]map[string]bool)
	for _, p := range pairs {
		if bySource[p.Source] == nil {
			bySource[p.Source] = make(map[string]bool)
		}
		bySource[p.Source][p.FilePath] = true
	}

	type pairKey struct{ a, b string }
	shared := make(map[pairKey]int)
	for _, files := range bySource {
		if len(files) < 2 {
			continue
		}
		list := make([]string, 0, len(files))
		for f := range files {
			list = append(list, f)
		}
		sort.Strings(list)
		for i := 0; i < len(list); i++ {
			for j := 0; j < len(list); j++ {
				if i == j {
					continue
				}
				shared[pairKey{list[i], list[j]}]++
			}
		}
	}

	b := newChainBuilder()
	for key, count := range shared {
		if count < ic.MinSharedImports {
			continue
		}
		fromID, toID := fileStateID(key.a), fileStateID(key.b)
		weight := float64(count) * ic.SharedSourceWeight
		b.add(fromID, key.a, toID, key.b, weight)
	}
	return types.ChainImportCluster, b.normalize(), nil
}

func fileStateID(path string) string {
	h := xxhash.New()
	h.WriteString("file\x00" + path)
	return hexSum(h.Sum64())
}

func hexSum(v uint64) string {
	const hextable = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = hextable[v&0xf]
		v >>= 4
	}
	return string(buf)
}

package types

import "time"

// ChainType enumerates the four Markov transition graphs the builder
// maintains.
type ChainType string

const (
	ChainCallFlow      ChainType = "call_flow"
	ChainCooccurrence  ChainType = "cooccurrence"
	ChainTypeAffinity  ChainType = "type_affinity"
	ChainImportCluster ChainType = "import_cluster"
)

// AllChainTypes lists every chain type in a stable order, used for default
// chainTypes arguments and full-rebuild iteration.
var AllChainTypes = []ChainType{ChainCallFlow, ChainCooccurrence, ChainTypeAffinity, ChainImportCluster}

// MarkovChainMeta is one row of the markov_chains table.
type MarkovChainMeta struct {
	ID        string
	ChainType ChainType
	CreatedAt time.Time
	UpdatedAt time.Time
	Config    string // serialized builder config, for provenance/debugging
}

// MarkovTransition is one outgoing edge of a chain. Invariant: for a given
// (ChainID, FromStateID), the probabilities of all outgoing transitions sum
// to 1.0 within floating tolerance.
type MarkovTransition struct {
	ChainID       string
	FromStateID   string
	FromStateName string
	ToStateID     string
	ToStateName   string
	RawCount      float64
	Probability   float64
}

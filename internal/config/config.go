// Package config defines the configuration surface the index is opened
// with (spec.md §6.2): root/database paths, include/exclude globs, the
// file-size cap, privacy defaults and Markov chain weights.
package config

import (
	"os"
	"path/filepath"
)

// Config is the configuration object the index is opened with.
type Config struct {
	RootDirectory   string
	DatabasePath    string
	Include         []string
	Exclude         []string
	MaxFileSize     int64 // bytes; 0 disables the cap
	IncludePrivate  bool
	RespectGitignore bool
	WatchMode       bool
	WatchDebounceMs int
	WalkConcurrency int

	Markov MarkovConfig
}

// MarkovConfig holds the tunables spec.md §4.8 calls out as configurable
// defaults.
type MarkovConfig struct {
	CallFlow      CallFlowConfig
	Cooccurrence  CooccurrenceConfig
	TypeAffinity  TypeAffinityConfig
	ImportCluster ImportClusterConfig

	ChainWeights map[string]float64 // default per-chain weight for queries
}

type CallFlowConfig struct {
	AsyncBonus          float64
	ConditionalPenalty  float64
	MinCallCount        int
	UseGeometricMean    bool
	FanoutNormalization bool
}

type CooccurrenceConfig struct {
	SameFunctionWeight float64
	SameClassWeight    float64
	SameFileWeight     float64
	UseIDF             bool
}

type TypeAffinityConfig struct {
	ExtendsWeight    float64
	ImplementsWeight float64
	MixinWeight      float64
	DefaultWeight    float64
	ReverseFactor    float64
}

type ImportClusterConfig struct {
	SharedSourceWeight float64
	MinSharedImports   int
}

// Default returns the configuration defaults, mirroring the teacher's
// .lci.kdl baked-in defaults (see kdl_config.go) adapted to this system's
// tunables.
func Default(rootDirectory string) *Config {
	abs, err := filepath.Abs(rootDirectory)
	if err != nil {
		abs = rootDirectory
	}
	return &Config{
		RootDirectory:    abs,
		DatabasePath:     filepath.Join(abs, ".codeindex", "index.db"),
		Include:          nil,
		Exclude:          DefaultExclusions(),
		MaxFileSize:      1 << 20, // 1 MB
		IncludePrivate:   false,
		RespectGitignore: true,
		WatchMode:        false,
		WatchDebounceMs:  200,
		WalkConcurrency:  12,
		Markov: MarkovConfig{
			CallFlow: CallFlowConfig{
				AsyncBonus:          0.1,
				ConditionalPenalty:  0.2,
				MinCallCount:        1,
				UseGeometricMean:    true,
				FanoutNormalization: true,
			},
			Cooccurrence: CooccurrenceConfig{
				SameFunctionWeight: 3.0,
				SameClassWeight:    2.0,
				SameFileWeight:     1.0,
				UseIDF:             true,
			},
			TypeAffinity: TypeAffinityConfig{
				ExtendsWeight:    1.0,
				ImplementsWeight: 0.9,
				MixinWeight:      0.7,
				DefaultWeight:    0.5,
				ReverseFactor:    0.8,
			},
			ImportCluster: ImportClusterConfig{
				SharedSourceWeight: 0.5,
				MinSharedImports:   2,
			},
			ChainWeights: map[string]float64{
				"call_flow":      0.4,
				"cooccurrence":   0.25,
				"type_affinity":  0.2,
				"import_cluster": 0.15,
			},
		},
	}
}

// DefaultExclusions mirrors the teacher's baseline ignore set (node_modules,
// VCS metadata, build output) referenced by spec.md §4.5 step 1.
func DefaultExclusions() []string {
	return []string{
		"**/node_modules/**",
		"**/.git/**",
		"**/dist/**",
		"**/build/**",
		"**/.codeindex/**",
		"**/__pycache__/**",
		"**/*.min.js",
	}
}

// Load reads a project config from `<root>/.codeindex.kdl` if present,
// layering it on top of Default(root). A missing file is not an error.
func Load(root string) (*Config, error) {
	cfg := Default(root)
	kdlPath := filepath.Join(cfg.RootDirectory, ".codeindex.kdl")
	if _, err := os.Stat(kdlPath); err != nil {
		return cfg, nil
	}
	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return cfg, err
	}
	if err := applyKDL(cfg, string(content)); err != nil {
		return cfg, err
	}
	return cfg, nil
}

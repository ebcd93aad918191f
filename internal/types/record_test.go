package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResultAllSymbolsOrderAndCount(t *testing.T) {
	result := &ParseResult{
		Functions:     []FunctionSignature{{Base: Base{Name_: "f1"}}, {Base: Base{Name_: "f2"}}},
		Classes:       []ClassSignature{{Base: Base{Name_: "C1"}}},
		Interfaces:    []InterfaceSignature{{Base: Base{Name_: "I1"}}},
		TypeAliases:   []TypeAliasSignature{{Base: Base{Name_: "T1"}}},
		Variables:     []VariableSignature{{Base: Base{Name_: "v1"}}},
		Properties:    []PropertySignature{{Base: Base{Name_: "p1"}}},
		ConfigEntries: []ConfigEntrySignature{{Base: Base{Name_: "cfg.key"}}},
	}

	all := result.AllSymbols()
	assert.Len(t, all, 8)

	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name()
	}
	assert.Equal(t, []string{"f1", "f2", "C1", "I1", "T1", "v1", "p1", "cfg.key"}, names)
}

func TestParseResultAllSymbolsEmpty(t *testing.T) {
	result := &ParseResult{}
	assert.Empty(t, result.AllSymbols())
}

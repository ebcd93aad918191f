package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolVariantsSatisfyInterface(t *testing.T) {
	base := Base{IDValue: "sym-1", Name_: "Foo", Kind_: KindFunction, Location: Location{FilePath: "a.go", StartLine: 3, EndLine: 10}}

	variants := []Symbol{
		FunctionSignature{Base: base},
		ClassSignature{Base: base},
		InterfaceSignature{Base: base},
		TypeAliasSignature{Base: base},
		VariableSignature{Base: base},
		PropertySignature{Base: base},
		ConfigEntrySignature{Base: base},
	}

	for _, v := range variants {
		assert.Equal(t, "sym-1", v.ID())
		assert.Equal(t, "Foo", v.Name())
		assert.Equal(t, Location{FilePath: "a.go", StartLine: 3, EndLine: 10}, v.Loc())
	}
}

func TestBaseAccessorsReflectKind(t *testing.T) {
	fn := FunctionSignature{Base: Base{Kind_: KindMethod, Name_: "Bar"}}
	assert.Equal(t, KindMethod, fn.Kind())
	assert.Equal(t, "Bar", fn.Name())
}

func TestAllChainTypesIsStableAndComplete(t *testing.T) {
	assert.Len(t, AllChainTypes, 4)
	assert.Contains(t, AllChainTypes, ChainCallFlow)
	assert.Contains(t, AllChainTypes, ChainCooccurrence)
	assert.Contains(t, AllChainTypes, ChainTypeAffinity)
	assert.Contains(t, AllChainTypes, ChainImportCluster)
}

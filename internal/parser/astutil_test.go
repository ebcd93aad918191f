package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimIdentifierStripsBracketsAndWhitespace(t *testing.T) {
	assert.Equal(t, "foo", trimIdentifier("  foo  "))
	assert.Equal(t, "foo", trimIdentifier("(foo)"))
	assert.Equal(t, "foo", trimIdentifier("[foo]"))
	assert.Equal(t, "foo", trimIdentifier("{foo}"))
}

func TestQualifiedNameJoinsChainWithLeaf(t *testing.T) {
	assert.Equal(t, "Outer.leaf", qualifiedName([]string{"Outer"}, "leaf"))
	assert.Equal(t, "leaf", qualifiedName(nil, "leaf"))
}

func TestQualifiedNameCapsChainDepthAtThree(t *testing.T) {
	chain := []string{"A", "B", "C", "D", "E"}
	got := qualifiedName(chain, "leaf")
	assert.Equal(t, "C.D.E.leaf", got)
}

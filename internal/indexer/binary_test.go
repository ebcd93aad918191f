package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBinaryByExtension(t *testing.T) {
	assert.True(t, isBinaryByExtension("logo.png"))
	assert.True(t, isBinaryByExtension("archive.tar.gz"))
	assert.False(t, isBinaryByExtension("main.go"))
	assert.False(t, isBinaryByExtension("bundle.min.js"), "minified JS is still text, not binary")
}

func TestIsBinaryByMagicNumber(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	assert.True(t, isBinaryByMagicNumber(png))

	text := []byte("package main\n\nfunc main() {}\n")
	assert.False(t, isBinaryByMagicNumber(text))
}

func TestIsBinaryByMagicNumberNullByteHeuristic(t *testing.T) {
	content := make([]byte, 512)
	for i := range content {
		content[i] = 'a'
	}
	for i := 0; i < 10; i++ {
		content[i] = 0
	}
	assert.True(t, isBinaryByMagicNumber(content))
}

func TestIsBinaryCombinesBothChecks(t *testing.T) {
	assert.True(t, isBinary("image.jpg", []byte("not actually a jpeg but the extension says so")))
	assert.False(t, isBinary("main.py", []byte("def main():\n    pass\n")))
}

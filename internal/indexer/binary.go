package indexer

import (
	"bytes"
	"path/filepath"
	"strings"
)

// binaryExtensions short-circuits the parser for file kinds tree-sitter has
// no business reading (SPEC_FULL.md indexer supplement: binary short-circuit).
var binaryExtensions = map[string]bool{
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".webp": true, ".tiff": true, ".tif": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".7z": true, ".rar": true, ".jar": true, ".war": true, ".ear": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".a": true,
	".o": true, ".obj": true, ".bin": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wmv": true,
	".flv": true, ".wav": true, ".flac": true, ".ogg": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	".db": true, ".sqlite": true, ".sqlite3": true,
	".pyc": true, ".pyo": true, ".class": true, ".pickle": true, ".pkl": true,
}

func isBinaryByExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	if strings.HasSuffix(path, ".min.js") || strings.HasSuffix(path, ".min.css") {
		return false
	}
	return binaryExtensions[ext]
}

// isBinaryByMagicNumber sniffs the first 512 bytes for known signatures,
// falling back to a null-byte/non-printable-ratio heuristic.
func isBinaryByMagicNumber(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	checkLen := 512
	if len(content) < checkLen {
		checkLen = len(content)
	}
	sample := content[:checkLen]

	signatures := [][]byte{
		{0x1F, 0x8B},
		{0x50, 0x4B, 0x03, 0x04},
		{0x50, 0x4B, 0x05, 0x06},
		{0x89, 0x50, 0x4E, 0x47},
		{0xFF, 0xD8, 0xFF},
		{0x47, 0x49, 0x46, 0x38},
		{0x25, 0x50, 0x44, 0x46},
		{0x7F, 0x45, 0x4C, 0x46},
		{0x4D, 0x5A},
		{0xCA, 0xFE, 0xBA, 0xBE},
		{0x77, 0x4F, 0x46, 0x46},
		{0x77, 0x4F, 0x46, 0x32},
	}
	for _, sig := range signatures {
		if bytes.HasPrefix(sample, sig) {
			return true
		}
	}

	nullBytes, nonPrintable := 0, 0
	for _, b := range sample {
		if b == 0 {
			nullBytes++
		}
		if b < 0x20 && b != 0x09 && b != 0x0A && b != 0x0D {
			nonPrintable++
		}
	}
	if nullBytes > len(sample)/100 {
		return true
	}
	if nonPrintable > len(sample)*30/100 {
		return true
	}
	return false
}

// isBinary combines the fast extension check with a content sniff, so an
// unrecognized extension still gets rejected if it clearly isn't text.
func isBinary(path string, content []byte) bool {
	if isBinaryByExtension(path) {
		return true
	}
	return isBinaryByMagicNumber(content)
}

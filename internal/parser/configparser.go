package parser

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/standardbeagle/codeindex/internal/types"
)

// configParser flattens recognized JSON/YAML/TOML project configuration
// files into ConfigEntrySignature symbols (spec.md §4.1.2). It skips JSON
// files that are plainly data rather than configuration.
type configParser struct{}

func NewConfigParser() LanguageParser { return &configParser{} }

func (p *configParser) Language() string { return "config" }

func (p *configParser) Extensions() []string {
	return []string{".json", ".yaml", ".yml", ".toml"}
}

const maxConfigDepth = 5

// recognizedConfigFamilies maps a base filename to a human-readable
// description of what the file configures, used for ParseResult.Summary and
// ConfigEntrySignature.ConfigType.
var recognizedConfigFamilies = map[string]string{
	"package.json":       "npm package manifest",
	"tsconfig.json":       "TypeScript compiler configuration",
	"jsconfig.json":       "JavaScript language-service configuration",
	"pyproject.toml":      "Python project/build configuration",
	"setup.cfg":           "Python setuptools configuration",
	".eslintrc.json":      "ESLint configuration",
	".prettierrc":         "Prettier configuration",
	".prettierrc.json":    "Prettier configuration",
	"docker-compose.yml":  "Docker Compose service topology",
	"docker-compose.yaml": "Docker Compose service topology",
	"lerna.json":          "Lerna monorepo configuration",
	"turbo.json":          "Turborepo pipeline configuration",
	"pnpm-workspace.yaml": "pnpm workspace manifest",
	"go.mod":              "Go module manifest",
}

// jsonConfigPathHints: JSON files that ARE configuration despite living
// outside recognizedConfigFamilies, recognized by a substring of the base name.
var jsonConfigPathHints = []string{
	"tsconfig.", ".eslintrc", ".babelrc", "webpack.", "jest.config", "vite.config",
}

func isGitHubWorkflow(path string) bool {
	return strings.Contains(filepath.ToSlash(path), ".github/workflows/")
}

// looksLikeConfig applies the non-config JSON heuristic from spec.md §4.1.2:
// package-lock.json and yarn.lock, and any JSON whose top level is a
// non-empty array (whatever its size or element type), are skipped rather
// than flattened symbol-by-symbol.
func looksLikeConfig(path string, raw any) bool {
	base := filepath.Base(path)
	if _, ok := recognizedConfigFamilies[base]; ok {
		return true
	}
	if isGitHubWorkflow(path) {
		return true
	}
	for _, hint := range jsonConfigPathHints {
		if strings.Contains(base, hint) {
			return true
		}
	}
	if base == "package-lock.json" || base == "yarn.lock" {
		return false
	}
	if arr, ok := raw.([]any); ok {
		// a top-level array is almost always a data fixture, not config.
		return len(arr) == 0
	}
	return true
}

func (p *configParser) ParseFile(path string, content []byte, maxFileSize int64, includePrivate bool) (*types.ParseResult, error) {
	if maxFileSize > 0 && int64(len(content)) > maxFileSize {
		return &types.ParseResult{Warnings: []string{"FILE_TOO_LARGE"}}, nil
	}

	format, raw, err := decode(path, content)
	if err != nil {
		return &types.ParseResult{Errors: []types.ParseError{{Message: "PARSE_ERROR: " + err.Error()}}}, nil
	}

	if !looksLikeConfig(path, raw) {
		return &types.ParseResult{Warnings: []string{"not recognized as configuration, skipped"}}, nil
	}

	configType := recognizedConfigFamilies[filepath.Base(path)]
	if configType == "" {
		if isGitHubWorkflow(path) {
			configType = "GitHub Actions workflow"
		} else {
			configType = "project configuration"
		}
	}

	ex := &configExtractor{filePath: path, format: format, configType: configType, result: &types.ParseResult{}}
	ex.flatten(raw, "", "", 0)
	ex.result.LineCount = strings.Count(string(content), "\n") + 1
	ex.result.Summary = configType
	return ex.result, nil
}

func decode(path string, content []byte) (types.ConfigFormat, any, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var raw any
	var err error
	var format types.ConfigFormat
	switch ext {
	case ".json":
		format = types.FormatJSON
		err = json.Unmarshal(content, &raw)
	case ".yaml", ".yml":
		format = types.FormatYAML
		err = yaml.Unmarshal(content, &raw)
		raw = normalizeYAML(raw)
	case ".toml":
		format = types.FormatTOML
		err = toml.Unmarshal(content, &raw)
	default:
		return "", nil, fmt.Errorf("unrecognized config extension %q", ext)
	}
	return format, raw, err
}

// normalizeYAML converts yaml.v3's map[string]interface{} keys (already
// string in v3, unlike v2) and nested maps into the map[string]any / []any
// shape configExtractor expects.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}

type configExtractor struct {
	filePath   string
	format     types.ConfigFormat
	configType string
	result     *types.ParseResult
}

// flatten walks a decoded config document, emitting one ConfigEntrySignature
// per dotted path up to maxConfigDepth; deeper structures collapse into a
// single "Object(n keys)" / "Array(n)" stringified leaf (spec.md §4.1.2).
func (e *configExtractor) flatten(v any, path, parentPath string, depth int) {
	switch t := v.(type) {
	case map[string]any:
		if depth >= maxConfigDepth {
			e.emit(path, parentPath, depth, types.ConfigObject, fmt.Sprintf("Object(%d keys)", len(t)), nil)
			return
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			e.flatten(t[k], childPath, path, depth+1)
		}
	case []any:
		if depth >= maxConfigDepth {
			e.emit(path, parentPath, depth, types.ConfigArray, fmt.Sprintf("Array(%d)", len(t)), nil)
			return
		}
		e.emit(path, parentPath, depth, types.ConfigArray, fmt.Sprintf("Array(%d)", len(t)), t)
	case string:
		e.emit(path, parentPath, depth, types.ConfigString, t, t)
	case float64, int, int64:
		e.emit(path, parentPath, depth, types.ConfigNumber, fmt.Sprintf("%v", t), t)
	case bool:
		e.emit(path, parentPath, depth, types.ConfigBoolean, fmt.Sprintf("%v", t), t)
	case nil:
		e.emit(path, parentPath, depth, types.ConfigNull, "null", nil)
	default:
		e.emit(path, parentPath, depth, types.ConfigString, fmt.Sprintf("%v", t), t)
	}
}

func (e *configExtractor) emit(path, parentPath string, depth int, vt types.ConfigValueType, stringified string, raw any) {
	if path == "" {
		return
	}
	id := SymbolID(e.filePath, path, types.KindConfigEntry, 0)
	e.result.ConfigEntries = append(e.result.ConfigEntries, types.ConfigEntrySignature{
		Base: types.Base{
			IDValue: id, Name_: path, FullyQualifiedName: path, Kind_: types.KindConfigEntry,
			Location:   types.Location{FilePath: e.filePath, StartLine: 0, EndLine: 0},
			IsExported: true,
		},
		Path:             path,
		ValueType:        vt,
		StringifiedValue: stringified,
		RawValue:         raw,
		Depth:            depth,
		ParentPath:       parentPath,
		Format:           e.format,
		ConfigType:       e.configType,
	})
}

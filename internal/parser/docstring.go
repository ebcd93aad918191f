package parser

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/codeindex/internal/types"
)

// ParseJSDoc parses a `/** ... */` comment block into a DocumentationInfo
// (spec.md §4.1.4). declaredParams is accepted but does not affect the
// result: @param entries are returned as written, whether or not their
// names match a declared parameter.
func ParseJSDoc(raw string, declaredParams []string) *types.DocumentationInfo {
	lines := normalizeJSDocLines(raw)
	if len(lines) == 0 {
		return nil
	}

	doc := &types.DocumentationInfo{}
	var desc []string
	var curTag string
	var curParamName string
	var curParamBuf []string

	flushParam := func() {
		if curParamName != "" {
			doc.Params = append(doc.Params, types.DocParam{
				Name:        curParamName,
				Description: strings.TrimSpace(strings.Join(curParamBuf, " ")),
			})
		}
		curParamName = ""
		curParamBuf = nil
	}

	paramRe := regexp.MustCompile(`^@param\s+(?:\{[^}]*\}\s+)?(\S+)\s*(.*)$`)
	returnsRe := regexp.MustCompile(`^@returns?\s+(?:\{[^}]*\}\s*)?(.*)$`)
	throwsRe := regexp.MustCompile(`^@throws\s+(?:\{[^}]*\}\s*)?(.*)$`)
	exampleRe := regexp.MustCompile(`^@example\s*(.*)$`)
	tagRe := regexp.MustCompile(`^@(\w+)\b\s*(.*)$`)

	for _, line := range lines {
		switch {
		case paramRe.MatchString(line):
			flushParam()
			m := paramRe.FindStringSubmatch(line)
			curTag = "param"
			curParamName = strings.TrimPrefix(strings.TrimSuffix(m[1], "]"), "[")
			curParamBuf = []string{m[2]}
		case returnsRe.MatchString(line):
			flushParam()
			m := returnsRe.FindStringSubmatch(line)
			curTag = "returns"
			doc.Returns = strings.TrimSpace(m[1])
		case throwsRe.MatchString(line):
			flushParam()
			m := throwsRe.FindStringSubmatch(line)
			curTag = "throws"
			doc.Throws = append(doc.Throws, strings.TrimSpace(m[1]))
		case exampleRe.MatchString(line):
			flushParam()
			m := exampleRe.FindStringSubmatch(line)
			curTag = "example"
			doc.Examples = append(doc.Examples, strings.TrimSpace(m[1]))
		case tagRe.MatchString(line):
			flushParam()
			m := tagRe.FindStringSubmatch(line)
			curTag = m[1]
			doc.Tags = append(doc.Tags, m[1])
		default:
			switch curTag {
			case "":
				desc = append(desc, line)
			case "param":
				curParamBuf = append(curParamBuf, line)
			case "returns":
				doc.Returns = strings.TrimSpace(doc.Returns + " " + line)
			case "throws":
				if n := len(doc.Throws); n > 0 {
					doc.Throws[n-1] = strings.TrimSpace(doc.Throws[n-1] + " " + line)
				}
			case "example":
				if n := len(doc.Examples); n > 0 {
					doc.Examples[n-1] = strings.TrimSpace(doc.Examples[n-1] + "\n" + line)
				}
			}
		}
	}
	flushParam()

	doc.Description = strings.TrimSpace(strings.Join(desc, " "))
	matchDeclaredParamTypes(doc, declaredParams)
	if doc.Description == "" && len(doc.Params) == 0 && doc.Returns == "" && len(doc.Throws) == 0 {
		return nil
	}
	return doc
}

// normalizeJSDocLines strips /** */ and leading " * " decoration.
func normalizeJSDocLines(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "/**")
	raw = strings.TrimSuffix(raw, "*/")
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func matchDeclaredParamTypes(doc *types.DocumentationInfo, declared []string) {
	declSet := make(map[string]bool, len(declared))
	for _, d := range declared {
		declSet[d] = true
	}
	for i := range doc.Params {
		if !declSet[doc.Params[i].Name] {
			// keep the doc entry; it's still searchable even if the name
			// doesn't line up with the declared parameter list.
			continue
		}
	}
}

// docSectionHeader matches Google/NumPy style section headers.
var docSectionHeaders = map[string]string{
	"args":       "params",
	"arguments":  "params",
	"parameters": "params",
	"returns":    "returns",
	"yields":     "returns",
	"raises":     "throws",
	"throws":     "throws",
	"exceptions": "throws",
	"examples":   "examples",
	"example":    "examples",
}

var pyParamRe = regexp.MustCompile(`^(\w+)\s*(?:\(([^)]*)\))?\s*:\s*(.*)$`)

// ParsePyDocstring parses a Python docstring body (without the surrounding
// triple quotes) following Google/NumPy section conventions (spec.md
// §4.1.4). A new parameter inside Args is recognized by a line with no
// leading whitespace matching `name (type)?: description`; continuation
// lines are indented.
func ParsePyDocstring(raw string) *types.DocumentationInfo {
	raw = strings.Trim(raw, "\"'")
	lines := strings.Split(raw, "\n")
	if len(lines) > 0 {
		lines[0] = strings.TrimLeft(lines[0], " \t")
	}

	doc := &types.DocumentationInfo{}
	var desc []string
	section := ""

	var curParam *types.DocParam

	flush := func() {
		if curParam != nil {
			curParam.Description = strings.TrimSpace(curParam.Description)
			doc.Params = append(doc.Params, *curParam)
			curParam = nil
		}
	}

	for _, raw := range lines {
		trimmed := strings.TrimRight(raw, " \t")
		headerKey := strings.ToLower(strings.TrimRight(strings.TrimSpace(trimmed), ":"))
		if sec, ok := docSectionHeaders[headerKey]; ok && trimmed == strings.TrimSpace(trimmed) && !strings.HasPrefix(raw, " ") {
			flush()
			section = sec
			continue
		}

		switch section {
		case "":
			desc = append(desc, strings.TrimSpace(trimmed))
		case "params":
			if !strings.HasPrefix(raw, " ") && !strings.HasPrefix(raw, "\t") && strings.TrimSpace(trimmed) != "" {
				flush()
				if m := pyParamRe.FindStringSubmatch(strings.TrimSpace(trimmed)); m != nil {
					curParam = &types.DocParam{Name: m[1], Type: m[2], Description: m[3]}
				}
			} else if curParam != nil {
				curParam.Description += " " + strings.TrimSpace(trimmed)
			}
		case "returns":
			doc.Returns = strings.TrimSpace(doc.Returns + " " + strings.TrimSpace(trimmed))
		case "throws":
			doc.Throws = append(doc.Throws, strings.TrimSpace(trimmed))
		case "examples":
			doc.Examples = append(doc.Examples, trimmed)
		}
	}
	flush()

	doc.Description = strings.TrimSpace(strings.Join(trimNonEmpty(desc), "\n"))
	if doc.Description == "" && len(doc.Params) == 0 && doc.Returns == "" && len(doc.Throws) == 0 {
		return nil
	}
	return doc
}

func trimNonEmpty(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	return lines[start:end]
}

package parser

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tsJS "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tsTS "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/codeindex/internal/types"
)

// tsjsParser extracts TypeScript/JavaScript sources (spec.md §6.4). It
// dispatches to the TSX, TypeScript or plain JavaScript grammar by
// extension; all three share most node-type tags.
type tsjsParser struct {
	jsLang  *sitter.Language
	tsLang  *sitter.Language
	tsxLang *sitter.Language
}

func NewTSJSParser() LanguageParser {
	return &tsjsParser{
		jsLang:  sitter.NewLanguage(tsJS.Language()),
		tsLang:  sitter.NewLanguage(tsTS.LanguageTypescript()),
		tsxLang: sitter.NewLanguage(tsTS.LanguageTSX()),
	}
}

func (p *tsjsParser) Language() string { return "typescript" }

func (p *tsjsParser) Extensions() []string {
	return []string{".ts", ".tsx", ".js", ".jsx", ".mts", ".mjs", ".cts", ".cjs"}
}

func (p *tsjsParser) languageFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return p.tsxLang
	case ".ts", ".mts", ".cts":
		return p.tsLang
	default:
		return p.jsLang
	}
}

func (p *tsjsParser) ParseFile(path string, content []byte, maxFileSize int64, includePrivate bool) (*types.ParseResult, error) {
	if maxFileSize > 0 && int64(len(content)) > maxFileSize {
		return &types.ParseResult{Warnings: []string{"FILE_TOO_LARGE"}}, nil
	}

	sp := sitter.NewParser()
	defer sp.Close()
	if err := sp.SetLanguage(p.languageFor(path)); err != nil {
		return &types.ParseResult{Errors: []types.ParseError{{Message: "PARSE_ERROR: " + err.Error()}}}, nil
	}
	tree := sp.Parse(content, nil)
	if tree == nil {
		return &types.ParseResult{Errors: []types.ParseError{{Message: "PARSE_ERROR: tree-sitter returned no tree"}}}, nil
	}
	defer tree.Close()

	ex := &jsExtractor{content: content, filePath: path, includePrivate: includePrivate, result: &types.ParseResult{}}
	root := tree.RootNode()
	ex.collectErrors(root)
	ex.walkTop(root)

	ex.result.LineCount = strings.Count(string(content), "\n") + 1
	return ex.result, nil
}

// jsExtractor walks one file's CST once, accumulating a ParseResult.
type jsExtractor struct {
	content        []byte
	filePath       string
	includePrivate bool
	result         *types.ParseResult

	funcChain  []string // enclosing function names, outermost first
	classStack []string // enclosing class names, outermost first
	callerID   []string // enclosing symbol id stack, for reference/call attribution
	callerName []string

	callEdges map[string]*types.CallGraphEdge // key: callerSymbolID|calleeName
}

func (e *jsExtractor) collectErrors(root *sitter.Node) {
	walk(root, func(n *sitter.Node) bool {
		if n.Kind() == "ERROR" {
			e.result.Errors = append(e.result.Errors, types.ParseError{
				Message: "syntax error",
				Line:    nodeLine(n),
				Column:  nodeColumn(n),
			})
		}
		return true
	})
}

func (e *jsExtractor) nestingDepth() int { return len(e.funcChain) }

func (e *jsExtractor) curClass() string {
	if len(e.classStack) == 0 {
		return ""
	}
	return e.classStack[len(e.classStack)-1]
}

func (e *jsExtractor) curCallerID() string {
	if len(e.callerID) == 0 {
		return ""
	}
	return e.callerID[len(e.callerID)-1]
}

func (e *jsExtractor) curCallerName() string {
	if len(e.callerName) == 0 {
		return ""
	}
	return e.callerName[len(e.callerName)-1]
}

func (e *jsExtractor) pushCaller(id, name string) {
	e.callerID = append(e.callerID, id)
	e.callerName = append(e.callerName, name)
}

func (e *jsExtractor) popCaller() {
	e.callerID = e.callerID[:len(e.callerID)-1]
	e.callerName = e.callerName[:len(e.callerName)-1]
}

func (e *jsExtractor) walkTop(root *sitter.Node) {
	for _, child := range children(root) {
		e.walkStatement(child, false)
	}
	e.flushCallEdges()
}

// walkStatement dispatches on a statement/declaration node. isExportedCtx
// is true when the immediate parent was an export_statement wrapping this
// declaration directly (not a specifier list).
func (e *jsExtractor) walkStatement(n *sitter.Node, isExportedCtx bool) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case nkImportStatement:
		e.extractImport(n)
	case nkExportStatement:
		e.extractExport(n)
	case nkFunctionDeclaration, nkGeneratorDeclaration:
		e.extractFunctionDecl(n, isExportedCtx)
	case nkClassDeclaration:
		e.extractClass(n, isExportedCtx)
	case nkInterfaceDeclaration:
		e.extractInterface(n, isExportedCtx)
	case nkTypeAliasDeclaration:
		e.extractTypeAlias(n, isExportedCtx)
	case nkVariableDeclaration, nkLexicalDeclaration:
		e.extractVariableDeclaration(n, isExportedCtx)
	default:
		e.walkExpressionsForRefs(n)
		for _, c := range children(n) {
			e.walkStatement(c, false)
		}
	}
}

// ---- imports / exports ----

func (e *jsExtractor) extractImport(n *sitter.Node) {
	src := ""
	if s := firstChildOfKind(n, nkString); s != nil {
		src = strings.Trim(nodeText(s, e.content), `"'`)
	}
	info := types.ImportInfo{Source: src}
	if strings.Contains(nodeText(n, e.content), "import type") {
		info.IsTypeOnly = true
	}
	clause := firstChildOfKind(n, nkImportClause)
	if clause != nil {
		for _, c := range children(clause) {
			switch c.Kind() {
			case nkIdentifier:
				info.Specifiers = append(info.Specifiers, types.ImportSpecifier{Name: nodeText(c, e.content), IsDefault: true})
			case nkNamedImports:
				for _, spec := range childrenOfKind(c, nkImportSpecifier) {
					kids := children(spec)
					if len(kids) == 0 {
						continue
					}
					name := nodeText(kids[0], e.content)
					alias := ""
					if len(kids) > 1 {
						alias = nodeText(kids[len(kids)-1], e.content)
					}
					info.Specifiers = append(info.Specifiers, types.ImportSpecifier{Name: name, Alias: alias})
				}
				for _, id := range childrenOfKind(c, nkIdentifier) {
					info.Specifiers = append(info.Specifiers, types.ImportSpecifier{Name: nodeText(id, e.content)})
				}
			case nkNamespaceImport:
				for _, id := range childrenOfKind(c, nkIdentifier) {
					info.Specifiers = append(info.Specifiers, types.ImportSpecifier{Name: nodeText(id, e.content), IsNamespace: true})
				}
			}
		}
	}
	e.result.Imports = append(e.result.Imports, info)

	// import specifiers are also references with kind=import.
	for _, spec := range info.Specifiers {
		e.emitReference(n, spec.Name, types.RefImport)
	}
}

func (e *jsExtractor) extractExport(n *sitter.Node) {
	kids := children(n)
	for _, c := range kids {
		switch c.Kind() {
		case nkFunctionDeclaration, nkGeneratorDeclaration:
			e.extractFunctionDecl(c, true)
		case nkClassDeclaration:
			e.extractClass(c, true)
		case nkInterfaceDeclaration:
			e.extractInterface(c, true)
		case nkTypeAliasDeclaration:
			e.extractTypeAlias(c, true)
		case nkVariableDeclaration, nkLexicalDeclaration:
			e.extractVariableDeclaration(c, true)
		case nkExportClause:
			for _, spec := range childrenOfKind(c, nkExportSpecifier) {
				ids := childrenOfKind(spec, nkIdentifier)
				if len(ids) == 0 {
					continue
				}
				exp := types.ExportInfo{LocalName: nodeText(ids[0], e.content), Name: nodeText(ids[0], e.content)}
				if len(ids) > 1 {
					exp.Name = nodeText(ids[1], e.content)
				}
				e.result.Exports = append(e.result.Exports, exp)
			}
		case nkIdentifier:
			// export default <identifier>
			e.result.Exports = append(e.result.Exports, types.ExportInfo{Name: nodeText(c, e.content), LocalName: nodeText(c, e.content), IsDefault: true})
		}
	}
}

// ---- functions ----

func (e *jsExtractor) extractFunctionDecl(n *sitter.Node, isExported bool) {
	nameNode := firstChildOfKind(n, nkIdentifier)
	name := "anonymous"
	if nameNode != nil {
		name = nodeText(nameNode, e.content)
	}
	e.emitFunction(n, name, isExported, types.KindFunction, "")
}

// emitFunction builds and stores a FunctionSignature for n, named name,
// applying the nested-function significance filter, nesting-depth cap,
// generator detection and callback-context tagging from spec.md §4.1.1.
func (e *jsExtractor) emitFunction(n *sitter.Node, name string, isExported bool, kind types.SymbolKind, callbackCtx string) {
	depth := e.nestingDepth()
	if depth > 0 {
		if depth > 3 {
			e.walkFunctionBodyOnly(n)
			return
		}
		if !e.significantNested(n) && callbackCtx == "" {
			e.walkFunctionBodyOnly(n)
			return
		}
	}

	qname := qualifiedName(e.funcChain, name)
	if cls := e.curClass(); cls != "" && depth == 0 {
		qname = cls + "." + name
	}
	id := SymbolID(e.filePath, qname, kind, nodeLine(n))

	sig := types.FunctionSignature{
		Base: types.Base{
			IDValue: id, Name_: name, FullyQualifiedName: qname, Kind_: kind,
			Location:   types.Location{FilePath: e.filePath, StartLine: nodeLine(n), EndLine: nodeEndLine(n)},
			IsExported: isExported,
		},
		LocalName:      name,
		ParentClass:    e.curClass(),
		NestingDepth:   depth,
		Modifiers: types.Modifiers{
			IsAsync:         strings.HasPrefix(strings.TrimSpace(nodeText(n, e.content)), "async") || hasChildText(n, e.content, "async"),
			IsGenerator:     kind != types.KindCallback && (n.Kind() == nkGeneratorDeclaration || n.Kind() == nkGeneratorExpression || containsYield(n, nkYield)),
			IsExported:      isExported,
			CallbackContext: callbackCtx,
		},
		Signature: strings.TrimSpace(strings.SplitN(nodeText(n, e.content), "{", 2)[0]),
	}
	if kind == types.KindCallback {
		sig.Kind_ = types.KindCallback
	}
	if depth > 0 {
		sig.ParentFunction = e.funcChain[len(e.funcChain)-1]
	}
	sig.Documentation = e.leadingDoc(n, paramNames(n, e.content))
	sig.Parameters = extractParameters(n, e.content)
	if rt := firstChildOfKind(n, nkTypeAnnotation); rt != nil {
		sig.ReturnType = strings.TrimPrefix(nodeText(rt, e.content), ":")
	}
	sig.Decorators = e.leadingDecorators(n)

	e.result.Functions = append(e.result.Functions, sig)

	e.funcChain = append(e.funcChain, name)
	e.pushCaller(id, qname)
	body := firstChildOfKind(n, nkStatementBlock)
	if body != nil {
		for _, c := range children(body) {
			e.walkStatement(c, false)
		}
	}
	e.popCaller()
	e.funcChain = e.funcChain[:len(e.funcChain)-1]
}

// walkFunctionBodyOnly descends into a function body to collect refs/calls
// without emitting a symbol for the function itself (depth-capped or
// insignificant nested functions still contribute to the surrounding
// symbol's call graph).
func (e *jsExtractor) walkFunctionBodyOnly(n *sitter.Node) {
	body := firstChildOfKind(n, nkStatementBlock)
	if body == nil {
		body = n
	}
	for _, c := range children(body) {
		e.walkStatement(c, false)
	}
}

// significantNested implements spec.md §4.1.1's nested-function filter: >=3
// body lines AND not an inline callback to a built-in iteration method.
func (e *jsExtractor) significantNested(n *sitter.Node) bool {
	if bodyLineCount(n) < 3 {
		return false
	}
	if parent := n.Parent(); parent != nil && parent.Kind() == "arguments" {
		if call := parent.Parent(); call != nil && call.Kind() == nkCallExpression {
			callee := firstChildOfKind(call, nkMemberExpression)
			if callee != nil {
				if prop := firstChildOfKind(callee, nkPropertyIdentifier); prop != nil {
					if arrayIterationMethods[nodeText(prop, e.content)] {
						return false
					}
				}
			}
		}
	}
	return true
}

func hasChildText(n *sitter.Node, content []byte, text string) bool {
	for _, c := range children(n) {
		if nodeText(c, content) == text {
			return true
		}
	}
	return false
}

func paramNames(n *sitter.Node, content []byte) []string {
	var out []string
	for _, p := range extractParameters(n, content) {
		out = append(out, p.Name)
	}
	return out
}

func extractParameters(n *sitter.Node, content []byte) []types.Parameter {
	paramsNode := firstChildOfKind(n, "formal_parameters")
	if paramsNode == nil {
		return nil
	}
	var out []types.Parameter
	for _, c := range children(paramsNode) {
		switch c.Kind() {
		case nkIdentifier:
			out = append(out, types.Parameter{Name: nodeText(c, content)})
		case nkRequiredParameter, nkOptionalParameter:
			p := types.Parameter{IsOptional: c.Kind() == nkOptionalParameter}
			for _, gc := range children(c) {
				switch gc.Kind() {
				case nkIdentifier:
					if p.Name == "" {
						p.Name = nodeText(gc, content)
					}
				case nkTypeAnnotation:
					p.Type = strings.TrimPrefix(nodeText(gc, content), ":")
				}
			}
			out = append(out, p)
		case nkRestPattern:
			name := ""
			if id := firstChildOfKind(c, nkIdentifier); id != nil {
				name = nodeText(id, content)
			}
			out = append(out, types.Parameter{Name: name, IsRest: true})
		case "assignment_pattern":
			kids := children(c)
			if len(kids) >= 2 {
				out = append(out, types.Parameter{Name: nodeText(kids[0], content), DefaultValue: nodeText(kids[1], content), IsOptional: true})
			}
		}
	}
	return out
}

// leadingDoc looks at the immediately preceding sibling comment for JSDoc.
func (e *jsExtractor) leadingDoc(n *sitter.Node, declaredParams []string) *types.DocumentationInfo {
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	kids := children(parent)
	for i, c := range kids {
		if c == n || (i+1 < len(kids) && kids[i+1] == n) {
		}
	}
	idx := -1
	for i, c := range kids {
		if sameNode(c, n) {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return nil
	}
	prev := kids[idx-1]
	if prev.Kind() != nkComment {
		return nil
	}
	text := nodeText(prev, e.content)
	if !strings.HasPrefix(strings.TrimSpace(text), "/**") {
		return nil
	}
	return ParseJSDoc(text, declaredParams)
}

func (e *jsExtractor) leadingDecorators(n *sitter.Node) []string {
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	kids := children(parent)
	idx := -1
	for i, c := range kids {
		if sameNode(c, n) {
			idx = i
			break
		}
	}
	var out []string
	for i := idx - 1; i >= 0 && kids[i].Kind() == nkDecorator; i-- {
		out = append([]string{strings.TrimSpace(nodeText(kids[i], e.content))}, out...)
	}
	return out
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Kind() == b.Kind()
}

// ---- classes / interfaces / type aliases ----

func (e *jsExtractor) extractClass(n *sitter.Node, isExported bool) {
	nameNode := firstChildOfKind(n, nkTypeIdentifier)
	if nameNode == nil {
		nameNode = firstChildOfKind(n, nkIdentifier)
	}
	name := "anonymous"
	if nameNode != nil {
		name = nodeText(nameNode, e.content)
	}
	qname := qualifiedName(e.funcChain, name)
	id := SymbolID(e.filePath, qname, types.KindClass, nodeLine(n))

	var extends string
	var implements []string
	heritage := firstChildOfKind(n, nkClassHeritage)
	if heritage == nil {
		heritage = n
	}
	if ext := firstChildOfKind(heritage, nkExtendsClause); ext != nil {
		names := collectTypeNames(ext, e.content)
		if len(names) > 0 {
			extends = names[0]
			implements = append(implements, names[1:]...)
		}
	} else if ext := firstChildOfKind(heritage, "identifier"); ext != nil && heritage != n {
		extends = nodeText(ext, e.content)
	}
	if impl := firstChildOfKind(n, nkImplementsClause); impl != nil {
		implements = append(implements, collectTypeNames(impl, e.content)...)
	}

	sig := types.ClassSignature{
		Base: types.Base{
			IDValue: id, Name_: name, FullyQualifiedName: qname, Kind_: types.KindClass,
			Location:   types.Location{FilePath: e.filePath, StartLine: nodeLine(n), EndLine: nodeEndLine(n)},
			IsExported: isExported,
		},
		Extends:    extends,
		Implements: implements,
		IsAbstract: strings.Contains(nodeText(n, e.content), "abstract class"),
	}
	sig.Documentation = e.leadingDoc(n, nil)
	classIdx := len(e.result.Classes)
	e.result.Classes = append(e.result.Classes, sig)

	if extends != "" {
		e.emitTypeRel(id, qname, extends, types.RelExtends)
	}
	for _, im := range implements {
		e.emitTypeRel(id, qname, im, types.RelImplements)
	}

	e.classStack = append(e.classStack, name)
	body := firstChildOfKind(n, "class_body")
	if body != nil {
		var methodCount, propCount int
		for _, c := range children(body) {
			switch c.Kind() {
			case nkMethodDefinition:
				e.extractMethod(c, name, id)
				methodCount++
			case nkPublicFieldDef:
				e.extractField(c, name)
				propCount++
			case nkDecorator:
				// decorator preceding a member; skip, attached via leadingDecorators
			}
		}
		e.result.Classes[classIdx].MethodCount = methodCount
		e.result.Classes[classIdx].PropertyCount = propCount
	}
	e.classStack = e.classStack[:len(e.classStack)-1]
}

func collectTypeNames(n *sitter.Node, content []byte) []string {
	var out []string
	walk(n, func(c *sitter.Node) bool {
		if c.Kind() == nkTypeIdentifier || c.Kind() == nkIdentifier {
			out = append(out, nodeText(c, content))
			return false
		}
		return true
	})
	return out
}

func (e *jsExtractor) extractMethod(n *sitter.Node, className, classID string) {
	nameNode := firstChildOfKind(n, nkPropertyIdentifier)
	name := "anonymous"
	if nameNode != nil {
		name = nodeText(nameNode, e.content)
	}
	kind := types.KindMethod
	if name == "constructor" {
		kind = types.KindConstructor
	}
	isExported := true // class methods inherit the exportedness of the class in practice; conservative default
	e.emitMethodLike(n, name, kind, isExported)
}

func (e *jsExtractor) emitMethodLike(n *sitter.Node, name string, kind types.SymbolKind, isExported bool) {
	cls := e.curClass()
	qname := cls + "." + name
	id := SymbolID(e.filePath, qname, kind, nodeLine(n))

	sig := types.FunctionSignature{
		Base: types.Base{
			IDValue: id, Name_: name, FullyQualifiedName: qname, Kind_: kind,
			Location:   types.Location{FilePath: e.filePath, StartLine: nodeLine(n), EndLine: nodeEndLine(n)},
			IsExported: isExported,
		},
		LocalName:   name,
		ParentClass: cls,
		Modifiers: types.Modifiers{
			IsAsync:     hasChildText(n, e.content, "async"),
			IsStatic:    hasChildText(n, e.content, "static"),
			IsPrivate:   strings.HasPrefix(name, "#"),
			IsGenerator: containsYield(n, nkYield),
			IsExported:  isExported,
		},
		Signature: strings.TrimSpace(strings.SplitN(nodeText(n, e.content), "{", 2)[0]),
	}
	sig.Documentation = e.leadingDoc(n, paramNames(n, e.content))
	sig.Parameters = extractParameters(n, e.content)
	sig.Decorators = e.leadingDecorators(n)
	e.result.Functions = append(e.result.Functions, sig)

	e.pushCaller(id, qname)
	body := firstChildOfKind(n, nkStatementBlock)
	if body != nil {
		for _, c := range children(body) {
			e.walkStatement(c, false)
		}
	}
	e.popCaller()
}

func (e *jsExtractor) extractField(n *sitter.Node, className string) {
	nameNode := firstChildOfKind(n, nkPropertyIdentifier)
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, e.content)
	declType := ""
	if t := firstChildOfKind(n, nkTypeAnnotation); t != nil {
		declType = strings.TrimPrefix(nodeText(t, e.content), ":")
	}
	qname := className + "." + name
	id := SymbolID(e.filePath, qname, types.KindProperty, nodeLine(n))
	e.result.Properties = append(e.result.Properties, types.PropertySignature{
		Base: types.Base{
			IDValue: id, Name_: name, FullyQualifiedName: qname, Kind_: types.KindProperty,
			Location: types.Location{FilePath: e.filePath, StartLine: nodeLine(n), EndLine: nodeEndLine(n)},
		},
		DeclaredType: declType,
		ParentClass:  className,
		IsStatic:     hasChildText(n, e.content, "static"),
		IsReadonly:   hasChildText(n, e.content, "readonly"),
	})
}

func (e *jsExtractor) extractInterface(n *sitter.Node, isExported bool) {
	nameNode := firstChildOfKind(n, nkTypeIdentifier)
	name := "anonymous"
	if nameNode != nil {
		name = nodeText(nameNode, e.content)
	}
	qname := name
	id := SymbolID(e.filePath, qname, types.KindInterface, nodeLine(n))

	var extends []string
	if ext := firstChildOfKind(n, nkExtendsClause); ext != nil {
		extends = collectTypeNames(ext, e.content)
	}

	sig := types.InterfaceSignature{
		Base: types.Base{
			IDValue: id, Name_: name, FullyQualifiedName: qname, Kind_: types.KindInterface,
			Location:   types.Location{FilePath: e.filePath, StartLine: nodeLine(n), EndLine: nodeEndLine(n)},
			IsExported: isExported,
		},
		Extends: extends,
	}
	sig.Documentation = e.leadingDoc(n, nil)

	body := firstChildOfKind(n, "interface_body")
	if body != nil {
		for _, c := range children(body) {
			switch c.Kind() {
			case nkPropertySignature:
				pn := firstChildOfKind(c, nkPropertyIdentifier)
				if pn != nil {
					sig.Properties = append(sig.Properties, name+"."+nodeText(pn, e.content))
				}
			case nkMethodSignature:
				pn := firstChildOfKind(c, nkPropertyIdentifier)
				if pn != nil {
					sig.Methods = append(sig.Methods, name+"."+nodeText(pn, e.content))
				}
			}
		}
	}
	e.result.Interfaces = append(e.result.Interfaces, sig)
	for _, ex := range extends {
		e.emitTypeRel(id, name, ex, types.RelExtends)
	}
}

func (e *jsExtractor) extractTypeAlias(n *sitter.Node, isExported bool) {
	nameNode := firstChildOfKind(n, nkTypeIdentifier)
	name := "anonymous"
	if nameNode != nil {
		name = nodeText(nameNode, e.content)
	}
	id := SymbolID(e.filePath, name, types.KindTypeAlias, nodeLine(n))
	aliased := ""
	parts := strings.SplitN(nodeText(n, e.content), "=", 2)
	if len(parts) == 2 {
		aliased = strings.TrimSpace(strings.TrimSuffix(parts[1], ";"))
	}
	sig := types.TypeAliasSignature{
		Base: types.Base{
			IDValue: id, Name_: name, FullyQualifiedName: name, Kind_: types.KindTypeAlias,
			Location:   types.Location{FilePath: e.filePath, StartLine: nodeLine(n), EndLine: nodeEndLine(n)},
			IsExported: isExported,
		},
		AliasedType: aliased,
	}
	sig.Documentation = e.leadingDoc(n, nil)
	e.result.TypeAliases = append(e.result.TypeAliases, sig)
}

// ---- variables ----

func (e *jsExtractor) extractVariableDeclaration(n *sitter.Node, isExported bool) {
	isConst := strings.HasPrefix(nodeText(n, e.content), "const")
	for _, decl := range childrenOfKind(n, nkVariableDeclarator) {
		nameNode := firstChildOfKind(decl, nkIdentifier)
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, e.content)
		valueKids := children(decl)
		var value *sitter.Node
		if len(valueKids) > 0 {
			value = valueKids[len(valueKids)-1]
		}
		if value != nil && (value.Kind() == nkArrowFunction || value.Kind() == nkFunctionExpression || value.Kind() == nkGeneratorExpression) {
			callbackCtx := e.detectCallbackContext(decl)
			kind := types.KindFunction
			if callbackCtx != "" {
				kind = types.KindCallback
			}
			e.emitFunction(value, name, isExported, kind, callbackCtx)
			continue
		}
		declType := ""
		if t := firstChildOfKind(decl, nkTypeAnnotation); t != nil {
			declType = strings.TrimPrefix(nodeText(t, e.content), ":")
		}
		qname := qualifiedName(e.funcChain, name)
		id := SymbolID(e.filePath, qname, types.KindVariable, nodeLine(decl))
		sig := types.VariableSignature{
			Base: types.Base{
				IDValue: id, Name_: name, FullyQualifiedName: qname, Kind_: types.KindVariable,
				Location:   types.Location{FilePath: e.filePath, StartLine: nodeLine(decl), EndLine: nodeEndLine(decl)},
				IsExported: isExported,
			},
			DeclaredType: declType,
			IsConst:      isConst,
		}
		e.result.Variables = append(e.result.Variables, sig)
		if value != nil {
			e.walkExpressionsForRefs(value)
		}
	}
}

// detectCallbackContext implements spec.md §4.1.1 callback tagging: it walks
// up from n, at any depth, to the nearest argument list of a call expression
// and returns that call's calleeIdentifier ("" when it is not a recognized
// framework call). Calls further out are not examined.
func (e *jsExtractor) detectCallbackContext(n *sitter.Node) string {
	parent := n.Parent()
	for parent != nil {
		if parent.Kind() == "arguments" {
			call := parent.Parent()
			if call != nil && call.Kind() == nkCallExpression {
				return e.calleeIdentifier(call)
			}
		}
		parent = parent.Parent()
	}
	return ""
}

func (e *jsExtractor) calleeIdentifier(call *sitter.Node) string {
	kids := children(call)
	if len(kids) == 0 {
		return ""
	}
	callee := kids[0]
	switch callee.Kind() {
	case nkIdentifier:
		name := nodeText(callee, e.content)
		if callbackFrameworkCallers[name] {
			return name
		}
	case nkMemberExpression:
		prop := lastChildOfKind(callee, nkPropertyIdentifier)
		if prop != nil {
			method := nodeText(prop, e.content)
			if method == "on" || method == "once" || method == "addEventListener" {
				obj := nodeText(callee, e.content)
				return method + ":" + strings.TrimSuffix(obj, "."+method)
			}
			if method == "action" {
				return "action"
			}
		}
	}
	return ""
}

func lastChildOfKind(n *sitter.Node, kind string) *sitter.Node {
	var last *sitter.Node
	for _, c := range childrenOfKind(n, kind) {
		last = c
	}
	return last
}

// ---- references & call edges ----

// walkExpressionsForRefs descends an expression subtree collecting
// SymbolReferences and CallGraphEdges without treating anything inside as
// a new declaration scope (declarations are handled by walkStatement).
func (e *jsExtractor) walkExpressionsForRefs(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case nkFunctionDeclaration, nkClassDeclaration, nkInterfaceDeclaration,
		nkTypeAliasDeclaration, nkVariableDeclaration, nkLexicalDeclaration,
		nkMethodDefinition, nkImportStatement, nkExportStatement:
		e.walkStatement(n, false)
		return
	case nkArrowFunction, nkFunctionExpression, nkGeneratorExpression:
		cbCtx := e.detectCallbackContext(n)
		kind := types.KindFunction
		if cbCtx != "" {
			kind = types.KindCallback
		}
		e.emitFunction(n, "anonymous", false, kind, cbCtx)
		return
	case nkCallExpression:
		e.emitCallEdge(n)
	case nkIdentifier:
		e.maybeEmitIdentifierRef(n)
		return
	}
	for _, c := range children(n) {
		e.walkExpressionsForRefs(c)
	}
}

func (e *jsExtractor) maybeEmitIdentifierRef(n *sitter.Node) {
	name := nodeText(n, e.content)
	if len(name) < 2 || referenceStoplist[strings.ToLower(name)] {
		return
	}
	parent := n.Parent()
	if parent != nil {
		switch parent.Kind() {
		case nkVariableDeclarator, nkFunctionDeclaration, nkClassDeclaration,
			nkRequiredParameter, nkOptionalParameter:
			// definition site, not a reference
			if firstChildOfKind(parent, nkIdentifier) != nil && sameNode(firstChildOfKind(parent, nkIdentifier), n) {
				return
			}
		}
	}
	kind := e.classifyReference(n)
	e.emitReference(n, name, kind)
}

func (e *jsExtractor) classifyReference(n *sitter.Node) types.ReferenceKind {
	parent := n.Parent()
	if parent == nil {
		return types.RefRead
	}
	if parent.Kind() == nkCallExpression {
		first := children(parent)
		if len(first) > 0 && sameNode(first[0], n) {
			return types.RefCall
		}
	}
	if parent.Kind() == nkMemberExpression {
		kids := children(parent)
		if len(kids) > 0 && sameNode(kids[len(kids)-1], n) {
			if gp := parent.Parent(); gp != nil && gp.Kind() == nkCallExpression {
				gpKids := children(gp)
				if len(gpKids) > 0 && sameNode(gpKids[0], parent) {
					return types.RefCall
				}
			}
		}
	}
	if hasAncestorKind(n, nkImportStatement) {
		return types.RefImport
	}
	if parent.Kind() == nkTypeAnnotation || hasAncestorKind(n, nkTypeAnnotation) {
		return types.RefType
	}
	if parent.Kind() == nkAssignmentExpr {
		kids := children(parent)
		if len(kids) > 0 && sameNode(kids[0], n) {
			return types.RefWrite
		}
	}
	return types.RefRead
}

func (e *jsExtractor) emitReference(n *sitter.Node, name string, kind types.ReferenceKind) {
	ref := types.SymbolReference{
		ID:                    ReferenceID(e.filePath, nodeLine(n), nodeColumn(n), name),
		SymbolName:            name,
		ReferencingFile:       e.filePath,
		ReferencingSymbolID:   e.curCallerID(),
		ReferencingSymbolName: e.curCallerName(),
		Line:                  nodeLine(n),
		Column:                nodeColumn(n),
		Context:               contextSnippet(e.content, n),
		ReferenceKind:         kind,
	}
	e.result.References = append(e.result.References, ref)
}

func (e *jsExtractor) emitCallEdge(call *sitter.Node) {
	calleeName := e.calleeName(call)
	if calleeName == "" {
		return
	}
	isAsync := false
	if parent := call.Parent(); parent != nil && parent.Kind() == nkAwaitExpression {
		isAsync = true
	}
	isConditional := hasAncestorKind(call, nkIfStatement, nkTryStatement, nkTernary)

	if e.callEdges == nil {
		e.callEdges = make(map[string]*types.CallGraphEdge)
	}
	key := e.curCallerID() + "|" + calleeName
	if edge, ok := e.callEdges[key]; ok {
		edge.CallCount++
		edge.IsAsync = edge.IsAsync || isAsync
		// OR, not AND: one conditional call site is enough to flag the whole
		// aggregate, since buildCallFlow's conditional penalty (markov/builder.go)
		// should apply whenever the callee isn't unconditionally reachable.
		edge.IsConditional = edge.IsConditional || isConditional
		return
	}
	e.callEdges[key] = &types.CallGraphEdge{
		ID:             CallEdgeID(e.filePath, e.curCallerName(), calleeName),
		CallerSymbolID: e.curCallerID(),
		CallerName:     e.curCallerName(),
		CalleeName:     calleeName,
		CallCount:      1,
		IsAsync:        isAsync,
		IsConditional:  isConditional,
	}
}

func (e *jsExtractor) calleeName(call *sitter.Node) string {
	kids := children(call)
	if len(kids) == 0 {
		return ""
	}
	callee := kids[0]
	switch callee.Kind() {
	case nkIdentifier:
		return nodeText(callee, e.content)
	case nkMemberExpression:
		if prop := lastChildOfKind(callee, nkPropertyIdentifier); prop != nil {
			return nodeText(prop, e.content)
		}
	}
	return ""
}

func (e *jsExtractor) flushCallEdges() {
	for _, edge := range e.callEdges {
		e.result.CallEdges = append(e.result.CallEdges, *edge)
	}
}

func (e *jsExtractor) emitTypeRel(sourceID, sourceName, targetName string, kind types.TypeRelationshipKind) {
	e.result.TypeRelationships = append(e.result.TypeRelationships, types.TypeRelationship{
		ID:               TypeRelID(e.filePath, sourceName, targetName, kind),
		SourceSymbolID:   sourceID,
		SourceName:       sourceName,
		TargetName:       targetName,
		RelationshipKind: kind,
	})
}

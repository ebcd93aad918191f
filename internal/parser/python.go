package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tsPy "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/standardbeagle/codeindex/internal/types"
)

// pyParser extracts Python sources (spec.md §6.4).
type pyParser struct {
	lang *sitter.Language
}

func NewPythonParser() LanguageParser {
	return &pyParser{lang: sitter.NewLanguage(tsPy.Language())}
}

func (p *pyParser) Language() string    { return "python" }
func (p *pyParser) Extensions() []string { return []string{".py", ".pyi"} }

func (p *pyParser) ParseFile(path string, content []byte, maxFileSize int64, includePrivate bool) (*types.ParseResult, error) {
	if maxFileSize > 0 && int64(len(content)) > maxFileSize {
		return &types.ParseResult{Warnings: []string{"FILE_TOO_LARGE"}}, nil
	}

	sp := sitter.NewParser()
	defer sp.Close()
	if err := sp.SetLanguage(p.lang); err != nil {
		return &types.ParseResult{Errors: []types.ParseError{{Message: "PARSE_ERROR: " + err.Error()}}}, nil
	}
	tree := sp.Parse(content, nil)
	if tree == nil {
		return &types.ParseResult{Errors: []types.ParseError{{Message: "PARSE_ERROR: tree-sitter returned no tree"}}}, nil
	}
	defer tree.Close()

	ex := &pyExtractor{content: content, filePath: path, includePrivate: includePrivate, result: &types.ParseResult{}}
	root := tree.RootNode()
	ex.collectErrors(root)
	for _, c := range children(root) {
		ex.walkStatement(c)
	}
	ex.flushCallEdges()

	ex.result.LineCount = strings.Count(string(content), "\n") + 1
	return ex.result, nil
}

type pyExtractor struct {
	content        []byte
	filePath       string
	includePrivate bool
	result         *types.ParseResult

	funcChain  []string
	classStack []string
	callerID   []string
	callerName []string

	callEdges map[string]*types.CallGraphEdge
}

func (e *pyExtractor) collectErrors(root *sitter.Node) {
	walk(root, func(n *sitter.Node) bool {
		if n.Kind() == "ERROR" {
			e.result.Errors = append(e.result.Errors, types.ParseError{Message: "syntax error", Line: nodeLine(n), Column: nodeColumn(n)})
		}
		return true
	})
}

func (e *pyExtractor) nestingDepth() int { return len(e.funcChain) }

func (e *pyExtractor) curClass() string {
	if len(e.classStack) == 0 {
		return ""
	}
	return e.classStack[len(e.classStack)-1]
}

func (e *pyExtractor) curCallerID() string {
	if len(e.callerID) == 0 {
		return ""
	}
	return e.callerID[len(e.callerID)-1]
}

func (e *pyExtractor) curCallerName() string {
	if len(e.callerName) == 0 {
		return ""
	}
	return e.callerName[len(e.callerName)-1]
}

func (e *pyExtractor) pushCaller(id, name string) {
	e.callerID = append(e.callerID, id)
	e.callerName = append(e.callerName, name)
}

func (e *pyExtractor) popCaller() {
	e.callerID = e.callerID[:len(e.callerID)-1]
	e.callerName = e.callerName[:len(e.callerName)-1]
}

// isPrivate implements the Python privacy heuristic: a name is private iff
// it starts with a single underscore, does not itself start with a double
// underscore (dunder and name-mangled attributes like `__secret` are not
// "private" under this rule), and does not end with a double underscore.
func isPrivate(name string) bool {
	return strings.HasPrefix(name, "_") &&
		!strings.HasPrefix(name, "__") &&
		!strings.HasSuffix(name, "__")
}

func (e *pyExtractor) walkStatement(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case nkPyImport, nkPyImportFrom:
		e.extractImport(n)
	case nkPyFunctionDef:
		e.extractFunction(n)
	case nkPyClassDef:
		e.extractClass(n)
	case nkPyAssignment:
		e.extractAssignment(n)
	case nkPyAnnAssign:
		if assign := firstChildOfKind(n, nkPyAssignment); assign != nil {
			e.extractAssignment(assign)
		} else {
			e.walkExpressionsForRefs(n)
		}
	default:
		e.walkExpressionsForRefs(n)
		for _, c := range children(n) {
			e.walkStatement(c)
		}
	}
}

func (e *pyExtractor) extractImport(n *sitter.Node) {
	text := nodeText(n, e.content)
	info := types.ImportInfo{}
	if n.Kind() == nkPyImportFrom {
		mod := firstChildOfKind(n, "dotted_name")
		if mod != nil {
			info.Source = nodeText(mod, e.content)
		}
		for _, id := range childrenOfKind(n, nkPyIdentifier) {
			info.Specifiers = append(info.Specifiers, types.ImportSpecifier{Name: nodeText(id, e.content)})
		}
	} else {
		for _, mod := range childrenOfKind(n, "dotted_name") {
			info.Source = nodeText(mod, e.content)
			info.Specifiers = append(info.Specifiers, types.ImportSpecifier{Name: nodeText(mod, e.content), IsDefault: true})
		}
	}
	_ = text
	e.result.Imports = append(e.result.Imports, info)
	for _, spec := range info.Specifiers {
		e.emitReference(n, spec.Name, types.RefImport)
	}
}

func (e *pyExtractor) extractFunction(n *sitter.Node) {
	nameNode := firstChildOfKind(n, nkPyIdentifier)
	name := "anonymous"
	if nameNode != nil {
		name = nodeText(nameNode, e.content)
	}

	depth := e.nestingDepth()
	if depth > 0 {
		if depth > 3 || !e.significantNested(n) {
			e.walkFunctionBodyOnly(n)
			return
		}
	}

	cls := e.curClass()
	kind := types.KindFunction
	if cls != "" && depth == 0 {
		kind = types.KindMethod
		if name == "__init__" {
			kind = types.KindConstructor
		}
	}

	qname := qualifiedName(e.funcChain, name)
	if cls != "" && depth == 0 {
		qname = cls + "." + name
	}
	id := SymbolID(e.filePath, qname, kind, nodeLine(n))

	isAbstract := false
	decorators := e.leadingDecorators(n)
	for _, d := range decorators {
		if strings.Contains(d, "abstractmethod") {
			isAbstract = true
		}
	}

	sig := types.FunctionSignature{
		Base: types.Base{
			IDValue: id, Name_: name, FullyQualifiedName: qname, Kind_: kind,
			Location:   types.Location{FilePath: e.filePath, StartLine: nodeLine(n), EndLine: nodeEndLine(n)},
			IsExported: !isPrivate(name),
		},
		LocalName:    name,
		ParentClass:  cls,
		NestingDepth: depth,
		Decorators:   decorators,
		Modifiers: types.Modifiers{
			IsAsync:     hasChildText(n, e.content, "async"),
			IsGenerator: containsYield(n, nkPyYield),
			IsAbstract:  isAbstract,
			IsPrivate:   isPrivate(name),
			IsExported:  !isPrivate(name),
		},
	}
	if depth > 0 {
		sig.ParentFunction = e.funcChain[len(e.funcChain)-1]
	}
	sig.Parameters = extractPyParameters(n, e.content)
	if rt := firstChildOfKind(n, nkPyReturnType); rt != nil {
		sig.ReturnType = nodeText(rt, e.content)
	}
	sig.Signature = strings.TrimSpace(strings.SplitN(nodeText(n, e.content), ":", 2)[0])
	sig.Documentation = e.docstringOf(n)

	e.result.Functions = append(e.result.Functions, sig)

	e.funcChain = append(e.funcChain, name)
	e.pushCaller(id, qname)
	body := firstChildOfKind(n, nkPyBlock)
	if body != nil {
		for _, c := range children(body) {
			e.walkStatement(c)
		}
	}
	e.popCaller()
	e.funcChain = e.funcChain[:len(e.funcChain)-1]
}

func (e *pyExtractor) walkFunctionBodyOnly(n *sitter.Node) {
	body := firstChildOfKind(n, nkPyBlock)
	if body == nil {
		return
	}
	for _, c := range children(body) {
		e.walkStatement(c)
	}
}

func (e *pyExtractor) significantNested(n *sitter.Node) bool {
	return bodyLineCount(n) >= 3
}

func (e *pyExtractor) leadingDecorators(n *sitter.Node) []string {
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
	for i := idx - 1; i >= 0 && kids[i].Kind() == nkPyDecorator; i-- {
		out = append([]string{strings.TrimSpace(nodeText(kids[i], e.content))}, out...)
	}
	return out
}

func extractPyParameters(n *sitter.Node, content []byte) []types.Parameter {
	paramsNode := firstChildOfKind(n, nkPyParameters)
	if paramsNode == nil {
		return nil
	}
	var out []types.Parameter
	for _, c := range children(paramsNode) {
		switch c.Kind() {
		case nkPyIdentifier:
			out = append(out, types.Parameter{Name: nodeText(c, content)})
		case nkPyDefaultParam:
			kids := children(c)
			if len(kids) >= 2 {
				out = append(out, types.Parameter{Name: nodeText(kids[0], content), DefaultValue: nodeText(kids[1], content), IsOptional: true})
			}
		case nkPyTypedParam:
			kids := children(c)
			p := types.Parameter{}
			for _, k := range kids {
				if k.Kind() == nkPyIdentifier && p.Name == "" {
					p.Name = nodeText(k, content)
				} else if k.Kind() == "type" {
					p.Type = nodeText(k, content)
				}
			}
			out = append(out, p)
		case nkPyTypedDefault:
			kids := children(c)
			p := types.Parameter{IsOptional: true}
			for _, k := range kids {
				switch k.Kind() {
				case nkPyIdentifier:
					if p.Name == "" {
						p.Name = nodeText(k, content)
					}
				case "type":
					p.Type = nodeText(k, content)
				default:
					p.DefaultValue = nodeText(k, content)
				}
			}
			out = append(out, p)
		case nkPyListSplat:
			name := ""
			if id := firstChildOfKind(c, nkPyIdentifier); id != nil {
				name = nodeText(id, content)
			}
			out = append(out, types.Parameter{Name: name, IsRest: true})
		}
	}
	return out
}

// docstringOf returns the Google/NumPy-style docstring info for n, read
// from the first statement of its body when it is a bare string literal.
func (e *pyExtractor) docstringOf(n *sitter.Node) *types.DocumentationInfo {
	body := firstChildOfKind(n, nkPyBlock)
	if body == nil {
		return nil
	}
	kids := children(body)
	if len(kids) == 0 {
		return nil
	}
	stmt := kids[0]
	if stmt.Kind() != "expression_statement" {
		return nil
	}
	str := firstChildOfKind(stmt, nkPyString)
	if str == nil {
		return nil
	}
	return ParsePyDocstring(nodeText(str, e.content))
}

func (e *pyExtractor) extractClass(n *sitter.Node) {
	nameNode := firstChildOfKind(n, nkPyIdentifier)
	name := "anonymous"
	if nameNode != nil {
		name = nodeText(nameNode, e.content)
	}
	qname := qualifiedName(e.funcChain, name)
	id := SymbolID(e.filePath, qname, types.KindClass, nodeLine(n))

	var bases []string
	if arglist := firstChildOfKind(n, "argument_list"); arglist != nil {
		for _, c := range children(arglist) {
			if c.Kind() == nkPyIdentifier || c.Kind() == nkPyAttribute {
				bases = append(bases, nodeText(c, e.content))
			}
		}
	}
	extends := ""
	var implements []string
	if len(bases) > 0 {
		extends = bases[0]
		implements = bases[1:]
	}

	sig := types.ClassSignature{
		Base: types.Base{
			IDValue: id, Name_: name, FullyQualifiedName: qname, Kind_: types.KindClass,
			Location:   types.Location{FilePath: e.filePath, StartLine: nodeLine(n), EndLine: nodeEndLine(n)},
			IsExported: !isPrivate(name),
		},
		Extends:    extends,
		Implements: implements,
	}
	for _, d := range e.leadingDecorators(n) {
		if strings.Contains(d, "ABC") {
			sig.IsAbstract = true
		}
	}
	sig.Documentation = e.docstringOf(n)
	e.result.Classes = append(e.result.Classes, sig)

	if extends != "" {
		e.emitTypeRel(id, qname, extends, types.RelExtends)
	}
	for _, im := range implements {
		e.emitTypeRel(id, qname, im, types.RelMixin)
	}

	e.classStack = append(e.classStack, name)
	body := firstChildOfKind(n, nkPyBlock)
	if body != nil {
		for _, c := range children(body) {
			e.walkStatement(c)
		}
	}
	e.classStack = e.classStack[:len(e.classStack)-1]
}

func (e *pyExtractor) extractAssignment(n *sitter.Node) {
	kids := children(n)
	if len(kids) < 2 {
		e.walkExpressionsForRefs(n)
		return
	}
	target := kids[0]
	if target.Kind() != nkPyIdentifier {
		e.walkExpressionsForRefs(n)
		return
	}
	name := nodeText(target, e.content)
	value := kids[len(kids)-1]

	cls := e.curClass()
	depth := e.nestingDepth()

	if cls != "" && depth == 0 {
		qname := cls + "." + name
		id := SymbolID(e.filePath, qname, types.KindProperty, nodeLine(n))
		declType := ""
		for _, k := range kids {
			if k.Kind() == "type" {
				declType = nodeText(k, e.content)
			}
		}
		e.result.Properties = append(e.result.Properties, types.PropertySignature{
			Base: types.Base{
				IDValue: id, Name_: name, FullyQualifiedName: qname, Kind_: types.KindProperty,
				Location:   types.Location{FilePath: e.filePath, StartLine: nodeLine(n), EndLine: nodeEndLine(n)},
				IsExported: !isPrivate(name),
			},
			DeclaredType: declType,
			ParentClass:  cls,
		})
		e.walkExpressionsForRefs(value)
		return
	}

	qname := qualifiedName(e.funcChain, name)
	id := SymbolID(e.filePath, qname, types.KindVariable, nodeLine(n))
	declType := ""
	for _, k := range kids {
		if k.Kind() == "type" {
			declType = nodeText(k, e.content)
		}
	}
	e.result.Variables = append(e.result.Variables, types.VariableSignature{
		Base: types.Base{
			IDValue: id, Name_: name, FullyQualifiedName: qname, Kind_: types.KindVariable,
			Location:   types.Location{FilePath: e.filePath, StartLine: nodeLine(n), EndLine: nodeEndLine(n)},
			IsExported: !isPrivate(name),
		},
		DeclaredType: declType,
		IsConst:      name == strings.ToUpper(name),
	})
	e.walkExpressionsForRefs(value)
}

func (e *pyExtractor) walkExpressionsForRefs(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case nkPyFunctionDef, nkPyClassDef, nkPyImport, nkPyImportFrom, nkPyAssignment:
		e.walkStatement(n)
		return
	case nkPyCall:
		e.emitCallEdge(n)
	case nkPyIdentifier:
		e.maybeEmitIdentifierRef(n)
		return
	}
	for _, c := range children(n) {
		e.walkExpressionsForRefs(c)
	}
}

func (e *pyExtractor) maybeEmitIdentifierRef(n *sitter.Node) {
	name := nodeText(n, e.content)
	if len(name) < 2 || referenceStoplist[strings.ToLower(name)] {
		return
	}
	kind := e.classifyReference(n)
	e.emitReference(n, name, kind)
}

func (e *pyExtractor) classifyReference(n *sitter.Node) types.ReferenceKind {
	parent := n.Parent()
	if parent == nil {
		return types.RefRead
	}
	if parent.Kind() == nkPyCall {
		kids := children(parent)
		if len(kids) > 0 && sameNode(kids[0], n) {
			return types.RefCall
		}
	}
	if parent.Kind() == nkPyAttribute {
		kids := children(parent)
		if len(kids) > 0 && sameNode(kids[len(kids)-1], n) {
			if gp := parent.Parent(); gp != nil && gp.Kind() == nkPyCall {
				gpKids := children(gp)
				if len(gpKids) > 0 && sameNode(gpKids[0], parent) {
					return types.RefCall
				}
			}
		}
	}
	if hasAncestorKind(n, nkPyImport, nkPyImportFrom) {
		return types.RefImport
	}
	if parent.Kind() == "type" {
		return types.RefType
	}
	if parent.Kind() == nkPyAssignment {
		kids := children(parent)
		if len(kids) > 0 && sameNode(kids[0], n) {
			return types.RefWrite
		}
	}
	return types.RefRead
}

func (e *pyExtractor) emitReference(n *sitter.Node, name string, kind types.ReferenceKind) {
	e.result.References = append(e.result.References, types.SymbolReference{
		ID:                    ReferenceID(e.filePath, nodeLine(n), nodeColumn(n), name),
		SymbolName:            name,
		ReferencingFile:       e.filePath,
		ReferencingSymbolID:   e.curCallerID(),
		ReferencingSymbolName: e.curCallerName(),
		Line:                  nodeLine(n),
		Column:                nodeColumn(n),
		Context:               contextSnippet(e.content, n),
		ReferenceKind:         kind,
	})
}

func (e *pyExtractor) emitCallEdge(call *sitter.Node) {
	calleeName := e.calleeName(call)
	if calleeName == "" {
		return
	}
	isConditional := hasAncestorKind(call, nkPyIfStatement, nkPyTryStatement, nkPyConditionalExp)

	if e.callEdges == nil {
		e.callEdges = make(map[string]*types.CallGraphEdge)
	}
	key := e.curCallerID() + "|" + calleeName
	if edge, ok := e.callEdges[key]; ok {
		edge.CallCount++
		// OR, not AND: one conditional call site is enough to flag the whole
		// aggregate (see the equivalent note in jsts.go's emitCallEdge).
		edge.IsConditional = edge.IsConditional || isConditional
		return
	}
	e.callEdges[key] = &types.CallGraphEdge{
		ID:             CallEdgeID(e.filePath, e.curCallerName(), calleeName),
		CallerSymbolID: e.curCallerID(),
		CallerName:     e.curCallerName(),
		CalleeName:     calleeName,
		CallCount:      1,
		IsConditional:  isConditional,
	}
}

func (e *pyExtractor) calleeName(call *sitter.Node) string {
	kids := children(call)
	if len(kids) == 0 {
		return ""
	}
	callee := kids[0]
	switch callee.Kind() {
	case nkPyIdentifier:
		return nodeText(callee, e.content)
	case nkPyAttribute:
		kids2 := children(callee)
		if len(kids2) > 0 {
			return nodeText(kids2[len(kids2)-1], e.content)
		}
	}
	return ""
}

func (e *pyExtractor) flushCallEdges() {
	for _, edge := range e.callEdges {
		e.result.CallEdges = append(e.result.CallEdges, *edge)
	}
}

func (e *pyExtractor) emitTypeRel(sourceID, sourceName, targetName string, kind types.TypeRelationshipKind) {
	e.result.TypeRelationships = append(e.result.TypeRelationships, types.TypeRelationship{
		ID:               TypeRelID(e.filePath, sourceName, targetName, kind),
		SourceSymbolID:   sourceID,
		SourceName:       sourceName,
		TargetName:       targetName,
		RelationshipKind: kind,
	})
}

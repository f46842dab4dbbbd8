// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package schema

import (
	"fmt"
	"strings"

	"github.com/petar-djukic/protodoc/pkg/types"
)

// Result holds the outcome of parsing one schema file.
type Result struct {
	File     *types.SourceFile
	Warnings []types.Warning
}

// Parse turns raw schema text into a structural tree. It never fails:
// unrecognized or malformed constructs are skipped and reported as
// line-numbered warnings, and the file contributes whatever parsed.
func Parse(path, content string) *Result {
	p := &parser{path: path, toks: lex(content)}
	file := &types.SourceFile{Path: path}
	p.parseFile(file)
	return &Result{File: file, Warnings: p.warnings}
}

type parser struct {
	path     string
	toks     []token
	pos      int
	warnings []types.Warning
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) warn(line int, msg string) {
	p.warnings = append(p.warnings, types.Warning{
		Kind:    types.ParseWarning,
		File:    p.path,
		Line:    line,
		Message: msg,
	})
}

// warnSkip reports a warning and discards tokens through the end of the
// current statement or block.
func (p *parser) warnSkip(line int, msg string) {
	p.warn(line, msg)
	p.skipStatement()
}

// skipStatement consumes tokens up to and including the next ';' at the
// current depth, or a balanced '{...}' block if one opens first. It stops
// before a '}' that would close the enclosing block.
func (p *parser) skipStatement() {
	depth := 0
	for {
		t := p.peek()
		switch t.kind {
		case tokEOF:
			return
		case tokLBrace:
			depth++
			p.next()
		case tokRBrace:
			if depth == 0 {
				return
			}
			depth--
			p.next()
			if depth == 0 {
				if p.peek().kind == tokSemi {
					p.next()
				}
				return
			}
		case tokSemi:
			p.next()
			if depth == 0 {
				return
			}
		default:
			p.next()
		}
	}
}

// collectComments gathers the run of comment tokens directly ahead and
// returns the text to attach to the next declaration. A blank line between
// two line comments becomes a paragraph break; the last block comment in
// the run wins over earlier line comments.
func (p *parser) collectComments() string {
	var lineRun []string
	var blockText string
	prevEnd := -2
	for p.peek().kind == tokComment {
		t := p.next()
		if t.block {
			blockText = cleanBlockComment(t.text)
			lineRun = nil
			prevEnd = t.endLine
			continue
		}
		if prevEnd >= 0 && t.line > prevEnd+1 {
			lineRun = append(lineRun, "")
		}
		lineRun = append(lineRun, t.text)
		prevEnd = t.endLine
	}
	if len(lineRun) > 0 {
		return joinLineComments(lineRun)
	}
	return blockText
}

// trailingComment consumes a comment that sits on the same line as the
// declaration's terminator. Trailing comments take precedence over any
// leading comment.
func (p *parser) trailingComment(termLine int) string {
	t := p.peek()
	if t.kind != tokComment || t.line != termLine {
		return ""
	}
	p.next()
	if t.block {
		return cleanBlockComment(t.text)
	}
	return strings.TrimSpace(t.text)
}

func (p *parser) parseFile(file *types.SourceFile) {
	for {
		lead := p.collectComments()
		t := p.peek()
		if t.kind == tokEOF {
			return
		}
		if t.kind != tokIdent {
			p.warnSkip(t.line, fmt.Sprintf("unexpected %q at top level", t.text))
			continue
		}
		switch t.text {
		case "syntax", "option":
			p.skipStatement()
		case "package":
			p.next()
			if id := p.peek(); id.kind == tokIdent {
				file.Package = id.text
				p.next()
			}
			p.skipStatement()
		case "import":
			p.next()
			if id := p.peek(); id.kind == tokIdent && (id.text == "public" || id.text == "weak") {
				p.next()
			}
			if s := p.peek(); s.kind == tokString {
				file.Imports = append(file.Imports, s.text)
				p.next()
			}
			p.skipStatement()
		case "message":
			if m := p.parseMessage(lead, nil); m != nil {
				file.Messages = append(file.Messages, m)
			}
		case "enum":
			if e := p.parseEnum(lead, nil); e != nil {
				file.Enums = append(file.Enums, e)
			}
		case "service":
			if s := p.parseService(lead); s != nil {
				file.Services = append(file.Services, s)
			}
		default:
			p.warnSkip(t.line, fmt.Sprintf("unrecognized top-level construct %q", t.text))
		}
	}
}

// parseMessage parses a message block. parents carries the names of every
// enclosing message; the dot-joined chain gives the anchor path, so nested
// names are never flattened into a global namespace.
func (p *parser) parseMessage(lead string, parents []string) *types.Message {
	kw := p.next() // "message"
	nameTok := p.peek()
	if nameTok.kind != tokIdent {
		p.warnSkip(kw.line, "message missing name")
		return nil
	}
	p.next()

	chain := make([]string, 0, len(parents)+1)
	chain = append(chain, parents...)
	chain = append(chain, nameTok.text)
	msg := &types.Message{
		Name:     nameTok.text,
		FullName: strings.Join(chain, "."),
		Comment:  lead,
		Line:     nameTok.line,
	}

	if p.peek().kind != tokLBrace {
		p.warnSkip(nameTok.line, fmt.Sprintf("message %s missing body", msg.Name))
		return msg
	}
	p.next()

	for {
		entryLead := p.collectComments()
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			p.warn(t.line, fmt.Sprintf("unterminated message %s", msg.Name))
			p.checkFieldNumbers(msg)
			return msg
		case t.kind == tokRBrace:
			p.next()
			p.checkFieldNumbers(msg)
			return msg
		case t.kind == tokIdent && t.text == "message":
			if child := p.parseMessage(entryLead, chain); child != nil {
				msg.Messages = append(msg.Messages, child)
			}
		case t.kind == tokIdent && t.text == "enum":
			if child := p.parseEnum(entryLead, chain); child != nil {
				msg.Enums = append(msg.Enums, child)
			}
		case t.kind == tokIdent && (t.text == "option" || t.text == "reserved" || t.text == "extensions"):
			p.skipStatement()
		case t.kind == tokIdent && t.text == "oneof":
			p.warnSkip(t.line, fmt.Sprintf("oneof block in message %s skipped", msg.Name))
		case t.kind == tokIdent:
			if f, ok := p.parseField(entryLead, msg.Name); ok {
				msg.Fields = append(msg.Fields, f)
			}
		default:
			p.warnSkip(t.line, fmt.Sprintf("unexpected %q in message %s", t.text, msg.Name))
		}
	}
}

// checkFieldNumbers reports fields that reuse an earlier field's number.
// Both fields stay in the tree; the collision is a report entry, not an
// error. Enum values are exempt: number aliasing is legal there.
func (p *parser) checkFieldNumbers(msg *types.Message) {
	seen := make(map[string]string, len(msg.Fields))
	for _, f := range msg.Fields {
		prev, ok := seen[f.Number]
		if !ok {
			seen[f.Number] = f.Name
			continue
		}
		p.warnings = append(p.warnings, types.Warning{
			Kind:    types.DuplicateFieldNumber,
			File:    p.path,
			Line:    f.Line,
			Message: fmt.Sprintf("field %s in message %s reuses number %s of field %s", f.Name, msg.Name, f.Number, prev),
		})
	}
}

func (p *parser) parseField(lead, owner string) (types.Field, bool) {
	f := types.Field{Comment: lead}
	t := p.peek()
	f.Line = t.line

	if t.text == "optional" || t.text == "required" || t.text == "repeated" {
		f.Modifier = t.text
		p.next()
		t = p.peek()
	}
	if t.kind != tokIdent {
		p.warnSkip(t.line, fmt.Sprintf("malformed field in message %s", owner))
		return f, false
	}
	rawType := t.text
	p.next()
	if rawType == "map" && p.peek().kind == tokLAngle {
		rawType = "map<" + p.angleArgs() + ">"
	}

	nameTok := p.peek()
	if nameTok.kind != tokIdent {
		p.warnSkip(nameTok.line, fmt.Sprintf("field in message %s missing name", owner))
		return f, false
	}
	f.Name = nameTok.text
	p.next()

	if p.peek().kind != tokEquals {
		p.warnSkip(nameTok.line, fmt.Sprintf("field %s in message %s missing number", f.Name, owner))
		return f, false
	}
	p.next()
	numTok := p.peek()
	if numTok.kind != tokNumber {
		p.warnSkip(numTok.line, fmt.Sprintf("field %s in message %s has non-numeric tag", f.Name, owner))
		return f, false
	}
	f.Number = numTok.text
	p.next()

	if p.peek().kind == tokLBracket {
		f.Options = p.bracketOptions()
	}

	termLine := numTok.line
	if p.peek().kind == tokSemi {
		termLine = p.peek().line
		p.next()
	}
	if trailing := p.trailingComment(termLine); trailing != "" {
		f.Comment = trailing
	}

	f.Type = types.ClassifyType(rawType)
	return f, true
}

// angleArgs consumes a <...> argument list and returns its contents in
// normalized "k, v" form.
func (p *parser) angleArgs() string {
	p.next() // '<'
	var parts []string
	for {
		t := p.peek()
		switch t.kind {
		case tokEOF, tokRAngle, tokSemi, tokRBrace:
			if t.kind == tokRAngle {
				p.next()
			}
			return strings.Join(parts, ", ")
		case tokComma:
			p.next()
		default:
			parts = append(parts, t.text)
			p.next()
		}
	}
}

// bracketOptions consumes a [...] option list, returning the option text
// with delimiters stripped. The text is captured, not interpreted.
func (p *parser) bracketOptions() string {
	p.next() // '['
	var b strings.Builder
	depth := 1
	for {
		t := p.peek()
		switch t.kind {
		case tokEOF, tokSemi, tokRBrace:
			return b.String()
		case tokLBracket:
			depth++
		case tokRBracket:
			depth--
			if depth == 0 {
				p.next()
				return b.String()
			}
		}
		if b.Len() > 0 && t.kind != tokComma {
			b.WriteByte(' ')
		}
		if t.kind == tokString {
			b.WriteString(`"` + t.text + `"`)
		} else {
			b.WriteString(t.text)
		}
		p.next()
	}
}

func (p *parser) parseEnum(lead string, parents []string) *types.Enum {
	kw := p.next() // "enum"
	nameTok := p.peek()
	if nameTok.kind != tokIdent {
		p.warnSkip(kw.line, "enum missing name")
		return nil
	}
	p.next()

	chain := make([]string, 0, len(parents)+1)
	chain = append(chain, parents...)
	chain = append(chain, nameTok.text)
	enum := &types.Enum{
		Name:     nameTok.text,
		FullName: strings.Join(chain, "."),
		Comment:  lead,
		Line:     nameTok.line,
	}

	if p.peek().kind != tokLBrace {
		p.warnSkip(nameTok.line, fmt.Sprintf("enum %s missing body", enum.Name))
		return enum
	}
	p.next()

	for {
		entryLead := p.collectComments()
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			p.warn(t.line, fmt.Sprintf("unterminated enum %s", enum.Name))
			return enum
		case t.kind == tokRBrace:
			p.next()
			return enum
		case t.kind == tokIdent && (t.text == "option" || t.text == "reserved"):
			p.skipStatement()
		case t.kind == tokIdent:
			if v, ok := p.parseEnumValue(entryLead, enum.Name); ok {
				enum.Values = append(enum.Values, v)
			}
		default:
			p.warnSkip(t.line, fmt.Sprintf("unexpected %q in enum %s", t.text, enum.Name))
		}
	}
}

func (p *parser) parseEnumValue(lead, owner string) (types.EnumValue, bool) {
	nameTok := p.next()
	v := types.EnumValue{Name: nameTok.text, Comment: lead, Line: nameTok.line}

	if p.peek().kind != tokEquals {
		p.warnSkip(nameTok.line, fmt.Sprintf("enum value %s in %s missing number", v.Name, owner))
		return v, false
	}
	p.next()
	numTok := p.peek()
	if numTok.kind != tokNumber {
		p.warnSkip(numTok.line, fmt.Sprintf("enum value %s in %s has non-numeric number", v.Name, owner))
		return v, false
	}
	v.Number = numTok.text
	p.next()

	if p.peek().kind == tokLBracket {
		v.Options = p.bracketOptions()
	}

	termLine := numTok.line
	if p.peek().kind == tokSemi {
		termLine = p.peek().line
		p.next()
	}
	if trailing := p.trailingComment(termLine); trailing != "" {
		v.Comment = trailing
	}
	return v, true
}

func (p *parser) parseService(lead string) *types.Service {
	kw := p.next() // "service"
	nameTok := p.peek()
	if nameTok.kind != tokIdent {
		p.warnSkip(kw.line, "service missing name")
		return nil
	}
	p.next()

	svc := &types.Service{Name: nameTok.text, Comment: lead, Line: nameTok.line}

	if p.peek().kind != tokLBrace {
		p.warnSkip(nameTok.line, fmt.Sprintf("service %s missing body", svc.Name))
		return svc
	}
	p.next()

	for {
		entryLead := p.collectComments()
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			p.warn(t.line, fmt.Sprintf("unterminated service %s", svc.Name))
			return svc
		case t.kind == tokRBrace:
			p.next()
			return svc
		case t.kind == tokIdent && t.text == "option":
			p.skipStatement()
		case t.kind == tokIdent && t.text == "rpc":
			if m, ok := p.parseMethod(entryLead, svc.Name); ok {
				svc.Methods = append(svc.Methods, m)
			}
		default:
			p.warnSkip(t.line, fmt.Sprintf("unexpected %q in service %s", t.text, svc.Name))
		}
	}
}

func (p *parser) parseMethod(lead, owner string) (types.Method, bool) {
	kw := p.next() // "rpc"
	nameTok := p.peek()
	if nameTok.kind != tokIdent {
		p.warnSkip(kw.line, fmt.Sprintf("rpc in service %s missing name", owner))
		return types.Method{}, false
	}
	p.next()
	m := types.Method{Name: nameTok.text, Comment: lead, Line: nameTok.line}

	request, ok := p.methodTypeArg(owner, m.Name)
	if !ok {
		return m, false
	}
	m.Request = types.ClassifyType(request)

	if t := p.peek(); t.kind != tokIdent || t.text != "returns" {
		p.warnSkip(t.line, fmt.Sprintf("rpc %s in service %s missing returns clause", m.Name, owner))
		return m, false
	}
	p.next()

	response, ok := p.methodTypeArg(owner, m.Name)
	if !ok {
		return m, false
	}
	m.Response = types.ClassifyType(response)

	termLine := nameTok.line
	switch p.peek().kind {
	case tokSemi:
		termLine = p.peek().line
		p.next()
	case tokLBrace:
		termLine = p.skipBlock()
		if p.peek().kind == tokSemi {
			p.next()
		}
	}
	if trailing := p.trailingComment(termLine); trailing != "" {
		m.Comment = trailing
	}
	return m, true
}

// methodTypeArg parses a parenthesized request or response type. A
// "stream" keyword is accepted and dropped.
func (p *parser) methodTypeArg(owner, method string) (string, bool) {
	if p.peek().kind != tokLParen {
		p.warnSkip(p.peek().line, fmt.Sprintf("rpc %s in service %s missing type argument", method, owner))
		return "", false
	}
	p.next()
	if t := p.peek(); t.kind == tokIdent && t.text == "stream" {
		p.next()
	}
	t := p.peek()
	if t.kind != tokIdent {
		p.warnSkip(t.line, fmt.Sprintf("rpc %s in service %s has malformed type argument", method, owner))
		return "", false
	}
	name := t.text
	p.next()
	if p.peek().kind == tokRParen {
		p.next()
	}
	return name, true
}

// skipBlock consumes a balanced {...} block and returns the line of the
// closing brace.
func (p *parser) skipBlock() int {
	depth := 0
	line := p.peek().line
	for {
		t := p.peek()
		switch t.kind {
		case tokEOF:
			return line
		case tokLBrace:
			depth++
		case tokRBrace:
			depth--
			line = t.line
			if depth == 0 {
				p.next()
				return line
			}
		}
		p.next()
	}
}

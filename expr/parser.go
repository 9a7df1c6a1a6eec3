//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of DataSteps.
//
// DataSteps is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DataSteps is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with DataSteps. If not, see https://www.gnu.org/licenses/.

package expr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// parser is a recursive-descent parser over a token slice.
// Each compile gets its own parser; there is no shared state between compiles.
type parser struct {
	tokens []token
	pos    int
}

// parseError is a positioned parser failure.
type parseError struct {
	pos int
	msg string
}

func (e *parseError) Error() string { return e.msg }

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.unexpected(t, kind.String())
	}
	return t, nil
}

func (p *parser) unexpected(t token, want string) error {
	if t.kind == tokEOF {
		return &parseError{pos: t.pos, msg: fmt.Sprintf("unexpected end of expression, expected %s", want)}
	}
	return &parseError{pos: t.pos, msg: fmt.Sprintf("unexpected %s %q, expected %s", t.kind, t.text, want)}
}

// parseBooleanSource compiles src with the boolean grammar.
func parseBooleanSource(src string) (boolNode, error) {
	tokens, err := tokenize(src, boolGrammar)
	if err != nil {
		return nil, wrapCompile(src, err)
	}
	p := &parser{tokens: tokens}
	node, err := p.parseBoolean()
	if err != nil {
		return nil, wrapCompile(src, err)
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, wrapCompile(src, p.unexpected(t, "boolean operator or end of expression"))
	}
	return node, nil
}

// parseMathSource compiles src with the arithmetic grammar.
func parseMathSource(src string) (mathNode, error) {
	tokens, err := tokenize(src, mathGrammar)
	if err != nil {
		return nil, wrapCompile(src, err)
	}
	p := &parser{tokens: tokens}
	node, err := p.parseSum()
	if err != nil {
		return nil, wrapCompile(src, err)
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, wrapCompile(src, p.unexpected(t, "arithmetic operator or end of expression"))
	}
	return node, nil
}

func wrapCompile(src string, err error) error {
	pos := -1
	var le *lexError
	var pe *parseError
	switch {
	case errors.As(err, &le):
		pos = le.pos
	case errors.As(err, &pe):
		pos = pe.pos
	}
	return &CompileError{Source: src, Pos: pos, Err: err}
}

// parseBoolean parses operand (connective operand)*. AND and OR share one level.
func (p *parser) parseBoolean() (boolNode, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		var op logicalOp
		switch t.kind {
		case tokAnd:
			op = opAnd
		case tokOr:
			op = opOr
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		left = &logicalNode{op: op, left: left, right: right}
	}
}

// parseOperand parses a comparison or a parenthesized group.
func (p *parser) parseOperand() (boolNode, error) {
	if p.peek().kind != tokLParen {
		return p.parseComparison()
	}
	p.next()
	if p.peek().kind == tokRParen {
		p.next()
		return &groupNode{}, nil
	}
	inner, err := p.parseBoolean()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return &groupNode{inner: inner}, nil
}

func (p *parser) parseComparison() (boolNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	opTok := p.next()
	if opTok.kind != tokComparator {
		return nil, p.unexpected(opTok, "comparator")
	}
	right, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return &comparisonNode{op: compareOp(opTok.text), left: left, right: right}, nil
}

func (p *parser) parseTerm() (term, error) {
	t := p.next()
	switch t.kind {
	case tokField:
		return fieldTerm{name: t.text}, nil
	case tokRowNumber:
		return rowNumberTerm{}, nil
	case tokNull:
		return literalTerm{v: Null()}, nil
	case tokString:
		return literalTerm{v: TextValue(t.text)}, nil
	case tokNumber:
		d, err := parseNumber(t)
		if err != nil {
			return nil, err
		}
		return literalTerm{v: DecimalValue(d)}, nil
	case tokDate:
		v, err := parseDateLiteral(t.text)
		if err != nil {
			return nil, &parseError{pos: t.pos, msg: err.Error()}
		}
		return literalTerm{v: v}, nil
	case tokRegex:
		re, err := regexp.Compile(t.text)
		if err != nil {
			return nil, &parseError{pos: t.pos, msg: fmt.Sprintf("invalid regular expression %q: %v", t.text, err)}
		}
		return literalTerm{v: PatternValue(re)}, nil
	default:
		return nil, p.unexpected(t, "field, literal, null or row number")
	}
}

// parseSum parses product (('+'|'-') product)*.
func (p *parser) parseSum() (mathNode, error) {
	return p.parseLevel(0)
}

// arithLevels lists operators from loosest to tightest binding.
var arithLevels = []string{"+-", "*/", "^"}

// parseLevel parses one left-associative precedence level.
func (p *parser) parseLevel(level int) (mathNode, error) {
	if level == len(arithLevels) {
		return p.parseAtom()
	}
	left, err := p.parseLevel(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokArith || !strings.Contains(arithLevels[level], t.text) {
			return left, nil
		}
		p.next()
		right, err := p.parseLevel(level + 1)
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: t.text[0], left: left, right: right}
	}
}

func (p *parser) parseAtom() (mathNode, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		d, err := parseNumber(t)
		if err != nil {
			return nil, err
		}
		return numberNode{d: d}, nil
	case tokField:
		return mathFieldNode{name: t.text}, nil
	case tokLParen:
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, p.unexpected(t, "number or field")
	}
}

// parseNumber converts a number token, accepting a leading '+' and a bare '.'.
func parseNumber(t token) (decimal.Decimal, error) {
	text := strings.TrimPrefix(t.text, "+")
	neg := strings.HasPrefix(text, "-")
	text = strings.TrimPrefix(text, "-")
	if strings.HasPrefix(text, ".") {
		text = "0" + text
	}
	if mant, exp, ok := strings.Cut(text, "e"); ok {
		text = strings.TrimSuffix(mant, ".") + "e" + exp
	} else if mant, exp, ok := strings.Cut(text, "E"); ok {
		text = strings.TrimSuffix(mant, ".") + "e" + exp
	} else {
		text = strings.TrimSuffix(text, ".")
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, &parseError{pos: t.pos, msg: fmt.Sprintf("invalid number %q", t.text)}
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

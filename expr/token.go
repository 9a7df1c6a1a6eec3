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
	"fmt"
	"strings"
)

// tokenKind identifies a lexical token.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokField
	tokRegex
	tokString
	tokDate
	tokNumber
	tokNull
	tokRowNumber
	tokComparator
	tokAnd
	tokOr
	tokArith
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokField:
		return "field"
	case tokRegex:
		return "regex"
	case tokString:
		return "string"
	case tokDate:
		return "date"
	case tokNumber:
		return "number"
	case tokNull:
		return "null"
	case tokRowNumber:
		return "row number"
	case tokComparator:
		return "comparator"
	case tokAnd, tokOr:
		return "boolean operator"
	case tokArith:
		return "arithmetic operator"
	default:
		return "unknown"
	}
}

// token is a lexed unit. text holds the payload: the field name for fields,
// the unescaped contents for strings and regexes, the operator or literal otherwise.
type token struct {
	kind tokenKind
	text string
	pos  int
}

// grammar selects which tokens are legal.
type grammar int

const (
	boolGrammar grammar = iota
	mathGrammar
)

var (
	nullKeywords      = map[string]bool{"null": true, "NULL": true, "None": true, "NONE": true}
	rowNumberKeywords = map[string]bool{"ROW_NUMBER": true, "LINE_NUMBER": true}
	andKeywords       = map[string]bool{"AND": true, "and": true}
	orKeywords        = map[string]bool{"OR": true, "or": true}
)

// lexError is a positioned tokenizer failure.
type lexError struct {
	pos int
	msg string
}

func (e *lexError) Error() string { return e.msg }

// tokenize splits src into tokens for the given grammar.
func tokenize(src string, g grammar) ([]token, error) {
	var tokens []token
	i := 0

	// A sign belongs to a number only where an operand is expected.
	expectOperand := func() bool {
		if len(tokens) == 0 {
			return true
		}
		switch tokens[len(tokens)-1].kind {
		case tokLParen, tokComparator, tokAnd, tokOr, tokArith:
			return true
		}
		return false
	}

	for i < len(src) {
		c := src[i]

		if isSpace(c) {
			i++
			continue
		}

		switch {
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
			continue
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
			continue
		case c == '{':
			end := strings.IndexByte(src[i+1:], '}')
			if end < 0 {
				return nil, &lexError{pos: i, msg: "unterminated field reference, missing '}'"}
			}
			tokens = append(tokens, token{kind: tokField, text: src[i+1 : i+1+end], pos: i})
			i += end + 2
			continue
		case g == boolGrammar && strings.HasPrefix(src[i:], "re'"):
			body, next, ok := scanQuoted(src, i+2)
			if !ok {
				return nil, &lexError{pos: i, msg: "unterminated regular expression literal"}
			}
			tokens = append(tokens, token{kind: tokRegex, text: body, pos: i})
			i = next
			continue
		case c == '\'':
			body, next, ok := scanQuoted(src, i)
			if !ok {
				return nil, &lexError{pos: i, msg: "unterminated string literal"}
			}
			tokens = append(tokens, token{kind: tokString, text: body, pos: i})
			i = next
			continue
		}

		if g == boolGrammar && isDigit(c) {
			if end, ok := scanDate(src, i); ok {
				tokens = append(tokens, token{kind: tokDate, text: src[i:end], pos: i})
				i = end
				continue
			}
		}

		if isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])) ||
			((c == '-' || c == '+') && expectOperand() && i+1 < len(src) && (isDigit(src[i+1]) || src[i+1] == '.')) {
			end, ok := scanNumber(src, i)
			if !ok {
				return nil, &lexError{pos: i, msg: fmt.Sprintf("malformed number %q", src[i:end])}
			}
			tokens = append(tokens, token{kind: tokNumber, text: src[i:end], pos: i})
			i = end
			continue
		}

		if i+1 < len(src) {
			two := src[i : i+2]
			switch two {
			case ">=", "<=", "!=", "==":
				tokens = append(tokens, token{kind: tokComparator, text: two, pos: i})
				i += 2
				continue
			case "&&":
				if g == boolGrammar {
					tokens = append(tokens, token{kind: tokAnd, text: two, pos: i})
					i += 2
					continue
				}
			case "||":
				if g == boolGrammar {
					tokens = append(tokens, token{kind: tokOr, text: two, pos: i})
					i += 2
					continue
				}
			}
		}

		if c == '>' || c == '<' {
			tokens = append(tokens, token{kind: tokComparator, text: string(c), pos: i})
			i++
			continue
		}

		if g == mathGrammar && strings.IndexByte("^*/+-", c) >= 0 {
			tokens = append(tokens, token{kind: tokArith, text: string(c), pos: i})
			i++
			continue
		}

		if isWordStart(c) {
			start := i
			for i < len(src) && isWordPart(src[i]) {
				i++
			}
			word := src[start:i]
			switch {
			case nullKeywords[word]:
				tokens = append(tokens, token{kind: tokNull, text: word, pos: start})
			case rowNumberKeywords[word]:
				tokens = append(tokens, token{kind: tokRowNumber, text: word, pos: start})
			case g == boolGrammar && andKeywords[word]:
				tokens = append(tokens, token{kind: tokAnd, text: word, pos: start})
			case g == boolGrammar && orKeywords[word]:
				tokens = append(tokens, token{kind: tokOr, text: word, pos: start})
			default:
				return nil, &lexError{pos: start, msg: fmt.Sprintf("unexpected word %q", word)}
			}
			continue
		}

		return nil, &lexError{pos: i, msg: fmt.Sprintf("unexpected character %q", c)}
	}

	tokens = append(tokens, token{kind: tokEOF, pos: len(src)})
	return tokens, nil
}

// scanQuoted reads a single-quoted body starting at the opening quote.
// \' yields a literal quote; every other byte, backslashes included, is kept.
func scanQuoted(src string, open int) (string, int, bool) {
	var b strings.Builder
	i := open + 1
	for i < len(src) {
		c := src[i]
		if c == '\\' && i+1 < len(src) && src[i+1] == '\'' {
			b.WriteByte('\'')
			i += 2
			continue
		}
		if c == '\'' {
			return b.String(), i + 1, true
		}
		b.WriteByte(c)
		i++
	}
	return "", i, false
}

// scanDate reads digit groups joined by '/', ':', '-' or a single space.
// At least one of '/', ':' or '-' must appear, otherwise the text is a number.
func scanDate(src string, start int) (int, bool) {
	i := start
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	end := i
	marked := false
	for i+1 < len(src) {
		sep := src[i]
		if sep != '/' && sep != ':' && sep != '-' && sep != ' ' {
			break
		}
		if !isDigit(src[i+1]) {
			break
		}
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
		if sep != ' ' {
			marked = true
		}
		end = i
	}
	if !marked {
		return start, false
	}
	return end, true
}

// scanNumber reads [+-]digits[.digits][e[+-]digits].
func scanNumber(src string, start int) (int, bool) {
	i := start
	if src[i] == '+' || src[i] == '-' {
		i++
	}
	digits := 0
	for i < len(src) && isDigit(src[i]) {
		i++
		digits++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return i, false
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}
	return i, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isWordPart(c byte) bool {
	return isWordStart(c) || isDigit(c)
}

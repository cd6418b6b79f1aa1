// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package phpast

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind classifies a token.
type Kind string

const (
	KindInlineHTML Kind = "html"
	KindOpenTag    Kind = "open"
	KindCloseTag   Kind = "close"
	KindWhitespace Kind = "ws"
	KindComment    Kind = "comment"
	KindDocComment Kind = "doc"
	KindString     Kind = "string"
	KindHeredoc    Kind = "heredoc"
	KindVariable   Kind = "var"
	KindName       Kind = "name"
	KindNumber     Kind = "number"
	KindOperator   Kind = "op"
)

var kinds = []Kind{
	KindInlineHTML, KindOpenTag, KindCloseTag, KindWhitespace, KindComment,
	KindDocComment, KindString, KindHeredoc, KindVariable, KindName,
	KindNumber, KindOperator,
}

// Token is one lexeme and its exact source text.
type Token struct {
	Kind Kind
	Text string
}

// Parse errors.
var (
	ErrNoOpenTag      = errors.New("no <?php open tag")
	ErrInvalidUTF8    = errors.New("source is not valid UTF-8")
	ErrUnterminated   = errors.New("unterminated token")
	ErrMalformedValue = errors.New("malformed token tree value")
)

// operators lists multi-character operators, longest first within each
// shared prefix so the first match is the longest.
var operators = []string{
	"<=>", "**=", "...", "<<=", ">>=", "===", "!==", "??=", "?->",
	"++", "--", "->", "=>", "::", "==", "!=", "<>", "<=", ">=", "&&", "||",
	"??", "+=", "-=", "*=", "/=", ".=", "%=", "&=", "|=", "^=", "<<", ">>", "**",
}

type lexer struct {
	source   string
	position int
	tokens   []Token
	sawOpen  bool
}

func (l *lexer) emit(kind Kind, length int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: l.source[l.position : l.position+length]})
	l.position += length
}

func (l *lexer) rest() string { return l.source[l.position:] }

// Parse tokenizes PHP source.
func Parse(source []byte) (*Tree, error) {
	if !utf8.Valid(source) {
		return nil, ErrInvalidUTF8
	}
	l := &lexer{source: string(source)}
	for l.position < len(l.source) {
		if err := l.html(); err != nil {
			return nil, err
		}
		if err := l.php(); err != nil {
			return nil, err
		}
	}
	if !l.sawOpen {
		return nil, ErrNoOpenTag
	}
	return &Tree{Tokens: l.tokens}, nil
}

// html consumes inline text up to and including the next open tag.
func (l *lexer) html() error {
	rest := l.rest()
	index := strings.Index(rest, "<?")
	for index >= 0 {
		candidate := rest[index:]
		if strings.HasPrefix(candidate, "<?=") {
			break
		}
		if strings.HasPrefix(candidate, "<?php") {
			after := candidate[len("<?php"):]
			if after == "" || isSpace(after[0]) {
				break
			}
		}
		next := strings.Index(rest[index+2:], "<?")
		if next < 0 {
			index = -1
			break
		}
		index += 2 + next
	}

	if index < 0 {
		if !l.sawOpen {
			return ErrNoOpenTag
		}
		l.emit(KindInlineHTML, len(rest))
		return nil
	}
	if index > 0 {
		l.emit(KindInlineHTML, index)
	}
	l.sawOpen = true
	if strings.HasPrefix(l.rest(), "<?=") {
		l.emit(KindOpenTag, len("<?="))
	} else {
		l.emit(KindOpenTag, len("<?php"))
	}
	return nil
}

// php consumes code tokens until a close tag or end of input.
func (l *lexer) php() error {
	for l.position < len(l.source) {
		rest := l.rest()
		c := rest[0]

		switch {
		case strings.HasPrefix(rest, "?>"):
			length := 2
			if strings.HasPrefix(rest[2:], "\r\n") {
				length += 2
			} else if strings.HasPrefix(rest[2:], "\n") {
				length++
			}
			l.emit(KindCloseTag, length)
			return nil

		case isSpace(c):
			length := 1
			for length < len(rest) && isSpace(rest[length]) {
				length++
			}
			l.emit(KindWhitespace, length)

		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				return l.unterminated("block comment")
			}
			kind := KindComment
			if strings.HasPrefix(rest, "/**") && end > 0 {
				kind = KindDocComment
			}
			l.emit(kind, end+4)

		case strings.HasPrefix(rest, "//"), c == '#' && !strings.HasPrefix(rest, "#["):
			l.emit(KindComment, lineCommentLength(rest))

		case c == '\'' || c == '"' || c == '`':
			length, ok := quotedLength(rest, c)
			if !ok {
				return l.unterminated("string")
			}
			l.emit(KindString, length)

		case strings.HasPrefix(rest, "<<<"):
			length, ok := heredocLength(rest)
			if !ok {
				return l.unterminated("heredoc")
			}
			l.emit(KindHeredoc, length)

		case c == '$' && len(rest) > 1 && isNameStart(rest[1]):
			l.emit(KindVariable, 1+nameLength(rest[1:]))

		case isNameStart(c) || (c == '\\' && len(rest) > 1 && isNameStart(rest[1])):
			l.emit(KindName, nameLength(rest))

		case isDigit(c) || (c == '.' && len(rest) > 1 && isDigit(rest[1])):
			l.emit(KindNumber, numberLength(rest))

		default:
			l.emit(KindOperator, operatorLength(rest))
		}
	}
	return nil
}

func (l *lexer) unterminated(what string) error {
	line := strings.Count(l.source[:l.position], "\n") + 1
	return fmt.Errorf("%w: %s starting on line %d", ErrUnterminated, what, line)
}

// lineCommentLength ends a // or # comment at the newline (exclusive)
// or before a close tag.
func lineCommentLength(rest string) int {
	for i := 0; i < len(rest); i++ {
		if rest[i] == '\n' || rest[i] == '\r' {
			return i
		}
		if rest[i] == '?' && i+1 < len(rest) && rest[i+1] == '>' {
			return i
		}
	}
	return len(rest)
}

func quotedLength(rest string, quote byte) (int, bool) {
	for i := 1; i < len(rest); i++ {
		switch rest[i] {
		case '\\':
			i++
		case quote:
			return i + 1, true
		}
	}
	return 0, false
}

// heredocLength scans <<<ID, <<<"ID", or <<<'ID' through the closing
// identifier line. The closing identifier may be indented.
func heredocLength(rest string) (int, bool) {
	i := 3
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
		i++
	}
	quote := byte(0)
	if i < len(rest) && (rest[i] == '\'' || rest[i] == '"') {
		quote = rest[i]
		i++
	}
	start := i
	for i < len(rest) && isNameByte(rest[i]) {
		i++
	}
	identifier := rest[start:i]
	if identifier == "" {
		return 0, false
	}
	if quote != 0 {
		if i >= len(rest) || rest[i] != quote {
			return 0, false
		}
		i++
	}

	newline := strings.IndexByte(rest[i:], '\n')
	if newline < 0 {
		return 0, false
	}
	i += newline + 1

	for i <= len(rest) {
		line := rest[i:]
		indent := 0
		for indent < len(line) && (line[indent] == ' ' || line[indent] == '\t') {
			indent++
		}
		if strings.HasPrefix(line[indent:], identifier) {
			after := indent + len(identifier)
			if after == len(line) || !isNameByte(line[after]) {
				return i + after, true
			}
		}
		next := strings.IndexByte(line, '\n')
		if next < 0 {
			return 0, false
		}
		i += next + 1
	}
	return 0, false
}

func nameLength(rest string) int {
	i := 0
	for i < len(rest) && (isNameByte(rest[i]) || rest[i] == '\\') {
		i++
	}
	return i
}

func numberLength(rest string) int {
	i := 0
	for i < len(rest) && (isNameByte(rest[i]) || rest[i] == '.') {
		if rest[i] == '.' && i+1 < len(rest) && rest[i+1] == '.' {
			break
		}
		i++
	}
	return i
}

func operatorLength(rest string) int {
	for _, operator := range operators {
		if strings.HasPrefix(rest, operator) {
			return len(operator)
		}
	}
	_, size := utf8.DecodeRuneInString(rest)
	return size
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isNameByte(c byte) bool { return isNameStart(c) || isDigit(c) }

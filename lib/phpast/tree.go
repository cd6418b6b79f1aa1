// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package phpast

import (
	"fmt"
	"slices"
	"strings"
)

// treeKind tags the root of a tree value.
const treeKind = "php.tokens"

// Tree is the token stream of one PHP file.
type Tree struct {
	Tokens []Token
}

// Dump reproduces the source text.
func (t *Tree) Dump() string {
	var builder strings.Builder
	for _, token := range t.Tokens {
		builder.WriteString(token.Text)
	}
	return builder.String()
}

// Value renders the tree as a JSON-compatible value:
//
//	{"kind": "php.tokens", "tokens": [[kind, text], ...]}
func (t *Tree) Value() map[string]any {
	tokens := make([]any, len(t.Tokens))
	for i, token := range t.Tokens {
		tokens[i] = []any{string(token.Kind), token.Text}
	}
	return map[string]any{
		"kind":   treeKind,
		"tokens": tokens,
	}
}

// FromValue reconstructs a tree from the output of [Tree.Value],
// after any JSON or CBOR round trip.
func FromValue(value any) (*Tree, error) {
	root, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: root is %T, not a map", ErrMalformedValue, value)
	}
	if kind, _ := root["kind"].(string); kind != treeKind {
		return nil, fmt.Errorf("%w: root kind %q", ErrMalformedValue, root["kind"])
	}
	list, ok := root["tokens"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: tokens is %T, not a list", ErrMalformedValue, root["tokens"])
	}

	tree := &Tree{Tokens: make([]Token, 0, len(list))}
	for index, element := range list {
		pair, ok := element.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("%w: tokens[%d] is not a [kind, text] pair", ErrMalformedValue, index)
		}
		kind, kindOK := pair[0].(string)
		text, textOK := pair[1].(string)
		if !kindOK || !textOK {
			return nil, fmt.Errorf("%w: tokens[%d] has non-string members", ErrMalformedValue, index)
		}
		if !slices.Contains(kinds, Kind(kind)) {
			return nil, fmt.Errorf("%w: tokens[%d] has unknown kind %q", ErrMalformedValue, index, kind)
		}
		tree.Tokens = append(tree.Tokens, Token{Kind: Kind(kind), Text: text})
	}
	return tree, nil
}

// significant reports whether a token carries syntax.
func significant(token Token) bool {
	switch token.Kind {
	case KindWhitespace, KindComment, KindDocComment, KindInlineHTML, KindOpenTag, KindCloseTag:
		return false
	}
	return true
}

// Declarations returns the fully-qualified names of the classes,
// interfaces, traits, and enums declared in the tree, in source order.
// Anonymous classes are skipped.
func (t *Tree) Declarations() []string {
	var code []Token
	for _, token := range t.Tokens {
		if significant(token) {
			code = append(code, token)
		}
	}

	var (
		namespace    string
		declarations []string
	)
	for i, token := range code {
		if token.Kind != KindName {
			continue
		}
		keyword := strings.ToLower(token.Text)
		var previous, next *Token
		if i > 0 {
			previous = &code[i-1]
		}
		if i+1 < len(code) {
			next = &code[i+1]
		}

		switch keyword {
		case "namespace":
			if next == nil {
				continue
			}
			if previous != nil && previous.Text == "\\" {
				continue
			}
			if next.Kind == KindName {
				namespace = strings.Trim(next.Text, "\\")
			} else if next.Text == "{" {
				namespace = ""
			}

		case "class", "interface", "trait", "enum":
			if next == nil || next.Kind != KindName {
				continue
			}
			if previous != nil && (previous.Text == "::" || previous.Text == "->" || previous.Text == "?->" ||
				strings.EqualFold(previous.Text, "new")) {
				continue
			}
			name := next.Text
			if namespace != "" {
				name = namespace + "\\" + name
			}
			declarations = append(declarations, name)
		}
	}
	return declarations
}

// Parser adapts this package to the compiler's parse and the
// installer's dump collaborators.
type Parser struct{}

// Parse tokenizes source and returns the tree's value form.
func (Parser) Parse(source []byte) (any, error) {
	tree, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return tree.Value(), nil
}

// Dump reconstructs source text from a value produced by Parse.
func (Parser) Dump(value any) (string, error) {
	tree, err := FromValue(value)
	if err != nil {
		return "", err
	}
	return tree.Dump(), nil
}

package bleve

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokColon
	tokAnd
	tokOr
	tokNot
	tokPlus
	tokWord
	tokPhrase
	tokRange
	tokBoost
)

type token struct {
	kind tokenKind
	text string
}

// lex splits a query in the Lucene subset the compiler emits. Leading local
// params such as {!tag=...} are dropped.
func lex(s string) ([]token, error) {
	s = stripLocalParams(strings.TrimSpace(s))
	var out []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			out = append(out, token{kind: tokLParen})
			i++
		case c == ')':
			out = append(out, token{kind: tokRParen})
			i++
		case c == ':':
			out = append(out, token{kind: tokColon})
			i++
		case c == '+':
			out = append(out, token{kind: tokPlus})
			i++
		case c == '-' || c == '!':
			out = append(out, token{kind: tokNot})
			i++
		case c == '&' && strings.HasPrefix(s[i:], "&&"):
			out = append(out, token{kind: tokAnd})
			i += 2
		case c == '|' && strings.HasPrefix(s[i:], "||"):
			out = append(out, token{kind: tokOr})
			i += 2
		case c == '"':
			text, n, err := readPhrase(s[i:])
			if err != nil {
				return nil, err
			}
			out = append(out, token{kind: tokPhrase, text: text})
			i += n
		case c == '[' || c == '{':
			closer := byte(']')
			if c == '{' {
				closer = '}'
			}
			end := strings.IndexByte(s[i:], closer)
			if end < 0 {
				return nil, fmt.Errorf("unterminated range at %d", i)
			}
			out = append(out, token{kind: tokRange, text: s[i : i+end+1]})
			i += end + 1
		case c == '^':
			j := i + 1
			for j < len(s) && (s[j] == '.' || (s[j] >= '0' && s[j] <= '9')) {
				j++
			}
			out = append(out, token{kind: tokBoost, text: s[i+1 : j]})
			i = j
		default:
			word, n := readWord(s[i:])
			if n == 0 {
				return nil, fmt.Errorf("unexpected %q at %d", c, i)
			}
			i += n
			switch word {
			case "AND":
				out = append(out, token{kind: tokAnd})
			case "OR":
				out = append(out, token{kind: tokOr})
			case "NOT":
				out = append(out, token{kind: tokNot})
			default:
				out = append(out, token{kind: tokWord, text: word})
			}
		}
	}
	return append(out, token{kind: tokEOF}), nil
}

func stripLocalParams(s string) string {
	for strings.HasPrefix(s, "{!") {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return s
		}
		s = strings.TrimSpace(s[end+1:])
	}
	return s
}

func readPhrase(s string) (string, int, error) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '"':
			return b.String(), i + 1, nil
		default:
			b.WriteByte(s[i])
		}
	}
	return "", 0, fmt.Errorf("unterminated phrase")
}

// readWord reads up to the next delimiter. A backslash escapes the next byte,
// and a colon inside a word ends it unless escaped.
func readWord(s string) (string, int) {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if unicode.IsSpace(rune(c)) || strings.IndexByte(`()":^[]{}`, c) >= 0 {
			break
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), i
}

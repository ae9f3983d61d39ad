// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package catalog

import (
	"errors"
	"strings"
	"unicode"
)

// tmdbPosterBase is the CDN prefix applied to site-relative poster paths.
const tmdbPosterBase = "https://image.tmdb.org/t/p/w342"

// ParseNameList normalizes a serialized list cell (genres, production
// companies) into a flat list of names. Cells arrive either as a serialized
// Python-style literal list — plain strings or dicts carrying a "name" key —
// or as a bare comma-separated string. Literal parsing is attempted first;
// any malformed literal degrades to comma-splitting rather than failing the
// row. Blank cells yield an empty list.
func ParseNameList(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return []string{}
	}
	if strings.HasPrefix(s, "[") {
		if names, err := parseLiteralList(s); err == nil {
			return names
		}
	}
	return splitCommaList(s)
}

// splitCommaList splits on commas, trims each part and drops empties.
func splitCommaList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

var errBadLiteral = errors.New("malformed literal list")

// parseLiteralList parses a serialized literal list such as
//
//	"[{'name': 'Action', 'id': 28}, {'name': 'Drama'}]"
//	"['Action', 'Drama']"
//
// Dict elements contribute their "name" value; dicts without one are
// skipped. Any syntax the scanner does not recognize aborts the parse so
// the caller can fall back to comma-splitting.
func parseLiteralList(s string) ([]string, error) {
	p := &literalParser{s: s}
	p.skipSpace()
	if !p.consume('[') {
		return nil, errBadLiteral
	}
	names := []string{}
	p.skipSpace()
	if p.consume(']') {
		return names, nil
	}
	for {
		p.skipSpace()
		switch {
		case p.peek() == '{':
			name, ok, err := p.parseDict()
			if err != nil {
				return nil, err
			}
			if ok {
				names = append(names, name)
			}
		case p.peek() == '\'' || p.peek() == '"':
			v, err := p.parseString()
			if err != nil {
				return nil, err
			}
			names = append(names, v)
		default:
			v, err := p.parseBareToken()
			if err != nil {
				return nil, err
			}
			names = append(names, v)
		}
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if p.consume(']') {
			p.skipSpace()
			if p.i != len(p.s) {
				return nil, errBadLiteral
			}
			return names, nil
		}
		return nil, errBadLiteral
	}
}

type literalParser struct {
	s string
	i int
}

func (p *literalParser) peek() byte {
	if p.i >= len(p.s) {
		return 0
	}
	return p.s[p.i]
}

func (p *literalParser) consume(c byte) bool {
	if p.peek() == c {
		p.i++
		return true
	}
	return false
}

func (p *literalParser) skipSpace() {
	for p.i < len(p.s) && unicode.IsSpace(rune(p.s[p.i])) {
		p.i++
	}
}

// parseString reads a single- or double-quoted string with backslash escapes.
func (p *literalParser) parseString() (string, error) {
	quote := p.peek()
	if quote != '\'' && quote != '"' {
		return "", errBadLiteral
	}
	p.i++
	var b strings.Builder
	for p.i < len(p.s) {
		c := p.s[p.i]
		switch c {
		case '\\':
			if p.i+1 >= len(p.s) {
				return "", errBadLiteral
			}
			b.WriteByte(p.s[p.i+1])
			p.i += 2
		case quote:
			p.i++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.i++
		}
	}
	return "", errBadLiteral
}

// parseBareToken reads an unquoted scalar (number, True, None) up to the
// next delimiter.
func (p *literalParser) parseBareToken() (string, error) {
	start := p.i
	for p.i < len(p.s) {
		c := p.s[p.i]
		if c == ',' || c == ']' || c == '}' || c == ':' {
			break
		}
		p.i++
	}
	tok := strings.TrimSpace(p.s[start:p.i])
	if tok == "" {
		return "", errBadLiteral
	}
	return tok, nil
}

// parseDict reads a dict element and returns the value of its "name" key.
// ok is false when the dict carries no name.
func (p *literalParser) parseDict() (name string, ok bool, err error) {
	if !p.consume('{') {
		return "", false, errBadLiteral
	}
	p.skipSpace()
	if p.consume('}') {
		return "", false, nil
	}
	for {
		p.skipSpace()
		key, err := p.parseString()
		if err != nil {
			return "", false, err
		}
		p.skipSpace()
		if !p.consume(':') {
			return "", false, errBadLiteral
		}
		p.skipSpace()
		var val string
		if p.peek() == '\'' || p.peek() == '"' {
			val, err = p.parseString()
		} else {
			val, err = p.parseBareToken()
		}
		if err != nil {
			return "", false, err
		}
		if key == "name" {
			name, ok = val, true
		}
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if p.consume('}') {
			return name, ok, nil
		}
		return "", false, errBadLiteral
	}
}

// PosterURL resolves a raw poster path cell to a servable URL.
//
// Precedence: blank → nil; site-relative "/..." → TMDB CDN; absolute
// http(s) URL → unchanged; anything else → local "/static/" path with OS
// path separators normalized to forward slashes.
func PosterURL(raw string) *string {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil
	}
	var u string
	switch {
	case strings.HasPrefix(path, "/"):
		u = tmdbPosterBase + path
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		u = path
	default:
		u = "/static/" + strings.ReplaceAll(path, "\\", "/")
	}
	return &u
}

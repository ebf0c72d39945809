// Package retrieval locates a bounded context window around the first query
// keyword that occurs in a piece of content.
package retrieval

import (
	"strings"
	"unicode/utf8"
)

// DefaultRadius is the number of characters kept on each side of a match.
const DefaultRadius = 300

// Match is the position of a keyword hit, in runes of the original content.
type Match struct {
	Keyword string
	Start   int
	End     int
}

// Engine extracts keyword windows.
type Engine struct {
	radius int
}

// NewEngine returns an engine keeping radius characters around a match.
// A non-positive radius uses DefaultRadius.
func NewEngine(radius int) *Engine {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Engine{radius: radius}
}

// Radius returns the window radius in characters.
func (e *Engine) Radius() int {
	return e.radius
}

// Keywords lower-cases query and splits it on whitespace. Order and duplicates are kept.
func Keywords(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Locate finds the first keyword, in query order, that occurs in content and
// returns its lowest match position. Later keywords are never consulted once
// one has matched.
func (e *Engine) Locate(content, query string) (Match, bool) {
	keywords := Keywords(query)
	if len(keywords) == 0 || content == "" {
		return Match{}, false
	}
	lowered := strings.ToLower(content)
	for _, kw := range keywords {
		pos := strings.Index(lowered, kw)
		if pos < 0 {
			continue
		}
		start := utf8.RuneCountInString(lowered[:pos])
		return Match{
			Keyword: kw,
			Start:   start,
			End:     start + utf8.RuneCountInString(kw),
		}, true
	}
	return Match{}, false
}

// Retrieve returns the original-case window around the first matching keyword,
// or "" when no keyword of query occurs in content.
func (e *Engine) Retrieve(content, query string) string {
	m, ok := e.Locate(content, query)
	if !ok {
		return ""
	}
	runes := []rune(content)
	start := m.Start - e.radius
	if start < 0 {
		start = 0
	}
	end := m.End + e.radius
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}

// Window is shorthand for NewEngine(radius).Retrieve(content, query).
func Window(content, query string, radius int) string {
	return NewEngine(radius).Retrieve(content, query)
}

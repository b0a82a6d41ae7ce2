package view

import (
	"strings"
	"unicode"

	"github.com/rogersnm/kanban/internal/board"
	"github.com/rogersnm/kanban/internal/model"
)

type SearchResult struct {
	TaskID  string
	Bucket  string
	State   model.State
	Snippet string
}

// Search finds committed tasks whose description contains query, ignoring
// case. Tasks in buckets the viewer cannot open are skipped; a nil canOpen
// opens everything.
func Search(snap board.Snapshot, query string, canOpen func(model.Bucket) bool) []SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	allowed := func(name string) bool {
		if canOpen == nil {
			return true
		}
		for _, b := range snap.Buckets {
			if b.Name == name {
				return canOpen(b)
			}
		}
		return true
	}

	var results []SearchResult
	for _, t := range snap.Committed() {
		if !matchesQuery(q, t.Description) || !allowed(t.Bucket) {
			continue
		}
		results = append(results, SearchResult{
			TaskID:  t.ID,
			Bucket:  t.Bucket,
			State:   t.State,
			Snippet: snippet(t.Description, q),
		})
	}
	return results
}

func matchesQuery(q, text string) bool {
	return indexFold([]rune(text), []rune(q)) >= 0
}

const snippetContext = 40 // runes either side of the match

// snippet returns the text around the first case-insensitive match of query
// in body. Offsets are counted in runes so cuts never split a character.
func snippet(body, query string) string {
	text := []rune(body)
	q := []rune(query)
	idx := indexFold(text, q)
	if idx < 0 {
		return ""
	}
	start := max(idx-snippetContext, 0)
	end := min(idx+len(q)+snippetContext, len(text))
	s := string(text[start:end])
	if start > 0 {
		s = "..." + s
	}
	if end < len(text) {
		s = s + "..."
	}
	return strings.ReplaceAll(s, "\n", " ")
}

func indexFold(text, q []rune) int {
	if len(q) == 0 {
		return 0
	}
	for i := 0; i+len(q) <= len(text); i++ {
		found := true
		for j, r := range q {
			if !equalFoldRune(text[i+j], r) {
				found = false
				break
			}
		}
		if found {
			return i
		}
	}
	return -1
}

func equalFoldRune(a, b rune) bool {
	if a == b {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}

// Package obfuscate masks task text for viewers that have not authenticated
// against a protected bucket. Masking is length preserving and never touches
// identity or structural fields.
package obfuscate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rogersnm/kanban/internal/model"
)

const DefaultPlaceholderCount = 3

var wordRe = regexp.MustCompile(`\b\w+\b`)

var placeholderPool = []string{
	"T*** i* p*****s",
	"A****** t**k f** t*** b****t",
	"S*****g i*****t f** t*** a**a",
	"R***w a** u***e c****t",
	"I*****t n*w f*****e",
}

// Text keeps the first and last character of each word and stars the rest.
// Words of one or two characters are starred entirely.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return wordRe.ReplaceAllStringFunc(s, func(w string) string {
		if len(w) <= 2 {
			return strings.Repeat("*", len(w))
		}
		return w[:1] + strings.Repeat("*", len(w)-2) + w[len(w)-1:]
	})
}

func Task(t model.Task) model.Task {
	c := t.Clone()
	c.Description = Text(t.Description)
	return c
}

func Tasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i := range tasks {
		out[i] = Task(tasks[i])
	}
	return out
}

// Placeholders returns count synthetic tasks to show in place of a protected
// bucket's content.
func Placeholders(bucket string, count int) []model.Task {
	now := time.Now().UTC()
	out := make([]model.Task, 0, max(count, 0))
	for i := 0; i < count; i++ {
		out = append(out, model.Task{
			ID:          fmt.Sprintf("placeholder-%s-%d", bucket, i),
			Description: placeholderPool[i%len(placeholderPool)],
			Bucket:      bucket,
			Order:       1000 + float64(i)*100,
			CreatedAt:   now,
			UpdatedAt:   now,
			State:       model.StateTodo,
		})
	}
	return out
}

// Package markdown renders board data for the terminal and encodes tasks as
// frontmatter documents.
package markdown

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// Parse decodes the YAML frontmatter of r into T and returns the body. The
// separator line and final newline that Marshal adds are stripped, so task
// descriptions keep their own leading and trailing whitespace.
func Parse[T any](r io.Reader) (T, string, error) {
	var meta T
	rest, err := frontmatter.Parse(r, &meta)
	if err != nil {
		return meta, "", fmt.Errorf("parsing frontmatter: %w", err)
	}
	body := strings.TrimPrefix(string(rest), "\n")
	return meta, strings.TrimSuffix(body, "\n"), nil
}

// Marshal writes meta as YAML frontmatter. A non-empty body follows after a
// blank line and always ends with one extra newline.
func Marshal[T any](meta T, body string) ([]byte, error) {
	head, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

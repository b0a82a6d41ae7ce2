package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

func editorCmd() []string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if f := strings.Fields(os.Getenv(env)); len(f) > 0 {
			return f
		}
	}
	return []string{"vi"}
}

func Open(filepath string) error {
	args := editorCmd()
	cmd := exec.Command(args[0], append(args[1:], filepath)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %q: %w", args[0], err)
	}
	return nil
}

// Edit opens initial in the user's editor and returns the saved text with
// surrounding whitespace trimmed.
func Edit(initial string) (string, error) {
	f, err := os.CreateTemp("", "kanban-task-*.md")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(initial); err != nil {
		f.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := Open(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading edited file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

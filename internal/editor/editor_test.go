package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEditor(t *testing.T, script string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-editor")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755))
	t.Setenv("EDITOR", path)
}

func TestEditorCmd_Default(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")
	assert.Equal(t, []string{"vi"}, editorCmd())
}

func TestEditorCmd_WithArgs(t *testing.T) {
	t.Setenv("EDITOR", "code --wait")
	assert.Equal(t, []string{"code", "--wait"}, editorCmd())
}

func TestEdit_ReturnsSavedText(t *testing.T) {
	fakeEditor(t, `printf '  rewritten task\n\n' > "$1"`)

	got, err := Edit("original")
	require.NoError(t, err)
	assert.Equal(t, "rewritten task", got)
}

func TestEdit_SeesInitialText(t *testing.T) {
	fakeEditor(t, `tr a-z A-Z < "$1" > "$1.up" && mv "$1.up" "$1"`)

	got, err := Edit("buy milk")
	require.NoError(t, err)
	assert.Equal(t, "BUY MILK", got)
}

func TestEdit_EditorFails(t *testing.T) {
	fakeEditor(t, "exit 3")

	_, err := Edit("x")
	assert.Error(t, err)
}

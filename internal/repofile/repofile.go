// Package repofile links a directory tree to a bucket through a
// .kanban-bucket file holding the bucket address.
package repofile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rogersnm/kanban/internal/route"
)

const FileName = ".kanban-bucket"

// Find walks up from startDir looking for a .kanban-bucket file.
// Returns the address and the directory containing the file, or a zero
// address and "" when no directory links a bucket.
func Find(startDir string) (addr route.Address, dir string, err error) {
	dir = startDir
	for {
		addr, ok, err := Read(dir)
		if err != nil {
			return route.Address{}, "", err
		}
		if ok {
			return addr, dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return route.Address{}, "", nil
		}
		dir = parent
	}
}

// Write links dir to addr.
func Write(dir string, addr route.Address) error {
	return os.WriteFile(filepath.Join(dir, FileName), []byte(addr.String()+"\n"), 0644)
}

// Read parses the .kanban-bucket file in dir. ok is false if the file does
// not exist.
func Read(dir string) (addr route.Address, ok bool, err error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return route.Address{}, false, nil
		}
		return route.Address{}, false, err
	}
	addr, err = route.Parse(strings.TrimSpace(string(data)))
	if err != nil {
		return route.Address{}, false, fmt.Errorf("%s: %w", path, err)
	}
	return addr, true, nil
}

package miner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"
)

// LoadOrCreateID reads the miner id from path. When the file does not exist a
// fresh id is written to it; created reports that case.
func LoadOrCreateID(path string) (id string, created bool, err error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		id = strings.TrimSpace(string(data))
		if id == "" {
			return "", false, fmt.Errorf("id file %s is empty", path)
		}
		return id, false, nil
	case errors.Is(err, fs.ErrNotExist):
		id = uuid.New().String()
		if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
			return "", false, fmt.Errorf("save id to %s: %w", path, err)
		}
		return id, true, nil
	default:
		return "", false, fmt.Errorf("read id file %s: %w", path, err)
	}
}

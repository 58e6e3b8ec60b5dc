package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

/*
LoadItemSpecs loads work-item descriptors from a JSON file. It supports:

 1. Object form (preferred):
    { "items": [ {"id": "...", "title": "...", ...}, ... ] }

 2. Bare array:
    [ {"id": "...", ...}, ... ]
*/
func LoadItemSpecs(path string) ([]ItemSpec, error) {
	clean := filepath.Clean(path)
	if _, err := os.Stat(clean); err != nil {
		return nil, fmt.Errorf("items file not found: %s", clean)
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", clean, err)
	}

	var obj struct {
		Items []ItemSpec `json:"items"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && len(obj.Items) > 0 {
		return obj.Items, validateSpecs(obj.Items)
	}

	var arr []ItemSpec
	if err := json.Unmarshal(data, &arr); err == nil && len(arr) > 0 {
		return arr, validateSpecs(arr)
	}

	return nil, fmt.Errorf("unrecognized items format in %s", clean)
}

// validateSpecs rejects blank ids, duplicates, and references to undeclared
// items before any graph is built, so file problems surface with the
// offending ids named.
func validateSpecs(specs []ItemSpec) error {
	seen := make(map[string]struct{}, len(specs))
	for i, s := range specs {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return fmt.Errorf("item #%d has no id", i+1)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("item '%s': %w", id, ErrDuplicateItem)
		}
		seen[id] = struct{}{}
	}
	for _, s := range specs {
		for _, dep := range s.DependsOn {
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("item '%s' depends on '%s': %w", s.ID, dep, ErrUnknownItem)
			}
		}
	}
	return nil
}

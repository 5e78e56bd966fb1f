// Package shared provides common utility functions used across multiple
// packages in the multiparty-params codebase.
package shared

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Role-wide override keys. Both address every party of a role.
const (
	RoleWideCommon = "common"
	RoleWideAll    = "all"
)

// IsRoleWideKey reports whether an override index key targets the whole
// role rather than specific party indexes.
func IsRoleWideKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case RoleWideCommon, RoleWideAll:
		return true
	default:
		return false
	}
}

// ParseIndexSelector parses a party index key such as "0" or "0|2" into
// sorted, de-duplicated indexes.
func ParseIndexSelector(key string) ([]int, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return nil, fmt.Errorf("empty party index key")
	}
	seen := map[int]struct{}{}
	var indexes []int
	for _, part := range strings.Split(trimmed, "|") {
		value := strings.TrimSpace(part)
		index, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("party index %q is not an integer", value)
		}
		if index < 0 {
			return nil, fmt.Errorf("party index %d is negative", index)
		}
		if _, dup := seen[index]; dup {
			continue
		}
		seen[index] = struct{}{}
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	return indexes, nil
}

// NormalizeComponentType folds a component type name into its lookup key:
// lower case with separators removed, so "HeteroLR", "hetero_lr" and
// "Hetero-LR" all name the same type.
func NormalizeComponentType(value string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	return strings.NewReplacer("_", "", "-", "").Replace(lower)
}

// InferComponentType derives a component type from an instance name by
// stripping a trailing "_<digits>" suffix: "reader_0" becomes "reader".
func InferComponentType(name string) string {
	trimmed := strings.TrimSpace(name)
	cut := strings.LastIndex(trimmed, "_")
	if cut <= 0 || cut == len(trimmed)-1 {
		return trimmed
	}
	if _, err := strconv.Atoi(trimmed[cut+1:]); err != nil {
		return trimmed
	}
	return trimmed[:cut]
}

// JoinPath appends a key to a dotted field path.
func JoinPath(parent string, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// IndexPath appends an array index to a dotted field path.
func IndexPath(parent string, index int) string {
	return fmt.Sprintf("%s[%d]", parent, index)
}

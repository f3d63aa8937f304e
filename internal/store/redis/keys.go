package redis

import (
	"fmt"
	"strconv"
)

const (
	// KeyOperators is the set of allowed operator IDs.
	KeyOperators = "keeper:operators"
	// KeyPrefixFolders is the prefix for per-operator folder documents.
	KeyPrefixFolders = "keeper:folders:"
)

// OperatorsKey returns the key for the allow-set.
func OperatorsKey() string {
	return KeyOperators
}

// FoldersKey returns the key for an operator's folder labels.
func FoldersKey(operator int64) string {
	return KeyPrefixFolders + strconv.FormatInt(operator, 10)
}

// ExtractOperatorID extracts the operator ID from a folders key.
func ExtractOperatorID(key string) (int64, error) {
	if len(key) <= len(KeyPrefixFolders) {
		return 0, fmt.Errorf("invalid folders key: %s", key)
	}
	id, err := strconv.ParseInt(key[len(KeyPrefixFolders):], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid operator id in key %s: %w", key, err)
	}
	return id, nil
}

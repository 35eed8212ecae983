package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	ParamsHash Hash
	PackHash   Hash
)

// Constructors
func NewParamsHash(data []byte) ParamsHash { return ParamsHash(NewHash(data)) }
func NewPackHash(data []byte) PackHash     { return PackHash(NewHash(data)) }

// String conversions
func (h ParamsHash) String() string { return Hash(h).String() }
func (h PackHash) String() string   { return Hash(h).String() }

// ComputeFieldsHash hashes a set of named values in key order so the result is
// stable no matter how the map was built.
func ComputeFieldsHash(fields map[string]interface{}) Hash {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("%v", fields[key]))
	}

	return NewHash([]byte(data.String()))
}

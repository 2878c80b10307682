// Package repository holds the storage-level error kinds shared by the
// postgres and sqlite store implementations.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// LikePattern escapes LIKE wildcards in q and wraps it for a substring match
// using '\' as the escape character.
func LikePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

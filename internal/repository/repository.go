// Package repository declares the data access interfaces. Implementations live
// in the mongodb and postgres subpackages.
package repository

import "errors"

// ErrNotFound is returned when a record does not exist. Ids that are malformed
// for the backing store are reported the same way.
var ErrNotFound = errors.New("record not found")

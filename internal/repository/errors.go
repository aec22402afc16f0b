// Package repository implements data access for the marketplace: the
// local persistent store (users, vehicles, temporary vehicles and
// transactions as whole JSON collections over a key-value backend)
// and the remote relational store used by messaging. Sentinel errors
// defined here let the service layer distinguish failure scenarios
// without inspecting error strings.
package repository

import "errors"

// ErrNotFound is returned when an entity id does not resolve in its
// collection or table.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")

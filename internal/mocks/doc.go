// Package mocks provides centralized mock implementations for testing.
//
// Each mock mirrors an interface used in the application: function fields
// override individual methods, and an in-memory default implementation
// backs the methods that are not overridden. Tests that only need simple
// behavior rely on the defaults; tests that need failure injection set
// the function fields.
package mocks

// Package errors provides the classified error primitives used across apiref.
//
// Errors carry a category (config, validation, filesystem, git, render, ...),
// a severity and a retry strategy, plus free-form context. A fluent builder keeps
// construction uniform, and the CLI and HTTP adapters turn a classified error
// into an exit code or a JSON response.
//
// Example usage:
//
//	err := errors.WrapError(readErr, errors.CategoryFileSystem, "failed to read document").
//		WithContext("path", path).
//		Build()
package errors

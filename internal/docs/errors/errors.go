// Package errors provides sentinel errors for document discovery.
package errors

import "errors"

var (
	// ErrDocsPathNotFound indicates the configured source directory does not exist.
	ErrDocsPathNotFound = errors.New("documentation path not found")

	// ErrDocsDirWalkFailed indicates filesystem traversal of the source directory failed.
	ErrDocsDirWalkFailed = errors.New("documentation directory walk failed")

	// ErrInvalidRelativePath indicates calculating a path relative to the source root failed.
	ErrInvalidRelativePath = errors.New("invalid relative path calculation")

	// ErrNoDocsFound indicates discovery found no documents at all.
	ErrNoDocsFound = errors.New("no documentation files found")
)

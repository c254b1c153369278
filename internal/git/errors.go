package git

import (
	stderrors "errors"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/apiref/internal/foundation/errors"
)

// ClassifyGitError translates go-git errors into ClassifiedErrors.
func ClassifyGitError(err error, op, url string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	category := errors.CategoryGit
	retryable := false
	l := strings.ToLower(err.Error())
	switch {
	case stderrors.Is(err, transport.ErrAuthenticationRequired), stderrors.Is(err, transport.ErrAuthorizationFailed),
		strings.Contains(l, "authentication"), strings.Contains(l, "not authorized"):
		category = errors.CategoryConfig
	case stderrors.Is(err, transport.ErrRepositoryNotFound), strings.Contains(l, "repository not found"),
		strings.Contains(l, "couldn't find remote ref"):
		category = errors.CategoryNotFound
	case strings.Contains(l, "unsupported protocol"), strings.Contains(l, "unsupported scheme"):
		category = errors.CategoryConfig
	case strings.Contains(l, "remote hung up"), strings.Contains(l, "connection reset"), strings.Contains(l, "timeout"),
		strings.Contains(l, "connection refused"), strings.Contains(l, "no route to host"), strings.Contains(l, "too many requests"):
		category = errors.CategoryNetwork
		retryable = true
	}

	builder := errors.WrapError(err, category, "git "+op+" failed").
		WithContext("op", op).
		WithContext("url", url)
	if retryable {
		builder = builder.Retryable()
	}
	return builder.Build()
}

// isPermanent reports whether retrying err cannot help.
func isPermanent(err error) bool {
	if ce, ok := errors.AsClassified(err); ok {
		return !ce.CanRetry()
	}
	return false
}

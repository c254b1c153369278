// Package git keeps a local clone of the repository that holds the reference
// documents.
//
// The first Sync clones the configured branch into the workspace; later calls
// fetch and hard-reset the worktree to the remote branch head so a shallow
// clone never needs a merge. Transient network failures are retried with the
// retry package's backoff policy.
package git

package logsession

import "errors"

var (
	// ErrSubmissionNotFound means the dispatcher does not know the submission.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrSubmissionStillQueued means the driver has not started and the
	// session was not asked to wait for it.
	ErrSubmissionStillQueued = errors.New("submission still queued")
)

// Package photosync runs the batches of face photo requests issued when a
// person is created or edited.
//
// A Batch moves Idle → Submitting → Complete or PartiallyFailed. A
// PartiallyFailed batch can be submitted again; the caller passes only the
// tasks that have not settled yet. Every task of a submission runs
// concurrently (bounded by the batch limit) and its outcome is reported to
// the Sink keyed by the task's identity, so completion order never
// matters.
//
// Failures are classified per item:
//
//	401 on any request          authorization lost
//	400 on an upload            face not recognized in photo
//	anything else               unknown error
//
// The first 401 of a submission is reported to Sink.AuthLost exactly once;
// every failure after it is reported as authorization lost.
package photosync

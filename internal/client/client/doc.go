// Package client contains the console's transport and local storage
// bootstrap.
//
// # Overview
//
// The package provides:
//  1. The SKUD REST API contract used by the stores (see the Client
//     interface): login, users, persons and their faces, photos, events
//     and passage names.
//  2. A JSON/HTTP implementation (see HTTPClient) that attaches the session
//     token from a TokenSource and maps response statuses to errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Any status >= 400 is returned as *StatusError. A 401 matches
// ErrUnauthorized and a 404 matches common.ErrorNotFound with errors.Is.
// Transport failures wrap ErrUnavailable and undecodable bodies wrap
// ErrInvalidResponse.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use; photo batches call it from many
// goroutines at once. All operations honor context cancellation.
package client

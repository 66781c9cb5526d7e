// Package service implements the application's use cases for authors, books
// and comments. Services validate input against the domain rules, check
// references, and group every multi-statement write in a single transaction
// through store.RunInTransaction.
package service

// Package store defines the persistence interfaces for authors, books and
// comments, the errors their implementations return, and the transaction
// helper the service layer uses to group writes.
package store

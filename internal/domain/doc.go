// Package domain contains the core business entities, value objects, and
// domain logic of the application: authors, books, the ordered links between
// them, comments, and the validation rules every entity must satisfy. It is
// independent of any specific infrastructure or delivery mechanism.
package domain

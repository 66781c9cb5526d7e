package domain

import "time"

// BookPatch is the patch-target projection of a Book: the only fields a
// client may change through a partial update. Authors, comments and the id
// are deliberately absent.
type BookPatch struct {
	Title           string     `json:"title"`
	PublicationDate *time.Time `json:"publication_date"`
}

// NewBookPatch copies the patchable fields of b into a new projection. The
// date is expressed in UTC so a "test" operation compares instants, not
// zone offsets.
func NewBookPatch(b *Book) BookPatch {
	p := BookPatch{Title: b.Title}
	if b.PublicationDate != nil {
		d := b.PublicationDate.UTC()
		p.PublicationDate = &d
	}
	return p
}

// Validate runs the full book rule set against the projection, including
// fields the patch did not touch.
func (p BookPatch) Validate() error {
	return Check("book", titleRules(p.Title))
}

// ApplyTo copies the patchable fields back onto b, leaving everything else
// (id, authors, comments) untouched.
func (p BookPatch) ApplyTo(b *Book) {
	b.Title = p.Title
	b.PublicationDate = nil
	if p.PublicationDate != nil {
		d := *p.PublicationDate
		b.PublicationDate = &d
	}
}

package domain

// AuthorNameMaxLength is the maximum number of characters in an author name.
const AuthorNameMaxLength = 120

// Author is a person who wrote one or more books. Authors are shared
// reference targets: deleting one removes its book links but never the books.
type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	// Books holds the links to the books this author appears in.
	// It is only populated when the author is loaded with its books.
	Books []AuthorBook `json:"books,omitempty"`
}

// NewAuthor creates a new Author with the given name.
// Returns a *ValidationErrors if the name breaks any rule.
func NewAuthor(name string) (*Author, error) {
	author := &Author{Name: name}
	if err := author.Validate(); err != nil {
		return nil, err
	}
	return author, nil
}

// Validate checks the author against the full rule set.
func (a *Author) Validate() error {
	return Check("author", FieldRules{
		Field: "name",
		Value: a.Name,
		Rules: []Rule{Required(), MaxLength(AuthorNameMaxLength), FirstUpper()},
	})
}

// BookIDs returns the ids of the linked books.
func (a *Author) BookIDs() []int64 {
	ids := make([]int64, 0, len(a.Books))
	for _, link := range a.Books {
		ids = append(ids, link.BookID)
	}
	return ids
}

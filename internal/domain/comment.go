package domain

// CommentContentMaxLength is the maximum number of characters in a comment.
const CommentContentMaxLength = 1000

// Comment is a free-text remark left on a book.
type Comment struct {
	ID      int64  `json:"id"`
	BookID  int64  `json:"book_id"`
	Content string `json:"content"`
}

// NewComment creates a comment on the book with the given id.
func NewComment(bookID int64, content string) (*Comment, error) {
	c := &Comment{BookID: bookID, Content: content}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the comment against its rule set.
func (c *Comment) Validate() error {
	return Check("comment", FieldRules{
		Field: "content",
		Value: c.Content,
		Rules: []Rule{Required(), MaxLength(CommentContentMaxLength)},
	})
}

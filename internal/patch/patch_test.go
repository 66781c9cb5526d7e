package patch

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type release struct {
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`
	PublishedAt *time.Time `json:"published_at"`
}

func newRelease() release {
	d := time.Date(1965, time.August, 1, 0, 0, 0, 0, time.UTC)
	return release{Title: "Dune", PublishedAt: &d}
}

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		document string
		check    func(t *testing.T, r release)
	}{
		{
			name:     "replace title",
			document: `[{"op":"replace","path":"/title","value":"Dune Messiah"}]`,
			check: func(t *testing.T, r release) {
				assert.Equal(t, "Dune Messiah", r.Title)
				require.NotNil(t, r.PublishedAt)
				assert.Equal(t, 1965, r.PublishedAt.Year())
			},
		},
		{
			name:     "remove nullable field",
			document: `[{"op":"remove","path":"/published_at"}]`,
			check: func(t *testing.T, r release) {
				assert.Nil(t, r.PublishedAt)
				assert.Equal(t, "Dune", r.Title)
			},
		},
		{
			name:     "add date",
			document: `[{"op":"add","path":"/published_at","value":"1969-10-15T00:00:00Z"}]`,
			check: func(t *testing.T, r release) {
				require.NotNil(t, r.PublishedAt)
				assert.Equal(t, time.Date(1969, time.October, 15, 0, 0, 0, 0, time.UTC), r.PublishedAt.UTC())
			},
		},
		{
			name:     "copy between fields",
			document: `[{"op":"copy","from":"/title","path":"/subtitle"}]`,
			check: func(t *testing.T, r release) {
				assert.Equal(t, "Dune", r.Subtitle)
			},
		},
		{
			name:     "no operations",
			document: `[]`,
			check: func(t *testing.T, r release) {
				assert.Equal(t, newRelease(), r)
			},
		},
		{
			name: "passing test then replace",
			document: `[
				{"op":"test","path":"/title","value":"Dune"},
				{"op":"replace","path":"/subtitle","value":"Book One"}
			]`,
			check: func(t *testing.T, r release) {
				assert.Equal(t, "Book One", r.Subtitle)
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := newRelease()
			require.NoError(t, Apply([]byte(tc.document), &r))
			tc.check(t, r)
		})
	}
}

func TestApplyRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		document string
		want     []OperationError
	}{
		{
			name:     "empty body",
			document: ``,
			want:     []OperationError{{Index: -1, Message: "patch document is empty"}},
		},
		{
			name:     "not an array",
			document: `{"op":"replace","path":"/title","value":"X"}`,
			want:     []OperationError{{Index: -1, Message: "patch document must be a JSON array of operations"}},
		},
		{
			name:     "null document",
			document: `null`,
			want:     []OperationError{{Index: -1, Message: "patch document is null"}},
		},
		{
			name:     "unknown path",
			document: `[{"op":"replace","path":"/authors","value":[1]}]`,
			want:     []OperationError{{Index: 0, Op: "replace", Path: "/authors", Message: `unknown path "/authors"`}},
		},
		{
			name: "every precheck failure is reported",
			document: `[
				{"op":"frobnicate","path":"/title"},
				{"op":"replace","path":"/title","value":"Fine"},
				{"op":"replace","path":"/isbn","value":"x"},
				{"op":"add","path":"/subtitle"}
			]`,
			want: []OperationError{
				{Index: 0, Op: "frobnicate", Path: "/title", Message: `unsupported operation "frobnicate"`},
				{Index: 2, Op: "replace", Path: "/isbn", Message: `unknown path "/isbn"`},
				{Index: 3, Op: "add", Path: "/subtitle", Message: "value is required"},
			},
		},
		{
			name:     "missing path",
			document: `[{"op":"remove"}]`,
			want:     []OperationError{{Index: 0, Op: "remove", Message: "path is required"}},
		},
		{
			name:     "whole document replace",
			document: `[{"op":"replace","path":"","value":{}}]`,
			want:     []OperationError{{Index: 0, Op: "replace", Message: "replacing the whole resource is not supported"}},
		},
		{
			name:     "move from unknown field",
			document: `[{"op":"move","from":"/isbn","path":"/title"}]`,
			want:     []OperationError{{Index: 0, Op: "move", Path: "/title", Message: `from: unknown path "/isbn"`}},
		},
		{
			name: "failed test",
			document: `[
				{"op":"replace","path":"/subtitle","value":"x"},
				{"op":"test","path":"/title","value":"Children of Dune"}
			]`,
			want: []OperationError{{Index: 1, Op: "test", Path: "/title", Message: "test failed"}},
		},
		{
			name:     "wrong value type",
			document: `[{"op":"replace","path":"/title","value":42}]`,
			want:     []OperationError{{Index: 0, Op: "replace", Path: "/title", Message: "value of title has the wrong type"}},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := newRelease()
			original := newRelease()

			err := Apply([]byte(tc.document), &r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDocument))

			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.want, perr.Operations)
			assert.Equal(t, original, r, "target must be unchanged on failure")
		})
	}
}

func TestApplyTargetMustBeStructPointer(t *testing.T) {
	t.Parallel()

	doc := []byte(`[{"op":"replace","path":"/title","value":"X"}]`)

	err := Apply(doc, release{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidDocument))

	var nilTarget *release
	assert.Error(t, Apply(doc, nilTarget))

	s := "x"
	assert.Error(t, Apply(doc, &s))
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := &Error{Operations: []OperationError{
		{Index: -1, Message: "patch document is empty"},
		{Index: 2, Op: "replace", Path: "/title", Message: "test failed"},
	}}
	assert.Equal(t,
		"invalid patch document: patch document is empty; operation 2 (replace /title): test failed",
		err.Error())
}

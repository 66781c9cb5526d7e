// Package patch applies RFC 6902 JSON Patch documents to Go structs.
//
// The target struct is serialised to JSON, every operation is checked against
// the fields that serialisation exposes, the operations are applied one at a
// time, and the result is decoded back into a fresh value of the target type.
// Failures are reported per operation so a client can fix a document in one
// round trip.
package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ErrInvalidDocument is wrapped by every *Error returned from Apply.
var ErrInvalidDocument = errors.New("invalid patch document")

var supportedOps = map[string]bool{
	"add":     true,
	"remove":  true,
	"replace": true,
	"move":    true,
	"copy":    true,
	"test":    true,
}

// OperationError describes why one operation of a document was rejected.
// Index is -1 when the failure concerns the document as a whole.
type OperationError struct {
	Index   int    `json:"index"`
	Op      string `json:"op,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Error is returned when a document is malformed or cannot be applied.
type Error struct {
	Operations []OperationError
}

// Error implements the error interface.
func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Operations))
	for _, op := range e.Operations {
		if op.Index < 0 {
			msgs = append(msgs, op.Message)
			continue
		}
		msgs = append(msgs, fmt.Sprintf("operation %d (%s %s): %s", op.Index, op.Op, op.Path, op.Message))
	}
	return "invalid patch document: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidDocument to support errors.Is.
func (e *Error) Unwrap() error {
	return ErrInvalidDocument
}

func documentError(msg string) *Error {
	return &Error{Operations: []OperationError{{Index: -1, Message: msg}}}
}

type rawOperation struct {
	Op    string          `json:"op"`
	Path  *string         `json:"path"`
	From  *string         `json:"from"`
	Value json.RawMessage `json:"value"`
}

// Apply applies document to target, which must be a non-nil pointer to a
// struct. On success target holds the patched value; on failure it is left
// unchanged and the returned error is an *Error.
func Apply(document []byte, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("patch target must be a non-nil pointer to a struct, got %T", target)
	}

	if len(bytes.TrimSpace(document)) == 0 {
		return documentError("patch document is empty")
	}

	var ops []rawOperation
	if err := json.Unmarshal(document, &ops); err != nil {
		return documentError("patch document must be a JSON array of operations")
	}
	if ops == nil {
		return documentError("patch document is null")
	}

	doc, err := json.Marshal(target)
	if err != nil {
		return fmt.Errorf("failed to encode patch target: %w", err)
	}
	fields, err := topLevelFields(doc)
	if err != nil {
		return fmt.Errorf("failed to inspect patch target: %w", err)
	}

	if errs := precheck(ops, fields); len(errs) > 0 {
		return &Error{Operations: errs}
	}

	decoded, err := jsonpatch.DecodePatch(document)
	if err != nil {
		return documentError(err.Error())
	}

	for i, op := range decoded {
		next, err := jsonpatch.Patch{op}.Apply(doc)
		if err != nil {
			return &Error{Operations: []OperationError{{
				Index:   i,
				Op:      ops[i].Op,
				Path:    deref(ops[i].Path),
				Message: applyMessage(err),
			}}}
		}
		doc = next
	}

	fresh := reflect.New(rv.Elem().Type())
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(fresh.Interface()); err != nil {
		return decodeError(err, ops)
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}

func topLevelFields(doc []byte) (map[string]bool, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(doc, &obj); err != nil {
		return nil, err
	}
	fields := make(map[string]bool, len(obj))
	for k := range obj {
		fields[k] = true
	}
	return fields, nil
}

// precheck validates every operation up front and returns all failures.
// An empty document passes and leaves the target unchanged.
func precheck(ops []rawOperation, fields map[string]bool) []OperationError {
	var errs []OperationError
	for i, op := range ops {
		fail := func(msg string) {
			errs = append(errs, OperationError{Index: i, Op: op.Op, Path: deref(op.Path), Message: msg})
		}

		if !supportedOps[op.Op] {
			fail(fmt.Sprintf("unsupported operation %q", op.Op))
			continue
		}
		if op.Path == nil {
			fail("path is required")
			continue
		}
		if msg := checkPointer(*op.Path, fields); msg != "" {
			fail(msg)
		}

		switch op.Op {
		case "add", "replace", "test":
			if op.Value == nil {
				fail("value is required")
			}
		case "move", "copy":
			if op.From == nil {
				fail("from is required")
			} else if msg := checkPointer(*op.From, fields); msg != "" {
				fail("from: " + msg)
			}
		}
	}
	return errs
}

// checkPointer returns a non-empty message when pointer does not address a
// known field of the target.
func checkPointer(pointer string, fields map[string]bool) string {
	if pointer == "" {
		return "replacing the whole resource is not supported"
	}
	if !strings.HasPrefix(pointer, "/") {
		return fmt.Sprintf("invalid JSON pointer %q", pointer)
	}
	head, _, _ := strings.Cut(pointer[1:], "/")
	name := strings.NewReplacer("~1", "/", "~0", "~").Replace(head)
	if !fields[name] {
		return fmt.Sprintf("unknown path %q", pointer)
	}
	return ""
}

func applyMessage(err error) string {
	switch {
	case errors.Is(err, jsonpatch.ErrTestFailed):
		return "test failed"
	case errors.Is(err, jsonpatch.ErrMissing):
		return "path does not exist"
	case errors.Is(err, jsonpatch.ErrInvalidIndex):
		return "array index out of range"
	default:
		return err.Error()
	}
}

func decodeError(err error, ops []rawOperation) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field, _, _ := strings.Cut(typeErr.Field, ".")
		path := "/" + field
		oe := OperationError{Index: -1, Path: path, Message: fmt.Sprintf("value of %s has the wrong type", field)}
		for i := len(ops) - 1; i >= 0; i-- {
			if deref(ops[i].Path) == path {
				oe.Index, oe.Op = i, ops[i].Op
				break
			}
		}
		return &Error{Operations: []OperationError{oe}}
	}
	return documentError("patched document is not valid: " + err.Error())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

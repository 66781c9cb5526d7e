package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/authors-api/internal/domain"
)

// MaxRequestBodyBytes bounds the size of any decoded request body.
const MaxRequestBodyBytes = 1 << 20

// ErrEmptyBody is returned by DecodeJSON and ReadBody when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// Global validator instance for reuse
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := domain.RegisterRules(v); err != nil {
		// ALLOW-PANIC: the tag set is static, a failure here is a programming error
		panic(fmt.Sprintf("failed to register validation rules: %v", err))
	}
	return v
}

// DecodeJSON decodes the request body into v. Unknown fields and trailing
// data after the JSON value are rejected.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

// ReadBody reads the raw request body, up to MaxRequestBodyBytes.
func ReadBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, ErrEmptyBody
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}
	return body, nil
}

// ValidateRequest validates the given struct using the validator package.
// Every failing field is reported in a *domain.ValidationErrors.
func ValidateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &domain.ValidationErrors{Entity: "request"}
	for _, fe := range verrs {
		field := fieldPath(fe)
		out.Add(field, fe.Tag(), tagMessage(field, fe))
	}
	return out.OrNil()
}

// fieldPath drops the struct name from the namespace: "BookRequest.author_ids[0]"
// becomes "author_ids[0]".
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func tagMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not be longer than %s characters", field, fe.Param())
	case domain.FirstUpperTag:
		return field + ": the first letter must be uppercase"
	default:
		return field + " is invalid"
	}
}

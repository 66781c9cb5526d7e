package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// FirstUpperTag is the validator tag for the "first letter uppercase" rule.
const FirstUpperTag = "firstupper"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterRules(v); err != nil {
		// ALLOW-PANIC: the tag set is static, a failure here is a programming error
		panic(fmt.Sprintf("failed to register validation rules: %v", err))
	}
	return v
}

// RegisterRules registers the custom tags used by entity rules on v, so
// request structs validated elsewhere can use the same tags.
func RegisterRules(v *validator.Validate) error {
	return v.RegisterValidation(FirstUpperTag, func(fl validator.FieldLevel) bool {
		return FirstLetterUppercase(fl.Field().String())
	})
}

// FirstLetterUppercase reports whether the first character of s equals its
// own uppercase form. Empty strings pass: required-ness is a separate rule.
func FirstLetterUppercase(s string) bool {
	if s == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r == unicode.ToUpper(r)
}

// Rule is one validation rule: a validator tag and the message template used
// when it fails. {field} and {param} are substituted in the template.
type Rule struct {
	Tag     string
	Message string
}

// Required fails on empty values.
func Required() Rule {
	return Rule{Tag: "required", Message: "{field} is required"}
}

// MaxLength fails when a string is longer than n characters.
func MaxLength(n int) Rule {
	return Rule{
		Tag:     fmt.Sprintf("max=%d", n),
		Message: "{field} must not be longer than {param} characters",
	}
}

// FirstUpper fails when the first letter of a non-empty string is not uppercase.
func FirstUpper() Rule {
	return Rule{Tag: FirstUpperTag, Message: "{field}: the first letter must be uppercase"}
}

// Name returns the rule name without its parameter.
func (r Rule) Name() string {
	name, _, _ := strings.Cut(r.Tag, "=")
	return name
}

func (r Rule) message(field string) string {
	_, param, _ := strings.Cut(r.Tag, "=")
	return strings.NewReplacer("{field}", field, "{param}", param).Replace(r.Message)
}

// FieldRules binds a field value to the ordered rules it must satisfy.
type FieldRules struct {
	Field string
	Value any
	Rules []Rule
}

// Check evaluates every rule of every field and returns a *ValidationErrors
// listing all failures, or nil when everything passes.
func Check(entity string, fields ...FieldRules) error {
	errs := &ValidationErrors{Entity: entity}
	for _, f := range fields {
		for _, rule := range f.Rules {
			err := validate.Var(f.Value, rule.Tag)
			if err == nil {
				continue
			}
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				errs.Add(f.Field, rule.Name(), fmt.Sprintf("%s: %v", f.Field, err))
				continue
			}
			errs.Add(f.Field, rule.Name(), rule.message(f.Field))
		}
	}
	return errs.OrNil()
}

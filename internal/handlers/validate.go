package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// rule is one declarative field constraint. Rule sets run at handler
// entry; any violation short-circuits the request with a 400 and the
// collected field errors, so handler logic never sees invalid input.
type rule struct {
	field    string
	required bool
	min, max int // rune counts; 0 means unbounded
	email    bool
	message  string
}

// Rule sets mirror the limits the client was built against.
var (
	postRules = []rule{
		{field: "title", required: true, min: 1, max: 100, message: "Title must be between 1 and 100 characters"},
		{field: "content", required: true, message: "Content is required"},
		{field: "category", required: true, message: "Valid category ID is required"},
	}

	categoryRules = []rule{
		{field: "name", required: true, min: 1, max: 50, message: "Category name must be between 1 and 50 characters"},
		{field: "description", max: 200, message: "Description cannot exceed 200 characters"},
	}

	registerRules = []rule{
		{field: "name", required: true, min: 1, max: 50, message: "Name must be between 1 and 50 characters"},
		{field: "email", required: true, email: true, message: "Please provide a valid email"},
		{field: "password", required: true, min: 6, message: "Password must be at least 6 characters"},
	}

	loginRules = []rule{
		{field: "email", required: true, email: true, message: "Please provide a valid email"},
		{field: "password", required: true, message: "Password is required"},
	}

	profileRules = []rule{
		{field: "name", required: true, min: 1, max: 50, message: "Name must be between 1 and 50 characters"},
	}
)

// checkRules evaluates a rule set against trimmed field values and
// returns every violation found.
func checkRules(rules []rule, values map[string]string) []FieldError {
	var errs []FieldError
	for _, r := range rules {
		value := strings.TrimSpace(values[r.field])

		if value == "" {
			if r.required {
				errs = append(errs, FieldError{Field: r.field, Message: r.message})
			}
			continue
		}

		length := utf8.RuneCountInString(value)
		if (r.min > 0 && length < r.min) || (r.max > 0 && length > r.max) {
			errs = append(errs, FieldError{Field: r.field, Message: r.message})
			continue
		}

		if r.email {
			if _, err := mail.ParseAddress(value); err != nil {
				errs = append(errs, FieldError{Field: r.field, Message: r.message})
			}
		}
	}
	return errs
}

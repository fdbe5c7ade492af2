package models

import (
	"strings"
	"unicode/utf8"
)

// Normalize trims the username and folds it to lower case so lookups are case-insensitive.
func (c *Credentials) Normalize() {
	c.Username = strings.ToLower(strings.TrimSpace(c.Username))
}

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// Validate checks the credentials and returns every violation found.
func (c Credentials) Validate() ValidationErrors {
	errs := validateStruct(c)
	if len(c.Password) > maxPasswordBytes && utf8.RuneCountInString(c.Password) <= maxPasswordBytes {
		errs = append(errs, FieldError{Field: "password", Message: "must be at most 72 bytes"})
	}
	return errs
}

// Package schema validates client payloads at the API boundary. The same
// rules are used for create and partial update requests; the only difference
// is whether name and email are required.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/domain"
)

// MaxBodyBytes caps the size of a request body accepted by Decode.
const MaxBodyBytes = 1 << 20

// MaxEmailLength is the longest address allowed by RFC 5321.
const MaxEmailLength = 254

// ErrMalformedBody reports a body that is not a single JSON object.
var ErrMalformedBody = errors.New("schema: malformed json body")

// Payload is a decoded JSON object whose values are validated field by field.
// Keeping the raw values lets validation tell a missing field from a null or
// a value of the wrong type.
type Payload map[string]json.RawMessage

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the failures.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, msg string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

var validate = validator.New()

// Decode reads a single JSON object from r.
func Decode(r io.Reader) (Payload, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if len(data) > MaxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedBody, MaxBodyBytes)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: expected a json object", ErrMalformedBody)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

// ValidateCreate checks a create payload: name and email are required, phone
// is optional. An empty or null phone is stored as absent.
func ValidateCreate(p Payload) (domain.ClientFields, error) {
	verr := &ValidationError{}
	var out domain.ClientFields

	if name, ok := stringField(p, "name", true, verr); ok {
		if checkName(name, verr) {
			out.Name = name
		}
	}

	if email, ok := stringField(p, "email", true, verr); ok {
		if checkEmail(email, verr) {
			out.Email = email
		}
	}

	if phone, ok := stringField(p, "phone", false, verr); ok && phone != "" {
		out.Phone = &phone
	}

	if err := verr.orNil(); err != nil {
		return domain.ClientFields{}, err
	}
	return out, nil
}

// ValidatePartialUpdate checks an update payload. Every field is optional and
// an empty object is valid. A supplied empty or null phone clears the phone.
func ValidatePartialUpdate(p Payload) (domain.ClientPatch, error) {
	verr := &ValidationError{}
	var out domain.ClientPatch

	if _, present := p["name"]; present {
		if name, ok := stringField(p, "name", true, verr); ok && checkName(name, verr) {
			out.Name = &name
		}
	}

	if _, present := p["email"]; present {
		if email, ok := stringField(p, "email", true, verr); ok && checkEmail(email, verr) {
			out.Email = &email
		}
	}

	if _, present := p["phone"]; present {
		if phone, ok := stringField(p, "phone", false, verr); ok {
			out.Phone = &phone
		}
	}

	if err := verr.orNil(); err != nil {
		return domain.ClientPatch{}, err
	}
	return out, nil
}

// stringField extracts a trimmed string. Missing or null values are reported
// as errors only when required; anything that is not a JSON string is always
// an error. ok is false when no usable value was found.
func stringField(p Payload, field string, required bool, verr *ValidationError) (string, bool) {
	raw, present := p[field]
	if !present || string(bytes.TrimSpace(raw)) == "null" {
		if required {
			verr.add(field, "Required")
			return "", false
		}
		// A null optional field counts as supplied-but-empty.
		return "", present
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		verr.add(field, "Expected string")
		return "", false
	}
	return strings.TrimSpace(s), true
}

func checkName(name string, verr *ValidationError) bool {
	if name == "" {
		verr.add("name", "Name is required")
		return false
	}
	return true
}

func checkEmail(email string, verr *ValidationError) bool {
	if email == "" {
		verr.add("email", "Email is required")
		return false
	}
	if len(email) > MaxEmailLength {
		verr.add("email", fmt.Sprintf("Email must be at most %d characters", MaxEmailLength))
		return false
	}
	if err := validate.Var(email, "email"); err != nil {
		verr.add("email", "Please enter a valid email address")
		return false
	}
	return true
}

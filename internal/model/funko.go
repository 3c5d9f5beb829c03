// Package model defines the catalog data structures.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors for Funko.
var (
	ErrEmptyName          = errors.New("name cannot be empty")
	ErrNegativePrice      = errors.New("price cannot be less than 0")
	ErrMissingReleaseDate = errors.New("release date is required")
	ErrMissingModel       = errors.New("model is required")
)

// ErrUnknownModel is returned when parsing an unrecognized model name.
var ErrUnknownModel = errors.New("unknown model")

// Model is the closed set of Funko line categories.
type Model string

// Known model categories.
const (
	ModelMarvel Model = "MARVEL"
	ModelDisney Model = "DISNEY"
	ModelAnime  Model = "ANIME"
	ModelOther  Model = "OTROS"
)

// ParseModel maps a string onto one of the known categories.
// Matching is case-insensitive; unknown values are rejected.
func ParseModel(s string) (Model, error) {
	switch Model(strings.ToUpper(strings.TrimSpace(s))) {
	case ModelMarvel:
		return ModelMarvel, nil
	case ModelDisney:
		return ModelDisney, nil
	case ModelAnime:
		return ModelAnime, nil
	case ModelOther:
		return ModelOther, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, s)
	}
}

// DateLayout is the wire format for release dates.
const DateLayout = "2006-01-02"

// Date is a calendar date. It marshals to and from ISO-8601
// (yyyy-mm-dd) in JSON; the time of day is always midnight UTC.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date in UTC.
func Today() Date {
	y, m, d := time.Now().UTC().Date()
	return NewDate(y, m, d)
}

// ParseDate parses an ISO-8601 date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return Date{t}, nil
}

// String returns the date in ISO-8601 form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as a quoted ISO-8601 string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON decodes a quoted ISO-8601 string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Funko represents a collectible catalog entry.
type Funko struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Model       Model   `json:"model"`
	Price       float64 `json:"price"`
	ReleaseDate Date    `json:"release_date"`
}

// NewID generates a fresh Funko identifier.
func NewID() string {
	return uuid.New().String()
}

// Validate checks the Funko invariants, failing fast on the first
// violated rule. A Funko that does not pass Validate is never cached
// or persisted.
func (f *Funko) Validate() error {
	if f.Name == "" {
		return ErrEmptyName
	}

	if f.Price < 0 {
		return ErrNegativePrice
	}

	if f.ReleaseDate.IsZero() {
		return ErrMissingReleaseDate
	}

	if f.Model == "" {
		return ErrMissingModel
	}

	return nil
}

// APIResponse is a generic wrapper for API responses.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewSuccessResponse creates a successful API response.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Data:    data,
	}
}

// ErrorResponse represents an error response structure.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

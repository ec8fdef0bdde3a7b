package shared

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

// FormParser converts posted form fields into typed values and records
// every non-blank value that does not parse. Blank values become zero so
// that struct validation still reports missing required fields; garbage
// input is an error in its own right and must never be coerced to zero.
type FormParser struct {
	problems []string
}

// Int parses a whole number field. The label names the field in the
// error shown to the user.
func (p *FormParser) Int(label, raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.problems = append(p.problems, label+" must be a whole number")
		return 0
	}
	return n
}

// Float parses a decimal field.
func (p *FormParser) Float(label, raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.problems = append(p.problems, label+" must be a number")
		return 0
	}
	return f
}

// ID parses a select field carrying a numeric identifier.
func (p *FormParser) ID(label, raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.problems = append(p.problems, label+" is not a valid choice")
		return 0
	}
	return id
}

// Date parses a date field in the given layout.
func (p *FormParser) Date(label, layout, raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		p.problems = append(p.problems, label+" must be a valid date")
		return time.Time{}
	}
	return t
}

// Err returns nil when every field parsed, or a validation error listing
// the fields that did not.
func (p *FormParser) Err() error {
	if len(p.problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", httpx.ErrValidation, strings.Join(p.problems, "; "))
}

package validate

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Data is the input under validation: field name to raw value.
type Data map[string]string

// Schema maps field names to their constraints.
type Schema map[string]Rules

// Rules is the ordered constraint set for a single field.
// Zero values mean "no constraint". When a schema is used as an override
// in Extend, non-zero constraints replace the base; use Optional to build an
// override that clears the required flag.
type Rules struct {
	OneOf     []string
	MinLength int
	MaxLength int
	Required  bool
	Email     bool

	set constraintSet
}

type constraintSet uint8

const (
	setRequired constraintSet = 1 << iota
	setMinLength
	setMaxLength
	setEmail
	setOneOf
)

// Optional returns an override that clears the required flag of a base rule.
func Optional() Rules {
	return Rules{set: setRequired}
}

// Result is the outcome of a validation run.
type Result struct {
	Errors map[string]string
	Valid  bool
}

// Err returns the result as an error, or nil when the data is valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Errors{Fields: r.Errors}
}

// Errors is a validation failure usable as an error value.
type Errors struct {
	Fields map[string]string
}

func (e *Errors) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks data against schema. Fields not named in the schema are
// ignored. Errors holds one message per failing field.
func Validate(data Data, schema Schema) Result {
	errs := make(map[string]string)

	for _, field := range slices.Sorted(maps.Keys(schema)) {
		if msg := check(field, data[field], schema[field]); msg != "" {
			errs[field] = msg
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func check(field, value string, r Rules) string {
	if value == "" {
		if r.Required {
			return fmt.Sprintf("%s is required", field)
		}
		return ""
	}

	n := utf8.RuneCountInString(value)
	if r.MinLength > 0 && n < r.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", field, r.MinLength)
	}
	if r.MaxLength > 0 && n > r.MaxLength {
		return fmt.Sprintf("%s must be at most %d characters", field, r.MaxLength)
	}
	if r.Email && !emailPattern.MatchString(value) {
		return fmt.Sprintf("%s must be a valid email address", field)
	}
	if len(r.OneOf) > 0 && !slices.Contains(r.OneOf, value) {
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(r.OneOf, ", "))
	}
	return ""
}

// Extend returns a new schema where every field of overrides is merged onto
// the same field of base. A constraint is replaced when it is non-zero in the
// override or explicitly marked as set (see Optional). Neither input is modified.
func Extend(base, overrides Schema) Schema {
	out := make(Schema, len(base)+len(overrides))
	maps.Copy(out, base)

	for field, o := range overrides {
		b, ok := out[field]
		if !ok {
			o.set = 0
			out[field] = o
			continue
		}
		out[field] = merge(b, o)
	}
	return out
}

func merge(b, o Rules) Rules {
	if o.Required || o.set&setRequired != 0 {
		b.Required = o.Required
	}
	if o.MinLength != 0 || o.set&setMinLength != 0 {
		b.MinLength = o.MinLength
	}
	if o.MaxLength != 0 || o.set&setMaxLength != 0 {
		b.MaxLength = o.MaxLength
	}
	if o.Email || o.set&setEmail != 0 {
		b.Email = o.Email
	}
	if o.OneOf != nil || o.set&setOneOf != 0 {
		b.OneOf = slices.Clone(o.OneOf)
	}
	b.set = 0
	return b
}

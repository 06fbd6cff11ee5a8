// Package payload gives handlers field-level access to JSON request bodies so
// that partial updates can tell an absent field from an explicit null and
// malformed values surface as per-field validation messages.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/walletapi/internal/apperr"
)

const (
	// MaxDecimalPlaces bounds the scale of monetary values.
	MaxDecimalPlaces = 8
	// MaxDigits bounds the precision of monetary values, so at most
	// MaxDigits-MaxDecimalPlaces digits sit before the point.
	MaxDigits = 20

	// maxDecimalText caps the raw text handed to the decimal parser.
	maxDecimalText = 64
	// minExponent keeps precision checks from rescaling absurd exponents.
	minExponent = -64
)

var integerBound = decimal.New(1, MaxDigits-MaxDecimalPlaces)

const dateLayout = "2006-01-02"

// Payload is a decoded JSON object keyed by field name.
type Payload map[string]json.RawMessage

// Parse decodes a JSON object. An empty body is an empty payload.
func Parse(body []byte) (Payload, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Payload{}, nil
	}
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, apperr.Invalid("non_field_errors", "Invalid JSON object.")
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

// Has reports whether key is present, including an explicit null.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Payload) isNull(key string) bool {
	raw, ok := p[key]
	return ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// String returns the trimmed string value of key. Absent and null both yield
// "", with set reporting whether a non-null value was supplied.
func (p Payload) String(key string) (value string, set bool, err error) {
	if !p.Has(key) || p.isNull(key) {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(p[key], &s); err != nil {
		return "", false, apperr.Invalid(key, apperr.MsgInvalidString)
	}
	return strings.TrimSpace(s), true, nil
}

// Decimal returns the fixed-point value of key, or nil when absent or null.
// Both JSON numbers and numeric strings are accepted; binary floating point is
// never involved.
func (p Payload) Decimal(key string) (*decimal.Decimal, error) {
	if !p.Has(key) || p.isNull(key) {
		return nil, nil
	}
	text := strings.TrimSpace(string(p[key]))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(p[key], &s); err != nil {
			return nil, apperr.Invalid(key, apperr.MsgInvalidNumber)
		}
		text = strings.TrimSpace(s)
	}
	d, err := ParseDecimal(text)
	if err != nil {
		return nil, apperr.Invalid(key, err.Error())
	}
	return &d, nil
}

// ParseDecimal parses text as a fixed-point amount of at most MaxDigits
// digits, MaxDecimalPlaces of them after the point. Bounds are checked on the
// exponent before any arithmetic touches the value.
func ParseDecimal(text string) (decimal.Decimal, error) {
	if text == "" || len(text) > maxDecimalText {
		return decimal.Decimal{}, errInvalidNumber
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, errInvalidNumber
	}
	if d.Exponent() > MaxDigits-MaxDecimalPlaces {
		if d.IsZero() {
			return decimal.Zero, nil
		}
		return decimal.Decimal{}, errTooManyDigits
	}
	if d.Exponent() < minExponent {
		return decimal.Decimal{}, errTooPrecise
	}
	if d.Abs().GreaterThanOrEqual(integerBound) {
		return decimal.Decimal{}, errTooManyDigits
	}
	if d.Exponent() < -MaxDecimalPlaces && !d.Equal(d.Truncate(MaxDecimalPlaces)) {
		return decimal.Decimal{}, errTooPrecise
	}
	return d, nil
}

// Bool returns the boolean value of key and whether it was supplied.
func (p Payload) Bool(key string) (value bool, set bool, err error) {
	if !p.Has(key) || p.isNull(key) {
		return false, false, nil
	}
	if err := json.Unmarshal(p[key], &value); err != nil {
		return false, false, apperr.Invalid(key, "Must be a valid boolean.")
	}
	return value, true, nil
}

// Date returns a YYYY-MM-DD date. Null and "" clear the value (nil, true).
func (p Payload) Date(key string) (value *time.Time, set bool, err error) {
	if !p.Has(key) {
		return nil, false, nil
	}
	s, _, err := p.String(key)
	if err != nil {
		return nil, false, apperr.Invalid(key, "Date has wrong format. Use YYYY-MM-DD.")
	}
	if s == "" {
		return nil, true, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, false, apperr.Invalid(key, "Date has wrong format. Use YYYY-MM-DD.")
	}
	return &t, true, nil
}

// Object returns the JSON object under key. Null yields an empty, non-nil map.
func (p Payload) Object(key string) (value map[string]any, set bool, err error) {
	if !p.Has(key) {
		return nil, false, nil
	}
	if p.isNull(key) {
		return map[string]any{}, true, nil
	}
	value, err = DecodeObject(p[key])
	if err != nil || value == nil {
		return nil, false, apperr.Invalid(key, "Expected a JSON object.")
	}
	return value, true, nil
}

// DecodeObject decodes a JSON object keeping numbers as json.Number, so they
// re-encode exactly as they were written.
func DecodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value map[string]any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON object")
	}
	return value, nil
}

type decimalError string

func (e decimalError) Error() string { return string(e) }

const (
	errInvalidNumber decimalError = apperr.MsgInvalidNumber
	errTooPrecise    decimalError = "Ensure that there are no more than 8 decimal places."
	errTooManyDigits decimalError = "Ensure that there are no more than 20 digits in total."
)

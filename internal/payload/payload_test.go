package payload

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/walletapi/internal/apperr"
)

func TestParseRejectsNonObject(t *testing.T) {
	_, err := Parse([]byte(`[1,2]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	p, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestDecimalAcceptsNumbersAndStrings(t *testing.T) {
	p, err := Parse([]byte(`{"a": 100, "b": "12.50", "c": null, "d": "abc", "e": true, "f": 0.123456789}`))
	require.NoError(t, err)

	a, err := p.Decimal("a")
	require.NoError(t, err)
	assert.Equal(t, "100", a.String())

	b, err := p.Decimal("b")
	require.NoError(t, err)
	assert.Equal(t, "12.5", b.String())

	c, err := p.Decimal("c")
	require.NoError(t, err)
	assert.Nil(t, c)

	missing, err := p.Decimal("missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = p.Decimal("d")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = p.Decimal("e")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = p.Decimal("f")
	require.Error(t, err)
	e, _ := apperr.As(err)
	assert.Contains(t, e.Fields, "f")
}

func TestStringPresence(t *testing.T) {
	p, err := Parse([]byte(`{"name": "  alice ", "gone": null, "num": 5}`))
	require.NoError(t, err)

	v, set, err := p.String("name")
	require.NoError(t, err)
	assert.True(t, set)
	assert.Equal(t, "alice", v)

	v, set, err = p.String("gone")
	require.NoError(t, err)
	assert.False(t, set)
	assert.Equal(t, "", v)
	assert.True(t, p.Has("gone"))

	_, _, err = p.String("num")
	assert.Error(t, err)
}

func TestObjectAndDate(t *testing.T) {
	p, err := Parse([]byte(`{"meta": {"k": "v"}, "none": null, "bad": "x", "dob": "1990-04-01", "nodob": ""}`))
	require.NoError(t, err)

	m, set, err := p.Object("meta")
	require.NoError(t, err)
	assert.True(t, set)
	assert.Equal(t, "v", m["k"])

	m, set, err = p.Object("none")
	require.NoError(t, err)
	assert.True(t, set)
	assert.NotNil(t, m)
	assert.Empty(t, m)

	_, _, err = p.Object("bad")
	assert.Error(t, err)

	d, set, err := p.Date("dob")
	require.NoError(t, err)
	assert.True(t, set)
	assert.Equal(t, 1990, d.Year())

	d, set, err = p.Date("nodob")
	require.NoError(t, err)
	assert.True(t, set)
	assert.Nil(t, d)
}

func TestDecimalBoundsDigits(t *testing.T) {
	p, err := Parse([]byte(`{
		"max": "999999999999.99999999",
		"int": 1000000000000,
		"huge": "1e300000000",
		"tiny": "1e-300000000",
		"long": "` + strings.Repeat("1", 80) + `",
		"zero": "0e30",
		"neg": -999999999999
	}`))
	require.NoError(t, err)

	got, err := p.Decimal("max")
	require.NoError(t, err)
	assert.Equal(t, "999999999999.99999999", got.String())

	for _, key := range []string{"int", "huge"} {
		_, err := p.Decimal(key)
		e, ok := apperr.As(err)
		require.True(t, ok, key)
		assert.Equal(t, []string{"Ensure that there are no more than 20 digits in total."}, e.Fields[key])
	}

	_, err = p.Decimal("tiny")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = p.Decimal("long")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	zero, err := p.Decimal("zero")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	neg, err := p.Decimal("neg")
	require.NoError(t, err)
	assert.Equal(t, "-999999999999", neg.String())
}

func TestObjectKeepsNumbersExact(t *testing.T) {
	p, err := Parse([]byte(`{"meta": {"order": 9007199254740993, "rate": 0.1, "nested": {"n": 12345678901234567890}}}`))
	require.NoError(t, err)

	m, _, err := p.Object("meta")
	require.NoError(t, err)

	encoded, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"order": 9007199254740993, "rate": 0.1, "nested": {"n": 12345678901234567890}}`, string(encoded))
	assert.Contains(t, string(encoded), "9007199254740993")
	assert.Contains(t, string(encoded), "12345678901234567890")
}

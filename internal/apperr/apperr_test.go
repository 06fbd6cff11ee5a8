package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsMatchSentinels(t *testing.T) {
	err := fmt.Errorf("load wallet: %w", NotFound("wallet not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "not_found", e.Label())
	assert.Equal(t, http.StatusNotFound, e.Status())
}

func TestDistinctLabels(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range []Kind{KindValidation, KindConflict, KindAuthentication, KindNotFound, KindBusinessRule} {
		label := k.Label()
		assert.False(t, seen[label], "duplicate label %s", label)
		seen[label] = true
	}
}

func TestValidatorCollectsFields(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Err())

	v.Check(false, "amount", MsgRequired)
	v.Check(true, "fee", MsgNegative)
	v.Merge(Invalid("final_amount", MsgInvalidNumber))
	v.Merge(NotFound(""))

	err := v.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	e, _ := As(err)
	assert.Equal(t, []string{MsgRequired}, e.Fields["amount"])
	assert.Equal(t, []string{MsgInvalidNumber}, e.Fields["final_amount"])
	assert.NotContains(t, e.Fields, "fee")
}

package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSome_RejectsNaN(t *testing.T) {
	assert.False(t, Some(math.NaN()).Valid)
	assert.False(t, Some(math.Inf(1)).Valid)
	assert.True(t, Some(0).Valid)
}

func TestNullFloat_JSON(t *testing.T) {
	raw, err := json.Marshal(Metrics{"a": Some(0.25), "b": Null()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":0.25,"b":null}`, string(raw))

	var back Metrics
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, Some(0.25), back["a"])
	assert.False(t, back["b"].Valid)
}

func TestNullFloat_Gates(t *testing.T) {
	assert.False(t, Null().AtLeast(-1))
	assert.True(t, Some(0.6).AtLeast(0.6))
	assert.Equal(t, 3.0, Null().Or(3))
}

func TestNotEvaluated_RegimeWireShape(t *testing.T) {
	raw, err := json.Marshal(NotEvaluated{Name: "premium_shift", Segment: "prepaid", Kind: KindRegimeShift, Reason: "No prepaid data"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"segment":"prepaid","driver":"premium_shift","detected":false,"confidence":"low","reason":"No prepaid data"}`, string(raw))
}

package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type body struct {
	Diagnosis Field[string]  `json:"diagnosis"`
	Weight    Field[float64] `json:"weight"`
	Notes     Field[string]  `json:"notes"`
}

func TestField_DistinguishesAbsentNullAndValue(t *testing.T) {
	var b body
	require.NoError(t, json.Unmarshal([]byte(`{"diagnosis":"otitis","weight":null}`), &b))

	assert.True(t, b.Diagnosis.Present)
	require.NotNil(t, b.Diagnosis.Value)
	assert.Equal(t, "otitis", *b.Diagnosis.Value)

	assert.True(t, b.Weight.IsNull())
	assert.False(t, b.Notes.Present)
}

func TestField_ApplyAndApplyPtr(t *testing.T) {
	name := "old"
	w := 4.5
	weight := &w

	Field[string]{}.Apply(&name)
	assert.Equal(t, "old", name)

	Set("new").Apply(&name)
	assert.Equal(t, "new", name)

	Null[string]().Apply(&name)
	assert.Equal(t, "", name)

	Field[float64]{}.ApplyPtr(&weight)
	require.NotNil(t, weight)

	Set(7.25).ApplyPtr(&weight)
	assert.Equal(t, 7.25, *weight)

	Null[float64]().ApplyPtr(&weight)
	assert.Nil(t, weight)
}

func TestField_InvalidType(t *testing.T) {
	var b body
	assert.Error(t, json.Unmarshal([]byte(`{"weight":"heavy"}`), &b))
}

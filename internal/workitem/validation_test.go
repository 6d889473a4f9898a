package workitem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIDs(t *testing.T) {
	assert.NoError(t, ValidateIDs([]int{1}))
	assert.NoError(t, ValidateIDs(make200()))
	assert.Error(t, ValidateIDs(nil))
	assert.Error(t, ValidateIDs(append(make200(), 201)))
	assert.Error(t, ValidateIDs([]int{1, 0}))
}

func make200() []int {
	ids := make([]int, MaxBatchSize)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

func TestParseOptionalsEmpty(t *testing.T) {
	expand, err := ParseExpand("")
	require.NoError(t, err)
	assert.Nil(t, expand)

	policy, err := ParseErrorPolicy(" ")
	require.NoError(t, err)
	assert.Nil(t, policy)

	asOf, err := ParseAsOf("")
	require.NoError(t, err)
	assert.Nil(t, asOf)
}

func TestParseAsOf(t *testing.T) {
	asOf, err := ParseAsOf("2024-06-01T12:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 10, asOf.Time.UTC().Hour())
}

func TestClampTop(t *testing.T) {
	tests := map[int]int{0: MaxBatchSize, 1: 1, 200: 200, 201: MaxBatchSize}
	for in, want := range tests {
		got, err := clampTop(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "clampTop(%d)", in)
	}
	_, err := clampTop(-5)
	assert.Error(t, err)
}

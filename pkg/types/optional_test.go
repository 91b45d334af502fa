package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Bio Optional[string] `json:"bio"`
}

func TestOptionalAbsent(t *testing.T) {
	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))

	assert.False(t, p.Bio.IsSet())
	assert.False(t, p.Bio.IsNull())
	_, ok := p.Bio.Get()
	assert.False(t, ok)
}

func TestOptionalNull(t *testing.T) {
	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"bio":null}`), &p))

	assert.True(t, p.Bio.IsSet())
	assert.True(t, p.Bio.IsNull())
	_, ok := p.Bio.Get()
	assert.False(t, ok)
}

func TestOptionalValue(t *testing.T) {
	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"bio":"hello"}`), &p))

	assert.True(t, p.Bio.IsSet())
	assert.False(t, p.Bio.IsNull())
	v, ok := p.Bio.Get()
	assert.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestOptionalEmptyStringIsAValue(t *testing.T) {
	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"bio":""}`), &p))

	v, ok := p.Bio.Get()
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestOptionalConstructors(t *testing.T) {
	v := Of("x")
	assert.True(t, v.IsSet())
	assert.False(t, v.IsNull())

	n := Null[string]()
	assert.True(t, n.IsSet())
	assert.True(t, n.IsNull())
}

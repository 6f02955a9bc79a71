package utils

import (
	"testing"

	"datadiff/core/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeJSON(t *testing.T) {
	out, err := EncodeJSON("a/b <ü>")
	require.NoError(t, err)
	assert.Equal(t, `"a/b <ü>"`, out)

	out, err = EncodeJSON("bad\xffbyte")
	require.NoError(t, err)
	assert.Equal(t, `"bad\ufffdbyte"`, out)
}

func TestJSONString(t *testing.T) {
	assert.Equal(t, "null", JSONString(record.Null()))
	assert.Equal(t, "12", JSONString(record.Int(12)))
	assert.Equal(t, `"x"`, JSONString(record.String("x")))
	assert.Equal(t, "null", JSONString(func() {}))
}

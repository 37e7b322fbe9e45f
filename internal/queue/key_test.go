package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKey_WellFormed(t *testing.T) {
	k, ok := ParseKey("predict_new_x.tiff")
	assert.True(t, ok)
	assert.Equal(t, "predict", k.Group)
	assert.Equal(t, "new", k.Status)
	assert.Equal(t, "x.tiff", k.Filename)
}

func TestParseKey_Malformed(t *testing.T) {
	cases := []string{
		"malformedKey",
		"onlytwo_fields",
		"too_many_fields_here",
		"",
	}
	for _, raw := range cases {
		_, ok := ParseKey(raw)
		assert.False(t, ok, "key %q should be malformed", raw)
	}
}

func TestKey_Ext(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"x.tiff", "tiff"},
		{"x.TIFF", "tiff"},
		{"x.ZIP", "zip"},
		{"noext", ""},
	}
	for _, tc := range cases {
		k := Key{Filename: tc.filename}
		assert.Equal(t, tc.want, k.Ext(), "filename %q", tc.filename)
	}
}

package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Address
	}{
		{"/bucket/idea", Address{Bucket: "idea"}},
		{"/bucket/idea/", Address{Bucket: "idea"}},
		{"/bucket/secret?token=abc123", Address{Bucket: "secret", Token: "abc123"}},
		{"http://localhost:5001/bucket/my%20plans?token=x", Address{Bucket: "my plans", Token: "x"}},
		{"/bucket/a%2Fb", Address{Bucket: "a/b"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "/", "/bucket/", "/buckets/idea", "/bucket/a/b", "idea"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrNotBucket, in)
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	for _, a := range []Address{
		{Bucket: "idea"},
		{Bucket: "my plans", Token: "k3y+/="},
		{Bucket: "a/b", Token: "t"},
	} {
		got, err := Parse(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	assert.Equal(t, "/bucket/idea", Format("idea", ""))
	assert.Equal(t, "/bucket/secret?token=abc", Format("secret", "abc"))
}

package netpolicy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrefix(t *testing.T) {
	p, err := ParsePrefix("192.168.1.10")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.10/32", p.String())

	p, err = ParsePrefix("10.1.2.3/8")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8", p.String())

	_, err = ParsePrefix("not-an-ip")
	assert.Error(t, err)
	_, err = ParsePrefix("")
	assert.Error(t, err)
}

func TestContains(t *testing.T) {
	prefixes, err := ParsePrefixes(DefaultNetworks)
	require.NoError(t, err)

	cases := []struct {
		remote string
		want   bool
	}{
		{"127.0.0.1", true},
		{"127.0.0.1:51234", true},
		{"[::1]:8080", true},
		{"::ffff:192.168.0.4", true},
		{"10.20.30.40", true},
		{"8.8.8.8", false},
		{"203.0.113.9:443", false},
		{"garbage", false},
	}
	for _, c := range cases {
		if got := Contains(prefixes, c.remote); got != c.want {
			t.Errorf("Contains(%q) = %v, want %v", c.remote, got, c.want)
		}
	}
}

func TestParsePrefixes_Invalid(t *testing.T) {
	_, err := ParsePrefixes([]string{"10.0.0.0/8", "300.1.1.1"})
	assert.Error(t, err)
}

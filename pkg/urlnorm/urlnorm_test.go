package urlnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"forces https and strips www", "http://www.Example.com/a", "https://example.com/a"},
		{"drops fragment", "https://example.com/a#section-2", "https://example.com/a"},
		{"drops port", "https://example.com:8443/x", "https://example.com/x"},
		{"root path", "https://example.com", "https://example.com/"},
		{"trailing slash", "https://example.com/docs/", "https://example.com/docs"},
		{"only slashes", "https://example.com///", "https://example.com/"},
		{"strips utm and click ids", "https://example.com/p?utm_source=x&UTM_Medium=y&fbclid=1&gclid=2&id=7", "https://example.com/p?id=7"},
		{"strips mailchimp and ref", "https://example.com/p?mc_cid=a&mc_eid=b&ref=hn&yclid=z", "https://example.com/p"},
		{"sorts query by key then value", "https://example.com/p?b=2&a=3&a=1", "https://example.com/p?a=1&a=3&b=2"},
		{"keeps blank values", "https://example.com/p?flag&x=", "https://example.com/p?flag=&x="},
		{"encodes spaces with plus", "https://example.com/search?q=go%20lang", "https://example.com/search?q=go+lang"},
		{"trims whitespace", "  https://example.com/a  ", "https://example.com/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRejectsURLsWithoutHost(t *testing.T) {
	for _, raw := range []string{"", "example.com/a", "file:///etc/hosts", "mailto:ana@example.com", "::not a url"} {
		_, err := Normalize(raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}

func TestThreadKeyStableAcrossTrivialVariants(t *testing.T) {
	pairs := [][2]string{
		{"http://www.example.com/a/?utm_source=x#top", "https://example.com/a"},
		{"https://example.com/p?b=2&a=1", "https://example.com/p?a=1&b=2"},
		{"https://example.com:8443/x", "https://EXAMPLE.com/x/"},
		{"https://example.com/article?ref=twitter", "https://example.com/article#comments"},
	}

	for _, p := range pairs {
		a, err := ThreadKey(p[0])
		require.NoError(t, err)
		b, err := ThreadKey(p[1])
		require.NoError(t, err)
		assert.Equal(t, a, b, "%s vs %s", p[0], p[1])
	}
}

func TestThreadKeyDistinguishesPages(t *testing.T) {
	pairs := [][2]string{
		{"https://example.com/a", "https://example.com/b"},
		{"https://example.com/a", "https://example.org/a"},
		{"https://news.example.com/a", "https://example.com/a"},
		{"https://example.com/watch?v=1", "https://example.com/watch?v=2"},
		{"https://example.com/A", "https://example.com/a"},
	}

	for _, p := range pairs {
		a, err := ThreadKey(p[0])
		require.NoError(t, err)
		b, err := ThreadKey(p[1])
		require.NoError(t, err)
		assert.NotEqual(t, a, b, "%s vs %s", p[0], p[1])
	}
}

func TestThreadKeyPrefix(t *testing.T) {
	key, err := ThreadKey("https://www.example.com/a?utm_campaign=z")
	require.NoError(t, err)
	assert.Equal(t, "url:https://example.com/a", key)
}

func TestNormalizeThreadKey(t *testing.T) {
	key, err := NormalizeThreadKey("url:http://www.example.com/a/?gclid=1")
	require.NoError(t, err)
	assert.Equal(t, "url:https://example.com/a", key)

	again, err := NormalizeThreadKey(key)
	require.NoError(t, err)
	assert.Equal(t, key, again)

	_, err = NormalizeThreadKey("https://example.com/a")
	assert.ErrorIs(t, err, ErrInvalidThreadKey)
}

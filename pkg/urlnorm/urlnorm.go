// Package urlnorm turns raw page URLs into canonical room identities.
//
// Two URLs that point at the same logical page (modulo scheme, "www." host
// prefix, port, fragment, tracking parameters, query order and trailing
// slashes) produce the same thread key. Everything else is significant.
package urlnorm

import (
	"errors"
	"net/url"
	"sort"
	"strings"
)

// ThreadKeyPrefix marks keys derived from page URLs.
const ThreadKeyPrefix = "url:"

var (
	ErrInvalidURL       = errors.New("invalid URL")
	ErrInvalidThreadKey = errors.New("thread_key must start with 'url:'")
)

var trackingParamNames = map[string]struct{}{
	"ref":    {},
	"fbclid": {},
	"gclid":  {},
	"yclid":  {},
	"mc_cid": {},
	"mc_eid": {},
}

var trackingParamPrefixes = []string{"utm_"}

type queryPair struct {
	key   string
	value string
}

// Normalize returns the canonical, human readable form of rawURL.
func Normalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", ErrInvalidURL
	}
	host = strings.TrimPrefix(host, "www.")
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if path != "/" {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}

	var b strings.Builder
	b.WriteString("https://")
	b.WriteString(host)
	b.WriteString(path)
	if query := canonicalQuery(u.RawQuery); query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	return b.String(), nil
}

// ThreadKey derives the room key used for message fetches and the feed.
func ThreadKey(rawURL string) (string, error) {
	normalized, err := Normalize(rawURL)
	if err != nil {
		return "", err
	}
	return ThreadKeyPrefix + normalized, nil
}

// NormalizeThreadKey re-normalizes a key that may have been built by an
// older or foreign client.
func NormalizeThreadKey(threadKey string) (string, error) {
	if !strings.HasPrefix(threadKey, ThreadKeyPrefix) {
		return "", ErrInvalidThreadKey
	}
	return ThreadKey(strings.TrimPrefix(threadKey, ThreadKeyPrefix))
}

func isTrackingParam(key string) bool {
	lower := strings.ToLower(key)
	if _, ok := trackingParamNames[lower]; ok {
		return true
	}
	for _, prefix := range trackingParamPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// canonicalQuery drops tracking parameters, keeps blank values and sorts the
// remaining pairs by key then value.
func canonicalQuery(rawQuery string) string {
	var kept []queryPair
	for _, piece := range strings.Split(rawQuery, "&") {
		if piece == "" {
			continue
		}
		key, value, _ := strings.Cut(piece, "=")
		key = unescapeQueryPart(key)
		value = unescapeQueryPart(value)
		if isTrackingParam(key) {
			continue
		}
		kept = append(kept, queryPair{key: key, value: value})
	}
	if len(kept) == 0 {
		return ""
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].key != kept[j].key {
			return kept[i].key < kept[j].key
		}
		return kept[i].value < kept[j].value
	})

	parts := make([]string, 0, len(kept))
	for _, p := range kept {
		parts = append(parts, url.QueryEscape(p.key)+"="+url.QueryEscape(p.value))
	}
	return strings.Join(parts, "&")
}

func unescapeQueryPart(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

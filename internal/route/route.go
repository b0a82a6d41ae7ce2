// Package route reads and writes bucket addresses of the form
// /bucket/{name}?token={token}.
package route

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const prefix = "/bucket/"

var ErrNotBucket = errors.New("not a bucket address")

type Address struct {
	Bucket string
	Token  string
}

// Parse accepts a bare path, a path with query, or a full URL.
func Parse(s string) (Address, error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return Address{}, fmt.Errorf("parsing address: %w", err)
	}
	path := u.EscapedPath()
	if !strings.HasPrefix(path, prefix) {
		return Address{}, fmt.Errorf("%w: %q", ErrNotBucket, s)
	}
	seg := strings.TrimSuffix(path[len(prefix):], "/")
	if seg == "" || strings.Contains(seg, "/") {
		return Address{}, fmt.Errorf("%w: %q", ErrNotBucket, s)
	}
	name, err := url.PathUnescape(seg)
	if err != nil {
		return Address{}, fmt.Errorf("parsing bucket name: %w", err)
	}
	return Address{Bucket: name, Token: u.Query().Get("token")}, nil
}

// Format returns the address of bucket. The token query is omitted for
// public buckets.
func Format(bucket, token string) string {
	s := prefix + url.PathEscape(bucket)
	if token != "" {
		s += "?" + url.Values{"token": {token}}.Encode()
	}
	return s
}

func (a Address) String() string {
	return Format(a.Bucket, a.Token)
}

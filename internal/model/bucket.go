package model

import "fmt"

type Bucket struct {
	Name  string `json:"name" yaml:"name"`
	Token string `json:"token" yaml:"token"`
}

func (b *Bucket) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("bucket name is required")
	}
	return nil
}

// Protected reports whether viewers need a token for this bucket.
func (b *Bucket) Protected() bool {
	return b.Token != ""
}

// Authenticates reports whether token grants access to the bucket. Public
// buckets accept any token. Protected buckets compare by plain equality.
func (b *Bucket) Authenticates(token string) bool {
	if !b.Protected() {
		return true
	}
	return token == b.Token
}

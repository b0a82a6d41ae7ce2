package id

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

const charset = "23456789ABCDEFGHJKMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz"
const tokenLen = 20

// sampleNamespace scopes the deterministic ids of the seed data.
var sampleNamespace = uuid.MustParse("6f1c2a1e-4b7d-4c59-9a43-0d2f8f3b7a10")

// NewTask returns a random, globally unique task id.
func NewTask() string {
	return uuid.NewString()
}

// Sample returns a stable id for the n-th seed task.
func Sample(n int) string {
	return uuid.NewSHA1(sampleNamespace, []byte(fmt.Sprintf("sample-%d", n))).String()
}

// NewToken returns a random shared secret for a private bucket.
func NewToken() (string, error) {
	b := make([]byte, tokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b), nil
}

// IsTask reports whether s has the shape of a generated task id.
func IsTask(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

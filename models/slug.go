package models

import (
	"math/rand"
	"time"
)

const slugAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ123456789"

// GenerateSlug returns a random slug of n characters.
func GenerateSlug(n int) string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var slug string
	for i := 0; i < n; i++ {
		idx := r.Intn(len(slugAlphabet))
		slug = slug + string(slugAlphabet[idx])
	}
	return slug
}

package models

import (
	"math/rand"

	gslug "github.com/gosimple/slug"
)

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randSuffix() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = slugAlphabet[rand.Intn(len(slugAlphabet))]
	}
	return string(b)
}

// MakeSlug derives a slug from a name plus a random suffix so that two
// entities with similar names never collide. Slugs fit the 50-char column.
func MakeSlug(name string) string {
	base := gslug.Make(name)
	if len(base) > 43 {
		base = base[:43]
	}
	return base + "-" + randSuffix()
}

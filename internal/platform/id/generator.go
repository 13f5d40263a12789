package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Generator creates opaque IDs for crawl sessions and lock tokens.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	return randomHex(16)
}

// SortableGenerator prefixes a short random suffix with the UTC start time,
// so IDs such as "crawl-20250614T120000Z-3f9a1c0e" sort by creation.
type SortableGenerator struct {
	prefix string
	now    func() time.Time
}

func NewSortableGenerator(prefix string) *SortableGenerator {
	return &SortableGenerator{prefix: strings.TrimSpace(prefix), now: time.Now}
}

func (g *SortableGenerator) NewID() (string, error) {
	suffix, err := randomHex(4)
	if err != nil {
		return "", err
	}
	stamp := g.now().UTC().Format("20060102T150405Z")
	if g.prefix == "" {
		return stamp + "-" + suffix, nil
	}
	return g.prefix + "-" + stamp + "-" + suffix, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

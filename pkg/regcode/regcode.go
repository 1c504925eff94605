// Package regcode generates human-presentable registration codes.
//
// Codes are short enough to print on an intake slip or embed in a QR
// payload and are drawn from crypto/rand, so generation never coordinates
// with other in-flight reservations. Uniqueness is probabilistic; the
// storage layer keeps a unique constraint and the caller retries with a
// fresh code on the (astronomically unlikely) collision.
package regcode

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

// alphabet omits 0/O/1/I/L to keep codes unambiguous when read aloud or
// typed from a printout.
const alphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const codeLength = 8

// DefaultPrefix matches the campus branding on printed intake slips.
const DefaultPrefix = "AI"

// Generator produces registration codes with a fixed prefix.
type Generator struct {
	prefix string
}

// NewGenerator returns a Generator using the given prefix, or
// DefaultPrefix when empty.
func NewGenerator(prefix string) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Generator{prefix: prefix}
}

// Generate returns a fresh code of the form PREFIX-XXXXXXXX.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}

	return g.prefix + "-" + string(buf), nil
}

// Pattern returns a regexp matching codes produced by this generator.
// The front desk uses it to decide whether a search term looks like a
// registration code.
func (g *Generator) Pattern() *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(g.prefix) + `-[` + alphabet + `]{8}$`)
}

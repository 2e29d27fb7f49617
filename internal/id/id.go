// Package id generates random tokens for slug defaults.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// slugAlphabet is the lowercase subset of the NanoID alphabet. Tokens drawn
// from it already satisfy slug normalization, so they survive a round trip
// through the slug codec unchanged.
const slugAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// DefaultTokenSize is the length of tokens produced by Token when size <= 0.
const DefaultTokenSize = 12

// Token returns a lowercase alphanumeric token of the given size, suitable as a slug.
func Token(size int) (string, error) {
	if size <= 0 {
		size = DefaultTokenSize
	}
	tok, err := gonanoid.Generate(slugAlphabet, size)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return tok, nil
}

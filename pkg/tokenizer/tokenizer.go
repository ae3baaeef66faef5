// Package tokenizer estimates prompt sizes without a model vocabulary.
package tokenizer

import "unicode"

// CountTokens is a rough estimate for mixed Greek and Latin text. Latin
// script averages about four characters per token; Greek and other
// non-Latin letters split far more finely, about two per token. Digits
// and punctuation count as their own tokens in groups of two.
func CountTokens(text string) int {
	var latin, other, symbols int
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			latin++
		case unicode.IsLetter(r):
			other++
		default:
			symbols++
		}
	}
	n := ceilDiv(latin, 4) + ceilDiv(other, 2) + ceilDiv(symbols, 2)
	return max(n, 1)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

package keycode

import (
	"crypto/rand"
	"fmt"
)

// Length is the fixed length of every generated keycode. Eight characters
// over a 36-symbol alphabet gives roughly 41 bits of entropy, which makes
// online guessing impractical while staying short enough to read out loud
// at an event briefing.
const Length = 8

// alphabet is the set of characters a keycode may contain. Uppercase-only
// keeps codes unambiguous when typed from a printout or whiteboard.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generate produces a new random keycode for an event. The randomness comes
// from crypto/rand, so codes are unguessable rather than merely unlikely to
// repeat. Keycodes are not a uniqueness key anywhere in the schema, so no
// collision handling is needed.
func Generate() (string, error) {
	// Rejection sampling keeps the per-character distribution uniform.
	// Bytes >= 252 would wrap unevenly over a 36-symbol alphabet (256 is not
	// a multiple of 36), so they are discarded and redrawn.
	const limit = byte(252) // largest multiple of 36 that fits in a byte

	code := make([]byte, Length)
	buf := make([]byte, Length)
	filled := 0
	for filled < Length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("could not read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			code[filled] = alphabet[int(b)%len(alphabet)]
			filled++
			if filled == Length {
				break
			}
		}
	}
	return string(code), nil
}

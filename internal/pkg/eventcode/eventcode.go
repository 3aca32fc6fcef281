package eventcode

import (
	"crypto/rand"
	"fmt"
)

// Alphabet for event codes (62 characters: 0-9, a-z, A-Z)
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CodeLength is the length of the public intake code printed on event flyers.
// 62^8 gives enough entropy that collisions are left to the unique index on
// events.event_code rather than checked up front.
const CodeLength = 8

// ReceiptWidth is the zero-padded width of per-event receipt numbers.
const ReceiptWidth = 4

// New returns a fresh random event code.
func New() (string, error) {
	return generateSlug(CodeLength)
}

// FormatReceiptNumber renders the Nth submission of an event as a display
// receipt number, e.g. 7 -> "0007". Receipt numbers are a per-event display
// counter, not a uniqueness key.
func FormatReceiptNumber(n int64) string {
	return fmt.Sprintf("%0*d", ReceiptWidth, n)
}

// generateSlug creates a cryptographically secure random Base62 slug.
func generateSlug(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid slug length: %d", length)
	}

	// Rejection sampling to avoid modulo bias.
	// 248 is the largest multiple of 62 below 256.
	const maxRandomByte = 248

	slug := make([]byte, length)
	buf := make([]byte, length*2)
	written := 0

	for written < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read secure random bytes: %w", err)
		}

		for _, b := range buf {
			if b >= maxRandomByte {
				continue
			}
			slug[written] = alphabet[int(b)%len(alphabet)]
			written++
			if written == length {
				break
			}
		}
	}

	return string(slug), nil
}

// Package chunk splits a reply string into mesh-sized frames and paces
// sending them across a transport.
package chunk

import (
	"context"
	"fmt"
	"time"
)

// Sender is the narrow send-text operation a transport exposes; it matches
// transport.Transport.SendText without importing that package, so chunk
// stays decoupled from the transport's Event type.
type Sender interface {
	SendText(ctx context.Context, text string) error
}

// NoOutputMarker is sent verbatim when a reply is empty.
const NoOutputMarker = "[no output]"

// Split partitions reply into frames of at most maxContentBytes, sliced
// only at UTF-8 boundaries, each composed as "<slice> [i/N]" (1-based). The
// footer is omitted when there is exactly one frame. An empty reply yields
// a single NoOutputMarker frame.
func Split(reply string, maxContentBytes int) []string {
	if reply == "" {
		return []string{NoOutputMarker}
	}

	slices := sliceUTF8(reply, maxContentBytes)
	n := len(slices)
	if n == 1 {
		return slices
	}

	frames := make([]string, n)
	for i, s := range slices {
		frames[i] = fmt.Sprintf("%s [%d/%d]", s, i+1, n)
	}
	return frames
}

// sliceUTF8 partitions s into successive byte slices of length at most max,
// never splitting inside a multi-byte UTF-8 code point unless max is smaller
// than that code point, in which case the slice is cut at max bytes.
func sliceUTF8(s string, max int) []string {
	var out []string
	b := []byte(s)
	for len(b) > 0 {
		end := max
		if end >= len(b) {
			end = len(b)
		} else {
			for end > 0 && isUTF8Continuation(b[end]) {
				end--
			}
			if end == 0 {
				end = max // a single code point longer than max: cut hard
			}
		}
		out = append(out, string(b[:end]))
		b = b[end:]
	}
	if len(out) == 0 {
		out = append(out, "")
	}
	return out
}

func isUTF8Continuation(b byte) bool {
	return b&0xC0 == 0x80
}

// ValidateBudget checks the static invariant of §3: the worst-case footer
// for a reply producing n frames must still fit within maxTextBytes
// alongside maxContentBytes of content.
func ValidateBudget(maxTextBytes, maxContentBytes, n int) error {
	if n <= 1 {
		return nil
	}
	footer := fmt.Sprintf(" [%d/%d]", n, n)
	if maxContentBytes+len(footer) > maxTextBytes {
		return fmt.Errorf("max_content_bytes (%d) + footer %q exceeds max_text_bytes (%d)", maxContentBytes, footer, maxTextBytes)
	}
	return nil
}

// Send splits reply and sends each frame through sender in order, waiting
// delay between frames. A send error on any frame aborts the remaining
// frames and is returned to the caller for logging.
func Send(ctx context.Context, sender Sender, reply string, maxContentBytes int, delay time.Duration) error {
	frames := Split(reply, maxContentBytes)
	for i, f := range frames {
		if err := sender.SendText(ctx, f); err != nil {
			return fmt.Errorf("sending frame %d/%d: %w", i+1, len(frames), err)
		}
		if i < len(frames)-1 && delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil
}

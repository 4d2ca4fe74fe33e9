// Package signature implements HMAC signing of webhook deliveries.
//
// The signed message is "<timestamp_ms>.<body>", so a captured body
// cannot be replayed later with a fresh timestamp and a receiver can
// reject stale deliveries outright.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Tolerance is the maximum clock skew a receiver should accept.
const Tolerance = 5 * time.Minute

// Sign computes the hex-encoded HMAC-SHA256 of timestampMs + "." + body.
func Sign(secret string, timestampMs int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestampMs)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a received signature in constant time and rejects
// timestamps outside the tolerance window around now.
func Verify(secret string, timestampMs int64, body []byte, sig string, now time.Time) bool {
	ts := time.UnixMilli(timestampMs)
	skew := now.Sub(ts)
	if skew < -Tolerance || skew > Tolerance {
		return false
	}

	expected := Sign(secret, timestampMs, body)
	return hmac.Equal([]byte(expected), []byte(sig))
}

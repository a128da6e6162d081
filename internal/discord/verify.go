package discord

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// MaxTimestampSkew is how far the signed timestamp may drift from server time.
const MaxTimestampSkew = 5 * time.Minute

// ParsePublicKey decodes the hex-encoded application public key Discord
// shows in the developer portal.
func ParsePublicKey(hexKey string) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key is %d bytes, want %d", len(raw), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(raw), nil
}

// VerifySignature checks the ed25519 signature Discord sends with every
// interaction. The signed message is the timestamp concatenated with the raw
// request body.
func VerifySignature(key ed25519.PublicKey, timestamp string, body []byte, sigHex string) bool {
	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	return ed25519.Verify(key, msg, sig)
}

// VerifyMiddleware rejects requests that are not signed by the application's
// key or whose timestamp is outside the allowed skew window.
func VerifyMiddleware(key ed25519.PublicKey) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sig := c.Get("X-Signature-Ed25519")
		ts := c.Get("X-Signature-Timestamp")
		if sig == "" || ts == "" {
			return c.Status(fiber.StatusUnauthorized).SendString("missing request signature")
		}
		if !VerifySignature(key, ts, c.Body(), sig) {
			log.Printf("[discord] invalid request signature")
			return c.Status(fiber.StatusUnauthorized).SendString("invalid request signature")
		}
		if unix, err := strconv.ParseInt(ts, 10, 64); err == nil {
			drift := time.Since(time.Unix(unix, 0))
			if drift > MaxTimestampSkew || drift < -MaxTimestampSkew {
				log.Printf("[discord] stale interaction timestamp (drift %s)", drift)
				return c.Status(fiber.StatusUnauthorized).SendString("stale request timestamp")
			}
		}
		return c.Next()
	}
}

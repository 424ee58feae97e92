package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultSignatureTolerance bounds how old a webhook timestamp may be.
const DefaultSignatureTolerance = 5 * time.Minute

var (
	ErrSignatureMissing = errors.New("missing webhook signature header")
	ErrSignatureInvalid = errors.New("webhook signature mismatch")
	ErrSignatureExpired = errors.New("webhook timestamp outside tolerance")
)

// VerifySignature checks the provider's signature header against the raw
// payload. The header carries a unix timestamp and one or more v1 HMAC-SHA256
// signatures over "timestamp.payload":
//
//	t=1712083200,v1=5257a869e7...
//
// Verification succeeds if any v1 signature matches and the timestamp is
// within tolerance of now.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if header == "" {
		return ErrSignatureMissing
	}
	if tolerance <= 0 {
		tolerance = DefaultSignatureTolerance
	}

	var ts int64
	var candidates []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("parsing signature timestamp: %w", ErrSignatureInvalid)
			}
			ts = parsed
		case "v1":
			candidates = append(candidates, v)
		}
	}
	if ts == 0 || len(candidates) == 0 {
		return ErrSignatureInvalid
	}

	stamped := time.Unix(ts, 0)
	if now.Sub(stamped) > tolerance || stamped.Sub(now) > tolerance {
		return ErrSignatureExpired
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range candidates {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}
	return ErrSignatureInvalid
}

// SignPayload produces a signature header for payload, used by tests and the
// local development webhook replayer.
func SignPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

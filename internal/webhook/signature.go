package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is how far a signature timestamp may drift from the
// receiver's clock before Verify rejects it.
const DefaultTolerance = 5 * time.Minute

var (
	ErrInvalidSignatureHeader = errors.New("webhook: invalid signature header")
	ErrSignatureMismatch      = errors.New("webhook: signature mismatch")
	ErrSignatureExpired       = errors.New("webhook: signature timestamp outside tolerance")
)

// Sign builds the X-MPD-Signature value for payload using the current time.
func Sign(secret string, payload []byte) string {
	return SignAt(secret, payload, time.Now())
}

// SignAt builds "t=<unix>, v1=<hex>" where v1 is HMAC-SHA256(secret, "<t>.<payload>").
func SignAt(secret string, payload []byte, at time.Time) string {
	t := at.Unix()
	return "t=" + strconv.FormatInt(t, 10) + ", v1=" + computeMAC(secret, t, payload)
}

func computeMAC(secret string, t int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(t, 10)))
	mac.Write([]byte{'.'})
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader is a parsed X-MPD-Signature value.
type SignatureHeader struct {
	Timestamp  int64
	Signatures []string
}

// ParseSignatureHeader accepts comma separated key=value pairs in any order.
// Unknown keys are ignored; more than one v1 is allowed so senders can roll
// secrets.
func ParseSignatureHeader(header string) (*SignatureHeader, error) {
	var (
		sh     SignatureHeader
		haveTS bool
	)

	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, ErrInvalidSignatureHeader
			}
			sh.Timestamp = ts
			haveTS = true
		case "v1":
			if value != "" {
				sh.Signatures = append(sh.Signatures, value)
			}
		}
	}

	if !haveTS || len(sh.Signatures) == 0 {
		return nil, ErrInvalidSignatureHeader
	}

	return &sh, nil
}

// Verify checks header against payload the way a receiver should: recompute
// the HMAC over "<t>.<payload>", compare in constant time, and reject
// timestamps further than tolerance from now. A tolerance <= 0 disables the
// freshness check.
func Verify(secret string, payload []byte, header string, tolerance time.Duration, now time.Time) error {
	sh, err := ParseSignatureHeader(header)
	if err != nil {
		return err
	}

	expected := []byte(computeMAC(secret, sh.Timestamp, payload))

	matched := false
	for _, sig := range sh.Signatures {
		if hmac.Equal(expected, []byte(strings.ToLower(sig))) {
			matched = true
			break
		}
	}
	if !matched {
		return ErrSignatureMismatch
	}

	if tolerance > 0 {
		// compare instants; a Duration saturates for extreme timestamps
		signedAt := time.Unix(sh.Timestamp, 0)
		if signedAt.Before(now.Add(-tolerance)) || signedAt.After(now.Add(tolerance)) {
			return ErrSignatureExpired
		}
	}

	return nil
}

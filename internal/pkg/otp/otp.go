package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// span is the number of possible codes: 100000..999999 inclusive.
const span = 900000

// NewCode generates a uniformly random 6-digit login code in the
// range 100000–999999. The leading digit is never zero, so the string
// and numeric forms always agree.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

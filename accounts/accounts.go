// Package accounts generates the demo account numbers returned by the
// protected API. A real deployment would replace this with a uniqueness
// guarantee backed by a database.
package accounts

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// 10-digit range, so the number never has a leading zero.
const (
	minNumber = 1_000_000_000
	maxNumber = 9_999_999_999
)

// Number returns a random 10-digit account number. Generation can fail if
// the system RNG cannot supply entropy; callers surface that as a server
// error rather than retrying.
func Number() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxNumber-minNumber+1))
	if err != nil {
		return "", fmt.Errorf("generating account number: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+minNumber), nil
}

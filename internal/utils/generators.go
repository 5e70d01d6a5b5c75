package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateTicketToken produces the opaque token embedded in a
// registration at submit time. Not a credential by itself; the ticket
// QR carries the authoritative payload.
func GenerateTicketToken() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999999))
	return fmt.Sprintf("tok_%d_%09d", timestamp, randomNum.Int64())
}

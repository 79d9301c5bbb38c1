package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GeneratePurchaseID creates a purchase identifier.
func GeneratePurchaseID() string {
	return uuid.NewString()
}

// GenerateAccessToken creates the opaque token customers use to
// retrieve their purchase without authentication.
func GenerateAccessToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GenerateTicketNumber builds a globally unique, human-readable ticket
// number from the purchase id, the unit's sequence within the purchase
// and a random suffix. The same value is used as the QR payload.
func GenerateTicketNumber(prefix, purchaseID string, seq int) string {
	short := strings.ToUpper(strings.ReplaceAll(purchaseID, "-", ""))
	if len(short) > 8 {
		short = short[:8]
	}
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(9999))
	return fmt.Sprintf("%s-%s-%d-%04d", prefix, short, seq, randomNum.Int64())
}

// GeneratePaymentReference creates a reference for test fixtures and
// manual (cash) purchases recorded without a gateway.
func GeneratePaymentReference() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("ref_%d_%06d", timestamp, randomNum.Int64())
}

package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// GenerateAttemptID builds a journal reference for one submission attempt.
func GenerateAttemptID() string {
	return "att_" + uuid.New().String()
}

// GenerateConfirmationCode builds the code embedded in QR tickets.
func GenerateConfirmationCode() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999999))
	return fmt.Sprintf("conf_%d_%09d", timestamp, randomNum.Int64())
}

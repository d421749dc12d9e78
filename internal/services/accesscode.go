package services

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/gamfolz-glitch/pollapp/internal/models"

	"gorm.io/gorm"
)

// Access codes are 8 uppercase alphanumerics. 0 and O are left out of the
// alphabet because participants type these codes by hand.
const (
	accessCodeLength      = 8
	accessCodeAlphabet    = "ABCDEFGHIJKLMNPQRSTUVWXYZ123456789"
	accessCodeMaxAttempts = 10
)

var errAccessCodeExhausted = errors.New("could not generate a unique access code")

func randomAccessCode() (string, error) {
	code := make([]byte, accessCodeLength)
	max := big.NewInt(int64(len(accessCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = accessCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// uniqueAccessCode retries a bounded number of times against the polls
// table; exhausting the retries is treated as a fatal configuration
// problem, not something to spin on.
func uniqueAccessCode(db *gorm.DB) (string, error) {
	for i := 0; i < accessCodeMaxAttempts; i++ {
		code, err := randomAccessCode()
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(&models.Poll{}).Where("access_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errAccessCodeExhausted
}

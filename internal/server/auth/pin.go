package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/moodjournal/internal/common"
)

// dummyHash is compared against when the username is unknown so that a
// failed lookup costs as much as a failed PIN check.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no-such-account"), bcrypt.DefaultCost)

// HashPin returns the salted bcrypt hash of pin.
func HashPin(pin string) ([]byte, error) {
	b := []byte(pin)
	defer common.WipeByteArray(b)
	return bcrypt.GenerateFromPassword(b, bcrypt.DefaultCost)
}

// CheckPin reports whether pin matches hash. A nil hash is checked against
// a dummy so the call always does the same amount of work.
func CheckPin(hash []byte, pin string) bool {
	b := []byte(pin)
	defer common.WipeByteArray(b)

	if hash == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, b)
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, b) == nil
}

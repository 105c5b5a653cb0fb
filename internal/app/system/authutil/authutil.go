// Package authutil holds password hashing helpers.
package authutil

import "golang.org/x/crypto/bcrypt"

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 10

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches hash. An empty or
// malformed hash never matches.
func CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when the account does not exist so a
// missing email costs about as much as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("bloodlink-timing-pad"), BcryptCost)

// BurnCompare spends one bcrypt comparison and discards the result.
func BurnCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

package accounts

import "golang.org/x/crypto/bcrypt"

// bcryptCost trades hashing time against brute-force resistance; 12 is
// roughly a quarter second per hash on current hardware.
const bcryptCost = 12

// HashPassword derives the bcrypt hash stored in the users table.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

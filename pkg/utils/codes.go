package utils

import "golang.org/x/crypto/bcrypt"

// HashCode hashes a confirmation code with bcrypt before it is stored.
func HashCode(code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CompareCode compares a stored hash with the code the client submitted.
func CompareCode(hashedCode, code string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(code))
}

package credentials

import "golang.org/x/crypto/bcrypt"

const HashVersionBcrypt = "bcrypt"

// HashPassword hashes a plaintext password using bcrypt. Length policy
// is the validator's job; by the time a password reaches here it has
// already passed local validation.
func HashPassword(password string) (hash string, version string, err error) {
	bytes, err := bcrypt.GenerateFromPassword(
		[]byte(password),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return "", "", err
	}

	return string(bytes), HashVersionBcrypt, nil
}

// VerifyPassword compares a plaintext password with a stored hash.
func VerifyPassword(hash string, password string) error {
	return bcrypt.CompareHashAndPassword(
		[]byte(hash),
		[]byte(password),
	)
}

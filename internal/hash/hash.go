package hash

import "golang.org/x/crypto/bcrypt"

// HashPassword salts and hashes a plaintext password. bcrypt generates a
// fresh salt on every call, so two hashes of the same password differ.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func CheckPassword(hashed []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hashed, []byte(password)) == nil
}

package auth

import "regexp"

const MinPasswordLength = 6

// Field messages mirror what the workspace UI renders inline.
const (
	msgInvalidEmail  = "Please enter a valid email address"
	msgShortPassword = "Password must be at least 6 characters"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateSignUp checks email format and the password length policy.
// It reports every failing field at once so the UI can highlight both.
// Returns nil when the input is acceptable.
func ValidateSignUp(email, password string) *ValidationError {
	fields := make(map[string]string)

	if !emailPattern.MatchString(email) {
		fields["email"] = msgInvalidEmail
	}
	if len(password) < MinPasswordLength {
		fields["password"] = msgShortPassword
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

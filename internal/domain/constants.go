package domain

// Time format constants
const (
	TimeFormat        = "15:04"      // HH:MM
	DateFormat        = "2006-01-02" // YYYY-MM-DD, storage and API form
	DisplayDateFormat = "02-01-2006" // DD-MM-YYYY, as shown to customers
)

// PasswordSpecialChars lists the characters that satisfy the special character
// requirement of the password policy.
const PasswordSpecialChars = `!@#$%^&*(),.?":{}|<>`

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

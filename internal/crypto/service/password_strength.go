package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

// commonPasswords are frequent leaked passwords and dictionary stems. An exact match is
// penalized harder than a substring match.
var commonPasswords = []string{
	"password",
	"passw0rd",
	"123456",
	"12345678",
	"qwerty",
	"letmein",
	"welcome",
	"admin",
	"monkey",
	"dragon",
	"iloveyou",
	"sunshine",
	"princess",
	"football",
	"baseball",
	"master",
	"login",
	"secret",
	"abc123",
}

// EvaluatePassword scores password strength from 0 to cryptoDomain.MaxPasswordScore.
//
// Length and character-class variety add points; ascending or descending runs,
// repeated characters and common words subtract them. A password is valid when it has
// at least cryptoDomain.MinPasswordLength characters and scores at least
// cryptoDomain.MinAcceptablePasswordScore. The score is a heuristic, not an entropy
// estimate.
func EvaluatePassword(password string) cryptoDomain.PasswordStrength {
	feedback := []string{}
	length := utf8.RuneCountInString(password)
	score := 0

	switch {
	case length >= 16:
		score += 3
	case length >= 12:
		score += 2
	case length >= cryptoDomain.MinPasswordLength:
		score++
	default:
		feedback = append(feedback, "Use at least 8 characters")
	}

	classes := characterClasses(password)
	switch {
	case classes == 4:
		score += 2
	case classes == 3:
		score++
	default:
		feedback = append(feedback, "Mix uppercase, lowercase, numbers and symbols")
	}

	if hasSequence(password) {
		score--
		feedback = append(feedback, "Avoid sequences like 123 or abc")
	}
	if hasRepeats(password) {
		score--
		feedback = append(feedback, "Avoid repeating the same character")
	}

	lower := strings.ToLower(password)
	for _, word := range commonPasswords {
		if lower == word {
			score -= 2
			feedback = append(feedback, "This is a commonly used password")
			break
		}
		if strings.Contains(lower, word) {
			score--
			feedback = append(feedback, "Avoid common words and passwords")
			break
		}
	}

	score = max(0, min(score, cryptoDomain.MaxPasswordScore))

	return cryptoDomain.PasswordStrength{
		IsValid:  length >= cryptoDomain.MinPasswordLength && score >= cryptoDomain.MinAcceptablePasswordScore,
		Score:    score,
		Feedback: feedback,
	}
}

func characterClasses(password string) int {
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}

	count := 0
	for _, present := range []bool{lower, upper, digit, symbol} {
		if present {
			count++
		}
	}
	return count
}

// hasSequence reports three consecutive letters or digits in ascending or descending
// order, case-insensitively.
func hasSequence(password string) bool {
	runes := []rune(strings.ToLower(password))
	for i := 2; i < len(runes); i++ {
		a, b, c := runes[i-2], runes[i-1], runes[i]
		if !sameSequenceClass(a, b, c) {
			continue
		}
		if (b-a == 1 && c-b == 1) || (a-b == 1 && b-c == 1) {
			return true
		}
	}
	return false
}

func sameSequenceClass(runes ...rune) bool {
	allDigits, allLetters := true, true
	for _, r := range runes {
		allDigits = allDigits && r >= '0' && r <= '9'
		allLetters = allLetters && r >= 'a' && r <= 'z'
	}
	return allDigits || allLetters
}

// hasRepeats reports the same character three or more times in a row.
func hasRepeats(password string) bool {
	runes := []rune(password)
	for i := 2; i < len(runes); i++ {
		if runes[i] == runes[i-1] && runes[i] == runes[i-2] {
			return true
		}
	}
	return false
}

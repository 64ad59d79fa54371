package domain

const (
	// MaxPasswordScore is the highest strength score.
	MaxPasswordScore = 4

	// MinAcceptablePasswordScore is the lowest score a usable password may have.
	MinAcceptablePasswordScore = 2
)

// PasswordStrength is the heuristic strength assessment of a password.
type PasswordStrength struct {
	IsValid  bool     `json:"is_valid"`
	Score    int      `json:"score"`
	Feedback []string `json:"feedback"`
}

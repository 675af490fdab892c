package models

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"skill-swap-backend/internal/apperr"
)

const (
	MaxBioLength         = 500
	MaxMessageLength     = 500
	MaxCommentLength     = 500
	MaxReportTitle       = 200
	MaxReportDescription = 2000
	MaxBroadcastLength   = 2000
	MinNameLength        = 2
	MinPasswordLength    = 6
	MinRating            = 1
	MaxRating            = 5
)

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeSkills trims every skill and drops empty entries
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ValidateName checks a display name
func ValidateName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < MinNameLength {
		return apperr.Validation("Name must be at least 2 characters")
	}
	return nil
}

// ValidateEmail checks that email is a bare address
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.Validation("Please provide a valid email")
	}
	return nil
}

// ValidateRegistration checks the fields of a sign-up request.
// email must already be normalized.
func ValidateRegistration(name, email, password string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if len(password) < MinPasswordLength {
		return apperr.Validation("Password must be at least 6 characters")
	}
	return nil
}

// ValidateBio checks the profile bio length
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return apperr.Validation("Bio must be at most 500 characters")
	}
	return nil
}

// ValidateSwapMessage checks the optional swap request message
func ValidateSwapMessage(message string) error {
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return apperr.Validation("Message too long")
	}
	return nil
}

// ValidateFeedback checks a rating and its optional comment
func ValidateFeedback(rating int, comment string) error {
	if rating < MinRating || rating > MaxRating {
		return apperr.Validation("Rating must be between 1 and 5")
	}
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return apperr.Validation("Comment too long")
	}
	return nil
}

// ValidateReport checks the text of a moderation report
func ValidateReport(title, description string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return apperr.Validation("Title is required")
	}
	if utf8.RuneCountInString(title) > MaxReportTitle {
		return apperr.Validation("Title too long")
	}
	if strings.TrimSpace(description) == "" {
		return apperr.Validation("Description is required")
	}
	if utf8.RuneCountInString(description) > MaxReportDescription {
		return apperr.Validation("Description too long")
	}
	return nil
}

// ValidateBroadcast checks an admin platform message
func ValidateBroadcast(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperr.Validation("Message is required")
	}
	if utf8.RuneCountInString(content) > MaxBroadcastLength {
		return apperr.Validation("Message too long")
	}
	return nil
}

package models

import (
	"strings"
	"testing"

	"skill-swap-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestSwapStatusTransitions(t *testing.T) {
	all := []SwapStatus{SwapPending, SwapAccepted, SwapRejected, SwapCompleted, SwapCancelled}
	legal := map[[2]SwapStatus]bool{
		{SwapPending, SwapAccepted}:   true,
		{SwapPending, SwapRejected}:   true,
		{SwapAccepted, SwapCompleted}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[[2]SwapStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestReportStatusOpen(t *testing.T) {
	assert.True(t, ReportPending.Open())
	assert.True(t, ReportInvestigating.Open())
	assert.False(t, ReportResolved.Open())
	assert.False(t, ReportDismissed.Open())
}

func TestSwapParticipants(t *testing.T) {
	s := &Swap{RequesterID: "a", TargetID: "b"}

	assert.True(t, s.IsParticipant("a"))
	assert.True(t, s.IsParticipant("b"))
	assert.False(t, s.IsParticipant("c"))
	assert.Equal(t, "b", s.Counterpart("a"))
	assert.Equal(t, "a", s.Counterpart("b"))
	assert.False(t, s.HasFeedback())

	s.Feedback = &Feedback{Rating: 3, ReviewerID: "a"}
	assert.True(t, s.HasFeedback())
}

func TestPublicProfileHidesEmail(t *testing.T) {
	u := &User{ID: "u1", Name: "Ada", Email: "ada@example.com", AverageRating: 4.5}
	p := u.Public()

	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, 4.5, p.AverageRating)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
	assert.Equal(t, []string{"go", "guitar"}, NormalizeSkills([]string{" go ", "", "  ", "guitar"}))
	assert.Empty(t, NormalizeSkills(nil))
}

func TestValidateRegistration(t *testing.T) {
	assert.NoError(t, ValidateRegistration("Ada", "ada@example.com", "secret1"))
	assert.True(t, apperr.Is(ValidateRegistration("A", "ada@example.com", "secret1"), apperr.KindValidation))
	assert.True(t, apperr.Is(ValidateRegistration("Ada", "not-an-email", "secret1"), apperr.KindValidation))
	assert.True(t, apperr.Is(ValidateRegistration("Ada", "Ada <ada@example.com>", "secret1"), apperr.KindValidation))
	assert.True(t, apperr.Is(ValidateRegistration("Ada", "ada@example.com", "123"), apperr.KindValidation))
}

func TestValidateFeedback(t *testing.T) {
	for r := 1; r <= 5; r++ {
		assert.NoError(t, ValidateFeedback(r, "thanks"))
	}
	assert.Error(t, ValidateFeedback(0, ""))
	assert.Error(t, ValidateFeedback(6, ""))
	assert.Error(t, ValidateFeedback(3, strings.Repeat("x", 501)))
	assert.NoError(t, ValidateFeedback(3, strings.Repeat("é", 500)))
}

func TestValidateLengths(t *testing.T) {
	assert.NoError(t, ValidateBio(strings.Repeat("b", 500)))
	assert.Error(t, ValidateBio(strings.Repeat("b", 501)))
	assert.NoError(t, ValidateSwapMessage(""))
	assert.Error(t, ValidateSwapMessage(strings.Repeat("m", 501)))
}

func TestValidateReport(t *testing.T) {
	assert.NoError(t, ValidateReport("Spam", "sends spam links"))
	assert.Error(t, ValidateReport("  ", "desc"))
	assert.Error(t, ValidateReport("Spam", ""))
	assert.Error(t, ValidateReport(strings.Repeat("t", 201), "desc"))
}

func TestValidateBroadcast(t *testing.T) {
	assert.NoError(t, ValidateBroadcast("maintenance tonight"))
	assert.Error(t, ValidateBroadcast("   "))
}

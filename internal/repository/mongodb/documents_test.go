package mongodb

import (
	"testing"
	"time"

	"skill-swap-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairKey_IsOrderIndependent(t *testing.T) {
	assert.Equal(t, pairKey("a", "b"), pairKey("b", "a"))
	assert.NotEqual(t, pairKey("a", "b"), pairKey("a", "c"))
}

func TestSwapDoc_Roundtrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	swap := &models.Swap{
		ID:          "s1",
		RequesterID: "u2",
		TargetID:    "u1",
		Status:      models.SwapCompleted,
		Feedback:    &models.Feedback{Rating: 4, Comment: "great", ReviewerID: "u2", CreatedAt: now},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	doc := newSwapDoc(swap)
	assert.Equal(t, "u1|u2", doc.PairKey)
	assert.Equal(t, []string{}, doc.SkillsOffered)

	back := doc.model()
	require.NotNil(t, back.Feedback)
	assert.Equal(t, 4, back.Feedback.Rating)
	assert.Equal(t, "u2", back.Feedback.ReviewerID)
	assert.Equal(t, models.SwapCompleted, back.Status)
}

func TestSwapDoc_EmptyFeedbackIsDropped(t *testing.T) {
	doc := &swapDoc{ID: "s1", Status: "completed", Feedback: &feedbackDoc{}}
	assert.Nil(t, doc.model().Feedback)
}

func TestUserDoc_KeepsCounters(t *testing.T) {
	photo := "https://cdn.example.com/p.jpg"
	user := &models.User{
		ID: "u1", Name: "Ann", Email: "ann@example.com", Role: models.RoleAdmin,
		ProfilePhoto: &photo, AverageRating: 3.5, TotalRatings: 2, TotalSwaps: 7,
	}
	back := newUserDoc(user).model()
	assert.Equal(t, user.Role, back.Role)
	assert.Equal(t, 3.5, back.AverageRating)
	assert.Equal(t, 2, back.TotalRatings)
	assert.Equal(t, 7, back.TotalSwaps)
	assert.Equal(t, &photo, back.ProfilePhoto)
	assert.Equal(t, []string{}, back.SkillsWanted)
}

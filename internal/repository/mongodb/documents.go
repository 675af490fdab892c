package mongodb

import (
	"time"

	"skill-swap-backend/internal/models"
)

type userDoc struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	Email         string    `bson:"email"`
	PasswordHash  string    `bson:"password"`
	Location      string    `bson:"location"`
	Bio           string    `bson:"bio"`
	SkillsOffered []string  `bson:"skillsOffered"`
	SkillsWanted  []string  `bson:"skillsWanted"`
	Availability  string    `bson:"availability"`
	IsPublic      bool      `bson:"isPublic"`
	IsBanned      bool      `bson:"isBanned"`
	Role          string    `bson:"role"`
	ProfilePhoto  *string   `bson:"profilePhoto,omitempty"`
	PushToken     *string   `bson:"pushToken,omitempty"`
	AverageRating float64   `bson:"averageRating"`
	TotalRatings  int       `bson:"totalRatings"`
	TotalSwaps    int       `bson:"totalSwaps"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

func newUserDoc(u *models.User) *userDoc {
	return &userDoc{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		Location:      u.Location,
		Bio:           u.Bio,
		SkillsOffered: nonNil(u.SkillsOffered),
		SkillsWanted:  nonNil(u.SkillsWanted),
		Availability:  u.Availability,
		IsPublic:      u.IsPublic,
		IsBanned:      u.IsBanned,
		Role:          string(u.Role),
		ProfilePhoto:  u.ProfilePhoto,
		PushToken:     u.PushToken,
		AverageRating: u.AverageRating,
		TotalRatings:  u.TotalRatings,
		TotalSwaps:    u.TotalSwaps,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (d *userDoc) model() *models.User {
	return &models.User{
		ID:            d.ID,
		Name:          d.Name,
		Email:         d.Email,
		PasswordHash:  d.PasswordHash,
		Location:      d.Location,
		Bio:           d.Bio,
		SkillsOffered: nonNil(d.SkillsOffered),
		SkillsWanted:  nonNil(d.SkillsWanted),
		Availability:  d.Availability,
		IsPublic:      d.IsPublic,
		IsBanned:      d.IsBanned,
		Role:          models.Role(d.Role),
		ProfilePhoto:  d.ProfilePhoto,
		PushToken:     d.PushToken,
		AverageRating: d.AverageRating,
		TotalRatings:  d.TotalRatings,
		TotalSwaps:    d.TotalSwaps,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type feedbackDoc struct {
	Rating    int       `bson:"rating"`
	Comment   string    `bson:"comment"`
	Reviewer  string    `bson:"reviewer"`
	CreatedAt time.Time `bson:"createdAt"`
}

type swapDoc struct {
	ID              string       `bson:"_id"`
	Requester       string       `bson:"requester"`
	Target          string       `bson:"target"`
	PairKey         string       `bson:"pairKey"`
	Message         string       `bson:"message"`
	Status          string       `bson:"status"`
	SkillsRequested []string     `bson:"skillsRequested"`
	SkillsOffered   []string     `bson:"skillsOffered"`
	ScheduledDate   *time.Time   `bson:"scheduledDate,omitempty"`
	CompletedDate   *time.Time   `bson:"completedDate,omitempty"`
	Feedback        *feedbackDoc `bson:"feedback,omitempty"`
	CreatedAt       time.Time    `bson:"createdAt"`
	UpdatedAt       time.Time    `bson:"updatedAt"`
}

// pairKey identifies the unordered pair of participants
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func newSwapDoc(s *models.Swap) *swapDoc {
	d := &swapDoc{
		ID:              s.ID,
		Requester:       s.RequesterID,
		Target:          s.TargetID,
		PairKey:         pairKey(s.RequesterID, s.TargetID),
		Message:         s.Message,
		Status:          string(s.Status),
		SkillsRequested: nonNil(s.SkillsRequested),
		SkillsOffered:   nonNil(s.SkillsOffered),
		ScheduledDate:   s.ScheduledDate,
		CompletedDate:   s.CompletedDate,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if s.Feedback != nil {
		d.Feedback = &feedbackDoc{
			Rating:    s.Feedback.Rating,
			Comment:   s.Feedback.Comment,
			Reviewer:  s.Feedback.ReviewerID,
			CreatedAt: s.Feedback.CreatedAt,
		}
	}
	return d
}

func (d *swapDoc) model() *models.Swap {
	s := &models.Swap{
		ID:              d.ID,
		RequesterID:     d.Requester,
		TargetID:        d.Target,
		Message:         d.Message,
		Status:          models.SwapStatus(d.Status),
		SkillsRequested: nonNil(d.SkillsRequested),
		SkillsOffered:   nonNil(d.SkillsOffered),
		ScheduledDate:   d.ScheduledDate,
		CompletedDate:   d.CompletedDate,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	// documents written by older clients may carry an empty feedback object
	if d.Feedback != nil && d.Feedback.Rating > 0 {
		s.Feedback = &models.Feedback{
			Rating:     d.Feedback.Rating,
			Comment:    d.Feedback.Comment,
			ReviewerID: d.Feedback.Reviewer,
			CreatedAt:  d.Feedback.CreatedAt,
		}
	}
	return s
}

type reportDoc struct {
	ID           string     `bson:"_id"`
	Reporter     string     `bson:"reporter"`
	ReportedUser string     `bson:"reportedUser"`
	Title        string     `bson:"title"`
	Description  string     `bson:"description"`
	Status       string     `bson:"status"`
	AdminNotes   string     `bson:"adminNotes"`
	ResolvedBy   *string    `bson:"resolvedBy,omitempty"`
	ResolvedAt   *time.Time `bson:"resolvedAt,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt"`
}

func newReportDoc(r *models.Report) *reportDoc {
	return &reportDoc{
		ID:           r.ID,
		Reporter:     r.ReporterID,
		ReportedUser: r.ReportedUserID,
		Title:        r.Title,
		Description:  r.Description,
		Status:       string(r.Status),
		AdminNotes:   r.AdminNotes,
		ResolvedBy:   r.ResolvedBy,
		ResolvedAt:   r.ResolvedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (d *reportDoc) model() *models.Report {
	return &models.Report{
		ID:             d.ID,
		ReporterID:     d.Reporter,
		ReportedUserID: d.ReportedUser,
		Title:          d.Title,
		Description:    d.Description,
		Status:         models.ReportStatus(d.Status),
		AdminNotes:     d.AdminNotes,
		ResolvedBy:     d.ResolvedBy,
		ResolvedAt:     d.ResolvedAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type messageDoc struct {
	ID        string    `bson:"_id"`
	Content   string    `bson:"content"`
	SentBy    string    `bson:"sentBy"`
	CreatedAt time.Time `bson:"createdAt"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

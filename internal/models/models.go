package models

import "time"

// Role is a user's permission level
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// SwapStatus is the lifecycle state of a swap
type SwapStatus string

const (
	SwapPending   SwapStatus = "pending"
	SwapAccepted  SwapStatus = "accepted"
	SwapRejected  SwapStatus = "rejected"
	SwapCompleted SwapStatus = "completed"
	SwapCancelled SwapStatus = "cancelled"
)

// swapTransitions lists the legal status edges. Feedback is tracked
// separately on completed swaps.
var swapTransitions = map[SwapStatus][]SwapStatus{
	SwapPending:  {SwapAccepted, SwapRejected},
	SwapAccepted: {SwapCompleted},
}

// CanTransitionTo reports whether a swap in status s may move to next
func (s SwapStatus) CanTransitionTo(next SwapStatus) bool {
	for _, allowed := range swapTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status
func (s SwapStatus) Valid() bool {
	switch s {
	case SwapPending, SwapAccepted, SwapRejected, SwapCompleted, SwapCancelled:
		return true
	}
	return false
}

// ReportStatus is the moderation state of a report
type ReportStatus string

const (
	ReportPending       ReportStatus = "pending"
	ReportInvestigating ReportStatus = "investigating"
	ReportResolved      ReportStatus = "resolved"
	ReportDismissed     ReportStatus = "dismissed"
)

// Open reports whether the report still awaits a decision
func (s ReportStatus) Open() bool {
	return s == ReportPending || s == ReportInvestigating
}

// User represents a marketplace member
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Location      string    `json:"location"`
	Bio           string    `json:"bio"`
	SkillsOffered []string  `json:"skills_offered"`
	SkillsWanted  []string  `json:"skills_wanted"`
	Availability  string    `json:"availability"`
	IsPublic      bool      `json:"is_public"`
	IsBanned      bool      `json:"is_banned"`
	Role          Role      `json:"role"`
	ProfilePhoto  *string   `json:"profile_photo,omitempty"`
	PushToken     *string   `json:"-"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int       `json:"total_ratings"`
	TotalSwaps    int       `json:"total_swaps"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicProfile is the view of a user shown to other members
type PublicProfile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Location      string    `json:"location"`
	Bio           string    `json:"bio"`
	SkillsOffered []string  `json:"skills_offered"`
	SkillsWanted  []string  `json:"skills_wanted"`
	Availability  string    `json:"availability"`
	ProfilePhoto  *string   `json:"profile_photo,omitempty"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int       `json:"total_ratings"`
	TotalSwaps    int       `json:"total_swaps"`
	CreatedAt     time.Time `json:"created_at"`
}

// Public strips private fields from a user
func (u *User) Public() *PublicProfile {
	return &PublicProfile{
		ID:            u.ID,
		Name:          u.Name,
		Location:      u.Location,
		Bio:           u.Bio,
		SkillsOffered: u.SkillsOffered,
		SkillsWanted:  u.SkillsWanted,
		Availability:  u.Availability,
		ProfilePhoto:  u.ProfilePhoto,
		AverageRating: u.AverageRating,
		TotalRatings:  u.TotalRatings,
		TotalSwaps:    u.TotalSwaps,
		CreatedAt:     u.CreatedAt,
	}
}

// UserSummary identifies a user inside another record's view
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Summary returns the summary of u
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Feedback is the single rating left on a completed swap
type Feedback struct {
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	ReviewerID string    `json:"reviewer_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Swap is a proposed or executed skill exchange between two users
type Swap struct {
	ID              string     `json:"id"`
	RequesterID     string     `json:"requester_id"`
	TargetID        string     `json:"target_id"`
	Message         string     `json:"message"`
	Status          SwapStatus `json:"status"`
	SkillsRequested []string   `json:"skills_requested"`
	SkillsOffered   []string   `json:"skills_offered"`
	ScheduledDate   *time.Time `json:"scheduled_date,omitempty"`
	CompletedDate   *time.Time `json:"completed_date,omitempty"`
	Feedback        *Feedback  `json:"feedback,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsParticipant reports whether userID is the requester or the target
func (s *Swap) IsParticipant(userID string) bool {
	return s.RequesterID == userID || s.TargetID == userID
}

// Counterpart returns the other participant of the swap
func (s *Swap) Counterpart(userID string) string {
	if s.RequesterID == userID {
		return s.TargetID
	}
	return s.RequesterID
}

// HasFeedback reports whether a rating was already left on the swap
func (s *Swap) HasFeedback() bool {
	return s.Feedback != nil && s.Feedback.Rating > 0
}

// SwapView is a swap with its participants resolved
type SwapView struct {
	*Swap
	Requester *UserSummary `json:"requester,omitempty"`
	Target    *UserSummary `json:"target,omitempty"`
}

// Report is a moderation complaint filed against a user
type Report struct {
	ID             string       `json:"id"`
	ReporterID     string       `json:"reporter_id"`
	ReportedUserID string       `json:"reported_user_id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Status         ReportStatus `json:"status"`
	AdminNotes     string       `json:"admin_notes"`
	ResolvedBy     *string      `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// ReportView is a report with reporter and reported user resolved
type ReportView struct {
	*Report
	Reporter     *UserSummary `json:"reporter,omitempty"`
	ReportedUser *UserSummary `json:"reported_user,omitempty"`
}

// PlatformMessage is an admin broadcast
type PlatformMessage struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	SentBy    string       `json:"sent_by"`
	Sender    *UserSummary `json:"sender,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// UserStats are the dashboard counters of one user
type UserStats struct {
	TotalSwaps      int     `json:"total_swaps"`
	PendingRequests int     `json:"pending_requests"`
	CompletedSwaps  int     `json:"completed_swaps"`
	AverageRating   float64 `json:"average_rating"`
}

// AdminStats are the platform-wide counters
type AdminStats struct {
	TotalUsers     int `json:"total_users"`
	TotalSwaps     int `json:"total_swaps"`
	PendingReports int `json:"pending_reports"`
	ActiveUsers    int `json:"active_users"`
}

// Activity is one entry of a user's recent swap history
type Activity struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

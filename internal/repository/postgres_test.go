package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"skill-swap-backend/internal/apperr"
	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PostgresSuite struct {
	suite.Suite
	ctx    context.Context
	ctr    *postgres.PostgresContainer
	db     *pgxpool.Pool
	stores *repository.Stores
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container tests in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()

	ctr, err := postgres.Run(s.ctx, "postgres:16-alpine",
		postgres.WithDatabase("skillswap"),
		postgres.WithUsername("skillswap"),
		postgres.WithPassword("skillswap"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.ctr = ctr

	url, err := ctr.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.Require().NoError(repository.Migrate(url))

	s.db, err = repository.OpenPostgres(s.ctx, url)
	s.Require().NoError(err)
	s.stores = repository.NewPostgresStores(s.db)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.ctr != nil {
		s.Require().NoError(s.ctr.Terminate(s.ctx))
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.db.Exec(s.ctx, `TRUNCATE platform_messages, reports, swaps, users`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) newUser(name string) *models.User {
	now := time.Now().UTC()
	u := &models.User{
		ID:            uuid.New().String(),
		Name:          name,
		Email:         name + "@example.com",
		PasswordHash:  "hash",
		SkillsOffered: []string{"Go", "Cooking"},
		IsPublic:      true,
		Role:          models.RoleUser,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.Require().NoError(s.stores.Users.Create(s.ctx, u))
	return u
}

func (s *PostgresSuite) newSwap(requester, target *models.User) *models.Swap {
	now := time.Now().UTC()
	sw := &models.Swap{
		ID:          uuid.New().String(),
		RequesterID: requester.ID,
		TargetID:    target.ID,
		Status:      models.SwapPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.Require().NoError(s.stores.Swaps.Create(s.ctx, sw))
	return sw
}

func (s *PostgresSuite) TestUsers_DuplicateEmailConflicts() {
	u := s.newUser("ann")
	dup := *u
	dup.ID = uuid.New().String()
	dup.Email = "ANN@example.com"

	err := s.stores.Users.Create(s.ctx, &dup)
	s.True(apperr.Is(err, apperr.KindConflict))

	found, err := s.stores.Users.GetByEmail(s.ctx, "Ann@Example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)

	_, err = s.stores.Users.GetByID(s.ctx, uuid.New().String())
	s.True(apperr.Is(err, apperr.KindNotFound))
}

func (s *PostgresSuite) TestUsers_ListPublicFiltersAndExcludes() {
	me := s.newUser("me")
	other := s.newUser("other")
	banned := s.newUser("banned")
	_, err := s.stores.Users.SetBanned(s.ctx, banned.ID, true)
	s.Require().NoError(err)

	users, err := s.stores.Users.ListPublic(s.ctx, me.ID, "")
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal(other.ID, users[0].ID)

	users, err = s.stores.Users.ListPublic(s.ctx, me.ID, "cook")
	s.Require().NoError(err)
	s.Len(users, 1)

	users, err = s.stores.Users.ListPublic(s.ctx, me.ID, "welding")
	s.Require().NoError(err)
	s.Empty(users)

	total, active, err := s.stores.Users.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Equal(2, active)
}

func (s *PostgresSuite) TestUsers_ListPublicMatchesWildcardsLiterally() {
	viewer := s.newUser("viewer")
	literal := s.newUser("literal")
	_, err := s.stores.Users.UpdateProfile(s.ctx, literal.ID, repository.ProfileUpdate{
		Name: "literal", Email: literal.Email, SkillsOffered: []string{"100%_Juice"}, SkillsWanted: []string{}, IsPublic: true,
	})
	s.Require().NoError(err)

	for _, term := range []string{"%", "_", "0%_j"} {
		users, err := s.stores.Users.ListPublic(s.ctx, viewer.ID, term)
		s.Require().NoError(err)
		s.Require().Len(users, 1, term)
		s.Equal(literal.ID, users[0].ID)
	}
}

func (s *PostgresSuite) completedSwap(requester, target *models.User) *models.Swap {
	sw := s.newSwap(requester, target)
	_, err := s.stores.Swaps.Transition(s.ctx, sw.ID, models.SwapPending, models.SwapAccepted)
	s.Require().NoError(err)
	done, err := s.stores.Swaps.Complete(s.ctx, sw.ID, time.Now().UTC())
	s.Require().NoError(err)
	return done
}

func (s *PostgresSuite) feedback(reviewer *models.User, rating int) models.Feedback {
	return models.Feedback{Rating: rating, ReviewerID: reviewer.ID, CreatedAt: time.Now().UTC()}
}

func (s *PostgresSuite) TestSwaps_FeedbackRunningAverage() {
	target, x, y := s.newUser("target"), s.newUser("x"), s.newUser("y")
	xs, ys := s.completedSwap(x, target), s.completedSwap(target, y)

	_, u, err := s.stores.Swaps.AttachFeedback(s.ctx, xs.ID, target.ID, s.feedback(x, 4))
	s.Require().NoError(err)
	s.InDelta(4.0, u.AverageRating, 1e-9)
	s.Equal(1, u.TotalRatings)

	_, u, err = s.stores.Swaps.AttachFeedback(s.ctx, ys.ID, target.ID, s.feedback(y, 2))
	s.Require().NoError(err)
	s.InDelta(3.0, u.AverageRating, 1e-9)
	s.Equal(2, u.TotalRatings)
}

func (s *PostgresSuite) TestSwaps_FeedbackRollsBackWhenRatingFails() {
	a, b := s.newUser("alice"), s.newUser("bob")
	sw := s.completedSwap(a, b)

	_, _, err := s.stores.Swaps.AttachFeedback(s.ctx, sw.ID, uuid.New().String(), s.feedback(a, 5))
	s.True(apperr.Is(err, apperr.KindNotFound))

	stored, err := s.stores.Swaps.GetByID(s.ctx, sw.ID)
	s.Require().NoError(err)
	s.Nil(stored.Feedback)

	_, u, err := s.stores.Swaps.AttachFeedback(s.ctx, sw.ID, b.ID, s.feedback(a, 5))
	s.Require().NoError(err)
	s.Equal(1, u.TotalRatings)
}

func (s *PostgresSuite) TestSwaps_ConcurrentFeedbackAllCount() {
	const n = 20
	target := s.newUser("target")
	swaps := make([]*models.Swap, n)
	reviewers := make([]*models.User, n)
	for i := range n {
		reviewers[i] = s.newUser(fmt.Sprintf("reviewer%d", i))
		swaps[i] = s.completedSwap(reviewers[i], target)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rating := 1 + 4*(i%2) // alternating 1 and 5
			_, _, err := s.stores.Swaps.AttachFeedback(s.ctx, swaps[i].ID, target.ID, s.feedback(reviewers[i], rating))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	u, err := s.stores.Users.GetByID(s.ctx, target.ID)
	s.Require().NoError(err)
	s.Equal(n, u.TotalRatings)
	s.InDelta(3.0, u.AverageRating, 1e-9)
}

func (s *PostgresSuite) TestSwaps_PendingPairIsUnique() {
	a, b := s.newUser("alice"), s.newUser("bob")
	s.newSwap(a, b)

	reverse := &models.Swap{
		ID: uuid.New().String(), RequesterID: b.ID, TargetID: a.ID,
		Status: models.SwapPending, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	err := s.stores.Swaps.Create(s.ctx, reverse)
	s.True(apperr.Is(err, apperr.KindConflict))

	has, err := s.stores.Swaps.HasPendingBetween(s.ctx, b.ID, a.ID)
	s.Require().NoError(err)
	s.True(has)
}

func (s *PostgresSuite) TestSwaps_TransitionIsConditional() {
	a, b := s.newUser("alice"), s.newUser("bob")
	sw := s.newSwap(a, b)

	got, err := s.stores.Swaps.Transition(s.ctx, sw.ID, models.SwapPending, models.SwapAccepted)
	s.Require().NoError(err)
	s.Equal(models.SwapAccepted, got.Status)

	_, err = s.stores.Swaps.Transition(s.ctx, sw.ID, models.SwapPending, models.SwapRejected)
	s.ErrorIs(err, repository.ErrNoMatch)

	// once accepted the pair may open a new pending swap
	s.newSwap(b, a)
}

func (s *PostgresSuite) TestSwaps_CompleteAndFeedback() {
	a, b := s.newUser("alice"), s.newUser("bob")
	sw := s.newSwap(a, b)
	_, err := s.stores.Swaps.Transition(s.ctx, sw.ID, models.SwapPending, models.SwapAccepted)
	s.Require().NoError(err)

	_, _, err = s.stores.Swaps.AttachFeedback(s.ctx, sw.ID, b.ID, s.feedback(a, 5))
	s.ErrorIs(err, repository.ErrNoMatch)

	done, err := s.stores.Swaps.Complete(s.ctx, sw.ID, time.Now().UTC())
	s.Require().NoError(err)
	s.Equal(models.SwapCompleted, done.Status)
	s.NotNil(done.CompletedDate)

	_, err = s.stores.Swaps.Complete(s.ctx, sw.ID, time.Now().UTC())
	s.ErrorIs(err, repository.ErrNoMatch)

	for _, id := range []string{a.ID, b.ID} {
		u, err := s.stores.Users.GetByID(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(1, u.TotalSwaps)
	}

	rated, _, err := s.stores.Swaps.AttachFeedback(s.ctx, sw.ID, b.ID, models.Feedback{
		Rating: 4, Comment: "great", ReviewerID: a.ID, CreatedAt: time.Now().UTC(),
	})
	s.Require().NoError(err)
	s.Require().NotNil(rated.Feedback)
	s.Equal(4, rated.Feedback.Rating)

	_, _, err = s.stores.Swaps.AttachFeedback(s.ctx, sw.ID, a.ID, s.feedback(b, 1))
	s.ErrorIs(err, repository.ErrNoMatch)

	reviewee, err := s.stores.Users.GetByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(1, reviewee.TotalRatings)

	received, err := s.stores.Swaps.ListFeedbackReceived(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Len(received, 1)

	received, err = s.stores.Swaps.ListFeedbackReceived(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Empty(received)

	counts, err := s.stores.Swaps.CountForUser(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(repository.UserSwapCounts{Total: 1, Pending: 0, Completed: 1}, counts)
}

func (s *PostgresSuite) TestSwaps_DeletePendingOnlyByRequester() {
	a, b := s.newUser("alice"), s.newUser("bob")
	sw := s.newSwap(a, b)

	s.ErrorIs(s.stores.Swaps.DeletePending(s.ctx, sw.ID, b.ID), repository.ErrNoMatch)
	s.Require().NoError(s.stores.Swaps.DeletePending(s.ctx, sw.ID, a.ID))

	_, err := s.stores.Swaps.GetByID(s.ctx, sw.ID)
	s.True(apperr.Is(err, apperr.KindNotFound))
}

func (s *PostgresSuite) TestReports_ResolveOnlyOnce() {
	reporter, reported, admin := s.newUser("rep"), s.newUser("bad"), s.newUser("admin")
	now := time.Now().UTC()
	report := &models.Report{
		ID: uuid.New().String(), ReporterID: reporter.ID, ReportedUserID: reported.ID,
		Title: "Spam", Description: "sends spam", Status: models.ReportPending,
		CreatedAt: now, UpdatedAt: now,
	}
	s.Require().NoError(s.stores.Reports.Create(s.ctx, report))

	got, err := s.stores.Reports.MarkInvestigating(s.ctx, report.ID)
	s.Require().NoError(err)
	s.Equal(models.ReportInvestigating, got.Status)

	got, err = s.stores.Reports.Resolve(s.ctx, report.ID, models.ReportResolved, "warned", admin.ID, now)
	s.Require().NoError(err)
	s.Equal(models.ReportResolved, got.Status)
	s.Require().NotNil(got.ResolvedBy)
	s.Equal(admin.ID, *got.ResolvedBy)

	_, err = s.stores.Reports.Resolve(s.ctx, report.ID, models.ReportDismissed, "", admin.ID, now)
	s.ErrorIs(err, repository.ErrNoMatch)

	n, err := s.stores.Reports.CountByStatus(s.ctx, models.ReportPending)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *PostgresSuite) TestMessages_LatestWithSender() {
	admin := s.newUser("admin")
	base := time.Now().UTC()
	for i := 0; i < 7; i++ {
		s.Require().NoError(s.stores.Messages.Create(s.ctx, &models.PlatformMessage{
			ID: uuid.New().String(), Content: "notice", SentBy: admin.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	msgs, err := s.stores.Messages.ListLatest(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(msgs, 5)
	s.True(msgs[0].CreatedAt.After(msgs[1].CreatedAt))
	s.Require().NotNil(msgs[0].Sender)
	s.Equal("admin", msgs[0].Sender.Name)
}

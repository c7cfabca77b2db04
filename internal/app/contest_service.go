package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"contest-session-service/internal/contest"
	"contest-session-service/internal/domain"
	"contest-session-service/internal/observability"
)

// SessionRepository abstracts where live attempts are registered (in-memory, Redis, etc).
type SessionRepository interface {
	Put(attempt *Attempt)
	Get(attemptID string) (*Attempt, bool)
	Delete(attemptID string)
}

// ContestRepository loads contest content (from cache/backing store).
type ContestRepository interface {
	GetContest(ctx context.Context, contestID string) (domain.Contest, error)
}

// ResultRepository stores finished attempts for the leaderboard.
type ResultRepository interface {
	Record(ctx context.Context, result domain.ContestResult) error
	List(ctx context.Context, contestID string) ([]domain.ContestResult, error)
}

// Attempt is one contestant's live run through a contest.
type Attempt struct {
	ID          string
	ContestID   string
	UserID      string
	DisplayName string
	StartedAt   time.Time
	// Duration is the countdown the attempt runs under once the camera is granted.
	Duration   time.Duration
	Controller *contest.Controller
}

// ServiceOptions tunes a ContestService.
type ServiceOptions struct {
	// Clock drives attempt countdowns. Nil leaves ticking to the caller.
	Clock  contest.Clock
	Logger zerolog.Logger
	// Now stamps results and leaderboards; defaults to time.Now.
	Now func() time.Time
	// DefaultDurationSeconds applies to contests stored without a duration.
	DefaultDurationSeconds int
}

// ContestService contains the contest use cases.
type ContestService struct {
	sessions SessionRepository
	contests ContestRepository
	results  ResultRepository
	grader   contest.Grader
	clock    contest.Clock
	now      func() time.Time
	duration int
	log      zerolog.Logger
}

func NewContestService(sessions SessionRepository, contests ContestRepository, results ResultRepository, grader contest.Grader, opts ServiceOptions) *ContestService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &ContestService{
		sessions: sessions,
		contests: contests,
		results:  results,
		grader:   grader,
		clock:    opts.Clock,
		now:      now,
		duration: opts.DefaultDurationSeconds,
		log:      opts.Logger.With().Str("component", "contest_service").Logger(),
	}
}

// Start registers a new attempt in AwaitingCamera. The caller drives the camera gate
// through the returned controller.
func (s *ContestService) Start(ctx context.Context, contestID, userID, displayName string, camera contest.CameraProvider) (*Attempt, error) {
	c, err := s.contests.GetContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if c.DurationSeconds <= 0 {
		c.DurationSeconds = s.duration
	}

	controller, err := contest.NewController(c, contest.Options{
		Camera: camera,
		Grader: s.grader,
		Clock:  s.clock,
		Logger: s.log,
	})
	if err != nil {
		return nil, fmt.Errorf("start contest: %w", err)
	}

	attempt := &Attempt{
		ID:          uuid.NewString(),
		ContestID:   contestID,
		UserID:      userID,
		DisplayName: displayName,
		StartedAt:   s.now(),
		Duration:    time.Duration(c.DurationSeconds) * time.Second,
		Controller:  controller,
	}
	controller.OnFinished(func(summary domain.Summary) {
		s.record(attempt, len(c.Questions), summary)
	})

	s.sessions.Put(attempt)
	observability.SessionsActive().Inc()
	s.log.Info().Str("attempt_id", attempt.ID).Str("contest_id", contestID).Str("user_id", userID).Msg("attempt started")
	return attempt, nil
}

// Get returns a live attempt.
func (s *ContestService) Get(_ context.Context, attemptID string) (*Attempt, error) {
	attempt, ok := s.sessions.Get(attemptID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return attempt, nil
}

// End drops an attempt. One still in progress is finished first, so leaving
// mid-contest records the result as it stands; one still waiting on the camera
// never started and leaves no result.
func (s *ContestService) End(_ context.Context, attemptID string) {
	attempt, ok := s.sessions.Get(attemptID)
	if !ok {
		return
	}
	if _, abandoned := attempt.Controller.Abandon(); abandoned {
		s.log.Info().Str("attempt_id", attemptID).Msg("attempt abandoned mid-contest")
	}
	attempt.Controller.Close()
	s.sessions.Delete(attemptID)
	observability.SessionsActive().Dec()
}

// Leaderboard ranks finished attempts: most answered first, then least time used,
// then earliest finish, then name.
func (s *ContestService) Leaderboard(ctx context.Context, contestID string) (domain.Leaderboard, error) {
	results, err := s.results.List(ctx, contestID)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("list results: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		ri, rj := results[i], results[j]
		if ri.AnsweredCount != rj.AnsweredCount {
			return ri.AnsweredCount > rj.AnsweredCount
		}
		if ri.TimeUsedSeconds != rj.TimeUsedSeconds {
			return ri.TimeUsedSeconds < rj.TimeUsedSeconds
		}
		if !ri.FinishedAt.Equal(rj.FinishedAt) {
			return ri.FinishedAt.Before(rj.FinishedAt)
		}
		return ri.DisplayName < rj.DisplayName
	})

	entries := make([]domain.LeaderboardEntry, 0, len(results))
	for i, r := range results {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:            i + 1,
			UserID:          r.UserID,
			DisplayName:     r.DisplayName,
			AnsweredCount:   r.AnsweredCount,
			TotalQuestions:  r.TotalQuestions,
			TimeUsedSeconds: r.TimeUsedSeconds,
		})
	}
	return domain.Leaderboard{
		ContestID: contestID,
		Entries:   entries,
		UpdatedAt: s.now(),
	}, nil
}

func (s *ContestService) record(attempt *Attempt, total int, summary domain.Summary) {
	result := domain.ContestResult{
		AttemptID:       attempt.ID,
		ContestID:       attempt.ContestID,
		UserID:          attempt.UserID,
		DisplayName:     attempt.DisplayName,
		AnsweredCount:   summary.AnsweredCount,
		TotalQuestions:  total,
		TimeUsedSeconds: summary.TimeUsedSeconds,
		FinishedAt:      s.now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.results.Record(ctx, result); err != nil {
		s.log.Error().Err(err).Str("attempt_id", attempt.ID).Msg("failed to record contest result")
		return
	}
	s.log.Info().Str("attempt_id", attempt.ID).Int("answered", summary.AnsweredCount).Int("time_used_seconds", summary.TimeUsedSeconds).Msg("contest result recorded")
}

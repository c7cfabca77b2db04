package contest

import "contest-session-service/internal/domain"

// Summarize builds the end-of-contest report. It has no side effects.
func Summarize(questions []domain.Question, progress []domain.QuestionProgress, totalSeconds, timeLeftSeconds int) domain.Summary {
	byID := make(map[string]domain.QuestionProgress, len(progress))
	for _, p := range progress {
		byID[p.QuestionID] = p
	}

	summary := domain.Summary{
		Questions: make([]domain.QuestionBreakdown, 0, len(questions)),
	}
	for _, q := range questions {
		p := byID[q.ID]
		if p.Answered {
			summary.AnsweredCount++
		}
		summary.Questions = append(summary.Questions, domain.QuestionBreakdown{
			QuestionID:       q.ID,
			Title:            q.Title,
			Difficulty:       q.Difficulty,
			Answered:         p.Answered,
			TimeSpentSeconds: p.TimeSpentSeconds,
		})
	}
	summary.UnansweredCount = len(questions) - summary.AnsweredCount

	used := totalSeconds - timeLeftSeconds
	if used < 0 {
		used = 0
	}
	if used > totalSeconds {
		used = totalSeconds
	}
	summary.TimeUsedSeconds = used
	return summary
}

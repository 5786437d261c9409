package mockapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/qprep-client/internal/model"
	"github.com/stemsi/qprep-client/internal/response"
	"github.com/stemsi/qprep-client/internal/validator"
)

func (s *Server) competition(id string) (*CompetitionFixture, bool) {
	for i := range s.fx.Competitions {
		if s.fx.Competitions[i].ID == id {
			return &s.fx.Competitions[i], true
		}
	}
	return nil, false
}

// withStatus derives the status from the window at now.
func withStatus(c model.Competition, now time.Time) model.Competition {
	switch {
	case c.StartDateTime != nil && now.Before(*c.StartDateTime):
		c.Status = model.CompetitionStatusUpcoming
	case c.EndDateTime != nil && !now.Before(*c.EndDateTime):
		c.Status = model.CompetitionStatusCompleted
	default:
		c.Status = model.CompetitionStatusLive
	}
	return c
}

// GET /competitions
func (s *Server) listCompetitions(c *gin.Context) {
	now := s.now()
	out := make([]model.Competition, 0, len(s.fx.Competitions))
	for _, f := range s.fx.Competitions {
		out = append(out, withStatus(f.Competition, now))
	}
	c.JSON(http.StatusOK, gin.H{"competitions": out})
}

// GET /competitions/:id
func (s *Server) getCompetition(c *gin.Context) {
	f, ok := s.competition(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, withStatus(f.Competition, s.now()))
}

// POST /competitions/:id/start
// Starting again before the deadline resumes the same attempt.
func (s *Server) startCompetition(c *gin.Context) {
	f, ok := s.competition(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	now := s.now()
	if withStatus(f.Competition, now).Status != model.CompetitionStatusLive {
		response.Fail(c, http.StatusConflict, response.ErrCompetitionNotLive)
		return
	}
	userID := currentUserID(c)

	s.mu.Lock()
	byUser := s.attempts[f.ID]
	if byUser == nil {
		byUser = map[string]*attempt{}
		s.attempts[f.ID] = byUser
	}
	a, exists := byUser[userID]
	if exists && a.item.Status == model.CompetitionSubmissionSubmitted {
		s.mu.Unlock()
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
		return
	}
	if !exists {
		deadline := now.Add(time.Duration(f.DurationInMinutes) * time.Minute)
		if f.EndDateTime != nil && f.EndDateTime.Before(deadline) {
			deadline = *f.EndDateTime
		}
		a = &attempt{
			item: model.CompetitionSubmissionItem{
				ID:            uuid.NewString(),
				CompetitionID: f.ID,
				UserID:        userID,
				StartedAt:     now,
				Status:        model.CompetitionSubmissionStarted,
			},
			deadline:  deadline,
			questions: f.Questions,
		}
		byUser[userID] = a
	}
	item, deadline := a.item, a.deadline
	s.mu.Unlock()

	left := 0
	if d := deadline.Sub(now); d > 0 {
		left = int(d / time.Second)
	}

	c.JSON(http.StatusOK, model.CompetitionSession{
		ServerNow:       now,
		EndDateTime:     deadline,
		TimeLeftSeconds: left,
		SubmissionID:    item.ID,
		StartedAt:       item.StartedAt,
		Competition: model.CompetitionInfo{
			ID:                 f.ID,
			Title:              f.DisplayTitle(),
			TotalQuestions:     len(f.Questions),
			TotalMarks:         f.TotalMarks,
			DurationInMinutes:  f.DurationInMinutes,
			LanguagesAvailable: f.LanguagesAvailable,
		},
		Questions: stripAnswers(f.Questions),
	})
}

// POST /competitions/:id/submit
// selectedOptionId is compared against the zero-based answer index.
func (s *Server) submitCompetition(c *gin.Context) {
	if s.consumeFailure() {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	f, ok := s.competition(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	var req model.SubmitCompetitionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	userID := currentUserID(c)
	now := s.now()

	s.mu.Lock()
	a, exists := s.attempts[f.ID][userID]
	if !exists {
		s.mu.Unlock()
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}
	if a.item.Status == model.CompetitionSubmissionSubmitted {
		s.mu.Unlock()
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
		return
	}

	keys := make(map[string]int, len(a.questions))
	for _, q := range a.questions {
		keys[q.ID] = q.CorrectAnswer()
	}
	perQuestion := 1.0
	if len(a.questions) > 0 && f.TotalMarks > 0 {
		perQuestion = f.TotalMarks / float64(len(a.questions))
	}
	correct, wrong := 0, 0
	for _, ans := range req.Answers {
		key, known := keys[ans.QuestionID]
		if !known {
			continue
		}
		if key == ans.SelectedOptionID {
			correct++
		} else {
			wrong++
		}
	}

	submittedAt := now
	a.item.Status = model.CompetitionSubmissionSubmitted
	a.item.SubmittedAt = &submittedAt
	a.item.CorrectCount = correct
	a.item.WrongCount = wrong
	a.item.Score = float64(correct) * perQuestion
	a.item.TimeTaken = int(now.Sub(a.item.StartedAt) / time.Second)
	item := a.item
	s.mu.Unlock()

	s.log.Info().
		Str("competition_id", f.ID).
		Str("user_id", userID).
		Float64("score", item.Score).
		Msg("Competition submitted")

	c.JSON(http.StatusOK, gin.H{
		"submissionId":   item.ID,
		"score":          item.Score,
		"correctCount":   item.CorrectCount,
		"wrongCount":     item.WrongCount,
		"totalQuestions": len(a.questions),
	})
}

// GET /competitions/:id/leaderboard
// Ranked by score, then by time taken.
func (s *Server) leaderboard(c *gin.Context) {
	f, ok := s.competition(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	s.mu.Lock()
	entries := []model.LeaderboardEntry{}
	for userID, a := range s.attempts[f.ID] {
		if a.item.Status != model.CompetitionSubmissionSubmitted {
			continue
		}
		name := ""
		if u, ok := s.users[userID]; ok {
			name = displayName(u)
		}
		entries = append(entries, model.LeaderboardEntry{
			UserID:       userID,
			Name:         name,
			Score:        a.item.Score,
			Duration:     a.item.TimeTaken,
			CorrectCount: a.item.CorrectCount,
			WrongCount:   a.item.WrongCount,
		})
	}
	s.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].Duration != entries[j].Duration {
			return entries[i].Duration < entries[j].Duration
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	page, limit := pageParams(c)
	c.JSON(http.StatusOK, gin.H{"leaderboard": paginate(entries, page, limit), "total": len(entries)})
}

// GET /competitions/my-submissions
func (s *Server) myCompetitionSubmissions(c *gin.Context) {
	userID := currentUserID(c)

	s.mu.Lock()
	out := []model.CompetitionSubmissionItem{}
	for _, f := range s.fx.Competitions {
		a, ok := s.attempts[f.ID][userID]
		if !ok {
			continue
		}
		item := a.item
		meta := model.CompetitionMeta{
			ID:                f.ID,
			Title:             f.DisplayTitle(),
			Subtitle:          f.Subtitle,
			TotalQuestions:    len(f.Questions),
			TotalMarks:        f.TotalMarks,
			DurationInMinutes: f.DurationInMinutes,
			Status:            string(withStatus(f.Competition, s.now()).Status),
		}
		if f.StartDateTime != nil {
			meta.StartDateTime = *f.StartDateTime
		}
		if f.EndDateTime != nil {
			meta.EndDateTime = *f.EndDateTime
		}
		item.Competition = &meta
		out = append(out, item)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	c.JSON(http.StatusOK, gin.H{"submissions": out})
}

// displayName masks the contact when the user has not set a name.
func displayName(u *model.User) string {
	if u.Name != "" {
		return u.Name
	}
	if len(u.Contact) > 4 {
		return "User ******" + u.Contact[len(u.Contact)-4:]
	}
	return "User"
}

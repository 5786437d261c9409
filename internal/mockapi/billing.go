package mockapi

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/qprep-client/internal/model"
	"github.com/stemsi/qprep-client/internal/response"
	"github.com/stemsi/qprep-client/internal/validator"
)

// paymentKey is a placeholder public key; no gateway is contacted.
const paymentKey = "rzp_test_mockkey"

func (s *Server) hasPlan(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.subscriptions[userID]
	return ok && s.now().Before(p.expiresAt)
}

// customPapersToday counts papers the user generated since local midnight.
// Callers hold s.mu.
func (s *Server) customPapersTodayLocked(userID string, now time.Time) int {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	n := 0
	for _, p := range s.customPapers[userID] {
		if !p.CreatedAt.Before(midnight) {
			n++
		}
	}
	return n
}

// ─── Subscriptions ─────────────────────────────────────────────────────

// GET /subscriptions?categoryId=
// Category plans are listed only for their category; global plans always.
func (s *Server) listPlans(c *gin.Context) {
	categoryID := c.Query("categoryId")
	out := []model.SubscriptionPlan{}
	for _, p := range s.fx.Plans {
		if p.Scope == model.PlanScopeCategory && categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		out = append(out, p)
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

// GET /subscriptions/razorpay-key
func (s *Server) paymentKey(c *gin.Context) {
	c.JSON(http.StatusOK, model.PaymentKey{Key: paymentKey})
}

// POST /subscriptions/subscribe
func (s *Server) subscribe(c *gin.Context) {
	var req model.SubscribeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var plan *model.SubscriptionPlan
	for i := range s.fx.Plans {
		if s.fx.Plans[i].ID == req.PlanID {
			plan = &s.fx.Plans[i]
		}
	}
	if plan == nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	userID := currentUserID(c)
	expires := s.now().Add(time.Duration(plan.DurationInDays) * 24 * time.Hour)

	s.mu.Lock()
	s.subscriptions[userID] = activePlan{plan: *plan, expiresAt: expires}
	s.users[userID].PlanName = plan.Name
	s.mu.Unlock()

	s.log.Info().Str("user_id", userID).Str("plan_id", plan.ID).Str("payment_id", req.PaymentID).Msg("Subscribed")
	c.JSON(http.StatusOK, gin.H{"success": true, "planName": plan.Name, "expiresAt": expires})
}

// GET /subscriptions/me
func (s *Server) mySubscription(c *gin.Context) {
	userID := currentUserID(c)

	s.mu.Lock()
	p, ok := s.subscriptions[userID]
	s.mu.Unlock()

	if !ok || !s.now().Before(p.expiresAt) {
		c.JSON(http.StatusOK, gin.H{"active": false, "planName": "Free"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active":    true,
		"planId":    p.plan.ID,
		"planName":  p.plan.Name,
		"scope":     p.plan.Scope,
		"expiresAt": p.expiresAt,
	})
}

// POST /subscriptions/validate
func (s *Server) validateUsage(c *gin.Context) {
	var req model.ValidateUsageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	userID := currentUserID(c)
	if req.Feature == model.UsageExams || s.hasPlan(userID) {
		c.JSON(http.StatusOK, gin.H{"allowed": true})
		return
	}

	s.mu.Lock()
	used := s.customPapersTodayLocked(userID, s.now())
	s.mu.Unlock()

	remaining := s.opts.FreeCustomPapersPerDay - used
	if remaining < 0 {
		remaining = 0
	}
	body := gin.H{"allowed": remaining > 0, "remaining": remaining}
	if remaining == 0 {
		body["message"] = response.GetMessage(response.ErrUsageLimitReached)
	}
	c.JSON(http.StatusOK, body)
}

// ─── Custom papers ─────────────────────────────────────────────────────

// POST /custom-papers
func (s *Server) createCustomPaper(c *gin.Context) {
	var req model.CreateCustomPaperRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	userID := currentUserID(c)
	paid := s.hasPlan(userID)
	now := s.now()

	s.mu.Lock()
	if !paid && s.customPapersTodayLocked(userID, now) >= s.opts.FreeCustomPapersPerDay {
		s.mu.Unlock()
		response.Fail(c, http.StatusForbidden, response.ErrUsageLimitReached)
		return
	}

	title := req.Title
	if title == "" {
		title = fmt.Sprintf("%s - %s Level", req.Subject, req.Difficulty)
	}
	id := uuid.NewString()
	paper := model.CustomPaper{
		ID:            id,
		UserID:        userID,
		Title:         title,
		Subject:       req.Subject,
		QuestionCount: req.QuestionCount,
		Duration:      req.Duration,
		Difficulty:    req.Difficulty,
		CreatedAt:     now,
		UpdatedAt:     now,
		GeneratedPaper: model.QuestionPaperFull{
			ID:                 id,
			ExamName:           title,
			TotalQueCount:      req.QuestionCount,
			ExamDueMin:         req.Duration,
			TotalMarks:         float64(req.QuestionCount),
			SupportedLanguages: []string{model.DefaultLanguage},
			IsPublished:        true,
			IsActive:           true,
			ExamSubjects:       []string{req.Subject},
			Sections: []model.Section{{
				Title:            req.Subject,
				MarksPerQuestion: 1,
				Questions:        generatedQuestions(req.Subject, req.QuestionCount, req.Difficulty),
			}},
		},
	}
	s.customPapers[userID] = append(s.customPapers[userID], paper)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, paper)
}

// ─── Performance analytics ─────────────────────────────────────────────

// POST /performance-analytics/submit
func (s *Server) submitPerformance(c *gin.Context) {
	if s.consumeFailure() {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	var req model.PerformanceSubmission
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	item := model.PaperSubmissionItem{
		ID:             uuid.NewString(),
		PaperID:        req.PaperID,
		PaperType:      req.PaperType,
		Score:          req.Score,
		TotalMarks:     req.TotalMarks,
		CorrectCount:   req.CorrectCount,
		WrongCount:     req.WrongCount,
		TotalQuestions: req.TotalQuestions,
		TimeTaken:      req.TimeTaken,
		CreatedAt:      s.now(),
		Paper:          s.paperMeta(req.PaperID),
	}

	userID := currentUserID(c)
	s.mu.Lock()
	s.practice[userID] = append(s.practice[userID], item)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"_id": item.ID})
}

func (s *Server) paperMeta(id string) *model.PaperMeta {
	all := append(append([]model.QuestionPaperFull{}, s.fx.Papers...), s.fx.AcademyPapers...)
	for _, p := range all {
		if p.ID != id {
			continue
		}
		meta := &model.PaperMeta{
			Title:             p.ExamName,
			Category:          p.ExamCategory,
			ExamDate:          p.ExamDate,
			DurationInMinutes: p.DurationMinutes(),
		}
		if len(p.ExamSubjects) > 0 {
			meta.Subject = p.ExamSubjects[0]
		}
		return meta
	}
	return nil
}

// GET /performance-analytics/submissions
func (s *Server) listPerformance(c *gin.Context) {
	s.mu.Lock()
	out := append([]model.PaperSubmissionItem{}, s.practice[currentUserID(c)]...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	c.JSON(http.StatusOK, gin.H{"submissions": out})
}

// GET /performance-analytics
func (s *Server) analyticsSummary(c *gin.Context) {
	s.mu.Lock()
	items := s.practice[currentUserID(c)]
	var scored, marks, best float64
	correct, answered := 0, 0
	for _, it := range items {
		scored += it.Score
		marks += it.TotalMarks
		if it.Score > best {
			best = it.Score
		}
		correct += it.CorrectCount
		answered += it.CorrectCount + it.WrongCount
	}
	attempts := len(items)
	s.mu.Unlock()

	overall, accuracy := 0.0, 0.0
	if marks > 0 {
		overall = scored / marks * 100
	}
	if answered > 0 {
		accuracy = float64(correct) / float64(answered) * 100
	}
	c.JSON(http.StatusOK, gin.H{
		"totalAttempts":     attempts,
		"bestScore":         best,
		"overallPercentage": overall,
		"accuracy":          accuracy,
	})
}

// Package mockapi is an in-memory stand-in for the exam-prep REST backend.
// It serves the routes the API client calls, issues HS256 tokens for a fixed
// OTP, and keeps all state in process so the CLI and tests run offline.
package mockapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/qprep-client/internal/config"
	"github.com/stemsi/qprep-client/internal/model"
	"github.com/stemsi/qprep-client/internal/response"
	"github.com/stemsi/qprep-client/internal/validator"
)

// DefaultOTP is accepted for every mobile number.
const DefaultOTP = "1234"

// Options tunes the mock backend.
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	OTP       string
	// FreeCustomPapersPerDay is the server-side quota for users without a plan.
	FreeCustomPapersPerDay int
	AuthRateLimit          int
	AllowedOrigins         []string
	GinMode                string
	// Now overrides the wall clock; fixtures are laid out relative to it.
	Now func() time.Time
}

// OptionsFromConfig maps the shared config onto mock options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		JWTSecret:              cfg.MockJWTSecret,
		FreeCustomPapersPerDay: cfg.FreeCustomPapersPerDay,
		AllowedOrigins:         cfg.AllowedOrigins,
		GinMode:                cfg.MockGinMode,
	}
}

// Server holds the mock state.
type Server struct {
	opts Options
	log  zerolog.Logger
	now  func() time.Time

	mu             sync.Mutex
	fx             *Fixtures
	users          map[string]*model.User
	userByContact  map[string]string
	attempts       map[string]map[string]*attempt
	practice       map[string][]model.PaperSubmissionItem
	customPapers   map[string][]model.CustomPaper
	subscriptions  map[string]activePlan
	failSubmission int
}

type attempt struct {
	item      model.CompetitionSubmissionItem
	deadline  time.Time
	questions []model.Question
}

type activePlan struct {
	plan      model.SubscriptionPlan
	expiresAt time.Time
}

// New builds a Server seeded with DefaultFixtures.
func New(opts Options, log zerolog.Logger) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 7 * 24 * time.Hour
	}
	if opts.OTP == "" {
		opts.OTP = DefaultOTP
	}
	if opts.FreeCustomPapersPerDay <= 0 {
		opts.FreeCustomPapersPerDay = 2
	}
	if opts.AuthRateLimit <= 0 {
		opts.AuthRateLimit = 30
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Server{
		opts:          opts,
		log:           log.With().Str("component", "mock_api").Logger(),
		now:           now,
		fx:            DefaultFixtures(now()),
		users:         map[string]*model.User{},
		userByContact: map[string]string{},
		attempts:      map[string]map[string]*attempt{},
		practice:      map[string][]model.PaperSubmissionItem{},
		customPapers:  map[string][]model.CustomPaper{},
		subscriptions: map[string]activePlan{},
	}
}

// Fixtures exposes the seeded catalogue so tests can reference its IDs.
func (s *Server) Fixtures() *Fixtures { return s.fx }

// FailNextSubmissions makes the next n submission calls (competition and
// practice analytics) answer 500.
func (s *Server) FailNextSubmissions(n int) {
	s.mu.Lock()
	s.failSubmission = n
	s.mu.Unlock()
}

// consumeFailure reports whether the current submission should fail.
func (s *Server) consumeFailure() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSubmission > 0 {
		s.failSubmission--
		return true
	}
	return false
}

// Router configures all Gin routes.
func (s *Server) Router() *gin.Engine {
	if s.opts.GinMode != "" {
		gin.SetMode(s.opts.GinMode)
	}
	validator.Setup()

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	// ─── CORS ──────────────────────────────────────────────────────────
	corsConfig := cors.DefaultConfig()
	if len(s.opts.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = s.opts.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(compress(compressMinLength))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := s.requireUser()

	// ─── 1. Auth (rate limited) ────────────────────────────────────────
	authLimiter := NewRateLimiter(s.opts.AuthRateLimit, time.Minute)
	authGroup := router.Group("/auth", authLimiter.Middleware())
	{
		authGroup.POST("/send-otp", s.sendOTP)
		authGroup.POST("/verify-otp", s.verifyOTP)
	}

	// ─── 2. Profile & academy ──────────────────────────────────────────
	user := router.Group("/user", auth)
	{
		user.GET("/get-profile", s.getProfile)
		user.PUT("/profile", s.updateProfile)
		user.GET("/my-academy", s.getMyAcademy)
		user.GET("/my-academy/question-papers", s.listAcademyPapers)
		user.GET("/my-academy/question-papers/:id", s.getAcademyPaper)
	}

	// ─── 3. Catalogue (public) ─────────────────────────────────────────
	public := cacheControl(300)
	router.GET("/exams/category", public, s.listCategories)
	router.GET("/exams/subcategory", public, s.listSubCategories)
	router.GET("/subjects/public", public, s.listSubjects)

	papers := router.Group("/question-papers")
	{
		papers.GET("", s.listPapers)
		papers.GET("/real-exams/base-details/:category", s.listRealExams)
		papers.GET("/real-exams-search", s.searchRealExams)
		papers.GET("/full/:id", auth, s.getFullPaper)
	}

	// ─── 4. Competitions ───────────────────────────────────────────────
	comps := router.Group("/competitions")
	{
		comps.GET("", s.listCompetitions)
		comps.GET("/my-submissions", auth, s.myCompetitionSubmissions)
		comps.GET("/:id", s.getCompetition)
		comps.POST("/:id/start", auth, s.startCompetition)
		comps.POST("/:id/submit", auth, s.submitCompetition)
		comps.GET("/:id/leaderboard", s.leaderboard)
	}

	// ─── 5. Analytics ──────────────────────────────────────────────────
	analytics := router.Group("/performance-analytics", auth)
	{
		analytics.GET("", s.analyticsSummary)
		analytics.POST("/submit", s.submitPerformance)
		analytics.GET("/submissions", s.listPerformance)
	}

	// ─── 6. Billing & generation ───────────────────────────────────────
	subs := router.Group("/subscriptions")
	{
		subs.GET("", s.listPlans)
		subs.GET("/razorpay-key", s.paymentKey)
		subs.GET("/me", auth, s.mySubscription)
		subs.POST("/subscribe", auth, s.subscribe)
		subs.POST("/validate", auth, s.validateUsage)
	}
	router.POST("/custom-papers", auth, s.createCustomPaper)

	// ─── 7. Notifications (public) ─────────────────────────────────────
	router.GET("/notifications", s.listNotifications)
	router.GET("/notifications/:id", s.getNotification)

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", s.now().Sub(start)).
			Msg("request")
	}
}

package model

import "time"

// CompetitionStatus enumerates the lifecycle of a competition window.
type CompetitionStatus string

const (
	CompetitionStatusUpcoming  CompetitionStatus = "upcoming"
	CompetitionStatusLive      CompetitionStatus = "live"
	CompetitionStatusCompleted CompetitionStatus = "completed"
	CompetitionStatusCancelled CompetitionStatus = "cancelled"
)

// RewardType enumerates competition prizes.
type RewardType string

const (
	RewardPremiumMembership RewardType = "PREMIUM_MEMBERSHIP"
	RewardPoints            RewardType = "POINTS"
	RewardCash              RewardType = "CASH"
)

// Reward describes what the top ranks win.
type Reward struct {
	Type             RewardType `json:"type"`
	Value            string     `json:"value"`
	DurationInDays   int        `json:"durationInDays,omitempty"`
	EligibilityCount int        `json:"eligibilityCount,omitempty"`
}

// Competition is a time-boxed, ranked live exam.
type Competition struct {
	ID                 string            `json:"_id"`
	Title              string            `json:"title,omitempty"`
	Name               string            `json:"name,omitempty"`
	Subtitle           string            `json:"subtitle,omitempty"`
	Description        string            `json:"description,omitempty"`
	Instructions       string            `json:"instructions,omitempty"`
	TotalQuestions     int               `json:"totalQuestions,omitempty"`
	TotalMarks         float64           `json:"totalMarks,omitempty"`
	PassingMarks       float64           `json:"passingMarks,omitempty"`
	DurationInMinutes  int               `json:"durationInMinutes,omitempty"`
	LanguagesAvailable []string          `json:"languagesAvailable,omitempty"`
	Reward             *Reward           `json:"reward,omitempty"`
	Status             CompetitionStatus `json:"status,omitempty"`
	StartDateTime      *time.Time        `json:"startDateTime,omitempty"`
	EndDateTime        *time.Time        `json:"endDateTime,omitempty"`
}

// DisplayTitle returns the title, falling back to the name.
func (c *Competition) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// CompetitionInfo is the competition summary embedded in a started session.
type CompetitionInfo struct {
	ID                 string   `json:"_id"`
	Title              string   `json:"title"`
	TotalQuestions     int      `json:"totalQuestions"`
	TotalMarks         float64  `json:"totalMarks"`
	DurationInMinutes  int      `json:"durationInMinutes"`
	LanguagesAvailable []string `json:"languagesAvailable"`
}

// CompetitionSession is returned when a competition attempt starts.
// ServerNow and EndDateTime drive the skew-corrected countdown.
type CompetitionSession struct {
	ServerNow       time.Time       `json:"serverNow"`
	EndDateTime     time.Time       `json:"endDateTime"`
	TimeLeftSeconds int             `json:"timeLeftSeconds"`
	SubmissionID    string          `json:"submissionId"`
	StartedAt       time.Time       `json:"startedAt"`
	Competition     CompetitionInfo `json:"competition"`
	Questions       []Question      `json:"questions"`
}

// CompetitionAnswer is a single submitted answer.
type CompetitionAnswer struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID int    `json:"selectedOptionId"`
}

// SubmitCompetitionRequest is the submission payload.
type SubmitCompetitionRequest struct {
	Answers []CompetitionAnswer `json:"answers"`
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	UserID       string  `json:"userId"`
	Name         string  `json:"name"`
	ProfilePic   string  `json:"profilePic,omitempty"`
	Score        float64 `json:"score"`
	Duration     int     `json:"duration"`
	CorrectCount int     `json:"correctCount,omitempty"`
	WrongCount   int     `json:"wrongCount,omitempty"`
}

// CompetitionMeta is the competition summary attached to a past submission.
type CompetitionMeta struct {
	ID                string    `json:"_id"`
	Title             string    `json:"title"`
	Subtitle          string    `json:"subtitle,omitempty"`
	StartDateTime     time.Time `json:"startDateTime"`
	EndDateTime       time.Time `json:"endDateTime"`
	TotalQuestions    int       `json:"totalQuestions"`
	TotalMarks        float64   `json:"totalMarks"`
	DurationInMinutes int       `json:"durationInMinutes"`
	Status            string    `json:"status,omitempty"`
}

// CompetitionSubmissionStatus enumerates submission states.
type CompetitionSubmissionStatus string

const (
	CompetitionSubmissionStarted   CompetitionSubmissionStatus = "started"
	CompetitionSubmissionSubmitted CompetitionSubmissionStatus = "submitted"
	CompetitionSubmissionAbandoned CompetitionSubmissionStatus = "abandoned"
)

// CompetitionSubmissionItem is a past competition attempt.
type CompetitionSubmissionItem struct {
	ID            string                      `json:"_id"`
	CompetitionID string                      `json:"competitionId"`
	UserID        string                      `json:"userId"`
	Score         float64                     `json:"score"`
	CorrectCount  int                         `json:"correctCount"`
	WrongCount    int                         `json:"wrongCount"`
	TimeTaken     int                         `json:"timeTaken,omitempty"`
	StartedAt     time.Time                   `json:"startedAt"`
	SubmittedAt   *time.Time                  `json:"submittedAt,omitempty"`
	Status        CompetitionSubmissionStatus `json:"status"`
	Competition   *CompetitionMeta            `json:"competition,omitempty"`
}

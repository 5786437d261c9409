package model

import "time"

// PaperType classifies a paper for performance analytics.
type PaperType string

const (
	PaperTypeRealExam    PaperType = "REAL_EXAM"
	PaperTypeLatestPaper PaperType = "LATEST_PAPER"
	PaperTypeCustomPaper PaperType = "CUSTOM_PAPER"
)

// ExamResult is the client-side estimate shown right after a practice attempt.
// The backend computes its own authoritative copy.
type ExamResult struct {
	TotalQuestions int     `json:"totalQuestions"`
	Answered       int     `json:"answered"`
	Correct        int     `json:"correct"`
	Incorrect      int     `json:"incorrect"`
	Unanswered     int     `json:"unanswered"`
	Score          float64 `json:"score"`
	TotalMarks     float64 `json:"totalMarks"`
	Percentage     int     `json:"percentage"`
	Accuracy       int     `json:"accuracy"`
	TimeTaken      int     `json:"timeTaken"`
}

// SubjectStat is a per-subject tally.
type SubjectStat struct {
	Subject string `json:"subject"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
}

// PerformanceSubmission is posted to the analytics endpoint after an attempt.
type PerformanceSubmission struct {
	PaperID        string        `json:"paperId"`
	PaperType      PaperType     `json:"paperType"`
	Score          float64       `json:"score"`
	TotalMarks     float64       `json:"totalMarks"`
	CorrectCount   int           `json:"correctCount"`
	WrongCount     int           `json:"wrongCount"`
	TotalQuestions int           `json:"totalQuestions"`
	TimeTaken      int           `json:"timeTaken"`
	SubjectStats   []SubjectStat `json:"subjectStats"`
}

// PaperMeta is the paper summary attached to a past submission.
type PaperMeta struct {
	Title             string `json:"title"`
	Category          string `json:"category,omitempty"`
	ExamDate          string `json:"examDate,omitempty"`
	DurationInMinutes int    `json:"durationInMinutes,omitempty"`
	Subject           string `json:"subject,omitempty"`
}

// PaperSubmissionItem is a past practice attempt as stored by the backend.
type PaperSubmissionItem struct {
	ID             string     `json:"_id"`
	PaperID        string     `json:"paperId"`
	PaperType      PaperType  `json:"paperType"`
	Score          float64    `json:"score"`
	TotalMarks     float64    `json:"totalMarks"`
	CorrectCount   int        `json:"correctCount"`
	WrongCount     int        `json:"wrongCount"`
	TotalQuestions int        `json:"totalQuestions"`
	TimeTaken      int        `json:"timeTaken"`
	CreatedAt      time.Time  `json:"createdAt"`
	Paper          *PaperMeta `json:"paper,omitempty"`
}

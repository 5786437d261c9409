package model

import "time"

// Difficulty of a generated custom paper.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// CreateCustomPaperRequest asks the backend to generate a practice paper.
type CreateCustomPaperRequest struct {
	Title         string     `json:"title" binding:"max=120"`
	Subject       string     `json:"subject" binding:"required"`
	QuestionCount int        `json:"questionCount" binding:"required,oneof=10 25 50 100"`
	Duration      int        `json:"duration" binding:"required,oneof=15 30 60 120"`
	Difficulty    Difficulty `json:"difficulty" binding:"required,oneof=EASY MEDIUM HARD"`
}

// CustomPaper is a user-generated paper together with its generated content.
type CustomPaper struct {
	ID             string            `json:"_id"`
	UserID         string            `json:"userId"`
	Title          string            `json:"title"`
	Subject        string            `json:"subject"`
	QuestionCount  int               `json:"questionCount"`
	Duration       int               `json:"duration"`
	Difficulty     Difficulty        `json:"difficulty"`
	GeneratedPaper QuestionPaperFull `json:"generatedPaper"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// CustomPaperListItem is a CustomPaper without its generated content.
type CustomPaperListItem struct {
	ID            string     `json:"_id"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Subject       string     `json:"subject"`
	QuestionCount int        `json:"questionCount"`
	Duration      int        `json:"duration"`
	Difficulty    Difficulty `json:"difficulty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ListItem strips the generated paper.
func (p *CustomPaper) ListItem() CustomPaperListItem {
	return CustomPaperListItem{
		ID:            p.ID,
		UserID:        p.UserID,
		Title:         p.Title,
		Subject:       p.Subject,
		QuestionCount: p.QuestionCount,
		Duration:      p.Duration,
		Difficulty:    p.Difficulty,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

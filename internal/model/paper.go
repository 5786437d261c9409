package model

import "time"

// ContentType enumerates how a piece of question content is rendered.
type ContentType string

const (
	ContentTypeText  ContentType = "TEXT"
	ContentTypeImage ContentType = "IMAGE"
	ContentTypeMixed ContentType = "MIXED"
)

// DefaultLanguage is the fallback used when content lacks the requested language.
const DefaultLanguage = "en"

// ContentData is one language rendition of a question, option or explanation.
type ContentData struct {
	Type     ContentType `json:"type"`
	Text     string      `json:"text,omitempty"`
	ImageURL string      `json:"image_url,omitempty"`
}

// MultiLangContent maps a language code to its content.
type MultiLangContent map[string]ContentData

// ResolvedContent is content after language selection.
type ResolvedContent struct {
	Text  string
	Image string
}

// Resolve picks the requested language, then English, then any available
// language. Empty content resolves to an empty value.
func (c MultiLangContent) Resolve(lang string) ResolvedContent {
	if len(c) == 0 {
		return ResolvedContent{}
	}
	data, ok := c[lang]
	if !ok {
		data, ok = c[DefaultLanguage]
	}
	if !ok {
		// Map order is random; pick the smallest key so output is stable.
		first := ""
		for k := range c {
			if first == "" || k < first {
				first = k
			}
		}
		data = c[first]
	}
	return ResolvedContent{Text: data.Text, Image: data.ImageURL}
}

// QuestionOption is a single selectable option.
type QuestionOption struct {
	ID      int              `json:"id"`
	Content MultiLangContent `json:"content"`
}

// Question is a multiple-choice question as delivered by the backend.
type Question struct {
	ID          string           `json:"_id,omitempty"`
	Content     MultiLangContent `json:"que_content"`
	Options     []QuestionOption `json:"options"`
	Answer      *int             `json:"ans,omitempty"`
	Explanation MultiLangContent `json:"exp_content,omitempty"`
	HasImage    bool             `json:"has_image,omitempty"`
}

// CorrectAnswer returns the answer key, or -1 when the question carries none.
func (q *Question) CorrectAnswer() int {
	if q.Answer == nil {
		return -1
	}
	return *q.Answer
}

// Section groups questions that share a marking scheme.
type Section struct {
	Title            string     `json:"title"`
	Instructions     string     `json:"instructions,omitempty"`
	Questions        []Question `json:"questions"`
	MarksPerQuestion float64    `json:"marks_per_question"`
	// NegativeMarks is nil when the backend omitted it, which differs from an explicit zero.
	NegativeMarks *float64 `json:"negative_marks,omitempty"`
}

// QuestionPaper is the list view of a paper.
type QuestionPaper struct {
	ID             string `json:"_id"`
	Title          string `json:"title"`
	ExamName       string `json:"exam_name,omitempty"`
	Duration       int    `json:"duration,omitempty"`
	ExamDueMin     int    `json:"exam_due_min,omitempty"`
	TotalMarks     int    `json:"total_marks,omitempty"`
	TotalQuestions int    `json:"total_questions,omitempty"`
	TotalQueCount  int    `json:"total_que_count,omitempty"`
}

// DisplayTitle prefers the exam name, falling back to the title.
func (p *QuestionPaper) DisplayTitle() string {
	if p.ExamName != "" {
		return p.ExamName
	}
	return p.Title
}

// QuestionCount returns whichever question count the backend populated.
func (p *QuestionPaper) QuestionCount() int {
	if p.TotalQueCount > 0 {
		return p.TotalQueCount
	}
	return p.TotalQuestions
}

// QuestionPaperFull is the complete paper including sections and answer key.
type QuestionPaperFull struct {
	ID                 string     `json:"_id"`
	ExamName           string     `json:"exam_name"`
	ExamCategory       string     `json:"exam_category"`
	TotalQueCount      int        `json:"total_que_count"`
	ExamDueMin         int        `json:"exam_due_min"`
	TotalMarks         float64    `json:"total_marks"`
	PassingMarks       float64    `json:"passing_marks"`
	HasNegativeMarking bool       `json:"has_negative_marking"`
	Instructions       string     `json:"instructions,omitempty"`
	SupportedLanguages []string   `json:"supported_languages"`
	Sections           []Section  `json:"sections"`
	IsPublished        bool       `json:"is_published"`
	IsActive           bool       `json:"is_active"`
	IsRealExam         bool       `json:"is_real_exam"`
	ExamSubjects       []string   `json:"exam_sub"`
	ExamDate           string     `json:"exam_date,omitempty"`
	CreatedAt          *time.Time `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
}

// Questions flattens all sections in order.
func (p *QuestionPaperFull) Questions() []Question {
	var out []Question
	for _, s := range p.Sections {
		out = append(out, s.Questions...)
	}
	return out
}

// DurationMinutes returns the paper duration, defaulting to one hour.
func (p *QuestionPaperFull) DurationMinutes() int {
	if p.ExamDueMin > 0 {
		return p.ExamDueMin
	}
	return 60
}

// PrimaryLanguage is the first supported language, or English.
func (p *QuestionPaperFull) PrimaryLanguage() string {
	if len(p.SupportedLanguages) > 0 {
		return p.SupportedLanguages[0]
	}
	return DefaultLanguage
}

// QuestionPaperQuery holds the optional filters for paged paper listing.
type QuestionPaperQuery struct {
	CategoryID    string
	SubcategoryID string
	IsRealExam    *bool
	Search        string
	Page          int
	Limit         int
}

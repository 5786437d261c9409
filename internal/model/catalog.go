package model

// ExamCategory is a top-level exam grouping.
type ExamCategory struct {
	ID          string `json:"_id"`
	Name        string `json:"category_name"`
	Description string `json:"description,omitempty"`
}

// ExamSubCategory belongs to an ExamCategory.
type ExamSubCategory struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	CategoryID  string `json:"categoryId"`
	IsActive    bool   `json:"is_active"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority,omitempty"`
}

// Subject is a public subject used for custom paper generation.
type Subject struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

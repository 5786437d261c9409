package mockapi

import (
	"fmt"
	"time"

	"github.com/stemsi/qprep-client/internal/model"
)

// Fixture IDs referenced by tests and the README walkthrough.
const (
	PaperPhysicsMock = "paper-physics-1"
	PaperSSC2024     = "paper-ssc-2024"
	PaperPremium     = "paper-mpsc-premium"
	PaperEmpty       = "paper-empty"
	AcademyPaper     = "academy-paper-1"

	CompetitionLive     = "comp-live"
	CompetitionUpcoming = "comp-upcoming"
	CompetitionFinished = "comp-finished"

	AcademyContact = "9000000001"
)

// CompetitionFixture is a competition together with its question set.
type CompetitionFixture struct {
	model.Competition
	Questions []model.Question
}

// Fixtures is the seeded catalogue.
type Fixtures struct {
	Categories    []model.ExamCategory
	SubCategories []model.ExamSubCategory
	Subjects      []model.Subject

	Papers           []model.QuestionPaperFull
	PaperSubcategory map[string]string
	PremiumPapers    map[string]bool

	Competitions  []CompetitionFixture
	Plans         []model.SubscriptionPlan
	Notifications []model.NotificationItem

	AcademyContacts map[string]bool
	AcademyPapers   []model.QuestionPaperFull
}

func text(en string) model.MultiLangContent {
	return model.MultiLangContent{"en": {Type: model.ContentTypeText, Text: en}}
}

func bilingual(en, hi string) model.MultiLangContent {
	return model.MultiLangContent{
		"en": {Type: model.ContentTypeText, Text: en},
		"hi": {Type: model.ContentTypeText, Text: hi},
	}
}

func mcq(id string, content model.MultiLangContent, options []string, ans int, explanation string) model.Question {
	q := model.Question{ID: id, Content: content, Answer: &ans}
	// Option ids sit outside the index range so an index key is never
	// mistaken for an id.
	for i, o := range options {
		q.Options = append(q.Options, model.QuestionOption{ID: 101 + i, Content: text(o)})
	}
	if explanation != "" {
		q.Explanation = text(explanation)
	}
	return q
}

func ptr[T any](v T) *T { return &v }

// DefaultFixtures lays the catalogue out around now: one competition is live,
// one starts tomorrow and one ended yesterday.
func DefaultFixtures(now time.Time) *Fixtures {
	published := now.Add(-72 * time.Hour)

	physics := model.QuestionPaperFull{
		ID:                 PaperPhysicsMock,
		ExamName:           "Physics Mock 1",
		ExamCategory:       "SSC",
		TotalQueCount:      4,
		ExamDueMin:         30,
		TotalMarks:         6,
		PassingMarks:       2,
		HasNegativeMarking: true,
		Instructions:       "Each wrong answer in Mechanics costs half a mark.",
		SupportedLanguages: []string{"en", "hi"},
		IsPublished:        true,
		IsActive:           true,
		ExamSubjects:       []string{"Physics"},
		CreatedAt:          &published,
		Sections: []model.Section{
			{
				Title:            "Mechanics",
				MarksPerQuestion: 2,
				NegativeMarks:    ptr(0.5),
				Questions: []model.Question{
					mcq("q-phy-1", bilingual("SI unit of force?", "बल की SI इकाई?"),
						[]string{"Joule", "Newton", "Watt", "Pascal"}, 1, "F = ma is measured in newtons."),
					mcq("q-phy-2", bilingual("Acceleration due to gravity is about?", "गुरुत्वीय त्वरण लगभग?"),
						[]string{"9.8 m/s²", "8.9 m/s²", "98 m/s²", "0.98 m/s²"}, 0, ""),
				},
			},
			{
				Title: "Optics",
				Questions: []model.Question{
					mcq("q-phy-3", text("Speed of light in vacuum?"),
						[]string{"3×10⁸ m/s", "3×10⁶ m/s", "3×10⁵ km/h", "300 m/s"}, 0, ""),
					mcq("q-phy-4", text("A convex lens is also called?"),
						[]string{"Diverging", "Converging", "Plane", "Cylindrical"}, 1, "It bends rays towards the axis."),
				},
			},
		},
	}

	ssc := model.QuestionPaperFull{
		ID:                 PaperSSC2024,
		ExamName:           "SSC CGL Tier 1 2024",
		ExamCategory:       "SSC",
		TotalQueCount:      3,
		ExamDueMin:         45,
		TotalMarks:         6,
		SupportedLanguages: []string{"en"},
		IsPublished:        true,
		IsActive:           true,
		IsRealExam:         true,
		ExamSubjects:       []string{"General Knowledge"},
		ExamDate:           "2024-09-10",
		CreatedAt:          &published,
		Sections: []model.Section{{
			Title:            "General Awareness",
			MarksPerQuestion: 2,
			NegativeMarks:    ptr(0.0),
			Questions: []model.Question{
				mcq("q-gk-1", text("Capital of Maharashtra?"), []string{"Pune", "Nagpur", "Mumbai", "Nashik"}, 2, ""),
				mcq("q-gk-2", text("National animal of India?"), []string{"Lion", "Tiger", "Elephant", "Peacock"}, 1, ""),
				mcq("q-gk-3", text("Largest planet?"), []string{"Earth", "Saturn", "Jupiter", "Mars"}, 2, ""),
			},
		}},
	}

	premium := model.QuestionPaperFull{
		ID:                 PaperPremium,
		ExamName:           "MPSC Rajyaseva Prelims 2023",
		ExamCategory:       "MPSC",
		TotalQueCount:      1,
		ExamDueMin:         120,
		TotalMarks:         2,
		SupportedLanguages: []string{"en", "mr"},
		IsPublished:        true,
		IsActive:           true,
		IsRealExam:         true,
		ExamDate:           "2023-06-04",
		Sections: []model.Section{{
			Title:            "Polity",
			MarksPerQuestion: 2,
			Questions: []model.Question{
				mcq("q-pol-1", text("Article 21 protects?"), []string{"Life and liberty", "Equality", "Religion", "Property"}, 0, ""),
			},
		}},
	}

	empty := model.QuestionPaperFull{
		ID:           PaperEmpty,
		ExamName:     "Draft Paper",
		ExamCategory: "SSC",
		IsPublished:  true,
		IsActive:     true,
	}

	academy := model.QuestionPaperFull{
		ID:                 AcademyPaper,
		ExamName:           "Academy Weekly Test 1",
		ExamCategory:       "SSC",
		TotalQueCount:      2,
		ExamDueMin:         15,
		TotalMarks:         2,
		SupportedLanguages: []string{"en"},
		IsPublished:        true,
		IsActive:           true,
		ExamSubjects:       []string{"Mathematics"},
		Sections: []model.Section{{
			Title: "Arithmetic",
			Questions: []model.Question{
				mcq("q-ac-1", text("12 × 12 = ?"), []string{"124", "144", "154", "132"}, 1, ""),
				mcq("q-ac-2", text("15% of 200 = ?"), []string{"20", "25", "30", "35"}, 2, ""),
			},
		}},
	}

	liveStart := now.Add(-10 * time.Minute)
	liveEnd := now.Add(50 * time.Minute)
	upStart := now.Add(24 * time.Hour)
	upEnd := upStart.Add(2 * time.Hour)
	doneStart := now.Add(-26 * time.Hour)
	doneEnd := now.Add(-24 * time.Hour)

	compQuestions := []model.Question{
		mcq("cq-1", text("2 + 2 × 2 = ?"), []string{"8", "6", "4", "2"}, 1, ""),
		mcq("cq-2", text("Square root of 81?"), []string{"7", "8", "9", "10"}, 2, ""),
		mcq("cq-3", text("Next prime after 7?"), []string{"9", "11", "13", "10"}, 1, ""),
	}

	return &Fixtures{
		Categories: []model.ExamCategory{
			{ID: "cat-ssc", Name: "SSC", Description: "Staff Selection Commission"},
			{ID: "cat-mpsc", Name: "MPSC", Description: "Maharashtra Public Service Commission"},
		},
		SubCategories: []model.ExamSubCategory{
			{ID: "sub-cgl", Name: "CGL", CategoryID: "cat-ssc", IsActive: true, Priority: 1},
			{ID: "sub-chsl", Name: "CHSL", CategoryID: "cat-ssc", IsActive: true, Priority: 2},
			{ID: "sub-rajyaseva", Name: "Rajyaseva", CategoryID: "cat-mpsc", IsActive: true, Priority: 1},
		},
		Subjects: []model.Subject{
			{ID: "subj-physics", Name: "Physics"},
			{ID: "subj-maths", Name: "Mathematics"},
			{ID: "subj-gk", Name: "General Knowledge"},
		},
		Papers: []model.QuestionPaperFull{physics, ssc, premium, empty},
		PaperSubcategory: map[string]string{
			PaperPhysicsMock: "sub-cgl",
			PaperSSC2024:     "sub-cgl",
			PaperPremium:     "sub-rajyaseva",
			PaperEmpty:       "sub-chsl",
		},
		PremiumPapers: map[string]bool{PaperPremium: true},
		Competitions: []CompetitionFixture{
			{
				Competition: model.Competition{
					ID:                 CompetitionLive,
					Title:              "Sunday Maths Sprint",
					Subtitle:           "Three questions, thirty minutes",
					TotalQuestions:     len(compQuestions),
					TotalMarks:         3,
					DurationInMinutes:  30,
					LanguagesAvailable: []string{"en"},
					Reward:             &model.Reward{Type: model.RewardPremiumMembership, Value: "Pro", DurationInDays: 30, EligibilityCount: 3},
					StartDateTime:      &liveStart,
					EndDateTime:        &liveEnd,
				},
				Questions: compQuestions,
			},
			{
				Competition: model.Competition{
					ID:                CompetitionUpcoming,
					Name:              "GK Weekly",
					TotalQuestions:    1,
					TotalMarks:        1,
					DurationInMinutes: 20,
					StartDateTime:     &upStart,
					EndDateTime:       &upEnd,
				},
				Questions: compQuestions[:1],
			},
			{
				Competition: model.Competition{
					ID:                CompetitionFinished,
					Title:             "Last Week's Challenge",
					TotalQuestions:    1,
					TotalMarks:        1,
					DurationInMinutes: 20,
					StartDateTime:     &doneStart,
					EndDateTime:       &doneEnd,
				},
				Questions: compQuestions[:1],
			},
		},
		Plans: []model.SubscriptionPlan{
			{
				ID: "plan-pro-monthly", Name: "Pro Monthly", Price: 199, Currency: "INR",
				DurationInDays: 30, Scope: model.PlanScopeGlobal,
				Features: &model.PlanFeatures{NoAds: true, MultiLanguageAccess: true},
			},
			{
				ID: "plan-ssc-quarter", Name: "SSC Quarterly", Price: 399, Currency: "INR",
				DurationInDays: 90, Scope: model.PlanScopeCategory, CategoryID: "cat-ssc",
				Features: &model.PlanFeatures{CustomPaperPerDay: ptr(10), NoAds: true},
			},
		},
		Notifications: []model.NotificationItem{
			{ID: "n-1", Title: "New SSC papers", Subtitle: "2024 Tier 1 added", Message: "Previous-year SSC CGL papers are now available.", CreatedAt: &published},
			{ID: "n-2", Title: "Sunday Maths Sprint is live", Message: "Top three win a month of Pro.", CreatedAt: &liveStart},
		},
		AcademyContacts: map[string]bool{AcademyContact: true},
		AcademyPapers:   []model.QuestionPaperFull{academy},
	}
}

// listItem is the list view of a full paper.
func listItem(p *model.QuestionPaperFull) model.QuestionPaper {
	return model.QuestionPaper{
		ID:            p.ID,
		Title:         p.ExamName,
		ExamName:      p.ExamName,
		ExamDueMin:    p.ExamDueMin,
		TotalMarks:    int(p.TotalMarks),
		TotalQueCount: p.TotalQueCount,
	}
}

// stripAnswers returns the questions without answer keys or explanations.
func stripAnswers(qs []model.Question) []model.Question {
	out := make([]model.Question, len(qs))
	for i, q := range qs {
		q.Answer = nil
		q.Explanation = nil
		out[i] = q
	}
	return out
}

// generatedQuestions builds a synthetic question set for a custom paper.
func generatedQuestions(subject string, count int, difficulty model.Difficulty) []model.Question {
	qs := make([]model.Question, count)
	for i := range qs {
		qs[i] = mcq(
			fmt.Sprintf("gen-%d", i+1),
			text(fmt.Sprintf("%s (%s) question %d", subject, difficulty, i+1)),
			[]string{"Option A", "Option B", "Option C", "Option D"},
			i%4,
			fmt.Sprintf("The answer is option %c.", 'A'+i%4),
		)
	}
	return qs
}

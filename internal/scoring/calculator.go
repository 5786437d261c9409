// Package scoring derives the immediate, client-side estimate of a practice
// attempt. The backend computes and persists its own result; the two are
// never reconciled.
package scoring

import (
	"math"

	"github.com/stemsi/qprep-client/internal/model"
)

const (
	defaultMarksPerQuestion = 1.0
	defaultNegativeMarks    = 0.25
	defaultSubject          = "General"
)

// Answers maps a flattened question index to the selected option index.
type Answers map[int]int

// Outcome is the calculator output.
type Outcome struct {
	Result       model.ExamResult
	SubjectStats []model.SubjectStat
	// RawScore is the unfloored accumulator; Result.Score is floored at zero.
	RawScore float64
}

// Calculate walks every question once in section order and tallies the
// attempt. secondsLeft is the timer reading at submission.
func Calculate(paper *model.QuestionPaperFull, answers Answers, secondsLeft int) Outcome {
	var (
		total, answered, correct, incorrect int
		score, totalMarks                   float64
	)

	subject := defaultSubject
	if len(paper.ExamSubjects) > 0 && paper.ExamSubjects[0] != "" {
		subject = paper.ExamSubjects[0]
	}
	stats := map[string]*model.SubjectStat{}
	var order []string

	index := 0
	for _, section := range paper.Sections {
		mark := section.MarksPerQuestion
		if mark == 0 {
			mark = defaultMarksPerQuestion
		}
		negative := negativeMarks(paper, &section)

		for qi := range section.Questions {
			q := &section.Questions[qi]
			total++
			totalMarks += mark

			st, ok := stats[subject]
			if !ok {
				st = &model.SubjectStat{Subject: subject}
				stats[subject] = st
				order = append(order, subject)
			}
			st.Total++

			if selected, ok := answers[index]; ok {
				answered++
				if IsCorrect(q, selected) {
					correct++
					score += mark
					st.Correct++
				} else {
					incorrect++
					score -= negative
				}
			}
			index++
		}
	}

	percentage := 0.0
	if totalMarks > 0 {
		percentage = score / totalMarks * 100
	}
	accuracy := 0.0
	if answered > 0 {
		accuracy = float64(correct) / float64(answered) * 100
	}

	timeTaken := paper.DurationMinutes()*60 - secondsLeft
	if timeTaken < 0 {
		timeTaken = 0
	}

	subjectStats := make([]model.SubjectStat, 0, len(order))
	for _, name := range order {
		subjectStats = append(subjectStats, *stats[name])
	}

	return Outcome{
		Result: model.ExamResult{
			TotalQuestions: total,
			Answered:       answered,
			Correct:        correct,
			Incorrect:      incorrect,
			Unanswered:     total - answered,
			Score:          math.Max(0, score),
			TotalMarks:     totalMarks,
			Percentage:     int(math.Round(percentage)),
			Accuracy:       int(math.Round(accuracy)),
			TimeTaken:      timeTaken,
		},
		SubjectStats: subjectStats,
		RawScore:     score,
	}
}

// negativeMarks prefers the section's own penalty; otherwise a paper flagged
// for negative marking costs a quarter mark per wrong answer.
func negativeMarks(paper *model.QuestionPaperFull, section *model.Section) float64 {
	if section.NegativeMarks != nil {
		return *section.NegativeMarks
	}
	if paper.HasNegativeMarking {
		return defaultNegativeMarks
	}
	return 0
}

// IsCorrect matches the answer key against the selected option index, and
// against the selected option's id for papers keyed by id.
func IsCorrect(q *model.Question, selected int) bool {
	key := q.CorrectAnswer()
	if selected == key {
		return true
	}
	if selected >= 0 && selected < len(q.Options) {
		return q.Options[selected].ID == key
	}
	return false
}

// PaperTypeOf classifies a paper for analytics.
func PaperTypeOf(paper *model.QuestionPaperFull, custom bool) model.PaperType {
	switch {
	case custom:
		return model.PaperTypeCustomPaper
	case paper.IsRealExam:
		return model.PaperTypeRealExam
	default:
		return model.PaperTypeLatestPaper
	}
}

// Submission builds the analytics payload for an outcome.
func Submission(paperID string, paperType model.PaperType, out Outcome) model.PerformanceSubmission {
	return model.PerformanceSubmission{
		PaperID:        paperID,
		PaperType:      paperType,
		Score:          out.Result.Score,
		TotalMarks:     out.Result.TotalMarks,
		CorrectCount:   out.Result.Correct,
		WrongCount:     out.Result.Incorrect,
		TotalQuestions: out.Result.TotalQuestions,
		TimeTaken:      out.Result.TimeTaken,
		SubjectStats:   out.SubjectStats,
	}
}

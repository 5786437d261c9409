package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/stemsi/qprep-client/internal/model"
	"github.com/stemsi/qprep-client/internal/resultstore"
	"github.com/stemsi/qprep-client/internal/scoring"
	"github.com/stemsi/qprep-client/internal/session"
)

var (
	headingColor  = color.New(color.FgYellow, color.Bold)
	successColor  = color.New(color.FgGreen)
	warnColor     = color.New(color.FgRed)
	answeredColor = color.New(color.FgGreen)
	markedColor   = color.New(color.FgMagenta)
	visitedColor  = color.New(color.FgYellow)
	dimColor      = color.New(color.Faint)
)

const dateLayout = "02 Jan 2006 15:04"

func (a *app) table(headers ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(a.out)
	t.SetHeader(headers)
	t.SetAutoWrapText(false)
	return t
}

func (a *app) heading(s string) {
	headingColor.Fprintln(a.out, "\n"+s)
}

func (a *app) success(format string, args ...interface{}) {
	successColor.Fprintf(a.out, format+"\n", args...)
}

func (a *app) warn(format string, args ...interface{}) {
	warnColor.Fprintf(a.out, format+"\n", args...)
}

func displayName(u *model.User) string {
	if u == nil {
		return "guest"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Contact
}

func formatWhen(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func formatScore(score, total float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64) + " / " + strconv.FormatFloat(total, 'f', -1, 64)
}

// ─── Account & catalogue ───────────────────────────────────────────────

func (a *app) renderProfile(u *model.User) {
	plan := u.PlanName
	if u.IsFree() {
		plan = "Free"
	}
	t := a.table("Field", "Value")
	t.Append([]string{"ID", u.ID})
	t.Append([]string{"Name", u.Name})
	t.Append([]string{"Mobile", u.Contact})
	t.Append([]string{"Email", u.Email})
	t.Append([]string{"Language", u.Language})
	t.Append([]string{"Plan", plan})
	t.Render()
}

func (a *app) renderPapers(papers []model.QuestionPaper) {
	if len(papers) == 0 {
		fmt.Fprintln(a.out, "No papers found.")
		return
	}
	t := a.table("ID", "Paper", "Questions", "Minutes", "Marks")
	for _, p := range papers {
		minutes := p.ExamDueMin
		if minutes == 0 {
			minutes = p.Duration
		}
		t.Append([]string{
			p.ID,
			p.DisplayTitle(),
			strconv.Itoa(p.QuestionCount()),
			strconv.Itoa(minutes),
			strconv.Itoa(p.TotalMarks),
		})
	}
	t.Render()
}

// ─── Exam ──────────────────────────────────────────────────────────────

func (a *app) renderPaperIntro(p *model.QuestionPaperFull) {
	a.heading(p.ExamName)
	fmt.Fprintf(a.out, "%d questions, %d minutes, %s marks",
		len(p.Questions()), p.DurationMinutes(), strconv.FormatFloat(p.TotalMarks, 'f', -1, 64))
	if p.HasNegativeMarking {
		fmt.Fprint(a.out, ", negative marking")
	}
	fmt.Fprintln(a.out)
	if p.Instructions != "" {
		dimColor.Fprintln(a.out, p.Instructions)
	}
}

func (a *app) renderQuestion(v session.View) {
	if v.Total == 0 {
		return
	}
	status := fmt.Sprintf("Q %d/%d  ⏱ %s  answered %d/%d  [%s]",
		v.Index+1, v.Total, session.FormatTime(v.SecondsLeft), v.Answered, v.Total, v.Language)
	if v.Marked {
		status += "  " + markedColor.Sprint("marked")
	}
	headingColor.Fprintln(a.out, "\n"+status)

	fmt.Fprintln(a.out, v.Question.Text)
	if v.Question.Image != "" {
		dimColor.Fprintf(a.out, "(image: %s)\n", v.Question.Image)
	}
	for i, opt := range v.Options {
		label := opt.Text
		if opt.Image != "" {
			label = strings.TrimSpace(label + " (image: " + opt.Image + ")")
		}
		if i == v.Selected {
			answeredColor.Fprintf(a.out, " *%d) %s\n", i+1, label)
			continue
		}
		fmt.Fprintf(a.out, "  %d) %s\n", i+1, label)
	}
}

func (a *app) renderPalette(items []session.PaletteItem) {
	var b strings.Builder
	for i, it := range items {
		cell := strconv.Itoa(it.Index + 1)
		if it.Current {
			cell = "[" + cell + "]"
		}
		cell = fmt.Sprintf("%6s", cell)
		switch it.Status {
		case session.PaletteAnswered:
			cell = answeredColor.Sprint(cell)
		case session.PaletteMarked:
			cell = markedColor.Sprint(cell)
		case session.PaletteVisited:
			cell = visitedColor.Sprint(cell)
		}
		b.WriteString(cell)
		if (i+1)%10 == 0 {
			b.WriteByte('\n')
		}
	}
	fmt.Fprintln(a.out, strings.TrimRight(b.String(), "\n"))

	counts := map[session.PaletteStatus]int{}
	for _, it := range items {
		counts[it.Status]++
	}
	fmt.Fprintf(a.out, "%s %d  %s %d  %s %d  not visited %d\n",
		answeredColor.Sprint("answered"), counts[session.PaletteAnswered],
		markedColor.Sprint("marked"), counts[session.PaletteMarked],
		visitedColor.Sprint("visited"), counts[session.PaletteVisited],
		counts[session.PaletteNotVisited])
}

func (a *app) renderExamHelp() {
	t := a.table("Command", "Action")
	t.Append([]string{"1-9, a N", "answer with option N"})
	t.Append([]string{"c", "clear the answer"})
	t.Append([]string{"m", "mark or unmark for review"})
	t.Append([]string{"n / p", "next / previous question"})
	t.Append([]string{"j N", "jump to question N"})
	t.Append([]string{"g", "question palette"})
	t.Append([]string{"l CODE", "switch language (en, hi, mr)"})
	t.Append([]string{"r", "redraw the question"})
	t.Append([]string{"s", "submit"})
	t.Append([]string{"q", "leave without submitting"})
	t.Render()
}

// ─── Results ───────────────────────────────────────────────────────────

func (a *app) renderResult(last *resultstore.LastResult) {
	r := last.Result
	a.heading(last.Paper.ExamName + " result")

	t := a.table("", "")
	t.Append([]string{"Score", formatScore(r.Score, r.TotalMarks)})
	t.Append([]string{"Percentage", fmt.Sprintf("%d%%", r.Percentage)})
	t.Append([]string{"Accuracy", fmt.Sprintf("%d%%", r.Accuracy)})
	t.Append([]string{"Correct", strconv.Itoa(r.Correct)})
	t.Append([]string{"Incorrect", strconv.Itoa(r.Incorrect)})
	t.Append([]string{"Unanswered", strconv.Itoa(r.Unanswered)})
	t.Append([]string{"Time taken", session.FormatTime(r.TimeTaken)})
	t.Render()

	if len(last.SubjectStats) > 0 {
		st := a.table("Subject", "Correct", "Total")
		for _, s := range last.SubjectStats {
			st.Append([]string{s.Subject, strconv.Itoa(s.Correct), strconv.Itoa(s.Total)})
		}
		st.Render()
	}
}

func (a *app) renderSolutions(last *resultstore.LastResult, lang string, wrongOnly bool) {
	a.heading(last.Paper.ExamName + " solutions")

	questions := last.Paper.Questions()
	shown := 0
	for i := range questions {
		q := &questions[i]
		selected, answered := last.Answers[i]
		correct := answered && scoring.IsCorrect(q, selected)
		if wrongOnly && correct {
			continue
		}
		shown++

		verdict := warnColor.Sprint("wrong")
		switch {
		case !answered:
			verdict = dimColor.Sprint("skipped")
		case correct:
			verdict = successColor.Sprint("correct")
		}
		fmt.Fprintf(a.out, "\nQ%d. %s  [%s]\n", i+1, q.Content.Resolve(lang).Text, verdict)

		for j, opt := range q.Options {
			marker := "  "
			if answered && j == selected {
				marker = "> "
			}
			line := fmt.Sprintf("%s%d) %s", marker, j+1, opt.Content.Resolve(lang).Text)
			if scoring.IsCorrect(q, j) {
				successColor.Fprintln(a.out, line+"  ✓")
				continue
			}
			fmt.Fprintln(a.out, line)
		}
		if exp := q.Explanation.Resolve(lang).Text; exp != "" {
			dimColor.Fprintln(a.out, "   "+exp)
		}
	}
	if shown == 0 {
		fmt.Fprintln(a.out, "Every question was answered correctly.")
	}
}

func (a *app) renderPracticeHistory(items []model.PaperSubmissionItem) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No attempts yet.")
		return
	}
	t := a.table("Date", "Paper", "Type", "Score", "Correct", "Wrong", "Time")
	for _, it := range items {
		title := it.PaperID
		if it.Paper != nil && it.Paper.Title != "" {
			title = it.Paper.Title
		}
		created := it.CreatedAt
		t.Append([]string{
			formatWhen(&created),
			title,
			string(it.PaperType),
			formatScore(it.Score, it.TotalMarks),
			strconv.Itoa(it.CorrectCount),
			strconv.Itoa(it.WrongCount),
			session.FormatTime(it.TimeTaken),
		})
	}
	t.Render()
}

// ─── Competitions ──────────────────────────────────────────────────────

func (a *app) renderCompetitions(comps []model.Competition) {
	if len(comps) == 0 {
		fmt.Fprintln(a.out, "No competitions.")
		return
	}
	t := a.table("ID", "Title", "Status", "Starts", "Ends", "Questions", "Reward")
	for _, c := range comps {
		reward := "-"
		if c.Reward != nil {
			reward = fmt.Sprintf("%s %s", c.Reward.Type, c.Reward.Value)
		}
		t.Append([]string{
			c.ID,
			c.DisplayTitle(),
			string(c.Status),
			formatWhen(c.StartDateTime),
			formatWhen(c.EndDateTime),
			strconv.Itoa(c.TotalQuestions),
			reward,
		})
	}
	t.Render()
}

type competitionVerdict struct {
	Score          float64 `json:"score"`
	CorrectCount   int     `json:"correctCount"`
	WrongCount     int     `json:"wrongCount"`
	TotalQuestions int     `json:"totalQuestions"`
	Rank           int     `json:"rank,omitempty"`
}

func (a *app) renderCompetitionResult(raw json.RawMessage) {
	var v competitionVerdict
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		a.renderJSON(raw)
		return
	}
	a.heading("Competition result")
	t := a.table("", "")
	t.Append([]string{"Score", strconv.FormatFloat(v.Score, 'f', -1, 64)})
	t.Append([]string{"Correct", strconv.Itoa(v.CorrectCount)})
	t.Append([]string{"Wrong", strconv.Itoa(v.WrongCount)})
	if v.TotalQuestions > 0 {
		t.Append([]string{"Unanswered", strconv.Itoa(v.TotalQuestions - v.CorrectCount - v.WrongCount)})
	}
	if v.Rank > 0 {
		t.Append([]string{"Rank", strconv.Itoa(v.Rank)})
	}
	t.Render()
}

func (a *app) renderLeaderboard(rows []model.LeaderboardEntry) {
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No ranked submissions yet.")
		return
	}
	t := a.table("Rank", "Name", "Score", "Correct", "Wrong", "Time")
	for _, r := range rows {
		t.Append([]string{
			strconv.Itoa(r.Rank),
			r.Name,
			strconv.FormatFloat(r.Score, 'f', -1, 64),
			strconv.Itoa(r.CorrectCount),
			strconv.Itoa(r.WrongCount),
			session.FormatTime(r.Duration),
		})
	}
	t.Render()
}

func (a *app) renderCompetitionHistory(items []model.CompetitionSubmissionItem) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No competition attempts yet.")
		return
	}
	t := a.table("Competition", "Status", "Score", "Correct", "Wrong", "Submitted")
	for _, it := range items {
		title := it.CompetitionID
		if it.Competition != nil && it.Competition.Title != "" {
			title = it.Competition.Title
		}
		t.Append([]string{
			title,
			string(it.Status),
			strconv.FormatFloat(it.Score, 'f', -1, 64),
			strconv.Itoa(it.CorrectCount),
			strconv.Itoa(it.WrongCount),
			formatWhen(it.SubmittedAt),
		})
	}
	t.Render()
}

// ─── Custom papers & billing ───────────────────────────────────────────

func (a *app) renderCustomPapers(items []model.CustomPaperListItem) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No custom papers. Create one with `qprep custom create -subject NAME`.")
		return
	}
	t := a.table("ID", "Title", "Subject", "Questions", "Minutes", "Difficulty", "Created")
	for _, p := range items {
		created := p.CreatedAt
		t.Append([]string{
			p.ID,
			p.Title,
			p.Subject,
			strconv.Itoa(p.QuestionCount),
			strconv.Itoa(p.Duration),
			string(p.Difficulty),
			formatWhen(&created),
		})
	}
	t.Render()
}

func (a *app) renderPlans(plans []model.SubscriptionPlan) {
	if len(plans) == 0 {
		fmt.Fprintln(a.out, "No plans available.")
		return
	}
	t := a.table("ID", "Plan", "Price", "Days", "Scope", "Custom papers/day")
	for _, p := range plans {
		perDay := "unlimited"
		if p.Features != nil && p.Features.CustomPaperPerDay != nil {
			perDay = strconv.Itoa(*p.Features.CustomPaperPerDay)
		}
		t.Append([]string{
			p.ID,
			p.Name,
			strings.TrimSpace(fmt.Sprintf("%s %s", strconv.FormatFloat(p.Price, 'f', -1, 64), p.Currency)),
			strconv.Itoa(p.DurationInDays),
			string(p.Scope),
			perDay,
		})
	}
	t.Render()
}

// ─── Notifications ─────────────────────────────────────────────────────

func (a *app) renderNotifications(items []model.NotificationItem) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No notifications.")
		return
	}
	t := a.table("ID", "Title", "Date")
	for _, n := range items {
		date := n.Date
		if date == "" {
			date = formatWhen(n.CreatedAt)
		}
		t.Append([]string{n.ID, n.Title, date})
	}
	t.Render()
}

func (a *app) renderNotification(n *model.NotificationItem) {
	a.heading(n.Title)
	if n.Subtitle != "" {
		dimColor.Fprintln(a.out, n.Subtitle)
	}
	if n.Message != "" {
		fmt.Fprintln(a.out, n.Message)
	}
}

// renderJSON pretty-prints a document whose shape the client does not model.
func (a *app) renderJSON(raw json.RawMessage) {
	if len(raw) == 0 || string(raw) == "null" {
		fmt.Fprintln(a.out, "-")
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		fmt.Fprintln(a.out, string(raw))
		return
	}
	fmt.Fprintln(a.out, buf.String())
}

package model

import "testing"

func TestResolveFallsBack(t *testing.T) {
	c := MultiLangContent{
		"hi": {Type: ContentTypeText, Text: "namaste"},
		"en": {Type: ContentTypeText, Text: "hello"},
	}

	if got := c.Resolve("hi").Text; got != "namaste" {
		t.Errorf("hi: %q", got)
	}
	if got := c.Resolve("mr").Text; got != "hello" {
		t.Errorf("mr should fall back to en, got %q", got)
	}

	onlyOthers := MultiLangContent{"mr": {Text: "m"}, "hi": {Text: "h"}}
	if got := onlyOthers.Resolve("en").Text; got != "h" {
		t.Errorf("without en the smallest key wins, got %q", got)
	}

	if got := (MultiLangContent{}).Resolve("en"); got != (ResolvedContent{}) {
		t.Errorf("empty content resolved to %+v", got)
	}
}

func TestPaperDefaults(t *testing.T) {
	p := QuestionPaperFull{
		Sections: []Section{
			{Questions: []Question{{ID: "a"}, {ID: "b"}}},
			{Questions: []Question{{ID: "c"}}},
		},
	}

	qs := p.Questions()
	if len(qs) != 3 || qs[2].ID != "c" {
		t.Fatalf("flattened = %+v", qs)
	}
	if p.DurationMinutes() != 60 {
		t.Errorf("duration = %d", p.DurationMinutes())
	}
	if p.PrimaryLanguage() != "en" {
		t.Errorf("language = %s", p.PrimaryLanguage())
	}
	if qs[0].CorrectAnswer() != -1 {
		t.Errorf("missing key should be -1")
	}

	list := QuestionPaper{Title: "t", TotalQuestions: 5}
	if list.DisplayTitle() != "t" || list.QuestionCount() != 5 {
		t.Errorf("list defaults: %s %d", list.DisplayTitle(), list.QuestionCount())
	}
}

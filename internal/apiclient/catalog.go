package apiclient

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/stemsi/qprep-client/internal/model"
)

// GetExamCategories lists exam categories.
func (c *Client) GetExamCategories(ctx context.Context) ([]model.ExamCategory, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/exams/category", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[model.ExamCategory](raw, "data"), nil
}

// GetExamSubCategories lists sub-categories of a category.
func (c *Client) GetExamSubCategories(ctx context.Context, categoryID string) ([]model.ExamSubCategory, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/exams/subcategory", url.Values{"categoryId": {categoryID}}, &raw); err != nil {
		return nil, err
	}
	return decodeList[model.ExamSubCategory](raw, "data"), nil
}

// GetSubjects lists the public subjects available for custom papers.
func (c *Client) GetSubjects(ctx context.Context) ([]model.Subject, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/subjects/public", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[model.Subject](raw, "data"), nil
}

// GetQuestionPapers returns the first page of latest papers for the home screen.
func (c *Client) GetQuestionPapers(ctx context.Context) ([]model.QuestionPaper, error) {
	return c.GetQuestionPapersPaged(ctx, model.QuestionPaperQuery{Page: 1, Limit: 6})
}

// GetQuestionPapersPaged lists papers with optional filters.
func (c *Client) GetQuestionPapersPaged(ctx context.Context, params model.QuestionPaperQuery) ([]model.QuestionPaper, error) {
	q := pageQuery(params.Page, params.Limit)
	if params.CategoryID != "" {
		q.Set("categoryId", params.CategoryID)
	}
	if params.SubcategoryID != "" {
		q.Set("subcategoryId", params.SubcategoryID)
	}
	if params.IsRealExam != nil {
		q.Set("is_real_exam", strconv.FormatBool(*params.IsRealExam))
	}
	if params.Search != "" {
		q.Set("search", params.Search)
	}

	var raw json.RawMessage
	if err := c.get(ctx, "/question-papers", q, &raw); err != nil {
		return nil, err
	}
	return decodeList[model.QuestionPaper](raw, "data"), nil
}

// GetRealExamsByCategory lists previous-year papers of a category.
func (c *Client) GetRealExamsByCategory(ctx context.Context, category string, page, limit int) ([]model.QuestionPaper, error) {
	var raw json.RawMessage
	path := "/question-papers/real-exams/base-details/" + url.PathEscape(category)
	if err := c.get(ctx, path, pageQuery(page, limit), &raw); err != nil {
		return nil, err
	}
	return decodeList[model.QuestionPaper](raw, "data"), nil
}

// SearchRealExams searches previous-year papers within a category.
func (c *Client) SearchRealExams(ctx context.Context, category, query string, page, limit int) ([]model.QuestionPaper, error) {
	q := pageQuery(page, limit)
	q.Set("category", category)
	q.Set("query", query)

	var raw json.RawMessage
	if err := c.get(ctx, "/question-papers/real-exams-search", q, &raw); err != nil {
		return nil, err
	}
	return decodeList[model.QuestionPaper](raw, "data"), nil
}

// GetPaperFullDetails fetches a paper with sections and answer key.
func (c *Client) GetPaperFullDetails(ctx context.Context, id string) (*model.QuestionPaperFull, error) {
	var paper model.QuestionPaperFull
	if err := c.get(ctx, "/question-papers/full/"+url.PathEscape(id), nil, &paper); err != nil {
		return nil, err
	}
	return &paper, nil
}

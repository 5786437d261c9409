package mockapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/qprep-client/internal/model"
	"github.com/stemsi/qprep-client/internal/response"
)

// pageParams reads page/limit with defaults of 1 and 10.
func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// GET /exams/category
func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.fx.Categories})
}

// GET /exams/subcategory?categoryId=
func (s *Server) listSubCategories(c *gin.Context) {
	categoryID := c.Query("categoryId")
	out := []model.ExamSubCategory{}
	for _, sc := range s.fx.SubCategories {
		if categoryID == "" || sc.CategoryID == categoryID {
			out = append(out, sc)
		}
	}
	c.JSON(http.StatusOK, out)
}

// GET /subjects/public
func (s *Server) listSubjects(c *gin.Context) {
	c.JSON(http.StatusOK, s.fx.Subjects)
}

// GET /question-papers
func (s *Server) listPapers(c *gin.Context) {
	categoryID := c.Query("categoryId")
	subcategoryID := c.Query("subcategoryId")
	search := strings.ToLower(c.Query("search"))
	realFilter, hasRealFilter := c.GetQuery("is_real_exam")

	category := ""
	for _, cat := range s.fx.Categories {
		if cat.ID == categoryID {
			category = cat.Name
		}
	}

	matched := []model.QuestionPaper{}
	for i := range s.fx.Papers {
		p := &s.fx.Papers[i]
		if !p.IsPublished {
			continue
		}
		if categoryID != "" && p.ExamCategory != category {
			continue
		}
		if subcategoryID != "" && s.fx.PaperSubcategory[p.ID] != subcategoryID {
			continue
		}
		if hasRealFilter && strconv.FormatBool(p.IsRealExam) != realFilter {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.ExamName), search) {
			continue
		}
		matched = append(matched, listItem(p))
	}

	page, limit := pageParams(c)
	c.JSON(http.StatusOK, gin.H{"data": paginate(matched, page, limit), "total": len(matched)})
}

// GET /question-papers/real-exams/base-details/:category
func (s *Server) listRealExams(c *gin.Context) {
	page, limit := pageParams(c)
	c.JSON(http.StatusOK, gin.H{"data": paginate(s.realExams(c.Param("category"), ""), page, limit)})
}

// GET /question-papers/real-exams-search?category=&query=
func (s *Server) searchRealExams(c *gin.Context) {
	page, limit := pageParams(c)
	found := s.realExams(c.Query("category"), strings.ToLower(c.Query("query")))
	c.JSON(http.StatusOK, paginate(found, page, limit))
}

func (s *Server) realExams(category, query string) []model.QuestionPaper {
	out := []model.QuestionPaper{}
	for i := range s.fx.Papers {
		p := &s.fx.Papers[i]
		if !p.IsRealExam || !strings.EqualFold(p.ExamCategory, category) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.ExamName), query) {
			continue
		}
		out = append(out, listItem(p))
	}
	return out
}

// GET /question-papers/full/:id
// Premium papers answer 403 to users without a plan.
func (s *Server) getFullPaper(c *gin.Context) {
	id := c.Param("id")
	for i := range s.fx.Papers {
		p := s.fx.Papers[i]
		if p.ID != id {
			continue
		}
		if s.fx.PremiumPapers[id] && !s.hasPlan(currentUserID(c)) {
			response.Fail(c, http.StatusForbidden, response.ErrSubscriptionRequired)
			return
		}
		c.JSON(http.StatusOK, p)
		return
	}
	response.Fail(c, http.StatusNotFound, response.ErrNotFound)
}

// GET /user/my-academy
func (s *Server) getMyAcademy(c *gin.Context) {
	u := s.user(currentUserID(c))
	if !s.fx.AcademyContacts[u.Contact] {
		c.JSON(http.StatusOK, model.AcademyState{Enrolled: false, Reason: "not a member of any academy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enrolled": true,
		"academy":  gin.H{"_id": "academy-pune", "name": "Pune Study Circle"},
	})
}

func (s *Server) requireAcademy(c *gin.Context) bool {
	u := s.user(currentUserID(c))
	if !s.fx.AcademyContacts[u.Contact] {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return false
	}
	return true
}

// GET /user/my-academy/question-papers
func (s *Server) listAcademyPapers(c *gin.Context) {
	if !s.requireAcademy(c) {
		return
	}
	search := strings.ToLower(c.Query("search"))
	out := []model.QuestionPaper{}
	for i := range s.fx.AcademyPapers {
		p := &s.fx.AcademyPapers[i]
		if search == "" || strings.Contains(strings.ToLower(p.ExamName), search) {
			out = append(out, listItem(p))
		}
	}
	page, limit := pageParams(c)
	c.JSON(http.StatusOK, gin.H{"papers": paginate(out, page, limit)})
}

// GET /user/my-academy/question-papers/:id
func (s *Server) getAcademyPaper(c *gin.Context) {
	if !s.requireAcademy(c) {
		return
	}
	for _, p := range s.fx.AcademyPapers {
		if p.ID == c.Param("id") {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	response.Fail(c, http.StatusNotFound, response.ErrNotFound)
}

// GET /notifications
func (s *Server) listNotifications(c *gin.Context) {
	page, limit := pageParams(c)
	c.JSON(http.StatusOK, gin.H{"notifications": paginate(s.fx.Notifications, page, limit)})
}

// GET /notifications/:id
func (s *Server) getNotification(c *gin.Context) {
	for _, n := range s.fx.Notifications {
		if n.ID == c.Param("id") {
			c.JSON(http.StatusOK, n)
			return
		}
	}
	response.Fail(c, http.StatusNotFound, response.ErrNotFound)
}

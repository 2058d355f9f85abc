package models

import "time"

// ── Catalog Entities ────────────────────────────────────

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	SortOrder   int    `json:"sort_order"`
	// Variants lists the sub-tests (e.g. "Test 1".."Test 4") of a category
	// with recurring term tests. Empty for every other category.
	Variants []string `json:"variants,omitempty"`
}

// HasVariantAxis reports whether papers in this category are further split by sub-test.
func (c Category) HasVariantAxis() bool {
	return len(c.Variants) > 0
}

// HasVariant reports whether v is one of the category's sub-tests.
func (c Category) HasVariant(v string) bool {
	for _, cv := range c.Variants {
		if cv == v {
			return true
		}
	}
	return false
}

type Paper struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	Year       string    `json:"year"`
	Title      string    `json:"title"`
	IsLocked   bool      `json:"is_locked"`
	TotalMarks int       `json:"total_marks"`
	CreatedAt  time.Time `json:"created_at"`
}

type Question struct {
	ID             string `json:"id"`
	PaperID        string `json:"paper_id"`
	QuestionNumber string `json:"question_number"`
	Content        string `json:"content"`
	Marks          int    `json:"marks"`
	SortOrder      int    `json:"sort_order"`
}

type Answer struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Content    string `json:"content"`
	StepNumber int    `json:"step_number"`
}

// QuestionWithSteps is one entry of an opened paper.
type QuestionWithSteps struct {
	Question
	Steps []Answer `json:"steps"`
}

// ── Response Types ──────────────────────────────────────

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
}

type YearListResponse struct {
	CategoryID string   `json:"category_id"`
	Years      []string `json:"years"`
}

type PaperListResponse struct {
	CategoryID string  `json:"category_id"`
	Year       string  `json:"year,omitempty"`
	Variant    string  `json:"variant,omitempty"`
	Papers     []Paper `json:"papers"`
	Total      int     `json:"total"`
}

type OpenPaperResponse struct {
	Paper     Paper               `json:"paper"`
	Questions []QuestionWithSteps `json:"questions"`
}

type QuestionDetailResponse struct {
	Question   Question `json:"question"`
	Steps      []Answer `json:"steps"`
	IsFavorite bool     `json:"is_favorite"`
}

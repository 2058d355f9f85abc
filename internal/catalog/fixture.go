package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/exampapers/backend/internal/models"
)

// Fixture is a complete catalog snapshot: the four collections of the
// document store, held as plain slices.
type Fixture struct {
	Categories []models.Category `json:"categories"`
	Papers     []models.Paper    `json:"papers"`
	Questions  []models.Question `json:"questions"`
	Answers    []models.Answer   `json:"answers"`
}

var (
	sampleYears    = []string{"2025", "2024", "2023", "2022"}
	sampleVariants = []string{"Test 1", "Test 2", "Test 3", "Test 4"}
	sampleCreated  = time.Date(2025, time.January, 15, 8, 0, 0, 0, time.UTC)
)

// SampleFixture returns the catalog shipped with the app for SMTH011
// Introduction to Calculus, plus the seeded provincial papers.
func SampleFixture() Fixture {
	var f Fixture

	f.Categories = []models.Category{
		{ID: "notes", Name: "notes", DisplayName: "Notes", SortOrder: 1},
		{ID: "practice_problems", Name: "practice_problems", DisplayName: "Practice Problems", SortOrder: 2},
		{ID: "tests", Name: "tests", DisplayName: "Tests", SortOrder: 3, Variants: append([]string(nil), sampleVariants...)},
		{ID: "exams", Name: "exams", DisplayName: "Exams", SortOrder: 4},
		{ID: "supplementary_exams", Name: "supplementary_exams", DisplayName: "Supplementary Exams", SortOrder: 5},
		{ID: "march_tests", Name: "march_tests", DisplayName: "March Tests", SortOrder: 6},
		{ID: "june_exams", Name: "june_exams", DisplayName: "June Exams", SortOrder: 7},
		{ID: "preliminary_exams", Name: "preliminary_exams", DisplayName: "Preliminary Exams", SortOrder: 8},
		{ID: "november_exams", Name: "november_exams", DisplayName: "November Exams", SortOrder: 9},
		{ID: "quiz_tests", Name: "quiz_tests", DisplayName: "Quiz Tests", SortOrder: 10},
		{ID: "activities", Name: "activities", DisplayName: "Activities", SortOrder: 11},
	}

	for _, y := range sampleYears {
		for i, v := range sampleVariants {
			f.Papers = append(f.Papers, models.Paper{
				ID:         fmt.Sprintf("smth011-%s-t%d", y, i+1),
				CategoryID: "tests",
				Year:       y,
				Title:      fmt.Sprintf("SMTH011 %s – %s", v, y),
				IsLocked:   i%2 == 1,
				TotalMarks: 50,
				CreatedAt:  sampleCreated,
			})
		}
		f.Papers = append(f.Papers,
			models.Paper{
				ID: "smth011-ex-" + y, CategoryID: "exams", Year: y,
				Title: "SMTH011 Exam – " + y, TotalMarks: 100, CreatedAt: sampleCreated,
			},
			models.Paper{
				ID: "smth011-sup-" + y, CategoryID: "supplementary_exams", Year: y,
				Title: "SMTH011 Supplementary – " + y, TotalMarks: 100, CreatedAt: sampleCreated,
			},
		)
	}

	f.Papers = append(f.Papers,
		models.Paper{ID: "paper_2025_march_ec", CategoryID: "march_tests", Year: "2025", Title: "March Test (EC)", IsLocked: true, TotalMarks: 100, CreatedAt: sampleCreated},
		models.Paper{ID: "paper_2024_june_exam", CategoryID: "june_exams", Year: "2024", Title: "June Exam", TotalMarks: 150, CreatedAt: sampleCreated},
		models.Paper{ID: "paper_2023_march_kzn", CategoryID: "march_tests", Year: "2023", Title: "March Test (KZN)", TotalMarks: 100, CreatedAt: sampleCreated},
	)

	f.Questions = []models.Question{
		{ID: "question_1_1_1", PaperID: "paper_2025_march_ec", QuestionNumber: "1.1.1", Content: "x² − 7x + 10 = 0", Marks: 2, SortOrder: 1},
		{ID: "question_1_1_2", PaperID: "paper_2025_march_ec", QuestionNumber: "1.1.2", Content: "3x² + 2x + 6 = 10 (correct to two decimal places)", Marks: 4, SortOrder: 2},
		{ID: "question_1_1_3", PaperID: "paper_2025_march_ec", QuestionNumber: "1.1.3", Content: "x³ + 3x² − 28 = 0", Marks: 4, SortOrder: 3},
		{ID: "question_2_1_1", PaperID: "paper_2024_june_exam", QuestionNumber: "2.1.1", Content: "Consider the sequence: 1; 4; 11; 22; 37; ... Calculate the nᵗʰ term.", Marks: 4, SortOrder: 1},
	}

	f.Answers = []models.Answer{
		{ID: "answer_1_1_1", QuestionID: "question_1_1_1", StepNumber: 1,
			Content: "Using the quadratic formula:\n\nx = (7 ± √(49 - 40)) / 2\nx = (7 ± √9) / 2\nx = (7 ± 3) / 2\n\nTherefore: x = 5 or x = 2"},
		{ID: "answer_1_1_2", QuestionID: "question_1_1_2", StepNumber: 1,
			Content: "Rearranging: 3x² + 2x - 4 = 0\n\nUsing quadratic formula:\nx = (-2 ± √(4 + 48)) / 6\nx = (-2 ± √52) / 6\nx = (-2 ± 7.21) / 6\n\nx = 0.87 or x = -1.54 (to 2 decimal places)"},
		{ID: "answer_1_1_3", QuestionID: "question_1_1_3", StepNumber: 1,
			Content: "By inspection, x = 2 is a root.\n\nUsing polynomial division or synthetic division:\n(x - 2)(x² + 5x + 14) = 0\n\nThe quadratic x² + 5x + 14 has discriminant = 25 - 56 = -31 < 0\n\nTherefore, the only real solution is x = 2"},
	}

	// Every open Test 1 paper carries the worked examples, one answer step per paragraph.
	worked := []struct {
		number, content string
		marks           int
		solution        string
	}{
		{"1.1.1", "x² − 7x + 10 = 0", 2, f.Answers[0].Content},
		{"1.1.2", "3x² + 2x + 6 = 10 (correct to two decimal places)", 4, f.Answers[1].Content},
		{"1.1.3", "x³ + 3x² − 28 = 0", 4, f.Answers[2].Content},
	}
	for _, y := range sampleYears {
		paperID := fmt.Sprintf("smth011-%s-t1", y)
		for i, w := range worked {
			qID := fmt.Sprintf("%s-q%d", paperID, i+1)
			f.Questions = append(f.Questions, models.Question{
				ID: qID, PaperID: paperID, QuestionNumber: w.number,
				Content: w.content, Marks: w.marks, SortOrder: i + 1,
			})
			for s, step := range strings.Split(w.solution, "\n\n") {
				f.Answers = append(f.Answers, models.Answer{
					ID:         fmt.Sprintf("%s-s%d", qID, s+1),
					QuestionID: qID,
					Content:    step,
					StepNumber: s + 1,
				})
			}
		}
	}

	return f
}

// ValidateFixture checks the catalog invariants: unique ids, every foreign
// key resolving, and unique sort_order / step_number within a parent.
func ValidateFixture(f Fixture) error {
	var errs []string

	categories := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		if categories[c.ID] {
			errs = append(errs, fmt.Sprintf("duplicate category id %q", c.ID))
		}
		categories[c.ID] = true
	}

	papers := make(map[string]bool, len(f.Papers))
	for _, p := range f.Papers {
		if papers[p.ID] {
			errs = append(errs, fmt.Sprintf("duplicate paper id %q", p.ID))
		}
		papers[p.ID] = true
		if !categories[p.CategoryID] {
			errs = append(errs, fmt.Sprintf("paper %q references missing category %q", p.ID, p.CategoryID))
		}
	}

	questions := make(map[string]bool, len(f.Questions))
	sortOrders := make(map[string]map[int]bool)
	for _, q := range f.Questions {
		if questions[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question id %q", q.ID))
		}
		questions[q.ID] = true
		if !papers[q.PaperID] {
			errs = append(errs, fmt.Sprintf("question %q references missing paper %q", q.ID, q.PaperID))
		}
		if sortOrders[q.PaperID] == nil {
			sortOrders[q.PaperID] = make(map[int]bool)
		}
		if sortOrders[q.PaperID][q.SortOrder] {
			errs = append(errs, fmt.Sprintf("paper %q has duplicate sort_order %d", q.PaperID, q.SortOrder))
		}
		sortOrders[q.PaperID][q.SortOrder] = true
	}

	answers := make(map[string]bool, len(f.Answers))
	steps := make(map[string]map[int]bool)
	for _, a := range f.Answers {
		if answers[a.ID] {
			errs = append(errs, fmt.Sprintf("duplicate answer id %q", a.ID))
		}
		answers[a.ID] = true
		if !questions[a.QuestionID] {
			errs = append(errs, fmt.Sprintf("answer %q references missing question %q", a.ID, a.QuestionID))
		}
		if steps[a.QuestionID] == nil {
			steps[a.QuestionID] = make(map[int]bool)
		}
		if steps[a.QuestionID][a.StepNumber] {
			errs = append(errs, fmt.Sprintf("question %q has duplicate step_number %d", a.QuestionID, a.StepNumber))
		}
		steps[a.QuestionID][a.StepNumber] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid fixture: %s", strings.Join(errs, "; "))
	}
	return nil
}

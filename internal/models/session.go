package models

// SelectionState is the browser's current navigational selection.
type SelectionState struct {
	Category string `json:"category,omitempty"`
	Year     string `json:"year,omitempty"`
	Variant  string `json:"variant,omitempty"`
	Stage    string `json:"stage"`
}

type UpdateSelectionRequest struct {
	Category *string `json:"category"`
	Year     *string `json:"year"`
	Variant  *string `json:"variant"`
}

// ── Favorites ───────────────────────────────────────────

// FavoriteQuestion is a favorited question with enough paper context to display it.
type FavoriteQuestion struct {
	Question      Question `json:"question"`
	PaperID       string   `json:"paper_id"`
	PaperTitle    string   `json:"paper_title"`
	Year          string   `json:"year"`
	CategoryID    string   `json:"category_id"`
	CategoryTitle string   `json:"category_title"`
}

type FavoriteListResponse struct {
	Favorites []FavoriteQuestion `json:"favorites"`
	Total     int                `json:"total"`
}

// ── Progress ────────────────────────────────────────────

type CategoryProgress struct {
	CategoryID  string  `json:"category_id"`
	DisplayName string  `json:"display_name"`
	Completed   int     `json:"completed"`
	Total       int     `json:"total"`
	Percent     float64 `json:"percent"`
}

type ProgressSummary struct {
	TotalQuestions     int                `json:"total_questions"`
	CompletedQuestions int                `json:"completed_questions"`
	CompletionPercent  float64            `json:"completion_percent"`
	CurrentStreak      int                `json:"current_streak"`
	LongestStreak      int                `json:"longest_streak"`
	Categories         []CategoryProgress `json:"categories"`
}

// ── Solutions ───────────────────────────────────────────

type DraftStepsResponse struct {
	QuestionID   string   `json:"question_id"`
	Steps        []Answer `json:"steps"`
	Saved        bool     `json:"saved"`
	Model        string   `json:"model"`
	PromptTokens int      `json:"prompt_tokens"`
	OutputTokens int      `json:"output_tokens"`
}

// trivia/question.go
package trivia

// Question is one quiz question with its answer set. AllAnswers is shuffled
// once at fetch time; every player in a room sees the same order.
type Question struct {
	ID               string   `json:"id"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Prompt           string   `json:"question"`
	CorrectAnswer    string   `json:"correctAnswer"`
	IncorrectAnswers []string `json:"incorrectAnswers"`
	AllAnswers       []string `json:"allAnswers"`
}

// PublicQuestion is the client-facing view with the correct answer stripped.
type PublicQuestion struct {
	ID         string   `json:"id"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Prompt     string   `json:"question"`
	AllAnswers []string `json:"allAnswers"`
}

func (q *Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:         q.ID,
		Category:   q.Category,
		Difficulty: q.Difficulty,
		Prompt:     q.Prompt,
		AllAnswers: q.AllAnswers,
	}
}

// Category is one entry of the question catalog.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Categories is the curated catalog offered to clients (Open Trivia DB ids).
var Categories = []Category{
	{ID: 9, Name: "General Knowledge"},
	{ID: 17, Name: "Science & Nature"},
	{ID: 18, Name: "Computers"},
	{ID: 21, Name: "Sports"},
	{ID: 22, Name: "Geography"},
	{ID: 23, Name: "History"},
	{ID: 27, Name: "Animals"},
}

// CategoryName resolves a category id to its label, empty when unknown.
func CategoryName(id int) string {
	for _, c := range Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

// Difficulties accepted by the provider and the scoring engine.
var Difficulties = []string{"easy", "medium", "hard"}

func ValidDifficulty(difficulty string) bool {
	if difficulty == "" {
		return true
	}
	for _, d := range Difficulties {
		if d == difficulty {
			return true
		}
	}
	return false
}

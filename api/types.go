package api

import (
	"encoding/json"
	"strconv"
)

type LoginResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	ID           json.Number `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	Roles        []string    `json:"roles"`
}

type RegisterRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     []string `json:"role,omitempty"`
}

type Message struct {
	Message string `json:"message"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Question struct {
	QuestionID int      `json:"questionId"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Answer     string   `json:"answer"`
}

// Quiz is a generated quiz. A topic the server cannot build questions for
// yields no questions and an explanatory Message.
type Quiz struct {
	Topic      string     `json:"topic"`
	Difficulty string     `json:"difficulty"`
	Message    string     `json:"message,omitempty"`
	Questions  []Question `json:"questions"`
}

type Answer struct {
	QuestionID int    `json:"questionId,omitempty"`
	Selected   string `json:"selected,omitempty"`
	IsCorrect  bool   `json:"isCorrect"`
}

// Grade builds the answers for q from the selected option per question id.
// Unanswered questions count as incorrect.
func (q Quiz) Grade(selected map[int]string) []Answer {
	out := make([]Answer, 0, len(q.Questions))
	for _, question := range q.Questions {
		choice, ok := selected[question.QuestionID]
		out = append(out, Answer{
			QuestionID: question.QuestionID,
			Selected:   choice,
			IsCorrect:  ok && choice == question.Answer,
		})
	}
	return out
}

// Submission is a completed quiz. UserID defaults to the session's user.
type Submission struct {
	UserID     int64    `json:"userId"`
	Answers    []Answer `json:"answers"`
	Topic      string   `json:"topic"`
	Difficulty string   `json:"difficulty"`
	// TimeTaken is in seconds.
	TimeTaken int `json:"timeTaken"`
}

type Result struct {
	UserID          int64  `json:"userId"`
	ScorePercentage int    `json:"scorePercentage"`
	Score           int    `json:"score"`
	CorrectAnswers  int    `json:"correctAnswers"`
	TotalQuestions  int    `json:"totalQuestions"`
	NextLevel       string `json:"nextLevel"`
	DifficultyUsed  string `json:"difficultyUsed"`
	Topic           string `json:"topic"`
}

type Attempt struct {
	ID    int64  `json:"id"`
	Topic string `json:"topic"`
	Score int    `json:"score"`
	// Date is the server's timestamp text, "N/A" when unknown.
	Date string `json:"date"`
}

type LeaderboardEntry struct {
	Username string   `json:"username"`
	Role     string   `json:"role"`
	Points   int      `json:"points"`
	Badges   []string `json:"badges"`
}

type StudentAnalytics struct {
	UserID       int64    `json:"userId"`
	AverageScore float64  `json:"averageScore"`
	Accuracy     float64  `json:"accuracy"`
	Trend        []int    `json:"trend"`
	Points       int      `json:"points"`
	Badges       []string `json:"badges"`
}

type ClassroomEntry struct {
	StudentName string `json:"studentName"`
	Score       int    `json:"score"`
}

// Dashboard is the free-form payload of the teacher and admin dashboards.
type Dashboard map[string]any

type Resource struct {
	ID           int64  `json:"id"`
	FileName     string `json:"fileName"`
	FileType     string `json:"fileType"`
	Topic        string `json:"topic"`
	UploadedAt   string `json:"uploadedAt"`
	UploaderRole string `json:"uploaderRole"`
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

package quiz

// Status of a quiz session. A session starts active and transitions to
// submitted exactly once, either by an explicit submit or by the countdown
// reaching zero.
type Status string

const (
	StatusActive    Status = "active"
	StatusSubmitted Status = "submitted"
)

// Question is one multiple-choice item. Text may contain inline markup and is
// carried verbatim. Choices is the distractors plus the correct answer in a
// randomized order fixed at session creation.
type Question struct {
	Text          string   `json:"text"`
	CorrectAnswer string   `json:"correct_answer"`
	Distractors   []string `json:"distractors"`
	Choices       []string `json:"choices"`
}

// QuestionView is the answer-key-free projection served while a session is in
// progress.
type QuestionView struct {
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
}

// SessionView is a point-in-time snapshot of session state for rendering.
type SessionView struct {
	ID               string         `json:"id"`
	Questions        []QuestionView `json:"questions"`
	CurrentIndex     int            `json:"current_index"`
	Answers          map[int]string `json:"answers"`
	FlaggedForReview []int          `json:"flagged_for_review"`
	RemainingSeconds int            `json:"remaining_seconds"`
	Status           Status         `json:"status"`
}

// Report is the immutable scored summary of a submitted session. It includes
// the full questions (answer keys and all) so a review page can mark each
// choice, the final answers mapping, and the score.
type Report struct {
	Questions   []Question     `json:"questions"`
	Answers     map[int]string `json:"answers"`
	Score       int            `json:"score"`
	Total       int            `json:"total"`
	SubmittedAt int64          `json:"submitted_at"`
}

// Snapshot is the serialized form of a session kept in the session store so an
// in-progress attempt survives a reload (or a process restart when the Redis
// store is configured) with its remaining time intact.
type Snapshot struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	Questions        []Question     `json:"questions"`
	CurrentIndex     int            `json:"current_index"`
	Answers          map[int]string `json:"answers"`
	FlaggedForReview []int          `json:"flagged_for_review"`
	RemainingSeconds int            `json:"remaining_seconds"`
	Status           Status         `json:"status"`
	StartedAt        int64          `json:"started_at"`
	Report           *Report        `json:"report,omitempty"`
}

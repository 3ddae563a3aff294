package game

import (
	"fmt"

	"studyhub/internal/llm"
	"studyhub/internal/model"
)

const (
	DefaultQuestionCount = 5
	MaxQuestionCount     = 20
)

// Option is one answer choice; exactly one per question is correct.
type Option struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect *bool  `json:"isCorrect" validate:"required"`
}

// Question is one generated multiple-choice question.
type Question struct {
	Question    string   `json:"question" validate:"required"`
	Options     []Option `json:"options" validate:"min=2,dive"`
	Explanation string   `json:"explanation,omitempty"`
}

// QuestionSet is the generated content of a quiz.
type QuestionSet struct {
	Questions []Question `json:"questions" validate:"min=1,dive"`
}

// Check enforces exactly one correct option and distinct option texts per question.
func (s *QuestionSet) Check() error {
	for i, q := range s.Questions {
		correct := 0
		seen := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if *o.IsCorrect {
				correct++
			}
			if seen[o.Text] {
				return fmt.Errorf("question %d repeats option %q", i+1, o.Text)
			}
			seen[o.Text] = true
		}
		if correct != 1 {
			return fmt.Errorf("question %d has %d correct options, want exactly 1", i+1, correct)
		}
	}
	return nil
}

// ParseQuestions decodes a generated quiz and checks it has count questions.
func ParseQuestions(text string, count int) (*QuestionSet, error) {
	set, err := llm.Decode[QuestionSet]("quiz", text)
	if err != nil {
		return nil, err
	}
	if len(set.Questions) != count {
		return nil, &llm.SchemaError{Schema: "quiz", Reason: fmt.Sprintf("expected %d questions, got %d", count, len(set.Questions))}
	}
	return set, nil
}

// CorrectText returns the text of the correct option.
func (q *Question) CorrectText() string {
	for _, o := range q.Options {
		if o.IsCorrect != nil && *o.IsCorrect {
			return o.Text
		}
	}
	return ""
}

// QuestionResult is the outcome of one question after submission.
type QuestionResult struct {
	Question    string `json:"question"`
	Selected    string `json:"selected"`
	Correct     string `json:"correct"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation,omitempty"`
}

// Score counts answers whose text equals the correct option's text exactly.
// Missing or empty answers never count.
func Score(questions []Question, answers map[int]string) (int, []QuestionResult) {
	score := 0
	results := make([]QuestionResult, len(questions))
	for i := range questions {
		q := &questions[i]
		selected := answers[i]
		correct := q.CorrectText()
		ok := selected != "" && selected == correct
		if ok {
			score++
		}
		results[i] = QuestionResult{
			Question:    q.Question,
			Selected:    selected,
			Correct:     correct,
			IsCorrect:   ok,
			Explanation: q.Explanation,
		}
	}
	return score, results
}

// QuizGame is a generated multiple-choice quiz.
type QuizGame struct {
	Machine
	Topic     string           `json:"topic"`
	Count     int              `json:"count"`
	Questions []Question       `json:"questions"`
	Answers   map[int]string   `json:"answers,omitempty"`
	Score     int              `json:"score"`
	Results   []QuestionResult `json:"results,omitempty"`
}

// NewQuizGame creates an idle quiz of count questions (defaulted and capped).
func NewQuizGame(topic string, count int) *QuizGame {
	if count <= 0 {
		count = DefaultQuestionCount
	}
	if count > MaxQuestionCount {
		count = MaxQuestionCount
	}
	return &QuizGame{Machine: Machine{Phase: PhaseIdle}, Topic: topic, Count: count}
}

// Load installs generated questions.
func (g *QuizGame) Load(set *QuestionSet) error {
	if len(set.Questions) != g.Count {
		return &llm.SchemaError{Schema: "quiz", Reason: fmt.Sprintf("expected %d questions, got %d", g.Count, len(set.Questions))}
	}
	if err := g.Transition(PhaseReady); err != nil {
		return err
	}
	g.Questions = set.Questions
	return nil
}

// Submit grades answers (question index -> selected option text).
func (g *QuizGame) Submit(answers map[int]string) error {
	if err := g.Require(PhaseReady); err != nil {
		return err
	}
	for i := range answers {
		if i < 0 || i >= len(g.Questions) {
			return model.NewValidationError("answers", fmt.Sprintf("question %d does not exist", i))
		}
	}
	if err := g.Transition(PhaseResolving); err != nil {
		return err
	}
	g.Answers = answers
	g.Score, g.Results = Score(g.Questions, answers)
	return g.Transition(PhaseScored)
}

// QuizQuestionView hides which option is correct.
type QuizQuestionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// QuizView is the client-facing quiz.
type QuizView struct {
	Phase     Phase              `json:"phase"`
	Topic     string             `json:"topic"`
	Questions []QuizQuestionView `json:"questions"`
	Score     *int               `json:"score,omitempty"`
	Total     int                `json:"total"`
	Results   []QuestionResult   `json:"results,omitempty"`
}

// View renders the quiz; results appear only once scored.
func (g *QuizGame) View() QuizView {
	v := QuizView{
		Phase:     g.Phase,
		Topic:     g.Topic,
		Questions: make([]QuizQuestionView, len(g.Questions)),
		Total:     len(g.Questions),
	}
	for i, q := range g.Questions {
		opts := make([]string, len(q.Options))
		for j, o := range q.Options {
			opts[j] = o.Text
		}
		v.Questions[i] = QuizQuestionView{Question: q.Question, Options: opts}
	}
	if g.Phase == PhaseScored {
		score := g.Score
		v.Score = &score
		v.Results = g.Results
	}
	return v
}

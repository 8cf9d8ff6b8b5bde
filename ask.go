package docbase

import "context"

// RetrievedChunk is a ranked chunk with its citation data.
type RetrievedChunk struct {
	Chunk   *Chunk  `json:"chunk"`
	Score   float64 `json:"score"`
	Locator string  `json:"locator"`
	Title   string  `json:"title"`
}

// Retriever selects relevant chunks for a question.
type Retriever interface {
	// Retrieve embeds the question and returns the topK best chunks,
	// optionally constrained to a category and topic tag.
	//
	// Returns ENOTFOUND when the constrained corpus holds no content at
	// all, so callers can tell an empty corpus from an empty result.
	// Returns EUNAVAILABLE when the embedding backend is down.
	Retrieve(ctx context.Context, question string, opts RetrieveOptions) ([]RetrievedChunk, error)
}

// RetrieveOptions constrains a retrieval.
type RetrieveOptions struct {
	Category string
	Topic    string
	TopK     int
}

// Tone adjusts the register of synthesized answers.
type Tone string

// Supported answer tones.
const (
	ToneFormal    Tone = "formal"
	ToneCasual    Tone = "casual"
	ToneTechnical Tone = "technical"
)

// Length adjusts the verbosity of synthesized answers.
type Length string

// Supported answer lengths.
const (
	LengthBrief    Length = "brief"
	LengthDetailed Length = "detailed"
)

// Settings supplies generation preferences, read at synthesis time.
type Settings interface {
	Tone() Tone
	ResponseLength() Length
	Model() string
}

// Answer is a synthesized free-text response grounded in retrieved chunks.
type Answer struct {
	Text        string   `json:"answerText"`
	ProTips     []string `json:"proTips"`
	SourceLinks []string `json:"sourceLinks"`
}

// Lesson is one step of a generated course.
type Lesson struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Content    string   `json:"content"`
	KeyPoints  []string `json:"keyPoints"`
	SourceURLs []string `json:"sourceUrls"`
}

// Validate returns an error if the lesson is malformed.
func (l *Lesson) Validate() error {
	if l.Title == "" {
		return Errorf(EINVALID, "lesson title required")
	}
	if l.Content == "" {
		return Errorf(EINVALID, "lesson content required")
	}
	return nil
}

// QuizQuestion is a generated multiple-choice question.
type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
	SourceURLs   []string `json:"sourceUrls"`
}

// Validate returns an error if the question is malformed: anything other
// than exactly four non-empty options, one in-range correct index, and a
// non-empty explanation is rejected.
func (q *QuizQuestion) Validate() error {
	if q.Question == "" {
		return Errorf(EINVALID, "quiz question text required")
	}
	if len(q.Options) != 4 {
		return Errorf(EINVALID, "quiz question must have exactly 4 options, got %d", len(q.Options))
	}
	for i, opt := range q.Options {
		if opt == "" {
			return Errorf(EINVALID, "quiz option %d is empty", i)
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex > 3 {
		return Errorf(EINVALID, "quiz correct index %d out of range", q.CorrectIndex)
	}
	if q.Explanation == "" {
		return Errorf(EINVALID, "quiz explanation required")
	}
	return nil
}

// CourseShape selects the structured output of course generation.
type CourseShape string

// Course shapes.
const (
	ShapeLesson CourseShape = "lesson"
	ShapeQuiz   CourseShape = "quiz"
)

// AnswerOptions configures a single synthesis call.
type AnswerOptions struct {
	Tone   Tone
	Length Length
	Model  string
}

// Synthesizer turns retrieved chunks plus an intent into grounded output.
//
// Provider failures (timeout, quota, malformed output after retry) surface
// as EGENERATION so callers can distinguish "AI unavailable" from "no
// results".
type Synthesizer interface {
	// Answer produces a grounded free-text answer with pro tips and
	// cited sources.
	Answer(ctx context.Context, question string, chunks []RetrievedChunk, opts AnswerOptions) (*Answer, error)

	// GenerateLessons produces count course lessons about the topic.
	GenerateLessons(ctx context.Context, topic string, chunks []RetrievedChunk, count int) ([]Lesson, error)

	// GenerateQuiz produces count validated multiple-choice questions.
	// Malformed model output is retried once with a stricter instruction
	// before the generation error is surfaced.
	GenerateQuiz(ctx context.Context, topic string, chunks []RetrievedChunk, count int) ([]QuizQuestion, error)
}

package mock

import (
	"context"

	"github.com/fwojciec/docbase"
)

var _ docbase.Synthesizer = (*Synthesizer)(nil)

// Synthesizer is a mock implementation of docbase.Synthesizer.
type Synthesizer struct {
	AnswerFn          func(ctx context.Context, question string, chunks []docbase.RetrievedChunk, opts docbase.AnswerOptions) (*docbase.Answer, error)
	GenerateLessonsFn func(ctx context.Context, topic string, chunks []docbase.RetrievedChunk, count int) ([]docbase.Lesson, error)
	GenerateQuizFn    func(ctx context.Context, topic string, chunks []docbase.RetrievedChunk, count int) ([]docbase.QuizQuestion, error)
}

func (s *Synthesizer) Answer(ctx context.Context, question string, chunks []docbase.RetrievedChunk, opts docbase.AnswerOptions) (*docbase.Answer, error) {
	return s.AnswerFn(ctx, question, chunks, opts)
}

func (s *Synthesizer) GenerateLessons(ctx context.Context, topic string, chunks []docbase.RetrievedChunk, count int) ([]docbase.Lesson, error) {
	return s.GenerateLessonsFn(ctx, topic, chunks, count)
}

func (s *Synthesizer) GenerateQuiz(ctx context.Context, topic string, chunks []docbase.RetrievedChunk, count int) ([]docbase.QuizQuestion, error) {
	return s.GenerateQuizFn(ctx, topic, chunks, count)
}

var _ docbase.Retriever = (*Retriever)(nil)

// Retriever is a mock implementation of docbase.Retriever.
type Retriever struct {
	RetrieveFn func(ctx context.Context, question string, opts docbase.RetrieveOptions) ([]docbase.RetrievedChunk, error)
}

func (r *Retriever) Retrieve(ctx context.Context, question string, opts docbase.RetrieveOptions) ([]docbase.RetrievedChunk, error) {
	return r.RetrieveFn(ctx, question, opts)
}

var _ docbase.Settings = (*Settings)(nil)

// Settings is a mock implementation of docbase.Settings.
type Settings struct {
	ToneFn           func() docbase.Tone
	ResponseLengthFn func() docbase.Length
	ModelFn          func() string
}

func (s *Settings) Tone() docbase.Tone {
	if s.ToneFn == nil {
		return docbase.ToneFormal
	}
	return s.ToneFn()
}

func (s *Settings) ResponseLength() docbase.Length {
	if s.ResponseLengthFn == nil {
		return docbase.LengthDetailed
	}
	return s.ResponseLengthFn()
}

func (s *Settings) Model() string {
	if s.ModelFn == nil {
		return ""
	}
	return s.ModelFn()
}

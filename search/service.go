package search

import (
	"context"

	"github.com/fwojciec/docbase"
)

// Course is the output of course generation: lessons or quiz questions,
// depending on the requested shape.
type Course struct {
	Topic     string                 `json:"topic"`
	Shape     docbase.CourseShape    `json:"shape"`
	Lessons   []docbase.Lesson       `json:"lessons,omitempty"`
	Questions []docbase.QuizQuestion `json:"questions,omitempty"`
}

// Service ties retrieval and synthesis together behind the ask and course
// operations.
type Service struct {
	retriever   docbase.Retriever
	synthesizer docbase.Synthesizer
	settings    docbase.Settings
}

// NewService creates a new Service.
func NewService(retriever docbase.Retriever, synthesizer docbase.Synthesizer, settings docbase.Settings) *Service {
	return &Service{retriever: retriever, synthesizer: synthesizer, settings: settings}
}

// Ask answers a question from the ingested corpus. Tone, length and model
// come from the settings in effect at call time.
func (s *Service) Ask(ctx context.Context, question string, opts docbase.RetrieveOptions) (*docbase.Answer, error) {
	chunks, err := s.retriever.Retrieve(ctx, question, opts)
	if err != nil {
		return nil, err
	}
	return s.synthesizer.Answer(ctx, question, chunks, docbase.AnswerOptions{
		Tone:   s.settings.Tone(),
		Length: s.settings.ResponseLength(),
		Model:  s.settings.Model(),
	})
}

// GenerateCourse retrieves context about the topic and generates either
// lessons or quiz questions from it.
func (s *Service) GenerateCourse(ctx context.Context, topic, category string, shape docbase.CourseShape, count int) (*Course, error) {
	if topic == "" {
		return nil, docbase.Errorf(docbase.EINVALID, "course topic required")
	}
	if count <= 0 {
		return nil, docbase.Errorf(docbase.EINVALID, "course item count must be positive")
	}
	if shape != docbase.ShapeLesson && shape != docbase.ShapeQuiz {
		return nil, docbase.Errorf(docbase.EINVALID, "course shape must be %q or %q", docbase.ShapeLesson, docbase.ShapeQuiz)
	}

	chunks, err := s.retriever.Retrieve(ctx, topic, docbase.RetrieveOptions{
		Category: category,
		TopK:     courseTopK,
	})
	if err != nil {
		return nil, err
	}

	course := &Course{Topic: topic, Shape: shape}
	switch shape {
	case docbase.ShapeLesson:
		course.Lessons, err = s.synthesizer.GenerateLessons(ctx, topic, chunks, count)
	case docbase.ShapeQuiz:
		course.Questions, err = s.synthesizer.GenerateQuiz(ctx, topic, chunks, count)
	}
	if err != nil {
		return nil, err
	}
	return course, nil
}

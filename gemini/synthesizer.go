package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/docbase"
	"google.golang.org/genai"
)

// Prompt limits.
const (
	// DefaultPromptTokenBudget caps the context passed to the model.
	DefaultPromptTokenBudget = 12000

	// DefaultGenerationTimeout bounds a single generation call. Expiry
	// surfaces as EGENERATION, not as a hung command.
	DefaultGenerationTimeout = 60 * time.Second

	// maxProTips limits how many tips are pulled from an answer.
	maxProTips = 3

	// maxSourceLinks limits the citations attached to an answer.
	maxSourceLinks = 5
)

// Ensure Synthesizer implements docbase.Synthesizer at compile time.
var _ docbase.Synthesizer = (*Synthesizer)(nil)

// ContentGenerator is the slice of the Gemini client the synthesizer uses.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Synthesizer implements docbase.Synthesizer using Gemini. Answers are
// grounded: the model only sees retrieved chunks, and the prompt instructs
// it to admit when the documentation doesn't cover the question.
type Synthesizer struct {
	// Models issues the generation calls. NewSynthesizer wires it to the
	// client's model service.
	Models ContentGenerator

	// Tokens, when set, budgets chunk context by exact token count.
	// Without it the budget falls back to a chars/4 estimate.
	Tokens docbase.TokenCounter

	// TokenBudget overrides DefaultPromptTokenBudget when positive.
	TokenBudget int

	// Timeout overrides DefaultGenerationTimeout when positive.
	Timeout time.Duration
}

// NewSynthesizer creates a new Synthesizer.
func NewSynthesizer(client *genai.Client) *Synthesizer {
	s := &Synthesizer{}
	if client != nil {
		s.Models = client.Models
	}
	return s
}

// Answer produces a grounded free-text answer with pro tips and cited
// sources.
func (s *Synthesizer) Answer(ctx context.Context, question string, chunks []docbase.RetrievedChunk, opts docbase.AnswerOptions) (*docbase.Answer, error) {
	if question == "" {
		return nil, docbase.Errorf(docbase.EINVALID, "question required")
	}
	if len(chunks) == 0 {
		return nil, docbase.Errorf(docbase.EINVALID, "no context chunks supplied")
	}

	chunks = s.budgetChunks(ctx, chunks)
	prompt := BuildAnswerPrompt(question, chunks)
	config := BuildAnswerConfig(opts)

	text, err := s.generate(ctx, opts.Model, prompt, config)
	if err != nil {
		return nil, err
	}

	return &docbase.Answer{
		Text:        text,
		ProTips:     ExtractProTips(text),
		SourceLinks: SourceLinks(chunks),
	}, nil
}

// GenerateLessons produces count course lessons about the topic.
func (s *Synthesizer) GenerateLessons(ctx context.Context, topic string, chunks []docbase.RetrievedChunk, count int) ([]docbase.Lesson, error) {
	if err := validateCourseArgs(topic, chunks, count); err != nil {
		return nil, err
	}

	chunks = s.budgetChunks(ctx, chunks)
	prompt := BuildLessonsPrompt(topic, chunks, count)
	config := structuredConfig(lessonsSchema())

	text, err := s.generate(ctx, "", prompt, config)
	if err != nil {
		return nil, err
	}

	var lessons []docbase.Lesson
	if err := json.Unmarshal([]byte(text), &lessons); err != nil {
		return nil, docbase.Errorf(docbase.EGENERATION, "malformed lesson output: %v", err)
	}
	sources := SourceLinks(chunks)
	for i := range lessons {
		if err := lessons[i].Validate(); err != nil {
			return nil, docbase.Errorf(docbase.EGENERATION, "invalid lesson %d: %v", i, err)
		}
		if len(lessons[i].SourceURLs) == 0 {
			lessons[i].SourceURLs = sources
		}
	}
	return lessons, nil
}

// GenerateQuiz produces count validated multiple-choice questions.
// Malformed output is retried once with a stricter instruction before the
// generation error is surfaced.
func (s *Synthesizer) GenerateQuiz(ctx context.Context, topic string, chunks []docbase.RetrievedChunk, count int) ([]docbase.QuizQuestion, error) {
	if err := validateCourseArgs(topic, chunks, count); err != nil {
		return nil, err
	}

	chunks = s.budgetChunks(ctx, chunks)
	config := structuredConfig(quizSchema())

	prompt := BuildQuizPrompt(topic, chunks, count, false)
	questions, err := s.generateQuizOnce(ctx, prompt, config, chunks)
	if err == nil {
		return questions, nil
	}
	if docbase.ErrorCode(err) != docbase.EGENERATION {
		return nil, err
	}

	// One retry with the strict instruction spelled out.
	prompt = BuildQuizPrompt(topic, chunks, count, true)
	return s.generateQuizOnce(ctx, prompt, config, chunks)
}

func (s *Synthesizer) generateQuizOnce(ctx context.Context, prompt string, config *genai.GenerateContentConfig, chunks []docbase.RetrievedChunk) ([]docbase.QuizQuestion, error) {
	text, err := s.generate(ctx, "", prompt, config)
	if err != nil {
		return nil, err
	}

	var questions []docbase.QuizQuestion
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		return nil, docbase.Errorf(docbase.EGENERATION, "malformed quiz output: %v", err)
	}
	sources := SourceLinks(chunks)
	for i := range questions {
		if err := questions[i].Validate(); err != nil {
			return nil, docbase.Errorf(docbase.EGENERATION, "invalid quiz question %d: %v", i, err)
		}
		if len(questions[i].SourceURLs) == 0 {
			questions[i].SourceURLs = sources
		}
	}
	return questions, nil
}

// generate runs one GenerateContent call under the generation timeout and
// returns the text. Timeout expiry is a synthesis failure (EGENERATION);
// cancellation by the caller passes through untouched.
func (s *Synthesizer) generate(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, error) {
	if model == "" {
		model = DefaultModel
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := s.Models.GenerateContent(genCtx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if genCtx.Err() == context.DeadlineExceeded {
			return "", docbase.Errorf(docbase.EGENERATION, "generation timed out after %s", timeout)
		}
		return "", docbase.Errorf(docbase.EGENERATION, "generation failed: %v", err)
	}
	if result == nil {
		return "", docbase.Errorf(docbase.EGENERATION, "model returned nil result")
	}
	return result.Text(), nil
}

// budgetChunks drops trailing chunks once the token budget is spent.
// Chunks arrive ranked, so the cut discards the least relevant context.
// Without a configured counter it falls back to a chars/4 estimate.
func (s *Synthesizer) budgetChunks(ctx context.Context, chunks []docbase.RetrievedChunk) []docbase.RetrievedChunk {
	budget := s.TokenBudget
	if budget <= 0 {
		budget = DefaultPromptTokenBudget
	}

	used := 0
	for i, rc := range chunks {
		n := len(rc.Chunk.Content) / 4
		if s.Tokens != nil {
			counted, err := s.Tokens.CountTokens(ctx, rc.Chunk.Content)
			if err == nil {
				n = counted
			}
		}
		used += n
		if used > budget {
			if i == 0 {
				return chunks[:1]
			}
			return chunks[:i]
		}
	}
	return chunks
}

func validateCourseArgs(topic string, chunks []docbase.RetrievedChunk, count int) error {
	if topic == "" {
		return docbase.Errorf(docbase.EINVALID, "topic required")
	}
	if count <= 0 {
		return docbase.Errorf(docbase.EINVALID, "count must be positive")
	}
	if len(chunks) == 0 {
		return docbase.Errorf(docbase.EINVALID, "no context chunks supplied")
	}
	return nil
}

// BuildAnswerConfig returns the GenerateContentConfig for answer calls,
// with the tone and length preferences folded into the system instruction.
func BuildAnswerConfig(opts docbase.AnswerOptions) *genai.GenerateContentConfig {
	temp := float32(0.4)

	var sb strings.Builder
	sb.WriteString("You are a helpful assistant answering questions about product documentation. ")
	sb.WriteString("Answer based only on the documentation provided. ")
	sb.WriteString("If the answer is not in the documentation, say so. ")
	sb.WriteString("When the documentation contains practical advice, surface it as lines starting with \"Tip:\". ")

	switch opts.Tone {
	case docbase.ToneCasual:
		sb.WriteString("Use a relaxed, conversational tone. ")
	case docbase.ToneTechnical:
		sb.WriteString("Use precise technical language and exact terminology from the documentation. ")
	default:
		sb.WriteString("Use a professional, formal tone. ")
	}

	switch opts.Length {
	case docbase.LengthBrief:
		sb.WriteString("Keep the answer short: a few sentences at most.")
	default:
		sb.WriteString("Give a thorough answer with step-by-step detail where the documentation provides it.")
	}

	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: sb.String()}},
		},
		Temperature: &temp,
	}
}

// BuildAnswerPrompt builds the user prompt containing the retrieved chunks
// and the question.
func BuildAnswerPrompt(question string, chunks []docbase.RetrievedChunk) string {
	var sb strings.Builder
	writeChunkContext(&sb, chunks)
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}

// BuildLessonsPrompt builds the prompt for course lesson generation.
func BuildLessonsPrompt(topic string, chunks []docbase.RetrievedChunk, count int) string {
	var sb strings.Builder
	writeChunkContext(&sb, chunks)
	fmt.Fprintf(&sb, "Create %d sequential lessons teaching %q, based only on the documentation above. ", count, topic)
	sb.WriteString("Each lesson needs a title, a one-sentence summary, full lesson content, and 2-4 key points.")
	return sb.String()
}

// BuildQuizPrompt builds the prompt for quiz generation. strict adds the
// retry instruction that spells out the output contract.
func BuildQuizPrompt(topic string, chunks []docbase.RetrievedChunk, count int, strict bool) string {
	var sb strings.Builder
	writeChunkContext(&sb, chunks)
	fmt.Fprintf(&sb, "Create %d multiple-choice questions testing knowledge of %q, based only on the documentation above. ", count, topic)
	sb.WriteString("Each question needs exactly 4 answer options, the index of the correct option, and an explanation of the correct answer.")
	if strict {
		sb.WriteString(" STRICT: every question MUST have exactly 4 non-empty options, correctIndex MUST be an integer between 0 and 3 identifying the correct option, and explanation MUST be non-empty. Output nothing except the JSON array.")
	}
	return sb.String()
}

// writeChunkContext renders retrieved chunks as tagged context blocks.
func writeChunkContext(sb *strings.Builder, chunks []docbase.RetrievedChunk) {
	sb.WriteString("<documentation>\n")
	for i, rc := range chunks {
		title := rc.Title
		if title == "" {
			title = rc.Locator
		}
		sb.WriteString("<excerpt>\n")
		fmt.Fprintf(sb, "<index>%d</index>\n", i+1)
		fmt.Fprintf(sb, "<title>%s</title>\n", title)
		fmt.Fprintf(sb, "<source>%s</source>\n", rc.Locator)
		fmt.Fprintf(sb, "<content>%s</content>\n", rc.Chunk.Content)
		sb.WriteString("</excerpt>\n")
	}
	sb.WriteString("</documentation>\n\n")
}

// ExtractProTips pulls practical advice lines out of an answer. A line
// counts as a tip when it starts with a known indicator, after markdown
// list markers are stripped. At most maxProTips are returned.
func ExtractProTips(text string) []string {
	indicators := []string{"tip:", "note:", "important:", "remember:", "best practice:"}

	var tips []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		lower := strings.ToLower(line)
		for _, ind := range indicators {
			if strings.HasPrefix(lower, ind) {
				tip := strings.TrimSpace(line[len(ind):])
				if tip != "" {
					tips = append(tips, tip)
				}
				break
			}
		}
		if len(tips) == maxProTips {
			break
		}
	}
	return tips
}

// SourceLinks returns the unique document locators behind the chunks, in
// rank order, capped at maxSourceLinks.
func SourceLinks(chunks []docbase.RetrievedChunk) []string {
	var links []string
	seen := make(map[string]bool)
	for _, rc := range chunks {
		if rc.Locator == "" || seen[rc.Locator] {
			continue
		}
		seen[rc.Locator] = true
		links = append(links, rc.Locator)
		if len(links) == maxSourceLinks {
			break
		}
	}
	return links
}

// structuredConfig requests a JSON array response matching the schema.
func structuredConfig(schema *genai.Schema) *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
}

func lessonsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":     {Type: genai.TypeString},
				"summary":   {Type: genai.TypeString},
				"content":   {Type: genai.TypeString},
				"keyPoints": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			},
			Required: []string{"title", "summary", "content", "keyPoints"},
		},
	}
}

func quizSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question":     {Type: genai.TypeString},
				"options":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"correctIndex": {Type: genai.TypeInteger},
				"explanation":  {Type: genai.TypeString},
			},
			Required: []string{"question", "options", "correctIndex", "explanation"},
		},
	}
}

// Package advisor answers questions about a user's finances by handing the
// current summary to a text-generation model.
package advisor

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"ledgerly/internal/cache"
	"ledgerly/internal/log"
	"ledgerly/internal/summary"
)

var (
	// ErrDisabled is returned when no generator is configured.
	ErrDisabled = errors.New("advisor disabled")
	// ErrEmptyAnswer is returned when the model produced no text.
	ErrEmptyAnswer = errors.New("advisor returned an empty answer")
	// ErrQuestionTooLong is returned for questions over MaxQuestionLength.
	ErrQuestionTooLong = errors.New("question too long")
)

// MaxQuestionLength bounds the user question in bytes.
const MaxQuestionLength = 2000

// DefaultInstruction is asked when the user leaves the question blank.
const DefaultInstruction = "Suggest the next three moves this business should make to improve its cash position and profitability. Be specific and refer to the figures."

const systemInstruction = `You are a financial advisor for a small business.
You receive a JSON summary of the business finances and a question.
Answer in concise Markdown. Use only the figures in the summary; when a figure is null it is unknown, not zero.
All amounts are in the currency given by the "currency" field.`

// Generator produces text from a system instruction and a prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// SummaryProvider computes a user's current summary.
type SummaryProvider interface {
	Summary(ctx context.Context, userID int64, now time.Time) (summary.Summary, error)
}

// Answer is a generated reply.
type Answer struct {
	Question    string    `json:"question"`
	Markdown    string    `json:"markdown"`
	HTML        string    `json:"html"`
	GeneratedAt time.Time `json:"generatedAt"`
	Cached      bool      `json:"cached"`
}

// Advisor glues the summary to the generator and caches answers.
type Advisor struct {
	summaries SummaryProvider
	generator Generator
	answers   cache.Cache[Answer]
	markdown  goldmark.Markdown
	now       func() time.Time
	logger    *log.Logger
}

// New creates an advisor. A nil generator yields a disabled advisor; a nil
// answer cache disables caching.
func New(summaries SummaryProvider, generator Generator, answers cache.Cache[Answer], logger *log.Logger) *Advisor {
	return &Advisor{
		summaries: summaries,
		generator: generator,
		answers:   answers,
		markdown:  goldmark.New(),
		now:       time.Now,
		logger:    logger.WithComponent(log.ComponentAdvisor),
	}
}

// Enabled reports whether a generator is configured.
func (a *Advisor) Enabled() bool { return a.generator != nil }

// Ask answers question for userID. A blank question asks DefaultInstruction.
func (a *Advisor) Ask(ctx context.Context, userID int64, question string) (Answer, error) {
	if a.generator == nil {
		return Answer{}, ErrDisabled
	}
	question = strings.TrimSpace(question)
	if len(question) > MaxQuestionLength {
		return Answer{}, fmt.Errorf("%w (max %d characters)", ErrQuestionTooLong, MaxQuestionLength)
	}
	if question == "" {
		question = DefaultInstruction
	}

	now := a.now()
	s, err := a.summaries.Summary(ctx, userID, now)
	if err != nil {
		return Answer{}, err
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return Answer{}, fmt.Errorf("encode summary: %w", err)
	}

	key := cacheKey(userID, payload, question)
	if a.answers != nil {
		if ans, ok := a.answers.Get(key); ok {
			ans.Cached = true
			return ans, nil
		}
	}

	start := time.Now()
	text, err := a.generator.Generate(ctx, systemInstruction, buildPrompt(payload, question))
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}
	text = cleanMarkdown(text)
	if text == "" {
		return Answer{}, ErrEmptyAnswer
	}

	html, err := a.render(text)
	if err != nil {
		return Answer{}, err
	}

	ans := Answer{
		Question:    question,
		Markdown:    text,
		HTML:        html,
		GeneratedAt: now,
	}
	if a.answers != nil {
		a.answers.Set(key, ans)
	}

	a.logger.InfoContext(ctx, "Advisor answer generated",
		log.FieldUserID, userID,
		log.FieldDuration, time.Since(start).Milliseconds(),
		"answer_length", len(text))
	return ans, nil
}

// InvalidateUser drops every cached answer for userID.
func (a *Advisor) InvalidateUser(userID int64) {
	if a.answers == nil {
		return
	}
	if n := a.answers.DeletePrefix(userPrefix(userID)); n > 0 {
		a.logger.Debug("Advisor answers invalidated", log.FieldUserID, userID, "count", n)
	}
}

func (a *Advisor) render(md string) (string, error) {
	var buf bytes.Buffer
	if err := a.markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

func buildPrompt(summaryJSON []byte, question string) string {
	var b strings.Builder
	b.WriteString("Financial summary (JSON):\n")
	b.Write(summaryJSON)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	return b.String()
}

func userPrefix(userID int64) string {
	return fmt.Sprintf("u:%d:", userID)
}

func cacheKey(userID int64, summaryJSON []byte, question string) string {
	h := sha256.New()
	h.Write(summaryJSON)
	h.Write([]byte{0})
	h.Write([]byte(question))
	return userPrefix(userID) + hex.EncodeToString(h.Sum(nil))
}

// cleanMarkdown strips an outer code fence some models wrap answers in.
func cleanMarkdown(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) >= 6 {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimPrefix(s, "```markdown")
		s = strings.TrimPrefix(s, "```md")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

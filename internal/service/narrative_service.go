package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/models"
	"github.com/campushq/campus-admin-api/pkg/config"
)

// summaryPlaceholder is stored when narrative generation fails for a session.
// The pipeline never aborts a batch over a failed summary.
const summaryPlaceholder = "Error generating summary."

const narrativeSystemPrompt = "You are an academic administrator writing concise session reports. " +
	"Write 2-3 sentences summarizing the session's attendance, feedback and quiz performance. " +
	"Mention notable highs or lows. Do not invent numbers that are not provided."

// ChatCompleter is the slice of the OpenAI client the narrative service uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NarrativeService turns per-session statistics into short prose summaries.
type NarrativeService struct {
	client  ChatCompleter
	cfg     config.NarrativeConfig
	logger  *zap.Logger
	metrics *MetricsService
}

func NewNarrativeService(client ChatCompleter, cfg config.NarrativeConfig, logger *zap.Logger, metrics *MetricsService) *NarrativeService {
	return &NarrativeService{
		client:  client,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// NewNarrativeClient builds the OpenAI-compatible client from config.
func NewNarrativeClient(cfg config.NarrativeConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// narrativeResult tags one session's summary with its outcome so the caller
// can log failures without losing the rest of the batch.
type narrativeResult struct {
	sessionID string
	summary   string
	err       error
}

// Summarize generates a summary per session concurrently. Failed sessions get
// the placeholder text; the returned map always has an entry per input.
func (s *NarrativeService) Summarize(ctx context.Context, sessions []models.Session, stats map[string]SessionStatistics) map[string]string {
	summaries := make(map[string]string, len(sessions))
	if !s.cfg.Enabled || s.client == nil {
		for _, session := range sessions {
			summaries[session.ID] = buildFallbackSummary(stats[session.ID])
		}
		return summaries
	}

	results := make(chan narrativeResult, len(sessions))
	var wg sync.WaitGroup
	for _, session := range sessions {
		wg.Add(1)
		go func(session models.Session) {
			defer wg.Done()
			summary, err := s.summarizeOne(ctx, session, stats[session.ID])
			results <- narrativeResult{sessionID: session.ID, summary: summary, err: err}
		}(session)
	}
	wg.Wait()
	close(results)

	for result := range results {
		if result.err != nil {
			s.logger.Warn("narrative generation failed",
				zap.String("session_id", result.sessionID),
				zap.Error(result.err))
			summaries[result.sessionID] = summaryPlaceholder
			continue
		}
		summaries[result.sessionID] = result.summary
	}
	return summaries
}

func (s *NarrativeService) summarizeOne(ctx context.Context, session models.Session, stats SessionStatistics) (string, error) {
	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: float32(s.cfg.Temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: narrativeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildNarrativePrompt(session, stats)},
		},
	})
	if s.metrics != nil {
		s.metrics.ObserveNarrativeCall(err == nil, time.Since(start))
	}
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("chat completion: blank summary")
	}
	return summary, nil
}

// maxPromptComments caps how many free-text answers ride along in the prompt
// so a chatty session cannot blow the token budget.
const maxPromptComments = 10

// buildNarrativePrompt renders the statistics block and the students'
// free-text feedback the model sees.
func buildNarrativePrompt(session models.Session, stats SessionStatistics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session topic: %s\n", session.Topic)
	fmt.Fprintf(&b, "Date: %s\n", session.StartsAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Registered students: %d\n", stats.TotalRegistered)
	fmt.Fprintf(&b, "Present: %d (attendance rate %s)\n", stats.PresentCount, stats.AttendanceRate)
	fmt.Fprintf(&b, "Feedback respondents: %d (response rate %s)\n", stats.RespondentCount, stats.ResponseRate)
	fmt.Fprintf(&b, "Average rating: %s from %d ratings\n", stats.AverageRating, stats.RatingCount)
	fmt.Fprintf(&b, "Ratings below 4: %s\n", stats.LowRatingsPercentage)
	if stats.QuizAverage != nil {
		fmt.Fprintf(&b, "Quiz average: %.2f (min %.2f, max %.2f, std dev %.2f)\n",
			*stats.QuizAverage, *stats.QuizMin, *stats.QuizMax, *stats.QuizStdDev)
		fmt.Fprintf(&b, "Quiz percentage: %s, scored 90%%+: %d, scored below 40%%: %d\n",
			stats.QuizPercentage, *stats.QuizAbove90Count, *stats.QuizBelow40Count)
	} else {
		b.WriteString("Quiz: no quiz conducted\n")
	}
	if len(stats.Comments) > 0 {
		b.WriteString("Student comments:\n")
		comments := stats.Comments
		if len(comments) > maxPromptComments {
			comments = comments[:maxPromptComments]
		}
		for _, comment := range comments {
			fmt.Fprintf(&b, "- %s\n", comment)
		}
	}
	return b.String()
}

// buildFallbackSummary produces a deterministic one-line summary when the
// narrative client is disabled.
func buildFallbackSummary(stats SessionStatistics) string {
	quiz := "no quiz conducted"
	if stats.QuizAverage != nil {
		quiz = fmt.Sprintf("quiz average %s", stats.QuizPercentage)
	}
	return fmt.Sprintf("Attendance %s, response rate %s, average rating %s, %s.",
		stats.AttendanceRate, stats.ResponseRate, stats.AverageRating, quiz)
}

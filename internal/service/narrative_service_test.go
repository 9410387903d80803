package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/models"
	"github.com/campushq/campus-admin-api/pkg/config"
)

type stubChatCompleter struct {
	reply   string
	err     error
	failFor map[string]bool
}

func (s *stubChatCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	prompt := req.Messages[len(req.Messages)-1].Content
	for topic := range s.failFor {
		if strings.Contains(prompt, topic) {
			return openai.ChatCompletionResponse{}, errors.New("upstream unavailable")
		}
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.reply}},
		},
	}, nil
}

func narrativeTestConfig() config.NarrativeConfig {
	return config.NarrativeConfig{
		Enabled:     true,
		Model:       "gpt-4o-mini",
		MaxTokens:   256,
		Temperature: 0.2,
		Timeout:     5 * time.Second,
	}
}

func testSession(id, topic string) models.Session {
	return models.Session{
		ID:       id,
		Topic:    topic,
		StartsAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestNarrativeServiceSummarize(t *testing.T) {
	client := &stubChatCompleter{reply: "A well-attended session with strong feedback."}
	svc := NewNarrativeService(client, narrativeTestConfig(), zap.NewNop(), nil)

	sessions := []models.Session{testSession("sess-1", "Databases"), testSession("sess-2", "Networks")}
	stats := map[string]SessionStatistics{
		"sess-1": {AttendanceRate: "80.0%"},
		"sess-2": {AttendanceRate: "90.0%"},
	}

	summaries := svc.Summarize(context.Background(), sessions, stats)

	assert.Len(t, summaries, 2)
	assert.Equal(t, "A well-attended session with strong feedback.", summaries["sess-1"])
	assert.Equal(t, "A well-attended session with strong feedback.", summaries["sess-2"])
}

func TestNarrativeServiceFailureIsolation(t *testing.T) {
	client := &stubChatCompleter{
		reply:   "Quiet session overall.",
		failFor: map[string]bool{"Networks": true},
	}
	svc := NewNarrativeService(client, narrativeTestConfig(), zap.NewNop(), nil)

	sessions := []models.Session{testSession("sess-1", "Databases"), testSession("sess-2", "Networks")}
	stats := map[string]SessionStatistics{}

	summaries := svc.Summarize(context.Background(), sessions, stats)

	assert.Equal(t, "Quiet session overall.", summaries["sess-1"])
	assert.Equal(t, "Error generating summary.", summaries["sess-2"])
}

func TestNarrativeServiceAllFailuresKeepBatch(t *testing.T) {
	client := &stubChatCompleter{err: errors.New("connection refused")}
	svc := NewNarrativeService(client, narrativeTestConfig(), zap.NewNop(), nil)

	sessions := []models.Session{testSession("sess-1", "Databases")}
	summaries := svc.Summarize(context.Background(), sessions, map[string]SessionStatistics{})

	assert.Equal(t, "Error generating summary.", summaries["sess-1"])
}

func TestNarrativeServiceDisabledFallback(t *testing.T) {
	cfg := narrativeTestConfig()
	cfg.Enabled = false
	svc := NewNarrativeService(nil, cfg, zap.NewNop(), nil)

	sessions := []models.Session{testSession("sess-1", "Databases")}
	stats := map[string]SessionStatistics{
		"sess-1": {AttendanceRate: "80.0%", ResponseRate: "75.0%", AverageRating: "4.33"},
	}

	summaries := svc.Summarize(context.Background(), sessions, stats)

	assert.Contains(t, summaries["sess-1"], "80.0%")
	assert.Contains(t, summaries["sess-1"], "4.33")
}

func TestBuildNarrativePromptIncludesQuizBlock(t *testing.T) {
	avg, sd, mn, mx := 70.0, 22.36, 40.0, 100.0
	above, below := 1, 0
	stats := SessionStatistics{
		TotalRegistered:  10,
		PresentCount:     8,
		AttendanceRate:   "80.0%",
		QuizAverage:      &avg,
		QuizStdDev:       &sd,
		QuizMin:          &mn,
		QuizMax:          &mx,
		QuizPercentage:   "70.00%",
		QuizAbove90Count: &above,
		QuizBelow40Count: &below,
	}

	prompt := buildNarrativePrompt(testSession("sess-1", "Databases"), stats)

	assert.Contains(t, prompt, "Session topic: Databases")
	assert.Contains(t, prompt, "Quiz average: 70.00")
	assert.Contains(t, prompt, "Quiz percentage: 70.00%")

	noQuiz := buildNarrativePrompt(testSession("sess-2", "Networks"), SessionStatistics{})
	assert.Contains(t, noQuiz, "no quiz conducted")
}

func TestBuildNarrativePromptIncludesComments(t *testing.T) {
	stats := SessionStatistics{
		TotalRegistered: 10,
		PresentCount:    8,
		AttendanceRate:  "80.0%",
		Comments:        []string{"Great pacing", "More examples please"},
	}

	prompt := buildNarrativePrompt(testSession("sess-1", "Databases"), stats)

	assert.Contains(t, prompt, "Student comments:")
	assert.Contains(t, prompt, "- Great pacing")
	assert.Contains(t, prompt, "- More examples please")

	noComments := buildNarrativePrompt(testSession("sess-2", "Networks"), SessionStatistics{})
	assert.NotContains(t, noComments, "Student comments:")
}

func TestBuildNarrativePromptCapsComments(t *testing.T) {
	stats := SessionStatistics{}
	for i := 0; i < maxPromptComments+5; i++ {
		stats.Comments = append(stats.Comments, fmt.Sprintf("comment %02d", i))
	}

	prompt := buildNarrativePrompt(testSession("sess-1", "Databases"), stats)

	assert.Contains(t, prompt, fmt.Sprintf("comment %02d", maxPromptComments-1))
	assert.NotContains(t, prompt, fmt.Sprintf("comment %02d", maxPromptComments))
}

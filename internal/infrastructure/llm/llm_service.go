package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/swipestyle/go-backend/internal/cfg"
	"github.com/swipestyle/go-backend/internal/usecase"
	"github.com/swipestyle/go-backend/pkg/e"
	"github.com/swipestyle/go-backend/pkg/jitter"
	"github.com/swipestyle/go-backend/pkg/logger"
)

// LlmService клиент OpenAI-совместимого chat completions API
type LlmService struct {
	cfg        *cfg.LlmCfg
	httpClient *http.Client
	logger     logger.Logger
}

func NewLlmService(cfg *cfg.LlmCfg, logger logger.Logger) *LlmService {
	return &LlmService{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionReq struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionRes struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete выполняет запрос к LLM с retry-логикой и экспоненциальной задержкой
func (l *LlmService) Complete(ctx context.Context, req *usecase.LlmCompletionReq) (string, error) {
	const (
		op         = "LlmService.Complete"
		baseJitter = 1 * time.Second
		maxJitter  = 10 * time.Second
	)

	if l.cfg.ApiKey == "" {
		return "", e.Wrap(op, e.ErrLlmUnavailable)
	}

	for attempt := 0; attempt < l.cfg.MaxRetries; attempt++ {
		reply, err := l.complete(ctx, req)
		if err == nil {
			return reply, nil
		}

		if attempt == l.cfg.MaxRetries-1 {
			return "", e.Wrap(op, fmt.Errorf("all %d attempts failed: %w", l.cfg.MaxRetries, err))
		}

		sleepTime := jitter.ExponentialBackoff(
			baseJitter,
			maxJitter,
			attempt,
			jitter.DefaultJitter,
		)

		l.logger.Warnf("LLM completion failed, retrying in %v (attempt %d)", sleepTime, attempt+1)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return "", e.Wrap(op, ctx.Err())
		}
	}

	return "", e.Wrap(op, fmt.Errorf("unreachable"))
}

// complete отправляет один запрос к chat completions API
func (l *LlmService) complete(ctx context.Context, req *usecase.LlmCompletionReq) (string, error) {
	const op = "LlmService.complete"

	body, err := json.Marshal(chatCompletionReq{
		Model: l.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	})
	if err != nil {
		return "", e.Wrap(op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", e.Wrap(op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+l.cfg.ApiKey)

	resp, err := l.httpClient.Do(httpReq)
	if err != nil {
		return "", e.Wrap(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", e.Wrap(op, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, data))
	}

	var parsed chatCompletionRes
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", e.Wrap(op, err)
	}
	if len(parsed.Choices) == 0 {
		return "", e.Wrap(op, e.ErrMalformedLlmReply)
	}

	return parsed.Choices[0].Message.Content, nil
}

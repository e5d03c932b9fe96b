package annotator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

// Sampling parameters for the long-form recommendation call.  The risk
// analysis uses the configured temperature and token budget instead.
const (
	recommendationTemperature = 0.5
	recommendationMaxTokens   = 2000
)

// chatMessage is one turn in an Azure OpenAI chat-completions request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// azureAnnotator calls the Azure OpenAI chat-completions endpoint.
type azureAnnotator struct {
	cfg        config.AnnotatorConfig
	httpClient *http.Client
	logger     logging.Logger
}

// New builds an Annotator from the given configuration.  An incomplete
// configuration yields the disabled annotator rather than an error, so the
// service always starts regardless of whether model credentials are present.
func New(cfg config.AnnotatorConfig, log logging.Logger) Annotator {
	if !cfg.Enabled() {
		log.Info("LLM annotator disabled, predictions will be heuristic-only")
		return NewDisabled()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	log.Info("LLM annotator enabled",
		logging.String("deployment", cfg.Deployment),
		logging.String("api_version", cfg.APIVersion))
	return &azureAnnotator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.Named("annotator"),
	}
}

func (a *azureAnnotator) Enabled() bool { return true }

func (a *azureAnnotator) AnalyzeRisks(ctx context.Context, in *AnalysisInput) (*Analysis, error) {
	raw, err := a.complete(ctx, riskSystemPrompt, buildRiskPrompt(in), a.cfg.Temperature, a.cfg.MaxTokens)
	if err != nil {
		return NeutralAnalysis(), err
	}

	analysis, ok := parseAnalysis(raw)
	if !ok {
		a.logger.Warn("Annotator response was not valid JSON, using neutral analysis",
			logging.String("tender_id", in.Tender.ID),
			logging.String("raw_prefix", prefix(raw, 200)))
		return analysis, errors.New(errors.ErrCodeAIResponseInvalid, "annotator response was not valid JSON")
	}
	return analysis, nil
}

func (a *azureAnnotator) DetailedRecommendation(ctx context.Context, in *RecommendationInput) (string, error) {
	raw, err := a.complete(ctx, recommendationSystemPrompt, buildRecommendationPrompt(in),
		recommendationTemperature, recommendationMaxTokens)
	if err != nil {
		return FallbackRecommendation(in.Rank), err
	}
	return strings.TrimSpace(raw), nil
}

// complete performs one chat-completions round trip and returns the first
// choice's content.
func (a *azureAnnotator) complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode annotator request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.completionsURL(), bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to build annotator request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", a.cfg.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAIModelNotAvailable, "annotator request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAIInferenceFailed, "failed to read annotator response")
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf(errors.ErrCodeAIInferenceFailed,
			"annotator returned status %d", resp.StatusCode).WithDetail(prefix(string(respBody), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAIResponseInvalid, "failed to decode annotator response")
	}
	if parsed.Error != nil {
		return "", errors.Newf(errors.ErrCodeAIInferenceFailed,
			"annotator error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New(errors.ErrCodeAIResponseInvalid, "annotator returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// completionsURL assembles the deployment-scoped chat-completions endpoint.
func (a *azureAnnotator) completionsURL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(a.cfg.Endpoint, "/"),
		url.PathEscape(a.cfg.Deployment),
		url.QueryEscape(a.cfg.APIVersion))
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

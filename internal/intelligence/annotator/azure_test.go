package annotator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/prediction"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

func testAnalysisInput() *AnalysisInput {
	minPrice := int64(85_000_000)
	floorArea := 1200.0
	profile := company.BuildProfile("四国建設株式会社", nil)
	return &AnalysisInput{
		Tender: &tender.Tender{
			ID:             "T-2026-001",
			Title:          "庁舎改修工事",
			Prefecture:     "高知県",
			Municipality:   "高知市",
			UseType:        "庁舎",
			BidMethod:      "一般競争入札",
			EstimatedPrice: 100_000_000,
			MinimumPrice:   &minPrice,
			FloorAreaM2:    &floorArea,
			BidDate:        time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		},
		BidAmount: 92_000_000,
		Sample: SampleStats{
			Count:           12,
			Median:          95_000_000,
			Min:             88_000_000,
			Max:             110_000_000,
			AvgParticipants: 4.5,
		},
		Profile: &profile,
	}
}

func chatContentResponse(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

func newServerAnnotator(t *testing.T, handler http.HandlerFunc) Annotator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.AnnotatorConfig{
		Endpoint:    srv.URL,
		APIKey:      "test-key",
		APIVersion:  "2024-02-01",
		Deployment:  "gpt-4o-mini",
		Temperature: 0.3,
		MaxTokens:   1000,
		Timeout:     5 * time.Second,
	}, logging.NewNopLogger())
}

func TestNew_DisabledWithoutCredentials(t *testing.T) {
	t.Parallel()

	a := New(config.AnnotatorConfig{}, logging.NewNopLogger())
	assert.False(t, a.Enabled())

	analysis, err := a.AnalyzeRisks(context.Background(), testAnalysisInput())
	require.NoError(t, err)
	assert.Empty(t, analysis.RiskFactors)
	assert.Zero(t, analysis.ConfidenceAdjustment)
}

func TestDisabledAnnotator_RecommendationFallsBackByRank(t *testing.T) {
	t.Parallel()

	a := NewDisabled()
	for rank, want := range map[prediction.Rank]string{
		prediction.RankA: "有望な案件です。技術提案書の充実と、過去実績のアピールを重視して入札準備を進めてください。",
		prediction.RankC: "妥当な価格設定ですが、競合分析を強化し、差別化ポイントを明確にすることを推奨します。",
		prediction.RankE: "リスクが高い案件です。価格戦略の見直しか、他案件への注力を検討してください。",
	} {
		got, err := a.DetailedRecommendation(context.Background(), &RecommendationInput{Rank: rank})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestAzureAnnotator_AnalyzeRisks(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	var gotReq chatRequest
	a := newServerAnnotator(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write(chatContentResponse(t,
			`{"risk_factors": ["競争激化の可能性"], "opportunities": ["地域実績が豊富"], "strategic_advice": "実績を強調", "confidence_adjustment": 0.08}`))
	})

	analysis, err := a.AnalyzeRisks(context.Background(), testAnalysisInput())
	require.NoError(t, err)

	assert.Equal(t, "/openai/deployments/gpt-4o-mini/chat/completions", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[1].Content, "庁舎改修工事")
	assert.Contains(t, gotReq.Messages[1].Content, "100,000,000円")
	assert.InDelta(t, 0.3, gotReq.Temperature, 1e-9)
	assert.Equal(t, 1000, gotReq.MaxTokens)

	assert.Equal(t, []string{"競争激化の可能性"}, analysis.RiskFactors)
	assert.InDelta(t, 0.08, analysis.ConfidenceAdjustment, 1e-9)
}

func TestAzureAnnotator_FencedResponseStillParses(t *testing.T) {
	t.Parallel()

	a := newServerAnnotator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatContentResponse(t, "```json\n{\"confidence_adjustment\": 0.1}\n```"))
	})

	analysis, err := a.AnalyzeRisks(context.Background(), testAnalysisInput())
	require.NoError(t, err)
	assert.InDelta(t, 0.1, analysis.ConfidenceAdjustment, 1e-9)
}

func TestAzureAnnotator_ProseResponseYieldsNeutralAndError(t *testing.T) {
	t.Parallel()

	a := newServerAnnotator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatContentResponse(t, "この案件は競争が激しいと考えられます。"))
	})

	analysis, err := a.AnalyzeRisks(context.Background(), testAnalysisInput())
	require.Error(t, err)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrCodeAIResponseInvalid, appErr.Code)
	assert.Zero(t, analysis.ConfidenceAdjustment)
}

func TestAzureAnnotator_ServerErrorYieldsNeutral(t *testing.T) {
	t.Parallel()

	a := newServerAnnotator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	})

	analysis, err := a.AnalyzeRisks(context.Background(), testAnalysisInput())
	require.Error(t, err)
	assert.Empty(t, analysis.RiskFactors)
	assert.Zero(t, analysis.ConfidenceAdjustment)
}

func TestAzureAnnotator_DetailedRecommendation(t *testing.T) {
	t.Parallel()

	var gotReq chatRequest
	a := newServerAnnotator(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write(chatContentResponse(t, "### 推奨事項\n\n#### 1. **価格戦略**\n入札額は中央値付近で妥当です。\n"))
	})

	in := &RecommendationInput{
		Tender:  testAnalysisInput().Tender,
		Rank:    prediction.RankB,
		WinProb: 0.55,
		Basis: prediction.Basis{
			NSimilar:            12,
			SimilarMedian:       95_000_000,
			PriceGap:            -3_000_000,
			BidVsEstimatedRatio: 92.0,
		},
		Analysis: &Analysis{
			RiskFactors:     []string{"競争激化の可能性"},
			Opportunities:   []string{"地域実績が豊富"},
			StrategicAdvice: "実績を強調",
		},
		Profile: testAnalysisInput().Profile,
	}

	got, err := a.DetailedRecommendation(context.Background(), in)
	require.NoError(t, err)
	assert.Contains(t, got, "価格戦略")

	assert.InDelta(t, recommendationTemperature, gotReq.Temperature, 1e-9)
	assert.Equal(t, recommendationMaxTokens, gotReq.MaxTokens)
	assert.Contains(t, gotReq.Messages[1].Content, "勝率: 55%")
	assert.Contains(t, gotReq.Messages[1].Content, "リスク要因: 競争激化の可能性")
}

func TestAzureAnnotator_RecommendationFailureFallsBack(t *testing.T) {
	t.Parallel()

	a := newServerAnnotator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	got, err := a.DetailedRecommendation(context.Background(), &RecommendationInput{
		Tender:   testAnalysisInput().Tender,
		Rank:     prediction.RankD,
		Analysis: NeutralAnalysis(),
		Profile:  testAnalysisInput().Profile,
	})
	require.Error(t, err)
	assert.Equal(t, FallbackRecommendation(prediction.RankD), got)
}

func TestGroupDigits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", groupDigits(0))
	assert.Equal(t, "999", groupDigits(999))
	assert.Equal(t, "1,000", groupDigits(1000))
	assert.Equal(t, "92,000,000", groupDigits(92_000_000))
	assert.Equal(t, "-1,234,567", groupDigits(-1_234_567))
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/raghav0014/AI-Feedback/errs"
	"github.com/raghav0014/AI-Feedback/models"
)

// RemoteAnalyzer calls an external AI text-analysis endpoint. The endpoint
// and key come from configuration; which vendor sits behind the URL is not
// this package's concern. A circuit breaker keeps a dead endpoint from
// slowing every enrichment down to its timeout.
type RemoteAnalyzer struct {
	url     string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*AnalysisResult]
}

func NewRemoteAnalyzer(url, apiKey string) *RemoteAnalyzer {
	settings := gobreaker.Settings{
		Name:     "ai-analyzer",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s changed from %s to %s", name, from, to)
		},
	}

	return &RemoteAnalyzer{
		url:     url,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[*AnalysisResult](settings),
	}
}

type analyzeRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Rating      int    `json:"rating"`
	ProductName string `json:"productName"`
}

// Analyze posts the review text to the remote endpoint and parses the
// response into the shared result shape. Any failure (network, 5xx/429,
// malformed response) is an upstream error; the caller falls through to
// the heuristic tier.
func (a *RemoteAnalyzer) Analyze(ctx context.Context, title, content string, rating int, productName string) (*AnalysisResult, error) {
	result, err := a.breaker.Execute(func() (*AnalysisResult, error) {
		return a.call(ctx, analyzeRequest{
			Title:       title,
			Content:     content,
			Rating:      rating,
			ProductName: productName,
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (a *RemoteAnalyzer) call(ctx context.Context, payload analyzeRequest) (*AnalysisResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.Encoding("failed to encode analysis request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Upstream("failed to build analysis request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errs.Upstream("AI analysis endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, errs.Upstream(fmt.Sprintf("AI analysis endpoint returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errs.Upstream(fmt.Sprintf("unexpected AI analysis status %d", resp.StatusCode), nil)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Upstream("failed to read analysis response", err)
	}

	var result AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, errs.Upstream("AI analysis response is not valid JSON", err)
	}
	if !validResult(&result) {
		return nil, errs.Upstream("AI analysis response has an invalid shape", nil)
	}

	return &result, nil
}

// validResult checks that the parsed response matches the result contract
// before it is trusted over the heuristic tier.
func validResult(r *AnalysisResult) bool {
	switch r.Sentiment {
	case models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral:
	default:
		return false
	}
	if r.Score < -1 || r.Score > 1 {
		return false
	}
	if r.FakeConfidence < 0 || r.FakeConfidence > 1 {
		return false
	}
	return true
}

// ChainAnalyzer tries each analyzer in order and returns the first success.
// The final tier is the heuristic, which never fails, so a chain ending in
// it always produces a result.
type ChainAnalyzer struct {
	tiers []Analyzer
}

func NewChainAnalyzer(tiers ...Analyzer) *ChainAnalyzer {
	return &ChainAnalyzer{tiers: tiers}
}

func (c *ChainAnalyzer) Analyze(ctx context.Context, title, content string, rating int, productName string) (*AnalysisResult, error) {
	var lastErr error
	for _, tier := range c.tiers {
		result, err := tier.Analyze(ctx, title, content, rating, productName)
		if err == nil {
			return result, nil
		}
		log.Printf("Analyzer tier failed, falling through: %v", err)
		lastErr = err
	}
	return nil, lastErr
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/raghav0014/AI-Feedback/models"
)

// AnalysisResult is the shared output shape of every analyzer tier.
type AnalysisResult struct {
	Sentiment      models.Sentiment `json:"sentiment"`
	Score          float64          `json:"score"`
	Confidence     float64          `json:"confidence"`
	Summary        string           `json:"summary"`
	Keywords       []string         `json:"keywords"`
	IsFake         bool             `json:"isFake"`
	FakeConfidence float64          `json:"fakeConfidence"`
}

// Analyzer produces sentiment and fake-likelihood scores for a review.
type Analyzer interface {
	Analyze(ctx context.Context, title, content string, rating int, productName string) (*AnalysisResult, error)
}

var positiveWords = []string{
	"great", "excellent", "amazing", "love", "perfect",
	"awesome", "fantastic", "wonderful", "best", "good",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "hate", "worst",
	"horrible", "poor", "disappointing", "waste", "broken",
}

var stopWords = map[string]bool{
	"this": true, "that": true, "with": true, "have": true,
	"from": true, "they": true, "been": true, "were": true,
	"would": true, "their": true, "about": true, "which": true,
	"there": true, "could": true, "should": true, "very": true,
	"just": true, "really": true, "much": true, "also": true,
}

// HeuristicAnalyzer is the rule-based bottom tier of the analysis chain.
// It counts occurrences of fixed positive/negative word lists and derives
// fake likelihood from content length. It never fails and is never retried.
type HeuristicAnalyzer struct{}

func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

func (a *HeuristicAnalyzer) Analyze(_ context.Context, title, content string, rating int, productName string) (*AnalysisResult, error) {
	text := strings.ToLower(title + " " + content)
	words := tokenize(text)

	positiveCount := 0
	negativeCount := 0
	for _, w := range words {
		if containsWord(positiveWords, w) {
			positiveCount++
		}
		if containsWord(negativeWords, w) {
			negativeCount++
		}
	}

	result := &AnalysisResult{
		Confidence: 0.6,
		Keywords:   extractKeywords(words),
	}

	// Classification rules, in order. Rating dominates the word counts.
	switch {
	case rating >= 4 || positiveCount > negativeCount:
		result.Sentiment = models.SentimentPositive
		result.Score = clamp(0.3+float64(rating-3)*0.2+float64(positiveCount)*0.1, -1, 1)
	case rating <= 2 || negativeCount > positiveCount:
		result.Sentiment = models.SentimentNegative
		result.Score = clamp(-0.3-float64(3-rating)*0.2-float64(negativeCount)*0.1, -1, 1)
	default:
		result.Sentiment = models.SentimentNeutral
		result.Score = float64(rating-3) * 0.1
	}

	contentWords := len(strings.Fields(content))
	tooShort := len(content) < 20
	result.IsFake = tooShort || contentWords < 10
	if tooShort {
		result.FakeConfidence = 0.8
	} else {
		result.FakeConfidence = 0.2
	}

	result.Summary = fmt.Sprintf("Customer sentiment is %s for %s, rated %d/5.",
		result.Sentiment, productName, rating)

	return result, nil
}

// tokenize splits lowered text into words, trimming punctuation.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	return fields
}

func containsWord(list []string, word string) bool {
	for _, w := range list {
		if w == word {
			return true
		}
	}
	return false
}

// extractKeywords returns up to 5 unique words longer than 3 characters,
// excluding stop words, in first-seen order.
func extractKeywords(words []string) []string {
	seen := make(map[string]bool)
	keywords := make([]string, 0, 5)
	for _, w := range words {
		if len(w) <= 3 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
		if len(keywords) == 5 {
			break
		}
	}
	return keywords
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

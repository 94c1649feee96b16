package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raghav0014/AI-Feedback/models"
)

func TestHeuristicAnalyzer_Sentiment(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()
	ctx := context.Background()

	t.Run("high rating with positive words", func(t *testing.T) {
		result, err := analyzer.Analyze(ctx, "Great product",
			"This laptop is excellent and I love the display quality overall for daily work", 5, "Laptop Pro")
		require.NoError(t, err)

		assert.Equal(t, models.SentimentPositive, result.Sentiment)
		assert.Greater(t, result.Score, 0.0)
		assert.LessOrEqual(t, result.Score, 1.0)
		assert.Equal(t, 0.6, result.Confidence)
		assert.False(t, result.IsFake)
		assert.Equal(t, 0.2, result.FakeConfidence)
		assert.Equal(t, "Customer sentiment is positive for Laptop Pro, rated 5/5.", result.Summary)
	})

	t.Run("low rating dominates neutral wording", func(t *testing.T) {
		result, err := analyzer.Analyze(ctx, "Not what I expected",
			"The battery drains overnight and the charger stopped working within days", 1, "Phone Z")
		require.NoError(t, err)

		assert.Equal(t, models.SentimentNegative, result.Sentiment)
		assert.Less(t, result.Score, 0.0)
		assert.GreaterOrEqual(t, result.Score, -1.0)
	})

	t.Run("positive words beat a middling rating", func(t *testing.T) {
		result, err := analyzer.Analyze(ctx, "Good enough",
			"Honestly a good purchase, great value considering the discounted price point here", 3, "Toaster")
		require.NoError(t, err)

		assert.Equal(t, models.SentimentPositive, result.Sentiment)
	})

	t.Run("neutral when nothing tips the scale", func(t *testing.T) {
		result, err := analyzer.Analyze(ctx, "Average",
			"It arrived on time and does what the box says, nothing more to add", 3, "Kettle")
		require.NoError(t, err)

		assert.Equal(t, models.SentimentNeutral, result.Sentiment)
		assert.Equal(t, 0.0, result.Score)
	})
}

func TestHeuristicAnalyzer_FakeDetection(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()
	ctx := context.Background()

	t.Run("very short content is flagged with high confidence", func(t *testing.T) {
		result, err := analyzer.Analyze(ctx, "x", "bad", 1, "Widget")
		require.NoError(t, err)

		assert.True(t, result.IsFake)
		assert.Equal(t, 0.8, result.FakeConfidence)
	})

	t.Run("long enough but too few words", func(t *testing.T) {
		result, err := analyzer.Analyze(ctx, "Meh",
			"Absolutely unquestionably disappointingly mediocre", 3, "Widget")
		require.NoError(t, err)

		assert.True(t, result.IsFake)
		assert.Equal(t, 0.2, result.FakeConfidence)
	})

	t.Run("substantial content passes", func(t *testing.T) {
		result, err := analyzer.Analyze(ctx, "Detailed take",
			"After three weeks of daily use the hinge still feels tight and the screen has no dead pixels", 4, "Laptop")
		require.NoError(t, err)

		assert.False(t, result.IsFake)
	})
}

func TestHeuristicAnalyzer_Keywords(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()

	result, err := analyzer.Analyze(context.Background(), "Battery battery",
		"The battery life with this charger setup is outstanding and charging is quick", 4, "Power Bank")
	require.NoError(t, err)

	assert.LessOrEqual(t, len(result.Keywords), 5)
	assert.Contains(t, result.Keywords, "battery")
	// Uniqueness: "battery" appears three times in the text, once in the list.
	counts := map[string]int{}
	for _, k := range result.Keywords {
		counts[k]++
	}
	for k, n := range counts {
		assert.Equal(t, 1, n, "keyword %q duplicated", k)
	}
	for _, k := range result.Keywords {
		assert.Greater(t, len(k), 3)
		assert.False(t, stopWords[k], "stop word %q leaked into keywords", k)
	}
}

func TestChainAnalyzer_FallsThroughToHeuristic(t *testing.T) {
	failing := analyzerFunc(func(ctx context.Context, title, content string, rating int, product string) (*AnalysisResult, error) {
		return nil, assert.AnError
	})

	chain := NewChainAnalyzer(failing, NewHeuristicAnalyzer())
	result, err := chain.Analyze(context.Background(), "Great",
		"Really great headset with excellent noise cancellation on long flights", 5, "Headset")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentPositive, result.Sentiment)
}

type analyzerFunc func(ctx context.Context, title, content string, rating int, productName string) (*AnalysisResult, error)

func (f analyzerFunc) Analyze(ctx context.Context, title, content string, rating int, productName string) (*AnalysisResult, error) {
	return f(ctx, title, content, rating, productName)
}

package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/raghav0014/AI-Feedback/errs"
	"github.com/raghav0014/AI-Feedback/models"
)

const analyticsCacheTTL = 5 * time.Minute

// AnalyticsReport aggregates the review collection over a time window.
type AnalyticsReport struct {
	TimeRange     string           `json:"time_range"`
	TotalReviews  int64            `json:"total_reviews"`
	PendingCount  int64            `json:"pending_count"`
	ApprovedCount int64            `json:"approved_count"`
	RejectedCount int64            `json:"rejected_count"`
	VerifiedCount int64            `json:"verified_count"`
	FakeCount     int64            `json:"fake_count"`
	AverageRating float64          `json:"average_rating"`
	Sentiments    map[string]int64 `json:"sentiment_distribution"`
	Categories    map[string]int64 `json:"category_breakdown"`
	Ratings       map[int]int64    `json:"rating_histogram"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// AnalyticsService derives aggregate counts and distributions from the
// review collection. Reports are cached in redis for a short TTL because
// the admin dashboard polls them.
type AnalyticsService struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewAnalyticsService(db *gorm.DB, cache *redis.Client) *AnalyticsService {
	return &AnalyticsService{db: db, cache: cache}
}

// windowStart maps a time-range label to its cutoff. Unknown labels get the
// 30 day default.
func windowStart(timeRange string, now time.Time) time.Time {
	switch timeRange {
	case "7d":
		return now.AddDate(0, 0, -7)
	case "90d":
		return now.AddDate(0, 0, -90)
	case "1y":
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -30)
	}
}

// Report builds the aggregate report for the window, serving from cache
// when a fresh copy exists.
func (s *AnalyticsService) Report(ctx context.Context, timeRange string) (*AnalyticsReport, error) {
	cacheKey := "analytics:" + timeRange
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var report AnalyticsReport
			if err := json.Unmarshal([]byte(cached), &report); err == nil {
				return &report, nil
			}
		}
	}

	since := windowStart(timeRange, time.Now())
	base := func() *gorm.DB {
		return s.db.Model(&models.Review{}).Where("created_at >= ?", since)
	}

	report := &AnalyticsReport{
		TimeRange:   timeRange,
		Sentiments:  make(map[string]int64),
		Categories:  make(map[string]int64),
		Ratings:     make(map[int]int64),
		GeneratedAt: time.Now(),
	}

	// A failed aggregate must surface, never cache as a zeroed report.
	if err := base().Count(&report.TotalReviews).Error; err != nil {
		return nil, errs.Upstream("failed to count reviews", err)
	}

	statusCounts := []struct {
		status models.ReviewStatus
		dest   *int64
	}{
		{models.StatusPending, &report.PendingCount},
		{models.StatusApproved, &report.ApprovedCount},
		{models.StatusRejected, &report.RejectedCount},
	}
	for _, sc := range statusCounts {
		if err := base().Where("status = ?", sc.status).Count(sc.dest).Error; err != nil {
			return nil, errs.Upstream("failed to count reviews by status", err)
		}
	}
	if err := base().Where("is_verified = ?", true).Count(&report.VerifiedCount).Error; err != nil {
		return nil, errs.Upstream("failed to count verified reviews", err)
	}
	if err := base().Where("is_fake = ?", true).Count(&report.FakeCount).Error; err != nil {
		return nil, errs.Upstream("failed to count flagged reviews", err)
	}

	var avgResult struct {
		AvgRating float64
	}
	if err := base().Select("COALESCE(AVG(rating), 0) as avg_rating").Scan(&avgResult).Error; err != nil {
		return nil, errs.Upstream("failed to average ratings", err)
	}
	report.AverageRating = avgResult.AvgRating

	type bucket struct {
		Key   string
		Count int64
	}

	var sentiments []bucket
	if err := base().Select("sentiment as key, COUNT(*) as count").Group("sentiment").Scan(&sentiments).Error; err != nil {
		return nil, errs.Upstream("failed to group reviews by sentiment", err)
	}
	for _, b := range sentiments {
		report.Sentiments[b.Key] = b.Count
	}

	var categories []bucket
	if err := base().Select("category as key, COUNT(*) as count").Group("category").Scan(&categories).Error; err != nil {
		return nil, errs.Upstream("failed to group reviews by category", err)
	}
	for _, b := range categories {
		report.Categories[b.Key] = b.Count
	}

	type ratingBucket struct {
		Rating int
		Count  int64
	}
	var ratings []ratingBucket
	if err := base().Select("rating, COUNT(*) as count").Group("rating").Scan(&ratings).Error; err != nil {
		return nil, errs.Upstream("failed to build the rating histogram", err)
	}
	for r := 1; r <= 5; r++ {
		report.Ratings[r] = 0
	}
	for _, b := range ratings {
		report.Ratings[b.Rating] = b.Count
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, cacheKey, encoded, analyticsCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache analytics report: %v", err)
			}
		}
	}

	return report, nil
}

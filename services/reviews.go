package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raghav0014/AI-Feedback/errs"
	"github.com/raghav0014/AI-Feedback/models"
)

const reviewCacheTTL = 10 * time.Minute

// ReviewPage is one page of a filtered listing.
type ReviewPage struct {
	Reviews []models.Review `json:"reviews"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Pages   int             `json:"pages"`
}

// ReviewService runs the user-facing review operations through the tier
// orchestrator: primary database, then the mirror REST API when one is
// configured, then the redis cache, then an empty result. The database is
// the source of truth; the other tiers only keep reads alive while it is
// down.
type ReviewService struct {
	store      *ReviewStore
	cache      *redis.Client
	apiBaseURL string
	httpClient *http.Client
	policy     FallbackPolicy
	notifier   Notifier
}

func NewReviewService(store *ReviewStore, cache *redis.Client, apiBaseURL string, notifier Notifier) *ReviewService {
	return &ReviewService{
		store:      store,
		cache:      cache,
		apiBaseURL: apiBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		policy:     DefaultFallbackPolicy(),
		notifier:   notifier,
	}
}

// SetPolicy overrides the retry policy; tests use it to shrink the waits.
func (s *ReviewService) SetPolicy(policy FallbackPolicy) {
	s.policy = policy
}

// Store exposes the underlying record store for writes that bypass the
// orchestrator (moderation, counters).
func (s *ReviewService) Store() *ReviewStore {
	return s.store
}

// LoadReviews serves a filtered page, falling through tiers as needed.
// Returns the page and the name of the tier that served it.
func (s *ReviewService) LoadReviews(ctx context.Context, filter ReviewFilter) (*ReviewPage, string, error) {
	tiers := []Tier[*ReviewPage]{
		{
			Name: "database",
			Attempt: func(ctx context.Context) (*ReviewPage, error) {
				reviews, total, err := s.store.List(filter)
				if err != nil {
					return nil, err
				}
				page := buildPage(reviews, total, filter)
				s.cachePage(ctx, filter, page)
				return page, nil
			},
		},
	}

	if s.apiBaseURL != "" {
		tiers = append(tiers, Tier[*ReviewPage]{
			Name: "fallback-api",
			Attempt: func(ctx context.Context) (*ReviewPage, error) {
				return s.fetchRemotePage(ctx, filter)
			},
		})
	}

	tiers = append(tiers,
		Tier[*ReviewPage]{
			Name: "local-cache",
			Attempt: func(ctx context.Context) (*ReviewPage, error) {
				return s.cachedPage(ctx, filter)
			},
		},
		Tier[*ReviewPage]{
			Name: "empty",
			Attempt: func(ctx context.Context) (*ReviewPage, error) {
				return buildPage(nil, 0, filter), nil
			},
		},
	)

	return ExecuteTiers(ctx, "load reviews", tiers, s.policy, s.notifier)
}

// GetReview serves a single review by id. The view counter increments only
// when the primary tier answers; a cache hit is a stale copy, not a visit.
func (s *ReviewService) GetReview(ctx context.Context, id uint) (*models.Review, string, error) {
	tiers := []Tier[*models.Review]{
		{
			Name: "database",
			Attempt: func(ctx context.Context) (*models.Review, error) {
				review, err := s.store.GetByID(id)
				if err != nil {
					return nil, err
				}
				if err := s.store.IncrementViews(id); err == nil {
					review.Views++
				}
				s.cacheReview(ctx, review)
				return review, nil
			},
		},
		{
			Name: "local-cache",
			Attempt: func(ctx context.Context) (*models.Review, error) {
				return s.cachedReview(ctx, id)
			},
		},
	}

	return ExecuteTiers(ctx, "load review", tiers, s.policy, s.notifier)
}

// Submit creates a review through the orchestrator. Validation and
// duplicate conflicts surface immediately; only a dead database falls
// through to the mirror API.
func (s *ReviewService) Submit(ctx context.Context, review *models.Review) (string, error) {
	tiers := []Tier[*models.Review]{
		{
			Name: "database",
			Attempt: func(ctx context.Context) (*models.Review, error) {
				if err := s.store.Create(review); err != nil {
					return nil, err
				}
				return review, nil
			},
		},
	}

	if s.apiBaseURL != "" {
		tiers = append(tiers, Tier[*models.Review]{
			Name: "fallback-api",
			Attempt: func(ctx context.Context) (*models.Review, error) {
				return s.postRemoteReview(ctx, review)
			},
		})
	}

	_, servedBy, err := ExecuteTiers(ctx, "submit review", tiers, s.policy, s.notifier)
	return servedBy, err
}

func buildPage(reviews []models.Review, total int64, filter ReviewFilter) *ReviewPage {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return &ReviewPage{
		Reviews: reviews,
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   int((total + int64(limit) - 1) / int64(limit)),
	}
}

func filterCacheKey(filter ReviewFilter) string {
	return fmt.Sprintf("reviews:%s:%s:%s:%d:%d:%s:%s:%s:%d:%d",
		filter.Status, filter.Category, filter.Sentiment, filter.Rating,
		filter.AuthorID, filter.Search, filter.SortBy, filter.SortOrder,
		filter.Page, filter.Limit)
}

func (s *ReviewService) cachePage(ctx context.Context, filter ReviewFilter, page *ReviewPage) {
	if s.cache == nil {
		return
	}
	encoded, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, filterCacheKey(filter), encoded, reviewCacheTTL).Err(); err != nil {
		log.Printf("Failed to cache review page: %v", err)
	}
}

func (s *ReviewService) cachedPage(ctx context.Context, filter ReviewFilter) (*ReviewPage, error) {
	if s.cache == nil {
		return nil, errs.Upstream("no cache configured", nil)
	}
	cached, err := s.cache.Get(ctx, filterCacheKey(filter)).Result()
	if err != nil {
		return nil, errs.Upstream("no cached review page", err)
	}
	var page ReviewPage
	if err := json.Unmarshal([]byte(cached), &page); err != nil {
		return nil, errs.Upstream("corrupt cached review page", err)
	}
	return &page, nil
}

func (s *ReviewService) cacheReview(ctx context.Context, review *models.Review) {
	if s.cache == nil {
		return
	}
	encoded, err := json.Marshal(review)
	if err != nil {
		return
	}
	key := fmt.Sprintf("review:%d", review.ID)
	if err := s.cache.Set(ctx, key, encoded, reviewCacheTTL).Err(); err != nil {
		log.Printf("Failed to cache review %d: %v", review.ID, err)
	}
}

func (s *ReviewService) cachedReview(ctx context.Context, id uint) (*models.Review, error) {
	if s.cache == nil {
		return nil, errs.Upstream("no cache configured", nil)
	}
	cached, err := s.cache.Get(ctx, fmt.Sprintf("review:%d", id)).Result()
	if err != nil {
		return nil, errs.Upstream("review not cached", err)
	}
	var review models.Review
	if err := json.Unmarshal([]byte(cached), &review); err != nil {
		return nil, errs.Upstream("corrupt cached review", err)
	}
	return &review, nil
}

// fetchRemotePage queries the mirror REST API with the same filter.
func (s *ReviewService) fetchRemotePage(ctx context.Context, filter ReviewFilter) (*ReviewPage, error) {
	endpoint, err := url.Parse(s.apiBaseURL + "/api/reviews")
	if err != nil {
		return nil, errs.Upstream("invalid fallback API URL", err)
	}

	q := endpoint.Query()
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Sentiment != "" {
		q.Set("sentiment", string(filter.Sentiment))
	}
	if filter.Rating > 0 {
		q.Set("rating", fmt.Sprint(filter.Rating))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.SortBy != "" {
		q.Set("sortBy", filter.SortBy)
	}
	if filter.SortOrder != "" {
		q.Set("sortOrder", filter.SortOrder)
	}
	q.Set("page", fmt.Sprint(filter.Page))
	q.Set("limit", fmt.Sprint(filter.Limit))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, errs.Upstream("failed to build fallback API request", err)
	}

	body, err := s.doRemote(req)
	if err != nil {
		return nil, err
	}

	var page ReviewPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, errs.Upstream("fallback API returned malformed page", err)
	}
	return &page, nil
}

func (s *ReviewService) postRemoteReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	payload, err := json.Marshal(review)
	if err != nil {
		return nil, errs.Encoding("failed to encode review", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBaseURL+"/api/reviews",
		bytes.NewReader(payload))
	if err != nil {
		return nil, errs.Upstream("failed to build fallback API request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := s.doRemote(req)
	if err != nil {
		return nil, err
	}

	var created models.Review
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, errs.Upstream("fallback API returned malformed review", err)
	}
	*review = created
	return review, nil
}

// doRemote executes the request, classifying the response for the
// orchestrator: 5xx and 429 are retryable upstream failures, other non-2xx
// codes are genuine errors from a reachable tier.
func (s *ReviewService) doRemote(req *http.Request) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errs.Upstream("fallback API unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, errs.Upstream(fmt.Sprintf("fallback API returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.Validation(fmt.Sprintf("fallback API rejected the request with %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Upstream("failed to read fallback API response", err)
	}
	return body, nil
}

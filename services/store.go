package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/raghav0014/AI-Feedback/errs"
	"github.com/raghav0014/AI-Feedback/models"
)

// ReviewStore owns every read and write against the review tables. Counter
// updates go through atomic column expressions, never read-modify-write, so
// concurrent helpful/report requests cannot lose updates.
type ReviewStore struct {
	db *gorm.DB
}

func NewReviewStore(db *gorm.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// DB exposes the underlying handle for services that compose with the store.
func (s *ReviewStore) DB() *gorm.DB {
	return s.db
}

// ReviewFilter is the compound filter for listing reviews.
type ReviewFilter struct {
	Status    models.ReviewStatus
	Category  string
	Sentiment models.Sentiment
	Rating    int
	AuthorID  uint
	Search    string
	SortBy    string // date | rating | helpful
	SortOrder string // asc | desc
	Page      int
	Limit     int
}

// ValidateSubmission checks the user-supplied fields of a new review.
func ValidateSubmission(r *models.Review) error {
	if r.ProductName == "" {
		return errs.Validation("Product name is required")
	}
	if !models.IsValidCategory(r.Category) {
		return errs.Validation("Unknown category: " + r.Category)
	}
	if r.Title == "" || len(r.Title) > 200 {
		return errs.Validation("Title must be between 1 and 200 characters")
	}
	if len(r.Content) < 10 || len(r.Content) > 2000 {
		return errs.Validation("Content must be between 10 and 2000 characters")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return errs.Validation("Rating must be between 1 and 5")
	}
	return nil
}

// Create validates and persists a new review. A user gets one review per
// product; a second submission is a conflict and no record is created.
func (s *ReviewStore) Create(review *models.Review) error {
	if err := ValidateSubmission(review); err != nil {
		return err
	}

	return s.transact(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Review{}).
			Where("author_id = ? AND product_name = ?", review.AuthorID, review.ProductName).
			Count(&count).Error
		if err != nil {
			return errs.Upstream("failed to check existing reviews", err)
		}
		if count > 0 {
			return errs.Conflict("You have already reviewed this product")
		}

		if err := tx.Create(review).Error; err != nil {
			return errs.Upstream("failed to create review", err)
		}

		err = tx.Model(&models.User{}).Where("id = ?", review.AuthorID).
			UpdateColumn("review_count", gorm.Expr("review_count + 1")).Error
		if err != nil {
			return errs.Upstream("failed to update author review count", err)
		}
		return nil
	})
}

// GetByID fetches a single review with its author.
func (s *ReviewStore) GetByID(id uint) (*models.Review, error) {
	var review models.Review
	err := s.db.Preload("Author", func(db *gorm.DB) *gorm.DB {
		return db.Select("id, name, reputation, created_at")
	}).First(&review, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("Review not found")
	}
	if err != nil {
		return nil, errs.Upstream("failed to fetch review", err)
	}
	return &review, nil
}

// IncrementViews bumps the view counter without touching other fields.
func (s *ReviewStore) IncrementViews(id uint) error {
	err := s.db.Model(&models.Review{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
	if err != nil {
		return errs.Upstream("failed to increment views", err)
	}
	return nil
}

// List applies the compound filter and returns one page plus the total
// number of matching rows.
func (s *ReviewStore) List(filter ReviewFilter) ([]models.Review, int64, error) {
	query := s.db.Model(&models.Review{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Sentiment != "" {
		query = query.Where("sentiment = ?", filter.Sentiment)
	}
	if filter.Rating > 0 {
		query = query.Where("rating = ?", filter.Rating)
	}
	if filter.AuthorID > 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(product_name) LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errs.Upstream("failed to count reviews", err)
	}

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

	var reviews []models.Review
	err := query.Order(orderClause(filter)).
		Limit(limit).
		Offset((page-1)*limit).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name, reputation, created_at")
		}).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, errs.Upstream("failed to fetch reviews", err)
	}

	return reviews, total, nil
}

func orderClause(filter ReviewFilter) string {
	dir := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		dir = "ASC"
	}
	switch filter.SortBy {
	case "rating":
		return "rating " + dir + ", created_at DESC"
	case "helpful":
		return "helpful " + dir + ", created_at DESC"
	default:
		return "created_at " + dir
	}
}

// enrichmentResetFields restores the pre-enrichment defaults after a content
// edit, so the pipeline's next run starts from a clean slate.
func enrichmentResetFields() map[string]interface{} {
	return map[string]interface{}{
		"status":          models.StatusPending,
		"sentiment":       models.SentimentNeutral,
		"sentiment_score": 0.0,
		"summary":         "",
		"keywords":        models.StringList(nil),
		"is_fake":         false,
		"fake_confidence": 0.0,
		"blockchain_hash": "",
	}
}

// UpdateContent applies an author/admin edit. Any change to title, content
// or rating resets the review to pending and clears its enrichment fields;
// the caller re-triggers enrichment when the returned flag is true.
func (s *ReviewStore) UpdateContent(review *models.Review, title, content string, rating int) (bool, error) {
	contentChanged := title != review.Title || content != review.Content || rating != review.Rating
	if !contentChanged {
		return false, nil
	}

	candidate := *review
	candidate.Title = title
	candidate.Content = content
	candidate.Rating = rating
	if err := ValidateSubmission(&candidate); err != nil {
		return false, err
	}

	updates := enrichmentResetFields()
	updates["title"] = title
	updates["content"] = content
	updates["rating"] = rating

	if err := s.db.Model(review).Updates(updates).Error; err != nil {
		return false, errs.Upstream("failed to update review", err)
	}
	return true, nil
}

// Delete removes a review and decrements the author's review count.
func (s *ReviewStore) Delete(id uint) error {
	return s.transact(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Review not found")
			}
			return errs.Upstream("failed to fetch review", err)
		}

		if err := tx.Delete(&review).Error; err != nil {
			return errs.Upstream("failed to delete review", err)
		}

		err := tx.Model(&models.User{}).Where("id = ?", review.AuthorID).
			UpdateColumn("review_count", gorm.Expr("review_count - 1")).Error
		if err != nil {
			return errs.Upstream("failed to update author review count", err)
		}
		return nil
	})
}

// SetStatus applies a moderation decision. The reputation delta is applied
// only on an actual transition: re-approving an approved review changes
// nothing but the moderation metadata.
func (s *ReviewStore) SetStatus(id uint, status models.ReviewStatus, moderatorID uint, notes string) (*models.Review, error) {
	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, errs.Validation(fmt.Sprintf("Invalid moderation status: %s", status))
	}

	var review models.Review
	err := s.transact(func(tx *gorm.DB) error {
		if err := tx.First(&review, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Review not found")
			}
			return errs.Upstream("failed to fetch review", err)
		}

		transitioned := review.Status != status
		now := time.Now()

		updates := map[string]interface{}{
			"status":           status,
			"moderated_by":     moderatorID,
			"moderated_at":     now,
			"moderation_notes": notes,
		}
		if err := tx.Model(&review).Updates(updates).Error; err != nil {
			return errs.Upstream("failed to update review status", err)
		}

		if transitioned {
			delta := models.ReputationOnApproval
			if status == models.StatusRejected {
				delta = models.ReputationOnRejection
			}
			err := tx.Model(&models.User{}).Where("id = ?", review.AuthorID).
				UpdateColumn("reputation", gorm.Expr("reputation + ?", delta)).Error
			if err != nil {
				return errs.Upstream("failed to adjust author reputation", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// MarkHelpful records one helpful vote per user per review. The vote row is
// the guard: a second call for the same pair is a conflict and the counter
// is untouched. Each received vote credits the author's reputation.
func (s *ReviewStore) MarkHelpful(reviewID, userID uint) (int, error) {
	var helpful int
	err := s.transact(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Review not found")
			}
			return errs.Upstream("failed to fetch review", err)
		}

		var existing int64
		err := tx.Model(&models.HelpfulVote{}).
			Where("review_id = ? AND user_id = ?", reviewID, userID).
			Count(&existing).Error
		if err != nil {
			return errs.Upstream("failed to check helpful votes", err)
		}
		if existing > 0 {
			return errs.Conflict("You have already marked this review as helpful")
		}

		vote := models.HelpfulVote{ReviewID: reviewID, UserID: userID}
		if err := tx.Create(&vote).Error; err != nil {
			return errs.Upstream("failed to record helpful vote", err)
		}

		err = tx.Model(&models.Review{}).Where("id = ?", reviewID).
			UpdateColumn("helpful", gorm.Expr("helpful + 1")).Error
		if err != nil {
			return errs.Upstream("failed to increment helpful count", err)
		}

		err = tx.Model(&models.User{}).Where("id = ?", review.AuthorID).
			UpdateColumn("reputation", gorm.Expr("reputation + ?", models.ReputationPerHelpful)).Error
		if err != nil {
			return errs.Upstream("failed to credit author reputation", err)
		}

		// Re-read the stored counter: the row loaded at the top of the
		// transaction may predate increments committed by other voters.
		var current models.Review
		err = tx.Select("helpful").First(&current, reviewID).Error
		if err != nil {
			return errs.Upstream("failed to read helpful count", err)
		}
		helpful = current.Helpful
		return nil
	})
	if err != nil {
		return 0, err
	}
	return helpful, nil
}

// Report records one report per user per review, with a required reason.
func (s *ReviewStore) Report(reviewID, userID uint, reason string) error {
	if reason == "" {
		return errs.Validation("A report reason is required")
	}

	return s.transact(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("Review not found")
			}
			return errs.Upstream("failed to fetch review", err)
		}

		var existing int64
		err := tx.Model(&models.ReviewReport{}).
			Where("review_id = ? AND user_id = ?", reviewID, userID).
			Count(&existing).Error
		if err != nil {
			return errs.Upstream("failed to check reports", err)
		}
		if existing > 0 {
			return errs.Conflict("You have already reported this review")
		}

		report := models.ReviewReport{ReviewID: reviewID, UserID: userID, Reason: reason}
		if err := tx.Create(&report).Error; err != nil {
			return errs.Upstream("failed to record report", err)
		}

		err = tx.Model(&models.Review{}).Where("id = ?", reviewID).
			UpdateColumn("report_count", gorm.Expr("report_count + 1")).Error
		if err != nil {
			return errs.Upstream("failed to increment report count", err)
		}
		return nil
	})
}

// ApplyEnrichment writes the analysis results back onto the record. The
// field set is disjoint from everything moderation touches, so a concurrent
// status change cannot be clobbered.
func (s *ReviewStore) ApplyEnrichment(id uint, result *AnalysisResult, hash string) error {
	updates := map[string]interface{}{
		"sentiment":       result.Sentiment,
		"sentiment_score": result.Score,
		"summary":         result.Summary,
		"keywords":        models.StringList(result.Keywords),
		"is_fake":         result.IsFake,
		"fake_confidence": result.FakeConfidence,
		"blockchain_hash": hash,
	}
	err := s.db.Model(&models.Review{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return errs.Upstream("failed to apply enrichment", err)
	}
	return nil
}

// transact runs fn inside a transaction, passing app errors through without
// rewrapping them.
func (s *ReviewStore) transact(fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(fn)
}

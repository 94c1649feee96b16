package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/raghav0014/AI-Feedback/errs"
	"github.com/raghav0014/AI-Feedback/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Review{},
		&models.HelpfulVote{},
		&models.ReviewReport{},
		&models.ContentRecord{},
	)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	user := &models.User{
		Name:  "Test User",
		Email: fmt.Sprintf("user-%d@example.com", userSeq()),
		Role:  role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

var seq int

func userSeq() int {
	seq++
	return seq
}

func testReview(authorID uint, product string) *models.Review {
	return &models.Review{
		AuthorID:    authorID,
		ProductName: product,
		Category:    "Electronics",
		Title:       "Solid product",
		Content:     "Works exactly as described, no complaints after two weeks of use.",
		Rating:      4,
	}
}

func TestReviewStore_Create(t *testing.T) {
	db := setupTestDB(t)
	store := NewReviewStore(db)
	user := createTestUser(t, db, models.RoleUser)

	t.Run("creates with pending defaults", func(t *testing.T) {
		review := testReview(user.ID, "Laptop X1")
		err := store.Create(review)
		require.NoError(t, err)
		assert.NotZero(t, review.ID)
		assert.Equal(t, models.StatusPending, review.Status)
		assert.Equal(t, models.SentimentNeutral, review.Sentiment)

		var refreshed models.User
		require.NoError(t, db.First(&refreshed, user.ID).Error)
		assert.Equal(t, 1, refreshed.ReviewCount)
	})

	t.Run("second review for same product conflicts", func(t *testing.T) {
		err := store.Create(testReview(user.ID, "Laptop X1"))
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindConflict))

		var count int64
		db.Model(&models.Review{}).Count(&count)
		assert.Equal(t, int64(1), count)

		var refreshed models.User
		require.NoError(t, db.First(&refreshed, user.ID).Error)
		assert.Equal(t, 1, refreshed.ReviewCount)
	})

	t.Run("same product by another user is fine", func(t *testing.T) {
		other := createTestUser(t, db, models.RoleUser)
		err := store.Create(testReview(other.ID, "Laptop X1"))
		assert.NoError(t, err)
	})
}

func TestValidateSubmission(t *testing.T) {
	base := func() *models.Review { return testReview(1, "Phone") }

	tests := []struct {
		name   string
		mutate func(*models.Review)
		wantOK bool
	}{
		{"valid", func(r *models.Review) {}, true},
		{"missing product", func(r *models.Review) { r.ProductName = "" }, false},
		{"unknown category", func(r *models.Review) { r.Category = "Gadgets" }, false},
		{"empty title", func(r *models.Review) { r.Title = "" }, false},
		{"title too long", func(r *models.Review) {
			for len(r.Title) <= 200 {
				r.Title += "x"
			}
		}, false},
		{"content too short", func(r *models.Review) { r.Content = "too short" }, false},
		{"rating zero", func(r *models.Review) { r.Rating = 0 }, false},
		{"rating six", func(r *models.Review) { r.Rating = 6 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review := base()
			tt.mutate(review)
			err := ValidateSubmission(review)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errs.IsKind(err, errs.KindValidation))
			}
		})
	}
}

func TestReviewStore_MarkHelpful(t *testing.T) {
	db := setupTestDB(t)
	store := NewReviewStore(db)
	author := createTestUser(t, db, models.RoleUser)
	voter := createTestUser(t, db, models.RoleUser)

	review := testReview(author.ID, "Keyboard K2")
	require.NoError(t, store.Create(review))

	count, err := store.MarkHelpful(review.ID, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var refreshedAuthor models.User
	require.NoError(t, db.First(&refreshedAuthor, author.ID).Error)
	assert.Equal(t, models.ReputationInitial+models.ReputationPerHelpful, refreshedAuthor.Reputation)

	t.Run("second vote by same user conflicts and counter holds", func(t *testing.T) {
		_, err := store.MarkHelpful(review.ID, voter.ID)
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindConflict))

		var refreshed models.Review
		require.NoError(t, db.First(&refreshed, review.ID).Error)
		assert.Equal(t, 1, refreshed.Helpful)

		require.NoError(t, db.First(&refreshedAuthor, author.ID).Error)
		assert.Equal(t, models.ReputationInitial+models.ReputationPerHelpful, refreshedAuthor.Reputation)
	})

	t.Run("different user can vote", func(t *testing.T) {
		other := createTestUser(t, db, models.RoleUser)
		count, err := store.MarkHelpful(review.ID, other.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("unknown review", func(t *testing.T) {
		_, err := store.MarkHelpful(9999, voter.ID)
		assert.True(t, errs.IsKind(err, errs.KindNotFound))
	})

	t.Run("returned count reflects votes committed by others", func(t *testing.T) {
		fresh := testReview(author.ID, "Trackpad T1")
		require.NoError(t, store.Create(fresh))

		// Bump the counter directly, as concurrent voters would have.
		require.NoError(t, db.Model(&models.Review{}).Where("id = ?", fresh.ID).
			UpdateColumn("helpful", gorm.Expr("helpful + ?", 5)).Error)

		count, err := store.MarkHelpful(fresh.ID, voter.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, count)

		var refreshed models.Review
		require.NoError(t, db.First(&refreshed, fresh.ID).Error)
		assert.Equal(t, 6, refreshed.Helpful)
	})
}

func TestReviewStore_SetStatus(t *testing.T) {
	db := setupTestDB(t)
	store := NewReviewStore(db)
	author := createTestUser(t, db, models.RoleUser)
	admin := createTestUser(t, db, models.RoleAdmin)

	review := testReview(author.ID, "Monitor M1")
	require.NoError(t, store.Create(review))

	reputation := func() int {
		var u models.User
		require.NoError(t, db.First(&u, author.ID).Error)
		return u.Reputation
	}

	t.Run("approval credits reputation once", func(t *testing.T) {
		updated, err := store.SetStatus(review.ID, models.StatusApproved, admin.ID, "looks genuine")
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, updated.Status)
		assert.Equal(t, models.ReputationInitial+models.ReputationOnApproval, reputation())

		var refreshed models.Review
		require.NoError(t, db.First(&refreshed, review.ID).Error)
		assert.Equal(t, models.StatusApproved, refreshed.Status)
		assert.NotNil(t, refreshed.ModeratedAt)
		assert.Equal(t, "looks genuine", refreshed.ModerationNotes)
	})

	t.Run("re-approving changes metadata only", func(t *testing.T) {
		_, err := store.SetStatus(review.ID, models.StatusApproved, admin.ID, "second look")
		require.NoError(t, err)
		assert.Equal(t, models.ReputationInitial+models.ReputationOnApproval, reputation())
	})

	t.Run("rejection after approval applies the rejection delta", func(t *testing.T) {
		_, err := store.SetStatus(review.ID, models.StatusRejected, admin.ID, "")
		require.NoError(t, err)
		assert.Equal(t, models.ReputationInitial+models.ReputationOnApproval+models.ReputationOnRejection, reputation())
	})

	t.Run("pending is not a moderation decision", func(t *testing.T) {
		_, err := store.SetStatus(review.ID, models.StatusPending, admin.ID, "")
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindValidation))
	})

	t.Run("unknown review", func(t *testing.T) {
		_, err := store.SetStatus(9999, models.StatusApproved, admin.ID, "")
		assert.True(t, errs.IsKind(err, errs.KindNotFound))
	})
}

func TestReviewStore_UpdateContent(t *testing.T) {
	db := setupTestDB(t)
	store := NewReviewStore(db)
	author := createTestUser(t, db, models.RoleUser)

	review := testReview(author.ID, "Headphones H3")
	require.NoError(t, store.Create(review))

	result := &AnalysisResult{
		Sentiment:      models.SentimentPositive,
		Score:          0.7,
		Summary:        "Customer sentiment is positive for Headphones H3, rated 4/5.",
		Keywords:       []string{"works", "described"},
		FakeConfidence: 0.2,
	}
	require.NoError(t, store.ApplyEnrichment(review.ID, result, "0xabc"))

	t.Run("no-op when nothing changed", func(t *testing.T) {
		changed, err := store.UpdateContent(review, review.Title, review.Content, review.Rating)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("edit resets status and enrichment", func(t *testing.T) {
		changed, err := store.UpdateContent(review, review.Title, "Rewritten after a month: the left cup developed a rattle.", 2)
		require.NoError(t, err)
		assert.True(t, changed)

		var refreshed models.Review
		require.NoError(t, db.First(&refreshed, review.ID).Error)
		assert.Equal(t, models.StatusPending, refreshed.Status)
		assert.Equal(t, models.SentimentNeutral, refreshed.Sentiment)
		assert.Zero(t, refreshed.SentimentScore)
		assert.Empty(t, refreshed.Summary)
		assert.Empty(t, refreshed.Keywords)
		assert.Empty(t, refreshed.BlockchainHash)
		assert.Equal(t, 2, refreshed.Rating)
	})

	t.Run("invalid edit is rejected before any write", func(t *testing.T) {
		_, err := store.UpdateContent(review, review.Title, "short", 3)
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindValidation))
	})
}

func TestReviewStore_Delete(t *testing.T) {
	db := setupTestDB(t)
	store := NewReviewStore(db)
	author := createTestUser(t, db, models.RoleUser)

	review := testReview(author.ID, "Camera C9")
	require.NoError(t, store.Create(review))

	require.NoError(t, store.Delete(review.ID))

	var refreshed models.User
	require.NoError(t, db.First(&refreshed, author.ID).Error)
	assert.Equal(t, 0, refreshed.ReviewCount)

	_, err := store.GetByID(review.ID)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))

	err = store.Delete(review.ID)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestReviewStore_List(t *testing.T) {
	db := setupTestDB(t)
	store := NewReviewStore(db)
	author := createTestUser(t, db, models.RoleUser)

	seed := []struct {
		product  string
		category string
		rating   int
		status   models.ReviewStatus
	}{
		{"Laptop Pro", "Technology", 5, models.StatusApproved},
		{"Budget Laptop", "Technology", 2, models.StatusApproved},
		{"Blender B1", "Home & Kitchen", 4, models.StatusPending},
		{"Running Shoes", "Sports", 3, models.StatusApproved},
		{"Novel of the Year", "Books", 5, models.StatusRejected},
	}
	for _, s := range seed {
		review := testReview(author.ID, s.product)
		review.Category = s.category
		review.Rating = s.rating
		require.NoError(t, store.Create(review))
		if s.status != models.StatusPending {
			db.Model(&models.Review{}).Where("id = ?", review.ID).Update("status", s.status)
		}
	}

	t.Run("status filter", func(t *testing.T) {
		reviews, total, err := store.List(ReviewFilter{Status: models.StatusApproved})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, reviews, 3)
	})

	t.Run("category filter", func(t *testing.T) {
		_, total, err := store.List(ReviewFilter{Category: "Technology"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("case-insensitive search", func(t *testing.T) {
		reviews, total, err := store.List(ReviewFilter{Search: "LAPTOP"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, r := range reviews {
			assert.Contains(t, r.ProductName, "Laptop")
		}
	})

	t.Run("sort by rating ascending", func(t *testing.T) {
		reviews, _, err := store.List(ReviewFilter{SortBy: "rating", SortOrder: "asc"})
		require.NoError(t, err)
		require.NotEmpty(t, reviews)
		for i := 1; i < len(reviews); i++ {
			assert.LessOrEqual(t, reviews[i-1].Rating, reviews[i].Rating)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		page1, total, err := store.List(ReviewFilter{Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, page1, 2)

		page3, _, err := store.List(ReviewFilter{Page: 3, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, page3, 1)
	})

	t.Run("author preloaded without password", func(t *testing.T) {
		reviews, _, err := store.List(ReviewFilter{Status: models.StatusApproved, Limit: 1})
		require.NoError(t, err)
		require.NotEmpty(t, reviews)
		assert.Equal(t, author.Name, reviews[0].Author.Name)
		assert.Empty(t, reviews[0].Author.Password)
	})
}

func TestReviewStore_Report(t *testing.T) {
	db := setupTestDB(t)
	store := NewReviewStore(db)
	author := createTestUser(t, db, models.RoleUser)
	reporter := createTestUser(t, db, models.RoleUser)

	review := testReview(author.ID, "Tablet T7")
	require.NoError(t, store.Create(review))

	t.Run("reason is required", func(t *testing.T) {
		err := store.Report(review.ID, reporter.ID, "")
		assert.True(t, errs.IsKind(err, errs.KindValidation))
	})

	t.Run("first report counts", func(t *testing.T) {
		require.NoError(t, store.Report(review.ID, reporter.ID, "spam"))
		var refreshed models.Review
		require.NoError(t, db.First(&refreshed, review.ID).Error)
		assert.Equal(t, 1, refreshed.ReportCount)
	})

	t.Run("second report by same user conflicts", func(t *testing.T) {
		err := store.Report(review.ID, reporter.ID, "still spam")
		assert.True(t, errs.IsKind(err, errs.KindConflict))

		var refreshed models.Review
		require.NoError(t, db.First(&refreshed, review.ID).Error)
		assert.Equal(t, 1, refreshed.ReportCount)
	})
}

func TestReviewStore_IncrementViews(t *testing.T) {
	db := setupTestDB(t)
	store := NewReviewStore(db)
	author := createTestUser(t, db, models.RoleUser)

	review := testReview(author.ID, "Speaker S5")
	require.NoError(t, store.Create(review))

	require.NoError(t, store.IncrementViews(review.ID))
	require.NoError(t, store.IncrementViews(review.ID))

	var refreshed models.Review
	require.NoError(t, db.First(&refreshed, review.ID).Error)
	assert.Equal(t, 2, refreshed.Views)
}

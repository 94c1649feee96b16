package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Categories is the fixed set of product categories a review may carry.
var Categories = []string{
	"Technology",
	"Electronics",
	"Fashion",
	"Home & Kitchen",
	"Beauty",
	"Sports",
	"Books",
	"Food & Beverage",
}

// IsValidCategory reports whether category is one of the fixed set.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether s is a known review status.
func IsValidStatus(s ReviewStatus) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// StringList stores a slice of strings as a JSON column.
type StringList []string

// Value implements the driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	jsonData, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal StringList: unsupported type %T", value)
	}

	return json.Unmarshal(data, l)
}

type Review struct {
	gorm.Model
	AuthorID    uint   `json:"author_id"`
	Author      User   `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Rating      int    `json:"rating"`

	Status          ReviewStatus `json:"status" gorm:"default:pending;index"`
	ModeratedBy     *uint        `json:"moderated_by,omitempty"`
	ModeratedAt     *time.Time   `json:"moderated_at,omitempty"`
	ModerationNotes string       `json:"moderation_notes,omitempty"`

	// Enrichment fields. Defaults hold until the pipeline writes back.
	Sentiment      Sentiment  `json:"sentiment" gorm:"default:neutral"`
	SentimentScore float64    `json:"sentiment_score"`
	Summary        string     `json:"summary"`
	Keywords       StringList `json:"keywords" gorm:"type:text"`
	IsFake         bool       `json:"is_fake"`
	FakeConfidence float64    `json:"fake_confidence"`
	BlockchainHash string     `json:"blockchain_hash"`

	IsVerified bool `json:"is_verified"`

	Helpful     int `json:"helpful"`
	ReportCount int `json:"report_count"`
	Views       int `json:"views"`

	HelpfulVotes []HelpfulVote  `json:"-" gorm:"foreignKey:ReviewID"`
	Reports      []ReviewReport `json:"-" gorm:"foreignKey:ReviewID"`
}

// BeforeCreate hook to apply lifecycle defaults
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = StatusPending
	}
	if r.Sentiment == "" {
		r.Sentiment = SentimentNeutral
	}
	return nil
}

// HelpfulVote records a single user's helpful mark for a review. The unique
// index makes the mark idempotent under concurrent requests.
type HelpfulVote struct {
	ID        uint  `json:"id" gorm:"primaryKey"`
	ReviewID  uint  `json:"review_id" gorm:"uniqueIndex:idx_helpful_review_user"`
	UserID    uint  `json:"user_id" gorm:"uniqueIndex:idx_helpful_review_user"`
	CreatedAt int64 `json:"created_at" gorm:"autoCreateTime"`
}

// ReviewReport records a single user's report against a review, one per user.
type ReviewReport struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ReviewID  uint   `json:"review_id" gorm:"uniqueIndex:idx_report_review_user"`
	UserID    uint   `json:"user_id" gorm:"uniqueIndex:idx_report_review_user"`
	Reason    string `json:"reason"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime"`
}

package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/raghav0014/AI-Feedback/errs"
	"github.com/raghav0014/AI-Feedback/models"
)

// ContentAddressStore is a content-addressed blob store: the digest of the
// bytes is the key. The local implementation stands in for the "blockchain"
// and "IPFS" integration points, which in this system are a hash table and
// a blob store.
type ContentAddressStore interface {
	Put(data []byte) (string, error)
	Get(digest string) ([]byte, error)
}

// LocalContentStore keeps content records in the application database.
type LocalContentStore struct {
	db *gorm.DB
}

func NewLocalContentStore(db *gorm.DB) *LocalContentStore {
	return &LocalContentStore{db: db}
}

// Put stores the bytes under their SHA-256 digest. Storing the same bytes
// twice is a no-op and returns the same digest.
func (s *LocalContentStore) Put(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	digest := "0x" + hex.EncodeToString(sum[:])

	record := models.ContentRecord{Digest: digest, Data: data}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
	if err != nil {
		return "", errs.Upstream("failed to store content record", err)
	}
	return digest, nil
}

// Get fetches the bytes stored under digest.
func (s *LocalContentStore) Get(digest string) ([]byte, error) {
	var record models.ContentRecord
	err := s.db.First(&record, "digest = ?", digest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("No content stored for digest")
	}
	if err != nil {
		return nil, errs.Upstream("failed to fetch content record", err)
	}
	return record.Data, nil
}

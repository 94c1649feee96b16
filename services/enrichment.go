package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/raghav0014/AI-Feedback/models"
)

// Broadcaster pushes review updates to connected clients. The notification
// is a hint to re-fetch, never authoritative data.
type Broadcaster interface {
	BroadcastReviewUpdate(review *models.Review)
}

// Enricher runs the post-submission analysis pipeline: text analysis, then
// the content hash, then a write-back of the enrichment fields. It runs
// out-of-band from the request that created the review; if the process dies
// mid-run the enrichment is simply lost.
type Enricher struct {
	store       *ReviewStore
	analyzer    Analyzer
	hasher      *ContentHasher
	content     ContentAddressStore
	broadcaster Broadcaster
}

func NewEnricher(store *ReviewStore, analyzer Analyzer, hasher *ContentHasher, content ContentAddressStore, broadcaster Broadcaster) *Enricher {
	return &Enricher{
		store:       store,
		analyzer:    analyzer,
		hasher:      hasher,
		content:     content,
		broadcaster: broadcaster,
	}
}

// EnrichAsync fires Enrich on its own goroutine. The caller must not wait;
// the creation response carries default enrichment fields and the results
// show up on a later read or over the websocket channel.
func (e *Enricher) EnrichAsync(id uint) {
	go func() {
		if err := e.Enrich(context.Background(), id); err != nil {
			log.Printf("Enrichment failed for review %d: %v", id, err)
		}
	}()
}

// Enrich fetches the review, runs the analyzer chain and the hasher, and
// writes the results back. Every failure degrades: analyzer errors fall to
// the heuristic inside the chain, hashing errors substitute the fallback
// digest, and nothing here ever reaches the submitting user.
func (e *Enricher) Enrich(ctx context.Context, id uint) error {
	review, err := e.store.GetByID(id)
	if err != nil {
		return err
	}

	result, err := e.analyzer.Analyze(ctx, review.Title, review.Content, review.Rating, review.ProductName)
	if err != nil {
		return err
	}

	hash, err := e.hasher.HashReview(review.Title, review.Content, review.Rating, review.CreatedAt, review.AuthorID)
	if err != nil {
		log.Printf("Hash computation failed for review %d, using fallback digest: %v", id, err)
		hash = e.hasher.FallbackDigest()
	}

	if e.content != nil {
		e.archive(review)
	}

	if err := e.store.ApplyEnrichment(id, result, hash); err != nil {
		return err
	}

	if e.broadcaster != nil {
		if updated, err := e.store.GetByID(id); err == nil {
			e.broadcaster.BroadcastReviewUpdate(updated)
		}
	}

	return nil
}

// archive stores the hashed field set in the content-address store, best
// effort only.
func (e *Enricher) archive(review *models.Review) {
	payload, err := json.Marshal(map[string]interface{}{
		"title":    review.Title,
		"content":  review.Content,
		"rating":   review.Rating,
		"authorId": review.AuthorID,
	})
	if err != nil {
		return
	}
	if _, err := e.content.Put(payload); err != nil {
		log.Printf("Content archive failed for review %d: %v", review.ID, err)
	}
}

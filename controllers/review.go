package controllers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/raghav0014/AI-Feedback/middleware"
	"github.com/raghav0014/AI-Feedback/models"
	"github.com/raghav0014/AI-Feedback/services"
	"github.com/raghav0014/AI-Feedback/utils"
)

// LiveFeed is the slice of the websocket hub the review endpoints need.
type LiveFeed interface {
	BroadcastReviewUpdate(review *models.Review)
	Notify(level, message string)
}

// ReviewController handles the review CRUD, moderation and counter
// endpoints.
type ReviewController struct {
	svc      *services.ReviewService
	enricher *services.Enricher
	verifier services.PurchaseVerifier
	feed     LiveFeed
	mailer   *utils.Mailer
	validate *validator.Validate

	enableQR            bool
	enableNotifications bool
}

func NewReviewController(svc *services.ReviewService, enricher *services.Enricher, verifier services.PurchaseVerifier, feed LiveFeed, mailer *utils.Mailer, enableQR, enableNotifications bool) *ReviewController {
	return &ReviewController{
		svc:                 svc,
		enricher:            enricher,
		verifier:            verifier,
		feed:                feed,
		mailer:              mailer,
		validate:            validator.New(),
		enableQR:            enableQR,
		enableNotifications: enableNotifications,
	}
}

// List returns a filtered, paginated page of reviews. Non-admin callers
// only ever see approved reviews, whatever status they ask for.
func (r *ReviewController) List(c *fiber.Ctx) error {
	filter := services.ReviewFilter{
		Status:    models.ReviewStatus(c.Query("status")),
		Category:  c.Query("category"),
		Sentiment: models.Sentiment(c.Query("sentiment")),
		Rating:    c.QueryInt("rating"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 10),
	}

	if !middleware.IsAdminRole(c) {
		filter.Status = models.StatusApproved
	}

	page, servedBy, err := r.svc.LoadReviews(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"reviews": page.Reviews,
		"pagination": fiber.Map{
			"total": page.Total,
			"page":  page.Page,
			"limit": page.Limit,
			"pages": page.Pages,
		},
		"served_by": servedBy,
	})
}

// Get returns a single review and counts the visit.
func (r *ReviewController) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return badRequest(c, "Invalid review ID")
	}

	review, servedBy, err := r.svc.GetReview(c.UserContext(), uint(id))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"review":    review,
		"served_by": servedBy,
	})
}

type createReviewInput struct {
	ProductName string `json:"productName" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Content     string `json:"content" validate:"required,min=10,max=2000"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	QRCode      string `json:"qrCode"`
}

// Create submits a new review and fires the enrichment pipeline. The
// response carries the default enrichment fields; results land later.
func (r *ReviewController) Create(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user ID",
		})
	}

	input := new(createReviewInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid review data")
	}
	if err := r.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Review validation failed",
			"errors":  validationMessages(err),
		})
	}

	review := &models.Review{
		AuthorID:    userID,
		ProductName: input.ProductName,
		Category:    input.Category,
		Title:       input.Title,
		Content:     input.Content,
		Rating:      input.Rating,
	}

	// Purchase verification runs before submission; a failed or skipped
	// verification still allows the review, just unverified.
	if r.enableQR && input.QRCode != "" {
		result, err := r.verifier.Verify(c.UserContext(), input.QRCode)
		if err == nil && result.Verified {
			review.IsVerified = true
		}
	}

	servedBy, err := r.svc.Submit(c.UserContext(), review)
	if err != nil {
		return fail(c, err)
	}

	r.enricher.EnrichAsync(review.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"review":    review,
		"served_by": servedBy,
	})
}

type updateReviewInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

// Update lets the author or an admin edit a review. A content change sends
// the review back to pending and re-triggers enrichment. Non-admins may
// only edit reviews still pending.
func (r *ReviewController) Update(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user ID",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return badRequest(c, "Invalid review ID")
	}

	review, err := r.svc.Store().GetByID(uint(id))
	if err != nil {
		return fail(c, err)
	}

	isAdmin := middleware.IsAdminRole(c)
	if review.AuthorID != userID && !isAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "You don't have permission to update this review",
		})
	}
	if !isAdmin && review.Status != models.StatusPending {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Only pending reviews can be edited",
		})
	}

	input := updateReviewInput{
		Title:   review.Title,
		Content: review.Content,
		Rating:  review.Rating,
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid review data")
	}

	changed, err := r.svc.Store().UpdateContent(review, input.Title, input.Content, input.Rating)
	if err != nil {
		return fail(c, err)
	}
	if changed {
		r.enricher.EnrichAsync(review.ID)
	}

	updated, err := r.svc.Store().GetByID(review.ID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"review":  updated,
	})
}

// Delete removes a review (author or admin only).
func (r *ReviewController) Delete(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user ID",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return badRequest(c, "Invalid review ID")
	}

	review, err := r.svc.Store().GetByID(uint(id))
	if err != nil {
		return fail(c, err)
	}

	if review.AuthorID != userID && !middleware.IsAdminRole(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "You don't have permission to delete this review",
		})
	}

	if err := r.svc.Store().Delete(review.ID); err != nil {
		return fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type setStatusInput struct {
	Status          models.ReviewStatus `json:"status"`
	ModerationNotes string              `json:"moderationNotes"`
}

// SetStatus applies a moderation decision (admin only), adjusts the
// author's reputation on a real transition and notifies the author.
func (r *ReviewController) SetStatus(c *fiber.Ctx) error {
	moderatorID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user ID",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return badRequest(c, "Invalid review ID")
	}

	input := new(setStatusInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}

	review, err := r.svc.Store().SetStatus(uint(id), input.Status, moderatorID, input.ModerationNotes)
	if err != nil {
		return fail(c, err)
	}

	updated, err := r.svc.Store().GetByID(review.ID)
	if err != nil {
		return fail(c, err)
	}

	if r.feed != nil {
		r.feed.BroadcastReviewUpdate(updated)
	}
	if r.enableNotifications && r.mailer != nil {
		go r.sendModerationEmail(updated)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"review":  updated,
	})
}

// MarkHelpful records one helpful vote; a repeat is a conflict.
func (r *ReviewController) MarkHelpful(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user ID",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return badRequest(c, "Invalid review ID")
	}

	helpful, err := r.svc.Store().MarkHelpful(uint(id), userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"helpful": helpful,
	})
}

// Report files one report per user against a review.
func (r *ReviewController) Report(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user ID",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return badRequest(c, "Invalid review ID")
	}

	type reportInput struct {
		Reason string `json:"reason"`
	}
	input := new(reportInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}

	if err := r.svc.Store().Report(uint(id), userID, input.Reason); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Review reported",
	})
}

func (r *ReviewController) sendModerationEmail(review *models.Review) {
	var author models.User
	if err := r.svc.Store().DB().First(&author, review.AuthorID).Error; err != nil {
		log.Printf("Failed to load author for moderation email: %v", err)
		return
	}

	if err := r.mailer.SendModerationEmail(author.Email, author.Name, review); err != nil {
		log.Printf("Failed to send moderation email to %s: %v", author.Email, err)
	}
}

func validationMessages(err error) []string {
	var messages []string
	var invalid []validator.FieldError
	if verrs, ok := err.(validator.ValidationErrors); ok {
		invalid = verrs
	}
	for _, fe := range invalid {
		messages = append(messages, fe.Field()+" failed on "+fe.Tag())
	}
	if len(messages) == 0 {
		messages = append(messages, err.Error())
	}
	return messages
}

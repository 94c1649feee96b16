package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/raghav0014/AI-Feedback/models"
	"github.com/raghav0014/AI-Feedback/services"
	"github.com/raghav0014/AI-Feedback/utils"
	"github.com/raghav0014/AI-Feedback/ws"
)

// Scheduler runs the background jobs: periodic analytics pushes to the
// admin dashboard and a daily moderation digest.
type Scheduler struct {
	db        *gorm.DB
	analytics *services.AnalyticsService
	hub       *ws.Hub
	mailer    *utils.Mailer
	notify    bool
	cron      *cron.Cron
}

func NewScheduler(db *gorm.DB, analytics *services.AnalyticsService, hub *ws.Hub, mailer *utils.Mailer, notify bool) *Scheduler {
	return &Scheduler{
		db:        db,
		analytics: analytics,
		hub:       hub,
		mailer:    mailer,
		notify:    notify,
		cron:      cron.New(),
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("*/5 * * * *", s.pushAnalytics); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 9 * * *", s.sendPendingDigest); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("Cron job scheduler started")
	return nil
}

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// pushAnalytics broadcasts a fresh report to connected admin clients.
func (s *Scheduler) pushAnalytics() {
	if s.hub.ClientCount() == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := s.analytics.Report(ctx, "30d")
	if err != nil {
		log.Printf("Error building analytics report: %v", err)
		return
	}
	s.hub.BroadcastAnalytics(report)
}

// sendPendingDigest mails every admin a count of reviews awaiting moderation.
func (s *Scheduler) sendPendingDigest() {
	if !s.notify || s.mailer == nil || !s.mailer.Configured() {
		return
	}

	var pending int64
	if err := s.db.Model(&models.Review{}).
		Where("status = ?", models.StatusPending).
		Count(&pending).Error; err != nil {
		log.Printf("Error counting pending reviews: %v", err)
		return
	}
	if pending == 0 {
		return
	}

	var admins []models.User
	if err := s.db.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		log.Printf("Error fetching admins for digest: %v", err)
		return
	}

	for _, admin := range admins {
		if err := s.mailer.SendPendingDigest(admin.Email, admin.Name, pending); err != nil {
			log.Printf("Failed to send digest to %s: %v", admin.Email, err)
			continue
		}
		log.Printf("Sent moderation digest to %s (%d pending)", admin.Email, pending)
	}
}

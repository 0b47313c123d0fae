package scheduler

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mediate-labs/mediation-api/databases"
	"github.com/mediate-labs/mediation-api/models"
)

// Scheduler handles periodic background jobs: mediator stats rollups and
// meeting reminder emails
type Scheduler struct {
	cron      *cron.Cron
	MDB       databases.MediatorDatabase
	CaseDB    databases.CaseDatabase
	MeetingDB databases.MeetingDatabase
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	mDB databases.MediatorDatabase,
	caseDB databases.CaseDatabase,
	meetingDB databases.MeetingDatabase,
) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		MDB:       mDB,
		CaseDB:    caseDB,
		MeetingDB: meetingDB,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Recompute mediator track records nightly at 2 AM UTC
	_, err := s.cron.AddFunc("0 2 * * *", s.rollupMediatorStats)
	if err != nil {
		zap.S().Errorw("failed to register mediator stats job", "error", err)
	}

	// Send meeting reminders daily at 8 AM UTC
	_, err = s.cron.AddFunc("0 8 * * *", s.sendMeetingReminders)
	if err != nil {
		zap.S().Errorw("failed to register meeting reminder job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Mediation scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Mediation scheduler stopped")
}

// rollupMediatorStats recomputes each mediator's professional track record
// from the cases collection: casesWon is the resolved case count and
// successRate is resolved over total, as a percentage.
func (s *Scheduler) rollupMediatorStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	zap.S().Info("Running mediator stats rollup job")

	mediators, err := s.MDB.Find(ctx, bson.D{})
	if err != nil {
		zap.S().Errorw("failed to list mediators for stats rollup", "error", err)
		return
	}

	for _, m := range mediators {
		mediatorID := m.ID.Hex()

		total, err := s.CaseDB.CountDocuments(ctx, bson.M{"case.mediatorID": mediatorID})
		if err != nil {
			zap.S().Errorw("failed to count cases for mediator", "mediatorID", mediatorID, "error", err)
			continue
		}
		resolved, err := s.CaseDB.CountDocuments(ctx, bson.M{
			"case.mediatorID": mediatorID,
			"case.status":     models.CaseStatusResolved,
		})
		if err != nil {
			zap.S().Errorw("failed to count resolved cases for mediator", "mediatorID", mediatorID, "error", err)
			continue
		}
		if total == 0 {
			continue
		}

		successRate := float64(resolved) / float64(total) * 100

		_, err = s.MDB.UpdateOne(ctx, bson.M{"_id": m.ID}, bson.M{
			"$set": bson.M{
				"mediator.professionalDetails.casesWon":    resolved,
				"mediator.professionalDetails.successRate": successRate,
				"mediator.updatedAt":                       primitive.NewDateTimeFromTime(time.Now()),
			},
		})
		if err != nil {
			zap.S().Errorw("failed to update mediator stats", "mediatorID", mediatorID, "error", err)
			continue
		}
		zap.S().Debugw("mediator stats updated",
			"mediatorID", mediatorID,
			"casesWon", resolved,
			"successRate", successRate)
	}
}

// sendMeetingReminders emails each mediator about their meetings scheduled for
// today
func (s *Scheduler) sendMeetingReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		zap.S().Warn("SENDGRID_API_KEY not set, skipping meeting reminders")
		return
	}

	zap.S().Info("Running meeting reminder job")

	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.Add(24 * time.Hour)

	meetings, err := s.MeetingDB.Find(ctx, bson.M{
		"meeting.status": models.MeetingStatusScheduled,
		"meeting.meetingDate": bson.M{
			"$gte": primitive.NewDateTimeFromTime(startOfDay),
			"$lt":  primitive.NewDateTimeFromTime(endOfDay),
		},
	})
	if err != nil {
		zap.S().Errorw("failed to find today's meetings", "error", err)
		return
	}

	client := sendgrid.NewSendClient(apiKey)
	from := mail.NewEmail("Mediation Platform", os.Getenv("SENDGRID_FROM_EMAIL"))

	for _, meeting := range meetings {
		mID, err := primitive.ObjectIDFromHex(meeting.Details.MediatorID)
		if err != nil {
			continue
		}
		mediator, err := s.MDB.FindOne(ctx, bson.M{"_id": mID})
		if err != nil || mediator.Details.Email == "" {
			continue
		}

		to := mail.NewEmail(mediator.Details.Name, mediator.Details.Email)
		subject := "Mediation meeting reminder"
		plainText := "You have a mediation meeting scheduled today at " +
			meeting.Details.MeetingDate.Time().UTC().Format(time.RFC1123) +
			" for case " + meeting.Details.CaseID + "."
		message := mail.NewSingleEmail(from, subject, to, plainText, "")

		if _, err := client.Send(message); err != nil {
			zap.S().Errorw("failed to send meeting reminder",
				"meetingID", meeting.ID.Hex(),
				"error", err)
			continue
		}
		zap.S().Debugw("meeting reminder sent",
			"meetingID", meeting.ID.Hex(),
			"mediatorID", meeting.Details.MediatorID)
	}
}

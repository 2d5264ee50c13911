// Package main seeds demo data through the same repositories the server
// uses. Bulk path: per-row failures are logged and skipped, unlike request
// paths where store errors surface to the caller.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/gatherly/backend/config"
	"github.com/gatherly/backend/internal/accounts"
	"github.com/gatherly/backend/internal/attendees"
	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/organizations"
	"github.com/gatherly/backend/pkg/database"
)

var (
	accountCount  = flag.Int("accounts", 50, "number of accounts to seed")
	orgCount      = flag.Int("orgs", 5, "number of organizations to seed")
	eventsPerOrg  = flag.Int("events-per-org", 10, "events per organization")
	rsvpRate      = flag.Float64("rsvp-rate", 0.7, "fraction of attendees that RSVP per event")
	membersPerOrg = flag.Int("members-per-org", 15, "memberships per organization")
)

func main() {
	flag.Parse()
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	accountRepo := accounts.NewRepository(pool)
	orgRepo := organizations.NewRepository(pool)
	attendeeRepo := attendees.NewRepository(pool)
	eventRepo := events.NewRepository(pool)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var seededAccounts []*models.Account
	for i := 0; i < *accountCount; i++ {
		a := &models.Account{
			ExternalID: fmt.Sprintf("seed-user-%03d", i),
			Email:      fmt.Sprintf("user%03d@example.com", i),
		}
		if err := accountRepo.Upsert(ctx, a); err != nil {
			logger.Warn("seed account", zap.String("external_id", a.ExternalID), zap.Error(err))
			continue
		}
		seededAccounts = append(seededAccounts, a)
	}
	logger.Info("accounts seeded", zap.Int("count", len(seededAccounts)))
	if len(seededAccounts) == 0 {
		logger.Fatal("no accounts seeded, giving up")
	}

	roles := []string{models.RoleMember, models.RoleMember, models.RoleOrganizer, models.RoleAdmin}

	var seededEvents []*models.Event
	for i := 0; i < *orgCount; i++ {
		owner := seededAccounts[rng.Intn(len(seededAccounts))]
		org := &models.Organization{
			OwnerAccountID: owner.ID,
			Name:           fmt.Sprintf("Demo Org %d", i),
			Slug:           fmt.Sprintf("demo-org-%d", i),
		}
		existing, err := orgRepo.GetBySlug(ctx, org.Slug)
		if err != nil {
			logger.Warn("seed org lookup", zap.String("slug", org.Slug), zap.Error(err))
			continue
		}
		if existing != nil {
			org = existing
		} else if err := orgRepo.Create(ctx, org); err != nil {
			logger.Warn("seed org", zap.String("slug", org.Slug), zap.Error(err))
			continue
		}
		m := &models.Membership{OrganizationID: org.ID, AccountID: owner.ID, Role: models.RoleAdmin}
		if err := orgRepo.UpsertMember(ctx, m); err != nil {
			logger.Warn("seed owner membership", zap.String("slug", org.Slug), zap.Error(err))
		}
		for j := 0; j < *membersPerOrg; j++ {
			acct := seededAccounts[rng.Intn(len(seededAccounts))]
			m := &models.Membership{
				OrganizationID: org.ID,
				AccountID:      acct.ID,
				Role:           roles[rng.Intn(len(roles))],
			}
			if err := orgRepo.UpsertMember(ctx, m); err != nil {
				logger.Warn("seed membership", zap.String("slug", org.Slug), zap.Error(err))
			}
		}
		for j := 0; j < *eventsPerOrg; j++ {
			start := time.Now().AddDate(0, 0, rng.Intn(60)-10).Truncate(time.Hour)
			end := start.Add(time.Duration(1+rng.Intn(4)) * time.Hour)
			capacity := 20 + rng.Intn(200)
			e := &models.Event{
				OrganizationID: org.ID,
				Title:          fmt.Sprintf("%s Meetup #%d", org.Name, j+1),
				Description:    "Seeded demo event",
				StartTime:      start,
				EndTime:        &end,
				Location:       fmt.Sprintf("Hall %d", 1+rng.Intn(9)),
				Capacity:       &capacity,
			}
			if err := eventRepo.Create(ctx, e); err != nil {
				logger.Warn("seed event", zap.String("title", e.Title), zap.Error(err))
				continue
			}
			seededEvents = append(seededEvents, e)
		}
	}
	logger.Info("events seeded", zap.Int("count", len(seededEvents)))

	var seededAttendees []*models.Attendee
	for i, acct := range seededAccounts {
		a := &models.Attendee{
			AccountID: acct.ID,
			FirstName: fmt.Sprintf("Sam%03d", i),
			LastName:  "Seed",
		}
		if err := attendeeRepo.Create(ctx, a); err != nil {
			logger.Warn("seed attendee", zap.String("account", acct.ExternalID), zap.Error(err))
			continue
		}
		seededAttendees = append(seededAttendees, a)
	}
	logger.Info("attendees seeded", zap.Int("count", len(seededAttendees)))

	statuses := []string{models.StatusGoing, models.StatusGoing, models.StatusMaybe, models.StatusNotGoing}
	rsvps := 0
	for _, e := range seededEvents {
		for _, a := range seededAttendees {
			if rng.Float64() > *rsvpRate {
				continue
			}
			status := statuses[rng.Intn(len(statuses))]
			guests := 0
			if status == models.StatusGoing {
				guests = rng.Intn(4)
			}
			res := &models.Reservation{EventID: e.ID, AttendeeID: a.ID, Status: status, Guests: guests}
			if err := eventRepo.UpsertReservation(ctx, res); err != nil {
				logger.Warn("seed rsvp", zap.String("event", e.Title), zap.Error(err))
				continue
			}
			rsvps++
		}
	}
	logger.Info("reservations seeded", zap.Int("count", rsvps))
}

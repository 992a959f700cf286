package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/Clinicreportanalytics/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/Clinicreportanalytics/internal/infrastructure/observability"
	"github.com/zatekoja/Clinicreportanalytics/pkg/config"
)

// Seeds the referral partner registry. Partner rows come from this list, not
// from report uploads: the resolver only matches parsed clinic names against
// partners that already exist.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	observability.InitLogger("seed", cfg.Server.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	ctx := context.Background()
	db := pgClient.DB()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := db.ExecContext(ctx, `
			TRUNCATE TABLE
				appointment_records,
				sync_history,
				referral_partners
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	partners := []string{
		"Sunset Animal Hospital",
		"Valley Pet Clinic",
		"Venice Animal Clinic",
		"Sherman Oaks Veterinary Group",
		"Van Nuys Pet Medical Center",
		"Studio City Animal Hospital",
		"Westside Dog and Cat Hospital",
		"Encino Veterinary Center",
		"Burbank Pet Care Clinic",
		"Culver City Animal Hospital",
	}

	seeded := 0
	for _, name := range partners {
		result, err := db.ExecContext(
			ctx,
			`INSERT INTO referral_partners (id, name, total_visits, total_revenue, created_at, updated_at)
			 VALUES ($1, $2, 0, 0, NOW(), NOW())
			 ON CONFLICT (name) DO NOTHING`,
			uuid.NewString(),
			name,
		)
		if err != nil {
			log.Error().Err(err).Str("partner", name).Msg("failed to seed partner")
			continue
		}
		if n, err := result.RowsAffected(); err == nil && n > 0 {
			seeded++
		}
	}

	log.Info().Int("seeded", seeded).Int("total", len(partners)).Msg("partner registry seeding completed")
}

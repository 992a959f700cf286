package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/Clinicreportanalytics/internal/adapters/database"
	"github.com/zatekoja/Clinicreportanalytics/internal/application/services"
	"github.com/zatekoja/Clinicreportanalytics/internal/classify"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
	"github.com/zatekoja/Clinicreportanalytics/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/Clinicreportanalytics/internal/infrastructure/observability"
	"github.com/zatekoja/Clinicreportanalytics/internal/match"
	"github.com/zatekoja/Clinicreportanalytics/internal/reports"
	"github.com/zatekoja/Clinicreportanalytics/pkg/config"
)

// The importer loads report files straight from disk, for backfills and for
// operating without the HTTP surface.
func main() {
	var trackingGlob string
	var referralGlob string
	var mode string

	flag.StringVar(&trackingGlob, "tracking", "", "Glob of weekly tracking CSV files to ingest")
	flag.StringVar(&referralGlob, "referrals", "", "Glob of referral report text files; triggers a full stats rebuild")
	flag.StringVar(&mode, "mode", "skip", "Ingest mode for tracking files: check, skip or replace")
	flag.Parse()

	if trackingGlob == "" && referralGlob == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	recordAdapter := database.NewAppointmentRecordAdapter(pgClient)
	partnerAdapter := database.NewPartnerAdapter(pgClient)
	syncHistoryAdapter := database.NewSyncHistoryAdapter(pgClient)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()

	if trackingGlob != "" {
		layout := reports.DefaultReportLayout()
		layout.LocationCodes = cfg.Reports.LocationCodes
		layout.LocationNames = cfg.Reports.LocationNames
		layout.PivotYear = cfg.Reports.ShortDateYear
		layout.SourceKind = cfg.Ingest.SourceKind
		parser := reports.NewWeeklyParser(layout)
		classifier := classify.NewClassifier(nil)

		svc := services.NewIngestionService(
			recordAdapter, syncHistoryAdapter, cfg.Ingest.ChunkSize, cfg.Ingest.SourceKind)

		files := mustGlob(trackingGlob)
		for _, file := range files {
			ingestTrackingFile(ctx, svc, parser, classifier, file, services.IngestMode(mode))
		}
	}

	if referralGlob != "" {
		referralCfg := reports.DefaultReferralConfig()
		referralCfg.BrandMarker = cfg.Reports.BrandMarker
		referralCfg.BrandLocation = cfg.Reports.BrandLocationToken
		parser := reports.NewReferralParser(referralCfg)

		matchOpts := match.DefaultOptions()
		matchOpts.Threshold = cfg.Match.Threshold
		resolver := match.NewResolver(matchOpts)

		svc := services.NewReferralImportService(partnerAdapter, syncHistoryAdapter, parser, resolver)

		files := mustGlob(referralGlob)
		docs := make([]services.ReferralReport, 0, len(files))
		for _, file := range files {
			text, err := os.ReadFile(file)
			if err != nil {
				log.Fatal().Err(err).Str("file", file).Msg("failed to read referral report")
			}
			docs = append(docs, services.ReferralReport{
				FileName: filepath.Base(file),
				Text:     string(text),
			})
		}

		result, err := svc.Rebuild(ctx, docs...)
		if err != nil {
			log.Fatal().Err(err).Msg("referral rebuild failed")
		}
		log.Info().
			Int("reports", result.Reports).
			Int("partners_updated", result.PartnersUpdated).
			Int("total_visits", result.TotalVisits).
			Float64("total_revenue", result.TotalRevenue).
			Int("unmatched", len(result.Unmatched)).
			Msg("referral rebuild finished")
		for _, u := range result.Unmatched {
			log.Warn().Str("clinic", u.Name).Int("visits", u.Visits).Msg("clinic left unmatched")
		}
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("import complete")
}

func ingestTrackingFile(
	ctx context.Context,
	svc *services.IngestionService,
	parser *reports.WeeklyParser,
	classifier *classify.Classifier,
	file string,
	mode services.IngestMode,
) {
	text, err := os.ReadFile(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("failed to read tracking report")
	}

	report, err := parser.Parse(string(text))
	if err != nil {
		log.Error().Err(err).Str("file", file).Msg("failed to parse tracking report")
		return
	}

	records := parser.Flatten(report, "")
	booked := make([]*entities.AppointmentRecord, 0, len(records))
	for _, rec := range records {
		if rec.IsAvailability {
			continue
		}
		if mapping, ok := classifier.Classify(rec.AppointmentType); ok {
			rec.ServiceCategory = mapping.Category
			rec.Department = mapping.Department
		}
		booked = append(booked, rec)
	}
	if len(booked) == 0 {
		log.Warn().Str("file", file).Msg("no booked appointments in report, skipping")
		return
	}

	meta := services.UploadMeta{
		FileName:    filepath.Base(file),
		ContentHash: contentHash(string(text)),
	}

	result, err := svc.Ingest(ctx, booked, mode, meta)
	if err != nil {
		log.Error().Err(err).Str("file", file).Msg("ingestion failed")
		return
	}

	log.Info().
		Str("file", file).
		Str("batch_id", result.BatchID).
		Str("mode", string(result.Mode)).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Strs("overlapping_dates", result.OverlappingDates).
		Msg("tracking report ingested")
}

func mustGlob(pattern string) []string {
	files, err := filepath.Glob(pattern)
	if err != nil {
		log.Fatal().Err(err).Str("pattern", pattern).Msg("invalid glob pattern")
	}
	if len(files) == 0 {
		log.Fatal().Str("pattern", pattern).Msg("no files match pattern")
	}
	return files
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

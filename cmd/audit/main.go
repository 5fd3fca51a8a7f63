package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/carebridge/clinic-backend/internal/audit"
	"github.com/carebridge/clinic-backend/internal/config"
	"github.com/carebridge/clinic-backend/internal/db"
)

func main() {
	fix := flag.Bool("fix", false, "repair slots with a missing status field")
	flag.Parse()

	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "audit").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("config load error")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("postgres connection error")
		os.Exit(1)
	}
	defer pool.Close()

	auditor := audit.NewAuditor(audit.NewPgSource(pool), log)

	runCtx, cancelRun := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelRun()

	report, err := auditor.ScanSlots(runCtx)
	if err != nil {
		log.Error().Err(err).Msg("slot scan failed")
		os.Exit(1)
	}
	for _, issue := range report.Errors {
		log.Warn().Str("slot_id", issue.SlotID.String()).Str("reason", issue.Reason).Msg("invalid slot")
	}

	if *fix {
		fixed, err := auditor.FixMissingStatusFields(runCtx)
		if err != nil {
			log.Error().Err(err).Msg("status repair failed")
			os.Exit(1)
		}
		log.Info().Int("fixed", fixed).Msg("missing status fields repaired")
	}

	divergences, err := auditor.AuditProfileDivergence(runCtx)
	if err != nil {
		log.Error().Err(err).Msg("profile divergence audit failed")
		os.Exit(1)
	}
	for _, d := range divergences {
		log.Warn().
			Str("uid", d.UID.String()).
			Str("role", d.Role).
			Str("kind", string(d.Kind)).
			Str("identity_value", d.IdentityValue).
			Str("profile_value", d.ProfileValue).
			Msg("profile divergence")
	}

	log.Info().
		Int("slots_valid", report.Valid).
		Int("slots_invalid", report.Invalid).
		Int("profile_divergences", len(divergences)).
		Msg("audit complete")
}

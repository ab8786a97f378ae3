package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"snax.fit/snax/internal/cli"
	"snax.fit/snax/internal/logging"
	"snax.fit/snax/internal/requests"
	"snax.fit/snax/internal/snack"
)

func runRequest(args []string) int {
	fs := flag.NewFlagSet("request", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	teamID := fs.String("team", "", "Team id")
	userID := fs.String("user", "", "Requesting user id")
	userName := fs.String("user-name", "", "Requesting user display name")
	locationID := fs.String("location", "", "Location id")
	name := fs.String("name", "", "Snack name")
	brand := fs.String("brand", "", "Snack brand")
	description := fs.String("description", "", "Snack description")
	upc := fs.String("upc", "", "Snack UPC")
	text := fs.String("text", "", "Original request text (defaults to the snack name)")
	mergeConfirmed := fs.Bool("merge-confirmed", false, "Treat a similar open request as the same snack")
	forceNew := fs.Bool("force-new", false, "Skip matching and create a new request")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	missing := []string{}
	for flagName, value := range map[string]string{
		"team": *teamID, "user": *userID, "location": *locationID, "name": *name,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, "--"+flagName)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "missing required flags: %s\n", strings.Join(missing, ", "))
		return 2
	}
	if *mergeConfirmed && *forceNew {
		fmt.Fprintln(os.Stderr, "--merge-confirmed and --force-new are mutually exclusive")
		return 2
	}

	originalText := strings.TrimSpace(*text)
	if originalText == "" {
		originalText = strings.TrimSpace(*name)
	}

	cfg, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel, pool, err := connectPool(cfg, *timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	dedup := requests.NewDeduplicator(requests.NewPGStore(pool), logger, requests.Thresholds{
		MinNameSimilarity:        cfg.MinNameSimilarity,
		MinDescriptionSimilarity: cfg.MinDescriptionSimilarity,
		BrandBoostMultiplier:     cfg.BrandBoostMultiplier,
	})

	requesterName := strings.TrimSpace(*userName)
	if requesterName == "" {
		requesterName = strings.TrimSpace(*userID)
	}

	result, err := dedup.Request(ctx, requests.Intent{
		Requester: snack.Requester{Name: requesterName, UserID: *userID, TeamID: *teamID},
		Snack: snack.Snack{
			Name:        strings.TrimSpace(*name),
			Brand:       strings.TrimSpace(*brand),
			Description: strings.TrimSpace(*description),
			UPC:         strings.TrimSpace(*upc),
		},
		Location:       snack.Location{ID: strings.TrimSpace(*locationID)},
		OriginalText:   originalText,
		MergeConfirmed: *mergeConfirmed,
		ForceNew:       *forceNew,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		return 1
	}

	if err := printJSON(result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	return 0
}

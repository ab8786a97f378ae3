package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"snax.fit/snax/internal/cli"
	"snax.fit/snax/internal/requests"
	"snax.fit/snax/internal/snack"
)

func runRequests(args []string) int {
	fs := flag.NewFlagSet("requests", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	teamID := fs.String("team", "", "Team id")
	locationID := fs.String("location", "", "Location id")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if strings.TrimSpace(*teamID) == "" || strings.TrimSpace(*locationID) == "" {
		fmt.Fprintln(os.Stderr, "--team and --location are required")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	cfg, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel, pool, err := connectPool(cfg, *timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	store := requests.NewPGStore(pool)
	items, err := store.List(ctx, strings.TrimSpace(*teamID), snack.Location{ID: strings.TrimSpace(*locationID)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list requests: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(items); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID,
			truncateForTable(item.Snack.Name, 48),
			truncateForTable(item.Snack.Brand, 24),
			strconv.Itoa(len(item.Requesters)),
			item.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	if err := writeTable([]string{"ID", "NAME", "BRAND", "VOTES", "CREATED"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}

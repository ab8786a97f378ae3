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
)

func runLocations(args []string) int {
	fs := flag.NewFlagSet("locations", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	teamID := fs.String("team", "", "Team id")
	addName := fs.String("add", "", "Add a location with this name")
	renameID := fs.String("rename", "", "Location id to rename (requires --name)")
	newName := fs.String("name", "", "New name for --rename")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if strings.TrimSpace(*teamID) == "" {
		fmt.Fprintln(os.Stderr, "--team is required")
		return 2
	}
	if strings.TrimSpace(*addName) != "" && strings.TrimSpace(*renameID) != "" {
		fmt.Fprintln(os.Stderr, "--add and --rename are mutually exclusive")
		return 2
	}
	if strings.TrimSpace(*renameID) != "" && strings.TrimSpace(*newName) == "" {
		fmt.Fprintln(os.Stderr, "--rename requires --name")
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

	manager := requests.NewLocationManager(requests.NewPGLocationStore(pool), logger)
	team := strings.TrimSpace(*teamID)

	switch {
	case strings.TrimSpace(*addName) != "":
		location, err := manager.AddLocationForTeam(ctx, team, *addName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to add location: %v\n", err)
			return 1
		}
		fmt.Printf("added %s (%s)\n", location.Name, location.ID)
		return 0

	case strings.TrimSpace(*renameID) != "":
		location, err := manager.RenameLocation(ctx, team, strings.TrimSpace(*renameID), *newName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to rename location: %v\n", err)
			return 1
		}
		fmt.Printf("renamed %s to %s\n", location.ID, location.Name)
		return 0

	default:
		locations, err := manager.ListForTeam(ctx, team)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list locations: %v\n", err)
			return 1
		}

		if outputFormat == outputFormatJSON {
			if err := printJSON(locations); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
				return 1
			}
			return 0
		}

		rows := make([][]string, 0, len(locations))
		for _, location := range locations {
			rows = append(rows, []string{location.ID, location.Name})
		}
		if err := writeTable([]string{"ID", "NAME"}, rows); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
			return 1
		}
		return 0
	}
}

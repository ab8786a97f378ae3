package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"snax.fit/snax/internal/cli"
	"snax.fit/snax/internal/globaltime"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	started := globaltime.UTC()
	_, cancel, pool, err := connectPool(cfg, *timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	fmt.Printf("database ok (%s)\n", globaltime.UTC().Sub(started).Round(time.Millisecond))
	return 0
}

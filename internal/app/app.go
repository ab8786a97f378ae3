// Package app implements the snax command line interface.
package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "search":
		return runSearch(args[1:])
	case "request":
		return runRequest(args[1:])
	case "requests":
		return runRequests(args[1:])
	case "locations":
		return runLocations(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "snax CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  snax <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health     Verify database connectivity")
	fmt.Fprintln(os.Stderr, "  search     Search the configured product engines")
	fmt.Fprintln(os.Stderr, "  request    Submit one snack request decision")
	fmt.Fprintln(os.Stderr, "  requests   List open requests for a team location")
	fmt.Fprintln(os.Stderr, "  locations  List, add, or rename team locations")
	fmt.Fprintln(os.Stderr, "  serve      Start the Echo API and webhook server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"snax <command> -h\" for command-specific flags.")
}

// Copyright 2025 The ContactServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the contact suggestion server and CLI application.

ContactServe answers address autocomplete queries for mail clients. It
folds mail and conversation records from a local database into a
deduplicated in-memory cache and ranks matches with a fixed tie-break
cascade: name-prefix, email-prefix, frequency, recency. Results are capped
and deterministic.

The server mode speaks msgpack over stdin/stdout for integration with mail
frontends. The cache rebuilds lazily once its TTL elapses, or eagerly when
the frontend reports that records changed. Usage events ("the user picked
this address") merge into the cache directly without a rebuild.

# Usage

Start the server with default settings:

	contactserve

Use a custom record database and enable debug mode:

	contactserve -db /path/to/records.db -d

Run in CLI mode for interactive testing:

	contactserve -c -limit 10

# Configuration

Runtime configuration is managed through a TOML file:

	[cache]
	ttl_seconds = 300
	default_limit = 8
	preserve_manual = false

	[server]
	max_limit = 32
	min_query = 1
	max_query = 120
	enable_filter = true

	[source]
	db_path = ""

The config file is automatically created with defaults if it doesn't
exist. preserve_manual controls whether manually recorded contacts survive
a rebuild that cannot re-derive them from the records.

# IPC Protocol

The server communicates via msgpack over stdin/stdout. Search requests are
processed synchronously with microsecond timing included in responses.

Send a search request:

	{"id": "req1", "q": "joh", "l": 8}

Receive ranked suggestions:

	{"id": "req1", "s": [{"e": "john@x.com", "d": "John Smith <john@x.com>", "r": 1}], "c": 1, "t": 145}

Usage events and refreshes:

	{"id": "u1", "action": "record_usage", "addr": "Pat <pat@x.com>"}
	{"id": "r1", "action": "refresh"}

# CLI Mode

CLI mode provides an interactive interface for testing and debugging the
ranking behavior. It reads queries from stdin and displays suggestions
with frequency and provenance information. This mode is primarily intended
for development; new ranking changes should be tested here first.

# Command Line Flags

The following flags control application behavior:

	-db string
	    Path to the mail record database (default: records.db in the config dir)
	-config string
	    Custom config file path
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of suggestions to return in CLI mode
	-no-filter
	    Disable input filtering for debugging
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bastiangx/contactserve/internal/cli"
	"github.com/bastiangx/contactserve/pkg/config"
	"github.com/bastiangx/contactserve/pkg/server"
	"github.com/bastiangx/contactserve/pkg/source"
	"github.com/bastiangx/contactserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	AppName = "contactserve"
	gh      = "https://github.com/bastiangx/contactserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaults := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	dbPath := flag.String("db", "", "Path to the mail record database")
	configPath := flag.String("config", "", "Custom config file path")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaults.CLI.DefaultLimit, "Number of suggestions to return in CLI mode")
	noFilter := flag.Bool("no-filter", defaults.CLI.DefaultNoFilter, "Disable input filtering (DBG only)")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activePath))

	resolvedDB, err := resolveDBPath(*dbPath, appConfig)
	if err != nil {
		log.Fatalf("Failed to resolve record database path: (%v)", err)
		os.Exit(1)
	}
	log.Debugf("Using record database at: %s", resolvedDB)

	records, err := source.NewSQLiteSource(resolvedDB)
	if err != nil {
		log.Fatalf("Failed to open record database: %v", err)
		os.Exit(1)
	}
	defer records.Close()

	resultLimit := appConfig.Cache.DefaultLimit
	if *cliMode && *limit > 0 {
		resultLimit = *limit
	}

	engine := suggest.NewEngine(records, suggest.Options{
		TTL:            appConfig.Cache.TTL(),
		Limit:          resultLimit,
		PreserveManual: appConfig.Cache.PreserveManual,
	})

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"minQuery", appConfig.Server.MinQuery,
			"maxQuery", appConfig.Server.MaxQuery,
			"limit", *limit,
			"noFilter", *noFilter)

		inputHandler := cli.NewInputHandler(engine, appConfig.Server.MinQuery, appConfig.Server.MaxQuery, *noFilter)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
			os.Exit(1)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(engine, appConfig)

	showStartupInfo(resolvedDB)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

// resolveDBPath picks the record database path: flag first, then config,
// then records.db next to the config file.
func resolveDBPath(flagPath string, cfg *config.Config) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if cfg.Source.DBPath != "" {
		return cfg.Source.DBPath, nil
	}
	configDir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "records.db"), nil
}

// printVersion shows the styled version banner.
func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()

	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["version"] = lipgloss.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})

	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ ContactServe ] Ranked contact suggestions for mail clients")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dbPath string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "==============")
	fmt.Fprintln(os.Stderr, " ContactServe ")
	fmt.Fprintln(os.Stderr, "==============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("record db: ( %s )", dbPath)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "==============")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}

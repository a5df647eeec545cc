package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/replisys/cdcgen/internal/config"
	"github.com/replisys/cdcgen/internal/generator"
	"github.com/replisys/cdcgen/internal/history"
	"github.com/replisys/cdcgen/internal/introspect"
	"github.com/replisys/cdcgen/internal/logging"
	"github.com/replisys/cdcgen/internal/progress"
	"github.com/replisys/cdcgen/internal/source"
	"github.com/replisys/cdcgen/internal/util"
	"github.com/replisys/cdcgen/internal/version"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:    version.Name,
		Usage:   version.Description,
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "cdcgen.yaml",
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: "text",
				Usage: "Log format (text, json)",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := logging.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			logging.SetLevel(level)
			logging.SetFormat(c.String("log-format"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Generate migration artifacts from sink config and table definitions",
				Action: runGenerate,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "table",
						Usage: "Only process tables whose name contains this substring",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Compute all artifacts and diagnostics without writing files",
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "Override the configured output directory",
					},
					&cli.StringFlag{
						Name:  "definitions",
						Usage: "Override the configured table-definitions directory",
					},
				},
			},
			{
				Name:   "introspect",
				Usage:  "Introspect source-table schemas into table-definition files",
				Action: runIntrospect,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "schema",
						Value: "dbo",
						Usage: "Comma-separated source schemas to introspect",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Override the configured table-definitions directory",
					},
				},
			},
			{
				Name:  "history",
				Usage: "List generation runs, or view details of a specific run",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "run",
						Usage: "Show details for a specific run ID",
					},
				},
				Action: showHistory,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// dbUser returns the grant target for generated permission statements.
func dbUser() string {
	if user := os.Getenv("CDC_DB_USER"); user != "" {
		return user
	}
	return generator.DefaultDBUser
}

// countMatchingTables mirrors the generator's filter so the progress bar
// total matches the tables actually processed.
func countMatchingTables(cfg *config.Config, filter string) int {
	n := 0
	for _, sink := range cfg.Sinks {
		for key := range sink.Tables {
			name := key
			for i := len(key) - 1; i >= 0; i-- {
				if key[i] == '.' {
					name = key[i+1:]
					break
				}
			}
			if filter == "" || util.ContainsFold(name, filter) {
				n++
			}
		}
	}
	return n
}

func runGenerate(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	defsDir := cfg.Output.DefinitionsDir
	if c.IsSet("definitions") {
		defsDir = c.String("definitions")
	}
	defs, err := source.LoadDefinitions(defsDir)
	if err != nil {
		return fmt.Errorf("failed to load table definitions: %w", err)
	}

	outputDir := cfg.Output.Dir
	if c.IsSet("output-dir") {
		outputDir = c.String("output-dir")
	}

	tracker := progress.New(countMatchingTables(cfg, c.String("table")))
	opts := generator.Options{
		TableFilter: c.String("table"),
		DryRun:      c.Bool("dry-run"),
		OutputDir:   outputDir,
		DBUser:      dbUser(),
		OnTable:     func(string) { tracker.Step() },
	}

	started := time.Now()
	res, err := generator.Generate(cfg, defs, opts)
	tracker.Finish()
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	for _, d := range res.Diagnostics {
		logging.Warn("%s: %s (%s)", d.Table, d.Message, d.Code)
	}

	if opts.DryRun {
		logging.Info("dry run: %d tables generated, %d skipped, %d warnings (no files written)",
			res.TablesGenerated, len(res.Skipped), res.Warnings())
		return nil
	}

	if err := res.Write(outputDir); err != nil {
		return fmt.Errorf("writing artifacts: %w", err)
	}

	if err := recordRun(cfg, res, outputDir, started); err != nil {
		// History is an audit convenience; a ledger failure must not fail
		// a run whose artifacts are already on disk.
		logging.Warn("could not record run history: %v", err)
	}

	logging.Info("%d tables generated, %d skipped, %d warnings -> %s",
		res.TablesGenerated, len(res.Skipped), res.Warnings(), outputDir)
	return nil
}

func recordRun(cfg *config.Config, res *generator.Result, outputDir string, started time.Time) error {
	store, err := history.Open(cfg.Output.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.RecordRun(history.Run{
		ID:              history.NewRunID(),
		StartedAt:       started,
		FinishedAt:      time.Now(),
		Status:          "success",
		TablesGenerated: res.TablesGenerated,
		TablesSkipped:   len(res.Skipped),
		Warnings:        res.Warnings(),
		OutputDir:       outputDir,
	})
}

func runIntrospect(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	schemas := util.SplitCSV(c.String("schema"))
	if len(schemas) == 0 {
		return fmt.Errorf("at least one schema is required")
	}

	defs, err := introspect.Run(context.Background(), cfg.Source, schemas)
	if err != nil {
		return fmt.Errorf("introspection failed: %w", err)
	}

	outDir := cfg.Output.DefinitionsDir
	if c.IsSet("out") {
		outDir = c.String("out")
	}
	if err := source.WriteDefinitions(outDir, defs); err != nil {
		return fmt.Errorf("writing table definitions: %w", err)
	}

	logging.Info("wrote %d table definitions -> %s", len(defs), outDir)
	return nil
}

func showHistory(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := history.Open(cfg.Output.HistoryPath)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	if runID := c.String("run"); runID != "" {
		run, err := store.GetRun(runID)
		if err != nil {
			return err
		}
		fmt.Printf("Run %s\n", run.ID)
		fmt.Printf("  started:   %s\n", run.StartedAt.Format(time.RFC3339))
		fmt.Printf("  finished:  %s\n", run.FinishedAt.Format(time.RFC3339))
		fmt.Printf("  status:    %s\n", run.Status)
		fmt.Printf("  generated: %d tables (%d skipped, %d warnings)\n",
			run.TablesGenerated, run.TablesSkipped, run.Warnings)
		fmt.Printf("  output:    %s\n", run.OutputDir)
		return nil
	}

	runs, err := store.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No generation runs recorded.")
		return nil
	}
	for _, run := range runs {
		fmt.Printf("%s  %s  %d generated / %d skipped / %d warnings\n",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.ID,
			run.TablesGenerated, run.TablesSkipped, run.Warnings)
	}
	return nil
}

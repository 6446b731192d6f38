// netquote - dependency-aware pricing calculator for network services
//
// Usage:
//
//	netquote calc --quote quote.json
//	netquote watch --quote quote.json
//	netquote components
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"netquote/internal/catalog"
	"netquote/internal/graph"
	"netquote/internal/history"
	"netquote/internal/orchestrator"
	"netquote/internal/quote"
	"netquote/internal/store"
	"netquote/internal/watch"
	"netquote/pkg/api"
	"netquote/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	app := &cli.App{
		Name:    "netquote",
		Usage:   "Network services quote calculator",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"NETQUOTE_LOG_LEVEL"},
			},
			&cli.DurationFlag{
				Name:    "debounce",
				Value:   30 * time.Millisecond,
				Usage:   "Debounce window for coalescing recalculations",
				EnvVars: []string{"NETQUOTE_DEBOUNCE"},
			},
			&cli.DurationFlag{
				Name:    "max-debounce",
				Value:   250 * time.Millisecond,
				Usage:   "Upper bound on coalescing under sustained edits",
				EnvVars: []string{"NETQUOTE_MAX_DEBOUNCE"},
			},
			&cli.StringFlag{
				Name:    "snapshot-dir",
				Usage:   "Directory for the local result snapshot (empty = no persistence)",
				EnvVars: []string{"NETQUOTE_SNAPSHOT_DIR"},
			},
		},

		Commands: []*cli.Command{
			calcCommand(),
			watchCommand(),
			componentsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func calcCommand() *cli.Command {
	return &cli.Command{
		Name:  "calc",
		Usage: "Calculate a quote once and print the price table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "quote",
				Usage:    "Path to the quote document",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			orch, provider, cleanup, err := buildCalculator(c)
			if err != nil {
				return err
			}
			defer cleanup()

			done := make(chan api.BatchEvent, 1)
			orch.OnBatch(func(e api.BatchEvent) {
				select {
				case done <- e:
				default:
				}
			})

			if err := scheduleQuote(orch, provider); err != nil {
				return err
			}
			orch.Flush()

			settleTimeout := platform.GetEnvDuration("NETQUOTE_CALC_TIMEOUT", 10*time.Second)
			select {
			case event := <-done:
				printResults(event.Results)
				fmt.Printf("\nBatch %s settled %d components in %s\n",
					event.BatchID, len(event.Results), event.Duration)
			case <-time.After(settleTimeout):
				return fmt.Errorf("calculation did not settle within %s", settleTimeout)
			}
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Recalculate continuously as the quote document is edited",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "quote",
				Usage:    "Path to the quote document",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			orch, provider, cleanup, err := buildCalculator(c)
			if err != nil {
				return err
			}
			defer cleanup()

			orch.OnBatch(func(e api.BatchEvent) {
				printResults(e.Results)
				fmt.Println()
			})

			if err := scheduleQuote(orch, provider); err != nil {
				return err
			}
			orch.Flush()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := watch.New(c.String("quote"), provider, orch, c.Duration("debounce"), nil)
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

func componentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "components",
		Usage: "List the component catalog with levels and dependencies",
		Action: func(c *cli.Context) error {
			g, err := graph.New(catalog.Definitions())
			if err != nil {
				return err
			}
			fmt.Printf("%-16s %-6s %-12s %s\n", "COMPONENT", "LEVEL", "CATEGORY", "DEPENDS ON")
			for _, id := range g.IDs() {
				def, _ := g.Definition(id)
				level, _ := g.Level(id)
				var deps []string
				for _, d := range def.DependsOn {
					if d.Kind == graph.DepAllEnabled {
						deps = append(deps, "(all enabled)")
					} else {
						deps = append(deps, d.ID)
					}
				}
				fmt.Printf("%-16s %-6d %-12s %s\n", id, level, def.Category, strings.Join(deps, ", "))
			}
			return nil
		},
	}
}

// buildCalculator assembles the orchestrator, quote provider, and
// optional snapshot persistence from CLI flags.
func buildCalculator(c *cli.Context) (*orchestrator.Orchestrator, *quote.FileProvider, func(), error) {
	logger := platform.InitLogger()

	provider, err := quote.LoadFile(c.String("quote"))
	if err != nil {
		return nil, nil, nil, err
	}

	orch, err := catalog.New(provider, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	orch.WithDebounce(c.Duration("debounce"), c.Duration("max-debounce")).
		WithHistoryCap(platform.GetEnvInt("NETQUOTE_HISTORY_CAP", history.DefaultCap))

	cleanup := func() { orch.Stop() }
	if dir := c.String("snapshot-dir"); dir != "" {
		snap, err := store.Open(dir, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open snapshot store: %w", err)
		}
		for id, result := range snap.LoadResults() {
			orch.SeedResult(id, result)
		}
		orch.OnResult(func(e api.ResultEvent) {
			snap.SaveResult(e.ComponentID, e.Result)
		})
		cleanup = func() {
			orch.Stop()
			if err := snap.Close(); err != nil {
				logger.Warn("snapshot close failed", "error", err)
			}
		}
	}
	return orch, provider, cleanup, nil
}

// scheduleQuote requests recalculation of every component the quote
// enables. Closure expansion and dedup make the overlap harmless.
func scheduleQuote(orch *orchestrator.Orchestrator, provider *quote.FileProvider) error {
	for _, id := range provider.ComponentIDs() {
		if !provider.IsEnabled(id) {
			continue
		}
		if err := orch.ScheduleCalculation(id, 0, "cli"); err != nil {
			return err
		}
	}
	return nil
}

func printResults(results map[string]api.CalculationResult) {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("%-16s %12s %12s %12s %12s  %s\n",
		"COMPONENT", "ONE-TIME", "MONTHLY", "ANNUAL", "3-YEAR", "STATUS")
	for _, id := range ids {
		r := results[id]
		status := "ok"
		if r.Failed() {
			status = "ERROR: " + r.Error
		}
		fmt.Printf("%-16s %12s %12s %12s %12s  %s\n",
			id,
			r.Totals.OneTime.StringFixed(2),
			r.Totals.Monthly.StringFixed(2),
			r.Totals.Annual.StringFixed(2),
			r.Totals.ThreeYear.StringFixed(2),
			status)
	}
}

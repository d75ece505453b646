package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/source"
)

// fetchCommand creates the fetch command for downloading a snapshot.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		output  string
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "fetch [url]",
		Short: "Download a graph snapshot from the backend",
		Long: `Download a graph snapshot from the backend and write it as JSON.

Without an argument the URL comes from source.url in the config
(default ` + source.DefaultURL + `). The snapshot is validated before it is
written. Responses are cached; use --refresh to bypass the cache.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			return c.runFetch(cmd.Context(), url, output, refresh, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "graph.json", "output file")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore a cached response")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runFetch fetches the snapshot, validates it and writes output.
func (c *CLI) runFetch(ctx context.Context, url, output string, refresh, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if url == "" {
		url = cfg.Source.URL
	}
	if !source.IsURL(url) {
		return fmt.Errorf("fetch %s: not an http(s) URL", url)
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipelineOptions(cfg, url)
	opts.Refresh = refresh

	spinner := newSpinnerWithContext(ctx, "Fetching "+url+"...")
	spinner.Start()
	snap, err := runner.Fetch(ctx, opts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return fmt.Errorf("%s: %w", source.FetchErrorMessage, err)
	}
	spinner.Stop()

	if err := graph.Validate(snap); err != nil {
		return fmt.Errorf("snapshot from %s: %w", url, err)
	}
	if err := graph.WriteSnapshotFile(snap, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Snapshot fetched")
	printFile(output)
	printStats(len(snap.Nodes), len(snap.Links), false)
	printNewline()
	printNextStep("Layout", appName+" layout "+output)

	return nil
}

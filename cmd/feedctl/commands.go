package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dealerfeed/internal/catalog"
	"dealerfeed/internal/config"
	"dealerfeed/internal/domain"
	"dealerfeed/internal/logging"
	"dealerfeed/pkg/dealerapi"
	"dealerfeed/pkg/feed"
)

var (
	outputFormat string
	verbose      bool

	queryFilter   string
	queryPage     int
	queryPageSize int

	fetchEngine  string
	fetchMake    string
	fetchModel   string
	fetchLimit   int
	fetchEnvFile string

	rootCmd = &cobra.Command{
		Use:           "feedctl",
		Short:         "Inspect dealer vehicle feeds",
		Long:          `feedctl parses dealer feed documents, runs catalog queries against them and fetches the live feed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	parseCmd = &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a feed document and print the vehicles",
		Long:  `Parses a feed document (use "-" for stdin) and prints the vehicles together with the number of skipped and duplicate records.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}

	queryCmd = &cobra.Command{
		Use:   "query [file]",
		Short: "Run a catalog query against a feed document",
		Long: `Filters, sorts and paginates the vehicles of a feed document the way the HTTP API does.
The filter uses query-string syntax, for example:

  feedctl query feed.xml --filter "make=Fiat&fuel=Diesel,GPL&sort=price&dir=asc"`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	fetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and parse the live feed",
		Long:  `Fetches the feed configured by FEED_URL and FEED_API_KEY and prints the outcome.`,
		Args:  cobra.NoArgs,
		RunE:  runFetch,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "Output format: json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log parser diagnostics to stderr")

	queryCmd.Flags().StringVarP(&queryFilter, "filter", "f", "", "Filter selection in query-string syntax")
	queryCmd.Flags().IntVar(&queryPage, "page", 1, "Page number, starting at 1")
	queryCmd.Flags().IntVar(&queryPageSize, "page-size", 12, "Vehicles per page")

	fetchCmd.Flags().StringVar(&fetchEngine, "engine", "car", "Engine type to request")
	fetchCmd.Flags().StringVar(&fetchMake, "make", "", "Only this make")
	fetchCmd.Flags().StringVar(&fetchModel, "model", "", "Only this model")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "Maximum number of records")
	fetchCmd.Flags().StringVar(&fetchEnvFile, "env-file", ".env", "Environment file with feed settings")

	rootCmd.AddCommand(parseCmd, queryCmd, fetchCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return logging.New(os.Stderr, "pretty", level)
}

func readDocument(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading feed: %w", err)
	}
	return string(data), nil
}

type parseOutput struct {
	Records    int              `json:"records" yaml:"records"`
	Skipped    int              `json:"skipped" yaml:"skipped"`
	Duplicates int              `json:"duplicates" yaml:"duplicates"`
	Vehicles   []domain.Vehicle `json:"vehicles" yaml:"vehicles"`
}

func runParse(cmd *cobra.Command, args []string) error {
	raw, err := readDocument(args[0])
	if err != nil {
		return err
	}

	res := feed.NewParser(newLogger()).Parse(raw)
	out := parseOutput{
		Records:    res.Records,
		Skipped:    res.Skipped,
		Duplicates: res.Duplicates,
		Vehicles:   res.Vehicles,
	}
	return writeOutput(cmd.OutOrStdout(), outputFormat, out)
}

func runQuery(cmd *cobra.Command, args []string) error {
	raw, err := readDocument(args[0])
	if err != nil {
		return err
	}

	params, err := url.ParseQuery(queryFilter)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	vehicles := feed.NewParser(newLogger()).Parse(raw).Vehicles
	page := catalog.Query(vehicles, catalog.ParseSelection(params), queryPage, queryPageSize)
	return writeOutput(cmd.OutOrStdout(), outputFormat, page)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(fetchEnvFile)
	if err != nil {
		return err
	}

	client := dealerapi.New(cfg.FeedURL, cfg.FeedAPIKey, cfg.FeedTimeout)
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.FeedTimeout+5*time.Second)
	defer cancel()

	res := client.FetchVehicles(ctx, dealerapi.Query{
		EngineType:  fetchEngine,
		VisibleOnly: cfg.FeedVisibleOnly,
		Make:        fetchMake,
		Model:       fetchModel,
		Limit:       fetchLimit,
		Sort:        cfg.FeedSort,
	})
	if err := writeOutput(cmd.OutOrStdout(), outputFormat, res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("fetch failed: %s", res.Error)
	}
	return nil
}

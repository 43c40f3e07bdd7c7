package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"vivapickup/lib/configutil"
	"vivapickup/lib/restyutil"
	"vivapickup/lib/scrapers/viva"
	"vivapickup/lib/serviceutil"
	"vivapickup/services/pickup"
	"vivapickup/services/pickup/export"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	LoginUrl      string `json:"login_url"`
	ListingUrl    string `json:"listing_url"`
	DetailBaseUrl string `json:"detail_base_url"`
	OutputDir     string `json:"output_dir"`
	OutputName    string `json:"output_name"`
}

var (
	genMode         *string
	genDate         *string
	genNumber       *string
	genFinished     *string
	genStockStatus  *bool
	genKeepNegative *bool
	genName         *string
	genFormat       *string
)

func init() {
	f := generateCmd.Flags()
	genMode = f.String("mode", "date", `filter mode: "date" or "orderNumber"`)
	genDate = f.String("date", time.Now().Format("2006-01-02"), "target date in date mode (YYYY-MM-DD)")
	genNumber = f.String("number", "", "target order in orderNumber mode, defaults to the newest order")
	genFinished = f.String("finished", "all", `finished filter: "all", "open" or "closed"`)
	genStockStatus = f.Bool("stock-status", false, "compute the 订货 column")
	genKeepNegative = f.Bool("keep-negative", false, "keep line items with negative quantities")
	genName = f.String("name", "", "output file name, overrides the configured default")
	genFormat = f.String("format", "xlsx", `output format: "xlsx" or "csv"`)
	rootCmd.AddCommand(generateCmd)
}

func parseCriteria() (pickup.Criteria, error) {
	criteria := pickup.Criteria{Number: *genNumber}

	switch *genMode {
	case string(pickup.ModeDate):
		criteria.Mode = pickup.ModeDate
		date, err := time.Parse("2006-01-02", *genDate)
		if err != nil {
			return criteria, fmt.Errorf("bad --date: %w", err)
		}
		criteria.Date = date
	case string(pickup.ModeOrderNumber):
		criteria.Mode = pickup.ModeOrderNumber
	default:
		return criteria, fmt.Errorf("unknown filter mode: %q", *genMode)
	}

	switch *genFinished {
	case "all":
		criteria.Finished = pickup.FinishedAny
	case "open":
		criteria.Finished = pickup.FinishedOpen
	case "closed":
		criteria.Finished = pickup.FinishedClosed
	default:
		return criteria, fmt.Errorf("unknown finished filter: %q", *genFinished)
	}

	return criteria, nil
}

func confirmLogin(ctx context.Context) error {
	fmt.Println("请在浏览器中完成登录后按回车继续...")

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(os.Stdin).ReadString('\n')
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Logs into the portal and writes the pickup sheet.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := configutil.ReadRecursively[Config]("pickup.json5")
		if err != nil {
			serviceutil.Fatal("failed to read pickup.json5", err)
		}
		if cfg.LoginUrl == "" {
			serviceutil.Fatal("bad config", errors.New("login_url is empty"))
		}
		if cfg.ListingUrl == "" {
			serviceutil.Fatal("bad config", errors.New("listing_url is empty"))
		}
		if cfg.DetailBaseUrl == "" {
			serviceutil.Fatal("bad config", errors.New("detail_base_url is empty"))
		}

		name := *genName
		if name == "" {
			name = cfg.OutputName
		}
		if name == "" {
			serviceutil.Fatal("bad config", errors.New("output name is empty"))
		}

		sink, ext, err := export.ForFormat(*genFormat)
		if err != nil {
			serviceutil.Fatal("bad --format", err)
		}
		criteria, err := parseCriteria()
		if err != nil {
			serviceutil.Fatal("bad filter flags", err)
		}

		slog.Info("opening login browser", "url", cfg.LoginUrl)
		cookies, err := viva.ObtainCookies(ctx, viva.LoginOptions{
			Url:     cfg.LoginUrl,
			Confirm: confirmLogin,
		})
		if err != nil {
			serviceutil.Fatal("login aborted", err)
		}
		if len(cookies) == 0 {
			serviceutil.Fatal("login produced no cookies", errors.New("was the login completed in the browser?"))
		}

		var instrument restyutil.InstrumentOutput
		if *verbose {
			instrument = restyutil.NewFilesystemOutput(filepath.Join(os.TempDir(), "vivapickup-resty"))
		}
		client, err := viva.NewClient(ctx, viva.ClientOptions{
			ListingUrl:       cfg.ListingUrl,
			DetailBaseUrl:    cfg.DetailBaseUrl,
			Cookies:          cookies,
			InstrumentOutput: instrument,
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize portal client", err)
		}

		// the newest order number doubles as a login smoke check, an
		// unauthenticated session serves a page without the listing data
		newest, err := client.DefaultOrderNumber(ctx)
		if err != nil {
			serviceutil.Fatal("login check failed", err)
		}
		slog.Info("login ok", "newest_order", newest)
		if criteria.Mode == pickup.ModeOrderNumber && criteria.Number == "" {
			criteria.Number = newest
		}

		t1 := time.Now()
		result, err := pickup.RunExtraction(ctx, client, pickup.RunConfig{
			Criteria: criteria,
			Options: pickup.Options{
				IncludeStockStatus: *genStockStatus,
				SkipNegativeQty:    !*genKeepNegative,
			},
		})
		if err != nil {
			serviceutil.Fatal("extraction failed", err)
		}
		slog.Info("extraction time", "seconds", time.Since(t1).Seconds())

		printSummary(result)
		if result.Empty() {
			slog.Info("no records matched, nothing written")
			return
		}

		path := filepath.Join(cfg.OutputDir, name+ext)
		err = sink.Write(path, result.Rows)
		if err != nil {
			serviceutil.Fatal("failed to write output", err)
		}
		slog.Info("pickup sheet written", "path", path, "rows", len(result.Rows))
	},
}

func printSummary(result pickup.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Listed", "Matched", "Emitted", "Suppressed", "Skipped", "Rows"})
	t.AppendRow(table.Row{
		result.Listed,
		result.Matched,
		result.Emitted,
		result.Suppressed,
		len(result.Diagnostics),
		len(result.Rows),
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

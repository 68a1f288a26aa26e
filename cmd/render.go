package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kozaktomas/wallproof/internal/config"
	"github.com/kozaktomas/wallproof/internal/constants"
	"github.com/kozaktomas/wallproof/internal/database"
	"github.com/kozaktomas/wallproof/internal/database/postgres"
	"github.com/kozaktomas/wallproof/internal/proof"
)

var renderCmd = &cobra.Command{
	Use:   "render <record.json|id>...",
	Short: "Render proof PDFs offline",
	Long: `Render proof PDFs for configuration records.

Arguments are JSON files holding a configuration record, or with --db the
IDs or short codes of stored configurations. Each proof is written to
<out-dir>/<name>.pdf, where name is the file name or the short code.

Examples:
  # Render a single record with an explicit proof code
  wallproof render order.json --code 7K3M9QZP

  # Render a batch with the JSON report next to every PDF
  wallproof render exports/*.json --out-dir proofs --report

  # Render stored configurations
  wallproof render --db 7K3M9QZP 4HX2W8RT --debug`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().String("code", "", "Proof code to print (single record only)")
	renderCmd.Flags().String("out-dir", ".", "Directory the PDFs are written to")
	renderCmd.Flags().Int("concurrency", constants.DefaultRenderConcurrency, "Number of proofs rendered in parallel")
	renderCmd.Flags().Bool("report", false, "Write <name>.report.json next to each PDF")
	renderCmd.Flags().Bool("debug", false, "Draw the layout debug overlay")
	renderCmd.Flags().Bool("db", false, "Treat arguments as stored configuration IDs or short codes")
	renderCmd.Flags().Float64("strip-width", 0, "Draw strip guides of this width in cm (overrides PROOF_STRIP_WIDTH_CM)")
	renderCmd.Flags().Bool("json", false, "Output the summary as JSON instead of a progress bar")
}

// renderJob is one proof to produce.
type renderJob struct {
	Name   string
	Code   string
	Record database.Configuration
}

// RenderOutcome is the result of rendering a single proof
type RenderOutcome struct {
	Name         string `json:"name"`
	Code         string `json:"code"`
	Path         string `json:"path,omitempty"`
	FallbackUsed bool   `json:"fallback_used,omitempty"`
	Warnings     int    `json:"warnings"`
	Error        string `json:"error,omitempty"`
}

// RenderResult represents the result of a render run
type RenderResult struct {
	Success       bool            `json:"success"`
	Rendered      int             `json:"rendered"`
	Failed        int             `json:"failed"`
	Proofs        []RenderOutcome `json:"proofs"`
	DurationMs    int64           `json:"duration_ms"`
	DurationHuman string          `json:"duration_human,omitempty"`
}

func runRender(cmd *cobra.Command, args []string) error {
	code := mustGetString(cmd, "code")
	outDir := mustGetString(cmd, "out-dir")
	concurrency := mustGetInt(cmd, "concurrency")
	writeReport := mustGetBool(cmd, "report")
	debug := mustGetBool(cmd, "debug")
	fromDB := mustGetBool(cmd, "db")
	stripWidth := mustGetFloat64(cmd, "strip-width")
	jsonOutput := mustGetBool(cmd, "json")

	if code != "" && len(args) > 1 {
		return errors.New("--code can only be used with a single record")
	}
	if concurrency < 1 {
		concurrency = 1
	}

	ctx := context.Background()
	cfg := config.Load()
	configureLogging(cfg.Log)
	startTime := time.Now()

	if stripWidth > 0 {
		cfg.Proof.StripWidthCm = stripWidth
	}

	var jobs []renderJob
	var err error
	if fromDB {
		jobs, err = loadStoredJobs(ctx, cfg, args)
	} else {
		jobs, err = loadFileJobs(args)
	}
	if err != nil {
		return err
	}
	if code != "" {
		jobs[0].Code = database.NormalizeShortCode(code)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	renderer, debugRenderer := newRenderers(cfg)
	if debug {
		renderer = debugRenderer
	}

	var bar *progressbar.ProgressBar
	if !jsonOutput && len(jobs) > 1 {
		bar = progressbar.NewOptions(len(jobs),
			progressbar.OptionSetDescription("Rendering proofs"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("proofs"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	outcomes := make([]RenderOutcome, len(jobs))
	var failed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			outcomes[i] = renderProof(gctx, renderer, job, outDir, writeReport)
			if outcomes[i].Error != "" {
				atomic.AddInt64(&failed, 1)
			}
			if bar != nil {
				bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if bar != nil {
		fmt.Println()
	}

	duration := time.Since(startTime)
	result := RenderResult{
		Success:       failed == 0,
		Rendered:      len(jobs) - int(failed),
		Failed:        int(failed),
		Proofs:        outcomes,
		DurationMs:    duration.Milliseconds(),
		DurationHuman: formatDuration(duration),
	}

	if jsonOutput {
		result.DurationHuman = ""
		if err := outputJSON(result); err != nil {
			return err
		}
	} else {
		printRenderResult(result)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d proofs failed", failed, len(jobs))
	}
	return nil
}

// loadFileJobs reads configuration records from JSON files.
func loadFileJobs(paths []string) ([]renderJob, error) {
	jobs := make([]renderJob, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var rec database.Configuration
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		code := rec.ShortCode
		if code == "" {
			code = database.NewShortCode()
		}
		jobs = append(jobs, renderJob{
			Name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Code:   code,
			Record: rec,
		})
	}
	return jobs, nil
}

// loadStoredJobs looks the arguments up in the configuration store.
func loadStoredJobs(ctx context.Context, cfg *config.Config, keys []string) ([]renderJob, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required with --db")
	}
	if err := postgres.Initialize(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	reader, err := database.GetConfigurationReader(ctx)
	if err != nil {
		return nil, err
	}

	jobs := make([]renderJob, 0, len(keys))
	for _, key := range keys {
		rec, err := reader.GetConfiguration(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration %s: %w", key, err)
		}
		if rec == nil {
			return nil, fmt.Errorf("configuration %s not found", key)
		}
		code := rec.ShortCode
		if code == "" {
			if code, err = reader.ShortCodeFor(ctx, rec.ID); err != nil {
				return nil, fmt.Errorf("failed to get short code for %s: %w", key, err)
			}
		}
		name := code
		if name == "" {
			name = rec.ID
		}
		jobs = append(jobs, renderJob{Name: name, Code: code, Record: *rec})
	}
	return jobs, nil
}

// renderProof renders one job and writes its files.
func renderProof(ctx context.Context, renderer *proof.Renderer, job renderJob, outDir string, writeReport bool) RenderOutcome {
	out := RenderOutcome{Name: job.Name, Code: job.Code}

	res, err := renderer.Render(ctx, job.Record, job.Code)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.FallbackUsed = res.FallbackUsed
	out.Warnings = len(res.Report.Warnings)

	path := filepath.Join(outDir, job.Name+".pdf")
	if err := os.WriteFile(path, res.PDF, 0o644); err != nil {
		out.Error = fmt.Sprintf("write PDF: %v", err)
		return out
	}
	out.Path = path

	if writeReport {
		data, err := json.MarshalIndent(res.Report, "", "  ")
		if err == nil {
			err = os.WriteFile(filepath.Join(outDir, job.Name+".report.json"), data, 0o644)
		}
		if err != nil {
			out.Error = fmt.Sprintf("write report: %v", err)
		}
	}
	return out
}

func printRenderResult(result RenderResult) {
	for _, p := range result.Proofs {
		switch {
		case p.Error != "":
			fmt.Printf("  FAILED   %s: %s\n", p.Name, p.Error)
		case p.FallbackUsed:
			fmt.Printf("  MINIMAL  %s -> %s (code %s, %d warnings)\n", p.Name, p.Path, p.Code, p.Warnings)
		default:
			fmt.Printf("  OK       %s -> %s (code %s, %d warnings)\n", p.Name, p.Path, p.Code, p.Warnings)
		}
	}
	fmt.Println("\nRender complete!")
	fmt.Printf("  Rendered: %d\n", result.Rendered)
	if result.Failed > 0 {
		fmt.Printf("  Failed:   %d\n", result.Failed)
	}
	fmt.Printf("  Duration: %s\n", result.DurationHuman)
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

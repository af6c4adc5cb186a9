package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"seace-engine/internal/domain"
	"seace-engine/internal/logger"
	"seace-engine/internal/scrape"
	"seace-engine/internal/scrape/types"
)

type crawlFlags struct {
	from, to  string
	max       int
	cubso     bool
	out       string
	noHistory bool
}

type crawlOutput struct {
	Cantidad   int             `json:"cantidad"`
	Resultados []domain.Notice `json:"resultados"`
	RunID      string          `json:"run_id"`
	Reporte    types.Report    `json:"reporte"`
}

func newCrawlCmd(f *rootFlags) *cobra.Command {
	cf := &crawlFlags{}
	cmd := &cobra.Command{
		Use:     "crawl",
		Short:   "Run one crawl and print the notices as JSON",
		Example: "  engine crawl --from 01/01/2025 --to 31/01/2025 --max 50 --cubso",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd.Context(), f, cf, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&cf.from, "from", "", "first publication day (dd/mm/yyyy)")
	cmd.Flags().StringVar(&cf.to, "to", "", "last publication day (dd/mm/yyyy)")
	cmd.Flags().IntVar(&cf.max, "max", 0, "stop after this many notices (0 = no cap)")
	cmd.Flags().BoolVar(&cf.cubso, "cubso", false, "resolve CUBSO codes from the detail pages")
	cmd.Flags().StringVarP(&cf.out, "out", "o", "", "write JSON here instead of stdout")
	cmd.Flags().BoolVar(&cf.noHistory, "no-history", false, "do not record the run in the history database")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runCrawl(ctx context.Context, f *rootFlags, cf *crawlFlags, stdout io.Writer) error {
	cfg, _, err := f.loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	rng, err := domain.ParseDateRange(cf.from, cf.to, cfg.Location())
	if err != nil {
		return err
	}
	q := types.Query{Range: rng, Enrich: cf.cubso}
	if cf.max > 0 {
		q.MaxResults = cf.max
	}

	eng, err := newEngine(cfg, log)
	if err != nil {
		return err
	}
	defer eng.Close()

	runner := &scrape.Runner{Scraper: eng.scraper, Log: log}
	if !cf.noHistory {
		db, err := openStore(cfg)
		switch {
		case isLocked(err):
			// a running server owns the history; the crawl still runs
			log.Warn("run history is locked by another process, not recording")
		case err != nil:
			return err
		default:
			defer db.Close()
			runner.DB = db.Pool
		}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.CrawlTimeout())
	defer cancel()

	res, err := runner.Run(ctx, "cli", q)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	log.Info("crawl done",
		logger.String("run_id", res.RunID),
		logger.Int("notices", len(res.Notices)),
		logger.String("stop_reason", string(res.Report.Stop)),
	)

	out := crawlOutput{
		Cantidad:   len(res.Notices),
		Resultados: res.Notices,
		RunID:      res.RunID,
		Reporte:    res.Report,
	}
	if out.Resultados == nil {
		out.Resultados = []domain.Notice{}
	}
	return writeJSONOut(cf.out, stdout, out)
}

func writeJSONOut(path string, stdout io.Writer, v any) (err error) {
	w := stdout
	if path != "" {
		fh, ferr := os.Create(path)
		if ferr != nil {
			return ferr
		}
		defer func() { err = errors.Join(err, fh.Close()) }()
		w = fh
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

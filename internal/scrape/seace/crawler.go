package seace

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"seace-engine/internal/config"
	"seace-engine/internal/domain"
	"seace-engine/internal/logger"
	"seace-engine/internal/render"
	"seace-engine/internal/scrape/types"
	"seace-engine/internal/scrape/util"
)

var (
	ErrListingUnavailable = errors.New("listing unavailable")
	ErrNextPage           = errors.New("next page transition failed")
)

const refreshPoll = 200 * time.Millisecond

type Options struct {
	ListingURL             string
	CardSelector           string
	PageSizeSelector       string
	PageSizeOptionSelector string
	NextSelector           string

	MaxPages  int
	EarlyStop bool

	NavTimeout     time.Duration
	InitialWait    time.Duration
	PageSizeWait   time.Duration
	NextWait       time.Duration
	RefreshTimeout time.Duration
	Settle         time.Duration
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		ListingURL:             cfg.Source.ListingURL,
		CardSelector:           cfg.Source.CardSelector,
		PageSizeSelector:       cfg.Source.PageSizeSelector,
		PageSizeOptionSelector: cfg.Source.PageSizeOptionSelector,
		NextSelector:           cfg.Source.NextSelector,
		MaxPages:               cfg.Crawl.MaxPages,
		EarlyStop:              cfg.Crawl.EarlyStop,
		NavTimeout:             cfg.NavTimeout(),
		InitialWait:            cfg.InitialWait(),
		PageSizeWait:           cfg.PageSizeWait(),
		NextWait:               cfg.NextWait(),
		RefreshTimeout:         cfg.RefreshTimeout(),
		Settle:                 cfg.Settle(),
	}
}

// CrawlState belongs to a single crawl. Stopped only ever goes from false to
// true.
type CrawlState struct {
	Page     int
	Accepted int
	Stopped  bool
	Range    domain.DateRange
}

func (s *CrawlState) stop() { s.Stopped = true }

// Crawler walks the paginated listing. The listing is assumed to be sorted by
// publication date, newest first; with EarlyStop off that assumption is not
// relied on and every page up to MaxPages is read.
type Crawler struct {
	opts    Options
	builder *Builder
	log     logger.Logger
}

func NewCrawler(opts Options, b *Builder, log logger.Logger) *Crawler {
	if opts.MaxPages < 1 {
		opts.MaxPages = 1
	}
	return &Crawler{opts: opts, builder: b, log: logger.OrNop(log)}
}

// Crawl reads notices from an open session. Only listing navigation and page
// transition failures are returned; every other problem is counted in the
// report. The session is left open for the caller to reuse or close.
func (c *Crawler) Crawl(ctx context.Context, r render.Renderer, q types.Query, onProgress func(types.Progress)) ([]domain.Notice, types.Report, error) {
	started := time.Now()
	rep := types.NewReport()
	st := &CrawlState{Page: 1, Range: q.Range}
	emit := func(done bool) {
		rep.Pages = st.Page
		rep.Accepted = st.Accepted
		if onProgress != nil {
			onProgress(types.Progress{Page: st.Page, CardsSeen: rep.CardsSeen, Accepted: st.Accepted, Done: done, Stop: rep.Stop})
		}
	}

	if err := r.Navigate(ctx, c.opts.ListingURL, c.opts.NavTimeout); err != nil {
		rep.Finish(started)
		return nil, rep, fmt.Errorf("%w: open %s: %v", ErrListingUnavailable, c.opts.ListingURL, err)
	}
	if err := r.WaitFor(ctx, c.opts.CardSelector, c.opts.InitialWait); err != nil {
		if ctx.Err() != nil {
			rep.Finish(started)
			return nil, rep, fmt.Errorf("%w: %v", ErrListingUnavailable, ctx.Err())
		}
		c.log.Warn("listing slow to render, continuing", logger.Err(err))
	}
	rep.PageSizeNegotiated = c.negotiatePageSize(ctx, r)

	var out []domain.Notice
	for {
		if err := ctx.Err(); err != nil {
			rep.Finish(started)
			return out, rep, fmt.Errorf("%w: %v", ErrListingUnavailable, err)
		}

		cards, err := r.QueryAll(ctx, c.opts.CardSelector)
		if err != nil {
			rep.Finish(started)
			return out, rep, fmt.Errorf("%w: list cards on page %d: %v", ErrListingUnavailable, st.Page, err)
		}
		if len(cards) == 0 {
			rep.Stop = types.StopEmptyPage
			break
		}

		firstText := ""
		for i, el := range cards {
			rep.CardsSeen++
			n, text, reason := c.readCard(el)
			if i == 0 {
				firstText = text
			}
			if reason != "" {
				rep.Skip(reason)
				continue
			}

			switch {
			case q.Range.IsNewer(n.PublishedAt):
				rep.Skip(types.SkipTooNew)
			case q.Range.IsOlder(n.PublishedAt):
				rep.Skip(types.SkipTooOld)
				if c.opts.EarlyStop {
					st.stop()
				}
			default:
				out = append(out, n)
				st.Accepted++
			}
			if st.Stopped || q.CapReached(st.Accepted) {
				break
			}
		}

		c.log.Debug("page read",
			logger.Int("page", st.Page),
			logger.Int("cards", len(cards)),
			logger.Int("accepted", st.Accepted),
		)

		switch {
		case st.Stopped:
			rep.Stop = types.StopEarly
		case q.CapReached(st.Accepted):
			rep.Stop = types.StopCap
		case st.Page >= c.opts.MaxPages:
			rep.Stop = types.StopPageLimit
		}
		if rep.Stop != "" {
			break
		}

		next, err := r.Query(ctx, c.opts.NextSelector)
		if err != nil {
			rep.Finish(started)
			return out, rep, fmt.Errorf("%w: find next control: %v", ErrNextPage, err)
		}
		if next == nil {
			rep.Stop = types.StopExhausted
			break
		}
		emit(false)
		if err := c.advance(ctx, r, next, firstText); err != nil {
			rep.Finish(started)
			return out, rep, fmt.Errorf("%w: page %d: %v", ErrNextPage, st.Page+1, err)
		}
		st.Page++
	}

	emit(true)
	rep.Finish(started)
	c.log.Info("crawl finished",
		logger.Int("pages", rep.Pages),
		logger.Int("accepted", rep.Accepted),
		logger.String("stop_reason", string(rep.Stop)),
	)
	return out, rep, nil
}

// readCard returns the notice, the card's raw text (for refresh detection)
// and a skip reason when the card cannot be used.
func (c *Crawler) readCard(el render.Element) (domain.Notice, string, types.SkipReason) {
	text, html, err := el.Snapshot()
	if err != nil {
		c.log.Debug("card unreadable", logger.Err(err))
		return domain.Notice{}, "", types.SkipParseError
	}
	n, err := c.builder.Build(Card{Text: text, HTML: html})
	switch {
	case errors.Is(err, ErrNoLink):
		return n, text, types.SkipNoLink
	case err != nil:
		c.log.Debug("card skipped", logger.Err(err))
		return n, text, types.SkipParseError
	case n.PublishedAt.IsZero():
		return n, text, types.SkipNoDate
	}
	return n, text, ""
}

// negotiatePageSize opens the paginator's size menu and picks the largest
// numeric option. Any failure leaves the default page size in place.
func (c *Crawler) negotiatePageSize(ctx context.Context, r render.Renderer) bool {
	if c.opts.PageSizeSelector == "" || c.opts.PageSizeOptionSelector == "" {
		return false
	}
	fail := func(step string, err error) bool {
		c.log.Warn("page size unchanged", logger.String("step", step), logger.Err(err))
		return false
	}

	menu, err := r.Query(ctx, c.opts.PageSizeSelector)
	if err != nil {
		return fail("find menu", err)
	}
	if menu == nil {
		return fail("find menu", errors.New("no page size control"))
	}
	if err := menu.Click(); err != nil {
		return fail("open menu", err)
	}
	if err := r.WaitFor(ctx, c.opts.PageSizeOptionSelector, c.opts.PageSizeWait); err != nil {
		return fail("wait options", err)
	}
	opts, err := r.QueryAll(ctx, c.opts.PageSizeOptionSelector)
	if err != nil {
		return fail("list options", err)
	}

	var best render.Element
	bestN := 0
	for _, o := range opts {
		t, err := o.Text()
		if err != nil {
			continue
		}
		if n, err := strconv.Atoi(util.CleanText(t)); err == nil && n > bestN {
			best, bestN = o, n
		}
	}
	if best == nil {
		return fail("pick option", errors.New("no numeric option"))
	}
	if err := best.Click(); err != nil {
		return fail("select option", err)
	}
	if err := r.WaitFor(ctx, c.opts.CardSelector, c.opts.PageSizeWait); err != nil {
		return fail("wait cards", err)
	}
	_ = render.Sleep(ctx, c.opts.Settle)
	c.log.Debug("page size set", logger.Int("size", bestN))
	return true
}

// advance clicks next and waits until the listing shows a different first
// card. A listing that looks unchanged after RefreshTimeout is read anyway.
func (c *Crawler) advance(ctx context.Context, r render.Renderer, next render.Element, prevFirst string) error {
	if err := next.Click(); err != nil {
		return fmt.Errorf("click next: %w", err)
	}
	if err := r.WaitFor(ctx, c.opts.CardSelector, c.opts.NextWait); err != nil {
		return fmt.Errorf("wait cards: %w", err)
	}
	if prevFirst != "" && c.opts.RefreshTimeout > 0 {
		if !c.awaitRefresh(ctx, r, prevFirst) {
			c.log.Warn("listing did not visibly change after next", logger.Duration("waited", c.opts.RefreshTimeout))
		}
	}
	if err := render.Sleep(ctx, c.opts.Settle); err != nil {
		return err
	}
	return nil
}

func (c *Crawler) awaitRefresh(ctx context.Context, r render.Renderer, prevFirst string) bool {
	deadline := time.Now().Add(c.opts.RefreshTimeout)
	for {
		first, err := r.Query(ctx, c.opts.CardSelector)
		if err == nil && first != nil {
			if t, err := first.Text(); err == nil && t != prevFirst {
				return true
			}
		}
		if time.Now().After(deadline) {
			return false
		}
		if err := render.Sleep(ctx, refreshPoll); err != nil {
			return false
		}
	}
}

package seace

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"seace-engine/internal/classify"
	"seace-engine/internal/domain"
	"seace-engine/internal/scrape/util"
)

var (
	ErrNoLink    = errors.New("card has no detail link")
	ErrEmptyCard = errors.New("card has no text")
)

// Card is what the renderer hands back for one listing entry.
type Card struct {
	Text string
	HTML string
}

// Builder turns a listing card into a Notice. It never decides on dates; a
// notice without a publication date is returned with a zero PublishedAt and
// the crawler drops it.
type Builder struct {
	tx         *classify.Taxonomy
	dates      *DateExtractor
	listingURL string
	detailPath string
}

func NewBuilder(tx *classify.Taxonomy, dates *DateExtractor, listingURL, detailPath string) *Builder {
	return &Builder{tx: tx, dates: dates, listingURL: listingURL, detailPath: detailPath}
}

func (b *Builder) Build(c Card) (domain.Notice, error) {
	var doc *goquery.Document
	if strings.TrimSpace(c.HTML) != "" {
		d, err := goquery.NewDocumentFromReader(strings.NewReader(c.HTML))
		if err != nil {
			return domain.Notice{}, fmt.Errorf("parse card markup: %w", err)
		}
		doc = d
	}

	link, err := b.link(doc)
	if err != nil {
		return domain.Notice{}, err
	}

	lines := cardLines(doc, c.Text)
	text := c.Text
	if strings.TrimSpace(text) == "" {
		text = strings.Join(lines, "\n")
	}
	fields := b.fields(lines)
	if len(fields) == 0 {
		return domain.Notice{}, ErrEmptyCard
	}

	n := domain.Notice{Link: link}
	n.Code = at(fields, 0)
	n.Entity = at(fields, 1)
	n.Description = b.description(fields)
	n.ObjectType = b.tx.ObjectType(n.Description)
	n.Region = b.tx.Region(n.Entity, text)

	if pub, hasTime, ok := b.dates.Publication(text); ok {
		n.PublishedAt = pub
		n.HasTime = hasTime
	}
	n.ScheduleStart, n.ScheduleEnd = b.dates.Schedule(text)
	return n, nil
}

// cardLines prefers the card's paragraphs, which is how the portal lays out
// one field per line, and falls back to the rendered text.
func cardLines(doc *goquery.Document, text string) []string {
	if doc != nil {
		var out []string
		doc.Find("p").Each(func(_ int, p *goquery.Selection) {
			if l := util.CleanText(p.Text()); l != "" {
				out = append(out, l)
			}
		})
		if len(out) > 0 {
			return out
		}
	}
	return util.Lines(text)
}

// fields drops pure status tokens ("Vigente", "Desierto", ...) which the
// portal renders as badges between the data lines.
func (b *Builder) fields(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if b.tx.IsStatus(l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (b *Builder) description(fields []string) string {
	if len(fields) <= 2 {
		return ""
	}
	for _, l := range fields[2:] {
		if b.tx.HasTypeMarker(l) {
			return l
		}
	}
	return fields[2]
}

func (b *Builder) link(doc *goquery.Document) (string, error) {
	if doc == nil {
		return "", ErrNoLink
	}
	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !util.PathMatches(href, b.detailPath) {
			return true
		}
		abs, err := util.ResolveLink(b.listingURL, href)
		if err != nil {
			return true
		}
		link = abs
		return false
	})
	if link == "" {
		return "", ErrNoLink
	}
	return link, nil
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

// Package rendertest provides an in-memory render.Provider backed by goquery,
// for driving the crawler without a browser.
package rendertest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"seace-engine/internal/render"
)

// FailAttr on an element makes its Text and Snapshot calls fail.
const FailAttr = "data-render-fail"

var ErrNotFound = errors.New("rendertest: page not found")

// Site serves Listing[0] at ListingURL; clicking a node matching NextSelector
// moves the session to the following listing page. Other URLs come from
// Pages.
type Site struct {
	ListingURL             string
	Listing                []string
	Pages                  map[string]string
	NavErrors              map[string]error
	NextSelector           string
	PageSizeOptionSelector string
	// FailNextOn makes the click on page N's next control fail (1-based).
	FailNextOn int

	mu          sync.Mutex
	navigations []string
	sessions    []*Session
	pageSize    int
	snapshots   int
}

func (s *Site) NewSession(ctx context.Context) (render.Renderer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sess := &Session{site: s, page: -1}
	s.mu.Lock()
	s.sessions = append(s.sessions, sess)
	s.mu.Unlock()
	return sess, nil
}

func (s *Site) Navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigations...)
}

func (s *Site) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Session(nil), s.sessions...)
}

// Snapshots counts Element.Snapshot calls across all sessions.
func (s *Site) Snapshots() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots
}

// PageSize is the last page size picked through the size menu.
func (s *Site) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageSize
}

type Session struct {
	site   *Site
	doc    *goquery.Document
	html   string
	page   int
	closed bool
}

func (s *Session) Closed() bool {
	s.site.mu.Lock()
	defer s.site.mu.Unlock()
	return s.closed
}

// ListingPage is the 1-based listing page currently shown, 0 if none.
func (s *Session) ListingPage() int { return s.page + 1 }

func (s *Session) load(html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}
	s.doc, s.html = doc, html
	return nil
}

func (s *Session) Navigate(ctx context.Context, url string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.site.mu.Lock()
	s.site.navigations = append(s.site.navigations, url)
	navErr := s.site.NavErrors[url]
	s.site.mu.Unlock()
	if navErr != nil {
		return navErr
	}

	if url == s.site.ListingURL && len(s.site.Listing) > 0 {
		s.page = 0
		return s.load(s.site.Listing[0])
	}
	if html, ok := s.site.Pages[url]; ok {
		s.page = -1
		return s.load(html)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, url)
}

func (s *Session) WaitFor(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.doc == nil || s.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", render.ErrTimeout, selector)
	}
	return nil
}

func (s *Session) QueryAll(ctx context.Context, selector string) ([]render.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.doc == nil {
		return nil, nil
	}
	var out []render.Element
	s.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, &element{sess: s, sel: sel})
	})
	return out, nil
}

func (s *Session) Query(ctx context.Context, selector string) (render.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.doc == nil {
		return nil, nil
	}
	sel := s.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, nil
	}
	return &element{sess: s, sel: sel}, nil
}

func (s *Session) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.html, nil
}

func (s *Session) Close() error {
	s.site.mu.Lock()
	s.closed = true
	s.site.mu.Unlock()
	return nil
}

type element struct {
	sess *Session
	sel  *goquery.Selection
}

func (e *element) Text() (string, error) {
	if _, bad := e.sel.Attr(FailAttr); bad {
		return "", errors.New("rendertest: detached element")
	}
	return e.sel.Text(), nil
}

func (e *element) Snapshot() (string, string, error) {
	if _, bad := e.sel.Attr(FailAttr); bad {
		return "", "", errors.New("rendertest: detached element")
	}
	e.sess.site.mu.Lock()
	e.sess.site.snapshots++
	e.sess.site.mu.Unlock()
	html, err := e.sel.Html()
	if err != nil {
		return "", "", err
	}
	return e.sel.Text(), html, nil
}

func (e *element) Click() error {
	site := e.sess.site
	switch {
	case site.NextSelector != "" && e.sel.Is(site.NextSelector):
		return e.sess.next()
	case site.PageSizeOptionSelector != "" && e.sel.Is(site.PageSizeOptionSelector):
		n, err := strconv.Atoi(strings.TrimSpace(e.sel.Text()))
		if err != nil {
			return err
		}
		site.mu.Lock()
		site.pageSize = n
		site.mu.Unlock()
	}
	return nil
}

func (s *Session) next() error {
	if s.page < 0 {
		return errors.New("rendertest: not on the listing")
	}
	if s.site.FailNextOn == s.page+1 {
		return errors.New("rendertest: next click failed")
	}
	if s.page+1 >= len(s.site.Listing) {
		return errors.New("rendertest: no further listing page")
	}
	s.page++
	return s.load(s.site.Listing[s.page])
}

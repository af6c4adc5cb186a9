package rendertest

import (
	"fmt"
	"html"
	"strings"
)

// CardSpec describes one SEACE listing card. Empty fields are left out of
// the markup.
type CardSpec struct {
	Code        string
	Status      string
	Entity      string
	Description string
	Published   string // "dd/mm/yyyy" or "dd/mm/yyyy HH:MM:SS"
	Extra       []string
	Href        string
	// Broken cards fail on Text/Snapshot like a detached node.
	Broken bool
}

func CardHTML(c CardSpec) string {
	var b strings.Builder
	b.WriteString(`<div class="bg-fondo-section rounded-md p-5 ng-star-inserted"`)
	if c.Broken {
		b.WriteString(" " + FailAttr)
	}
	b.WriteString(">\n")
	p := func(s string) {
		if s != "" {
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(s))
		}
	}
	p(c.Code)
	p(c.Status)
	p(c.Entity)
	p(c.Description)
	for _, x := range c.Extra {
		p(x)
	}
	if c.Published != "" {
		p("Fecha de publicación: " + c.Published)
	}
	if c.Href != "" {
		fmt.Fprintf(&b, "<a href=%q>Ver detalle</a>\n", c.Href)
	}
	b.WriteString("</div>\n")
	return b.String()
}

// ListingHTML renders one listing page with the Angular Material paginator
// the portal uses. The next button is disabled on the last page.
func ListingHTML(cards []string, hasNext bool) string {
	var b strings.Builder
	b.WriteString("<html><body>\n<section>\n")
	for _, c := range cards {
		b.WriteString(c)
	}
	b.WriteString("</section>\n<mat-paginator>\n")
	b.WriteString(`<mat-select aria-labelledby="mat-paginator-page-size-label-0">10</mat-select>` + "\n")
	b.WriteString("<div class=\"cdk-overlay-pane\"><mat-option>10</mat-option><mat-option>50</mat-option><mat-option>100</mat-option></div>\n")
	if hasNext {
		b.WriteString(`<button class="mat-mdc-paginator-navigation-next">Siguiente</button>`)
	} else {
		b.WriteString(`<button class="mat-mdc-paginator-navigation-next" disabled>Siguiente</button>`)
	}
	b.WriteString("\n</mat-paginator>\n</body></html>")
	return b.String()
}

// Paginate splits cards into listing pages of perPage cards each.
func Paginate(cards []string, perPage int) []string {
	if perPage < 1 {
		perPage = len(cards)
	}
	var pages []string
	for i := 0; i < len(cards); i += perPage {
		end := min(i+perPage, len(cards))
		pages = append(pages, ListingHTML(cards[i:end], end < len(cards)))
	}
	if len(pages) == 0 {
		pages = append(pages, ListingHTML(nil, false))
	}
	return pages
}

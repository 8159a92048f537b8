// Package web renders the single page of the web front end.
package web

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/zbiljic/blueprint/pkg/artifact"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// StreamPath is the websocket endpoint used by the page.
const StreamPath = "/api/v1/generate/ws"

// Card is the state of one artifact card.
type Card struct {
	Field       string
	Title       string
	Description string
	Placeholder string
	Text        string
	Error       string
}

// Page is the state of the whole page.
type Page struct {
	Title       string
	Field       string
	Placeholder string
	MaxLength   int
	StreamPath  string
	Description string
	Error       string
	Cards       []Card
}

// NewPage returns a page with one empty card per kind.
func NewPage(kinds []artifact.Kind) Page {
	p := Page{
		Title:       "Blueprint",
		Field:       artifact.DescriptionField,
		Placeholder: "e.g., chatbot for HR",
		MaxLength:   artifact.MaxDescriptionLength,
		StreamPath:  StreamPath,
	}
	for _, k := range kinds {
		p.Cards = append(p.Cards, Card{
			Field:       k.Field(),
			Title:       k.Title(),
			Description: k.Description(),
			Placeholder: k.Placeholder(),
		})
	}
	return p
}

// WithBatch fills the cards from the outcomes of b.
func (p Page) WithBatch(b *artifact.Batch) Page {
	p.Description = b.Description
	cards := make([]Card, len(p.Cards))
	copy(cards, p.Cards)
	for i, c := range cards {
		kind, err := artifact.ParseKind(c.Field)
		if err != nil {
			continue
		}
		o, ok := b.Outcome(kind)
		if !ok {
			continue
		}
		if o.Err != nil {
			cards[i].Error = o.Err.Error()
			continue
		}
		cards[i].Text = o.Text
	}
	p.Cards = cards
	return p
}

// WithError keeps the submitted description and shows err above the button.
func (p Page) WithError(description string, err error) Page {
	p.Description = description
	if err != nil {
		p.Error = err.Error()
	}
	return p
}

// Component renders p.
func (p Page) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return pageTemplate.Execute(w, p)
	})
}

// Handler serves the empty page.
func Handler(kinds []artifact.Kind) *templ.ComponentHandler {
	return templ.Handler(NewPage(kinds).Component())
}

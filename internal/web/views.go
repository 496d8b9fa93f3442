package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"bookreview/internal/book"
	"bookreview/internal/platform/goodreads"
	"bookreview/internal/review"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageSearch   = "search"
	pageBook     = "book"
	pageRegister = "register"
	pageLogin    = "login"
	pageNotFound = "not_found"
)

// pageData is shared by every view; each page reads the fields it needs.
type pageData struct {
	Title    string
	Flash    string
	LoggedIn bool

	Query string
	Books []book.Summary

	Book            *book.Aggregate
	Reviews         []review.BookReview
	Goodreads       *goodreads.ReviewCounts
	AlreadyReviewed bool
	RatingChoices   []int
	MaxReviewLength int

	Username string
}

var templateFuncs = template.FuncMap{
	"rating": func(avg *float64) string {
		if avg == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.2f", *avg)
	},
}

type views struct {
	pages map[string]*template.Template
}

func parseViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template)}
	for _, name := range []string{pageSearch, pageBook, pageRegister, pageLogin, pageNotFound} {
		t, err := template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s view: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// render executes the page fully before anything reaches w so a template
// error cannot leave a half-written response.
func (v *views) render(w io.Writer, name string, data pageData) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

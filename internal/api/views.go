package api

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"messageboard/internal/board"
	"messageboard/internal/domain"
	"messageboard/internal/youtube"
)

const previewLength = 100

var pages = []string{"index", "create", "show", "edit", "error"}

type views struct {
	pages map[string]*template.Template
}

func loadViews() (*views, error) {
	funcs := template.FuncMap{
		"nl2br":    nl2br,
		"truncate": truncate,
		"ago":      humanize.Time,
		"stamp":    stamp,
		"embedURL": embedURL,
		"authorOf": authorOf,
	}

	v := &views{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/form.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		v.pages[name] = tmpl
	}
	return v, nil
}

func (v *views) render(name string, data any) ([]byte, error) {
	tmpl, ok := v.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown view %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type layoutView struct {
	User   domain.User
	Notice string
	CSRF   string
}

type listView struct {
	layoutView
	Items      []board.Detail
	Page       int
	TotalPages int
	Total      int
	PrevPage   int
	NextPage   int
}

func newListView(layout layoutView, l board.Listing) listView {
	v := listView{
		layoutView: layout,
		Items:      l.Items,
		Page:       l.Page,
		TotalPages: l.TotalPages,
		Total:      l.Total,
	}
	if l.Page > 1 {
		v.PrevPage = min(l.Page-1, l.TotalPages)
	}
	if l.Page < l.TotalPages {
		v.NextPage = l.Page + 1
	}
	return v
}

type detailView struct {
	layoutView
	board.Detail
}

type formView struct {
	layoutView
	Action  string
	Method  string
	Input   board.Input
	Errors  map[string]string
	Message domain.Message
}

type errorView struct {
	layoutView
	Status int
	Text   string
}

func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>\n"))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= previewLength {
		return s
	}
	return string(r[:previewLength]) + "..."
}

func stamp(t time.Time) string {
	return t.Local().Format("Jan 2, 2006 15:04")
}

// embedURL returns the player URL for a stored video link, or "" when the
// link has no recognizable video id.
func embedURL(raw string) string {
	id, ok := youtube.VideoID(raw)
	if !ok {
		return ""
	}
	return youtube.EmbedURL(id)
}

func authorOf(m domain.Message) string {
	if m.AuthorName == "" {
		return "Unknown"
	}
	return m.AuthorName
}

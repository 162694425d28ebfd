// Package view renders the blog's HTML pages and htmx fragments from
// templates embedded in the binary.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/session"
)

//go:embed templates
var templateFS embed.FS

// Page template names.
const (
	PagePostList       = "post_list"
	PagePostDetail     = "post_detail"
	PagePostForm       = "post_form"
	PagePostDelete     = "post_confirm_delete"
	PageReviewList     = "review_list"
	PageLogin          = "login"
	PageRegister       = "register"
	PagePasswordChange = "password_change"
	PageDebugUsers     = "debug_users"
)

// Fragment template names, rendered without the page layout.
const (
	FragmentPostRows   = "post_rows"
	FragmentPostRow    = "post_row"
	FragmentInlineForm = "post_inline_form"
	FragmentTagOptions = "tag_options"
)

// Data is everything a template may look at. Handlers fill in the fields
// their page uses and leave the rest zero.
type Data struct {
	Title   string
	User    *domain.User
	Flashes []session.Flash
	Debug   bool

	Posts    []domain.Post
	Pager    *domain.Page[domain.Post]
	Post     domain.Post
	Comments []domain.Comment
	Users    []domain.User
	Tags     []domain.Tag
	Form     Form
	Editing  bool
	Next     string
}

// Form carries submitted values back into a re-rendered form together with
// the messages of any failed field.
type Form struct {
	Values url.Values
	Errors map[string][]string
}

// NewForm builds a Form from submitted values and the error a service
// returned for them. Errors other than field errors are ignored.
func NewForm(values url.Values, err error) Form {
	f := Form{Values: values}
	if ve := domain.AsValidationErrors(err); ve != nil {
		f.Errors = ve.ByField()
	}
	return f
}

// PostForm pre-fills a Form with the stored fields of p.
func PostForm(p domain.Post) Form {
	return Form{Values: url.Values{
		"title":    {p.Title},
		"body":     {p.Body},
		"status":   {string(p.Status)},
		"tags_csv": {p.TagsCSV()},
	}}
}

// Get returns the submitted value of field.
func (f Form) Get(field string) string { return f.Values.Get(field) }

// ErrorsFor returns the messages recorded for field.
func (f Form) ErrorsFor(field string) []string { return f.Errors[field] }

// NonFieldErrors returns the messages that apply to the whole form.
func (f Form) NonFieldErrors() []string { return f.Errors["__all__"] }

// Invalid reports whether any error was recorded.
func (f Form) Invalid() bool { return len(f.Errors) > 0 }

// Renderer holds the parsed templates. It is safe for concurrent use.
type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
}

var funcs = template.FuncMap{
	"date":        formatDate,
	"truncate":    truncate,
	"can":         can,
	"canEdit":     domain.CanEdit,
	"row":         row,
	"statuses":    statuses,
	"statusClass": statusClass,
	"alertClass":  alertClass,
	"loginURL":    loginURL,
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 02, 2006 at 15:04")
}

func truncate(n int, s string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func can(u *domain.User, c string) bool { return u.Can(domain.Capability(c)) }

// row pairs a post with the viewer for the post_row partial.
func row(u *domain.User, p domain.Post) Data { return Data{User: u, Post: p} }

func statuses() []domain.Status { return domain.Statuses }

func statusClass(s domain.Status) string {
	switch s {
	case domain.StatusPublished:
		return "success"
	case domain.StatusReview:
		return "warning"
	}
	return "secondary"
}

func alertClass(level string) string {
	if level == session.LevelError {
		return "danger"
	}
	return level
}

func loginURL(next string) string {
	return "/accounts/login/?next=" + url.QueryEscape(next)
}

// New parses the embedded templates. Each page is its own template set made
// of the layout, the shared partials and the page file.
func New() (*Renderer, error) {
	partials, err := fs.Glob(templateFS, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("view.New: %w", err)
	}

	fragments, err := template.New("fragments").Funcs(funcs).ParseFS(templateFS, partials...)
	if err != nil {
		return nil, fmt.Errorf("view.New: partials: %w", err)
	}

	pageFiles, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("view.New: %w", err)
	}
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		name := strings.TrimSuffix(path.Base(file), ".html")
		if name == "base" {
			continue
		}
		files := append([]string{"templates/base.html", file}, partials...)
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("view.New: page %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages, fragments: fragments}, nil
}

// Page renders the named page inside the site layout.
func (r *Renderer) Page(w io.Writer, name string, data Data) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view.Page: unknown page %q", name)
	}
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("view.Page: %s: %w", name, err)
	}
	return nil
}

// Fragment renders one partial on its own, for htmx swaps.
func (r *Renderer) Fragment(w io.Writer, name string, data Data) error {
	if err := r.fragments.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("view.Fragment: %s: %w", name, err)
	}
	return nil
}

// Package view holds the embedded page templates and the dashboard menu.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/chefhut/storefront/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed menu.yaml
var menuYAML []byte

//go:embed static
var staticFS embed.FS

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	"money": Money,
	"date":  Date,
	"join":  strings.Join,
	"upper": strings.ToUpper,
	"title": title,
	"add":   func(a, b int) int { return a + b },
	"sub":   func(a, b int) int { return a - b },
	"stars": stars,
}

// Templates parses every page. Templates are named by file name.
func Templates() (*template.Template, error) {
	t, err := template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// Static is the stylesheet and image directory served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Money formats an amount in taka.
func Money(d decimal.Decimal) string {
	return "৳" + d.StringFixedBank(2)
}

// Date renders an RFC 3339 timestamp as a calendar date; other input is
// returned unchanged.
func Date(s string) string {
	if s == "" {
		return "—"
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return s
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func stars(rating float64) string {
	n := int(rating + 0.5)
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

type MenuItem struct {
	Label string `yaml:"label"`
	Path  string `yaml:"path"`
}

type MenuSection struct {
	Title string       `yaml:"title"`
	Roles []model.Role `yaml:"roles"`
	Items []MenuItem   `yaml:"items"`
}

type Menu struct {
	Sections []MenuSection `yaml:"sections"`
}

func LoadMenu() (*Menu, error) {
	var m Menu
	if err := yaml.Unmarshal(menuYAML, &m); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}
	return &m, nil
}

// For returns the sections visible to role. A section without roles is shown
// to everyone.
func (m *Menu) For(role model.Role) []MenuSection {
	var out []MenuSection
	for _, s := range m.Sections {
		if len(s.Roles) == 0 {
			out = append(out, s)
			continue
		}
		for _, r := range s.Roles {
			if r == role {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

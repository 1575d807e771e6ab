// Package render turns portfolio records into HTML fragments for the page.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/okian/vitrine/internal/domain/model"
)

// Display limits and glyphs.
const (
	MaxBadges        = 6
	PlaceholderGlyph = "📌"
	defaultSkillIcon = "💡"
)

// ErrUnknownRecord is returned for record types without a card layout.
var ErrUnknownRecord = errors.New("no card layout for record")

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

type badge struct {
	Name string
	Link string
	Logo template.URL
}

type cardView struct {
	Kind        string
	Title       string
	Subtitle    string
	Location    string
	Description string
	Meta        []string
	Badges      []badge
	Logo        template.URL
	LogoAlt     string
	Glyph       string
	Icon        string
	Skills      []string
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	// #nosec G203 -- produced by html/template
	return template.HTML(buf.String()), nil
}

// Card renders one record. a may be nil.
func Card(r model.Record, a *Assets) (template.HTML, error) {
	v, err := cardFor(r, a)
	if err != nil {
		return "", err
	}
	return execute("card", v)
}

func cardFor(r model.Record, a *Assets) (cardView, error) {
	switch rec := r.(type) {
	case model.Experience:
		v := cardView{
			Kind:        string(model.CategoryExperiences),
			Title:       rec.Title,
			Subtitle:    rec.Client,
			Description: rec.Description,
			Meta:        meta("📅", rec.Duration, "🎯", rec.Impact),
			Badges:      badges(rec.Technologies, a),
		}
		v.logo(a, rec.ClientLogo, rec.Client, rec.Icon)
		return v, nil
	case model.Certification:
		v := cardView{
			Kind:        string(model.CategoryCertifications),
			Title:       rec.Name,
			Subtitle:    rec.Issuer,
			Description: rec.Description,
			Meta:        meta("📅", firstOf(rec.Year, rec.Date)),
		}
		v.logo(a, rec.Logo, rec.Issuer, rec.Icon)
		return v, nil
	case model.Education:
		v := cardView{
			Kind:        string(model.CategoryEducation),
			Title:       rec.Heading(),
			Location:    rec.Location,
			Description: rec.Focus,
			Meta:        meta("📅", firstOf(rec.Year, rec.Period), "🏅", rec.Achievement),
		}
		if rec.Degree != "" {
			v.Subtitle = rec.School
		}
		v.logo(a, rec.Logo, rec.School, rec.Icon)
		return v, nil
	case model.SkillCategory:
		icon := rec.Icon
		if icon == "" {
			icon = defaultSkillIcon
		}
		return cardView{
			Kind:   string(model.CategorySkills),
			Title:  rec.Name,
			Icon:   icon,
			Skills: rec.Skills,
		}, nil
	default:
		return cardView{}, fmt.Errorf("%w: %T", ErrUnknownRecord, r)
	}
}

func (v *cardView) logo(a *Assets, configured, org, icon string) {
	if uri, ok := a.OrgLogo(configured, org); ok {
		v.Logo = uri
		v.LogoAlt = org
		return
	}
	v.Glyph = firstOf(icon, PlaceholderGlyph)
}

func badges(techs []string, a *Assets) []badge {
	if len(techs) > MaxBadges {
		techs = techs[:MaxBadges]
	}
	out := make([]badge, 0, len(techs))
	for _, t := range techs {
		b := badge{Name: t, Link: a.TechLink(t)}
		if uri, ok := a.TechLogo(t); ok {
			b.Logo = uri
		}
		out = append(out, b)
	}
	return out
}

// meta pairs glyphs with values and drops empty values.
func meta(pairs ...string) []string {
	var out []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			out = append(out, pairs[i]+" "+pairs[i+1])
		}
	}
	return out
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// TimelineEntry is one dot on the timeline.
type TimelineEntry struct {
	// Index is the record's position in the category's original order.
	Index  int
	Label  string
	Title  string
	Active bool
}

// Timeline holds the display order and the original-index mapping together so
// the two can never drift apart.
type Timeline struct {
	Entries []TimelineEntry
}

// BuildTimeline orders items by date key ascending, keeping file order for
// ties, and marks the entry whose original index is active.
func BuildTimeline(items []model.Record, active int) Timeline {
	entries := make([]TimelineEntry, len(items))
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.DateKey()
		label := keys[i]
		if label == model.NoDate {
			label = it.Heading()
		}
		entries[i] = TimelineEntry{Index: i, Label: label, Title: it.Heading(), Active: i == active}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return keys[entries[i].Index] < keys[entries[j].Index]
	})
	return Timeline{Entries: entries}
}

// Position returns the display position of an original index, or -1.
func (t Timeline) Position(index int) int {
	for pos, e := range t.Entries {
		if e.Index == index {
			return pos
		}
	}
	return -1
}

// HTML renders the timeline. An empty timeline renders as "".
func (t Timeline) HTML() (template.HTML, error) {
	if len(t.Entries) == 0 {
		return "", nil
	}
	return execute("timeline", t)
}

// Stat is one figure in the stats strip.
type Stat struct {
	Icon  string
	Value int
	Label string
}

// Stats summarises the record counts.
func Stats(p *model.Portfolio) []Stat {
	return []Stat{
		{Icon: "🚀", Value: p.Count(model.CategoryExperiences), Label: "Projects"},
		{Icon: "🧠", Value: p.Count(model.CategorySkills), Label: "Skill areas"},
		{Icon: "🏆", Value: p.Count(model.CategoryCertifications), Label: "Certifications"},
		{Icon: "🎓", Value: p.Count(model.CategoryEducation), Label: "Degrees"},
	}
}

// StatsHTML renders Stats.
func StatsHTML(p *model.Portfolio) (template.HTML, error) {
	return execute("stats", Stats(p))
}

// Header renders the profile banner. A nil profile uses fallbackName.
func Header(profile *model.Profile, fallbackName string) (template.HTML, error) {
	view := model.Profile{Name: fallbackName}
	if profile != nil {
		view = *profile
		if view.Name == "" {
			view.Name = fallbackName
		}
	}
	return execute("header", view)
}

// Footer renders the page footer with the active model description.
func Footer(owner, modelInfo string, now time.Time) (template.HTML, error) {
	return execute("footer", struct {
		Year      int
		Owner     string
		ModelInfo string
	}{Year: now.Year(), Owner: owner, ModelInfo: modelInfo})
}

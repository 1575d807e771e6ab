// Package lookup implements the read-only query tools over the portfolio.
//
// Every tool returns text meant for a language model or a human, never
// structured data. Empty results produce an explicit sentence rather than an
// empty string.
package lookup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/vitrine/internal/domain/model"
	"github.com/okian/vitrine/internal/domain/scoring"
)

// Output limits.
const (
	descriptionPrefix   = 180
	searchSnippetPrefix = 100
	maxTechnologies     = 5
	skillDigestSize     = 4
	maxMatchExperiences = 5
	maxMatchSkills      = 8
	defaultRecentCount  = 3
)

// NoExperiences is returned when SearchExperiences finds nothing.
const NoExperiences = "No experiences found matching the criteria."

// Filter narrows SearchExperiences. Empty fields are ignored; supplied ones
// must all match.
type Filter struct {
	Technology string
	Client     string
	Sector     string
}

func (f Filter) matches(e model.Experience) bool {
	if f.Technology != "" {
		tech := strings.ToLower(f.Technology)
		found := false
		for _, t := range e.Technologies {
			if strings.Contains(strings.ToLower(t), tech) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Client != "" && !containsFold(e.Client, f.Client) {
		return false
	}
	if f.Sector != "" && !containsFold(e.Sector, f.Sector) {
		return false
	}
	return true
}

// FilterExperiences returns the experiences matching f in file order.
func FilterExperiences(p *model.Portfolio, f Filter) []model.Experience {
	if p == nil {
		return nil
	}
	var out []model.Experience
	for _, e := range p.Experiences {
		if f.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// SearchExperiences summarises the experiences matching f.
func SearchExperiences(p *model.Portfolio, f Filter) string {
	found := FilterExperiences(p, f)
	if len(found) == 0 {
		return NoExperiences
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d experience(s):\n\n", len(found))
	for _, e := range found {
		fmt.Fprintf(&b, "**%s** at %s (%s)\n", e.Title, e.Client, e.Duration)
		fmt.Fprintf(&b, "Description: %s...\n", prefix(e.Description, descriptionPrefix))
		fmt.Fprintf(&b, "Technologies: %s\n", strings.Join(head(e.Technologies, maxTechnologies), ", "))
		fmt.Fprintf(&b, "Impact: %s\n\n", e.Impact)
	}
	return b.String()
}

// FindSkillCategory returns the first category whose name contains name,
// case-insensitively. Later matches are ignored.
func FindSkillCategory(p *model.Portfolio, name string) (model.SkillCategory, bool) {
	if p == nil {
		return model.SkillCategory{}, false
	}
	for _, s := range p.Skills {
		if containsFold(s.Name, name) {
			return s, true
		}
	}
	return model.SkillCategory{}, false
}

// GetSkills lists one skill category in full, or every category's first few
// skills when category is empty.
func GetSkills(p *model.Portfolio, category string) string {
	if strings.TrimSpace(category) != "" {
		set, ok := FindSkillCategory(p, category)
		if !ok {
			return fmt.Sprintf("No skill category found matching '%s'", category)
		}
		return fmt.Sprintf("**%s**:\n• %s", set.Name, strings.Join(set.Skills, "\n• "))
	}

	var b strings.Builder
	b.WriteString(possessive(p, "Technical Skills"))
	b.WriteString(":\n\n")
	if p != nil {
		for _, s := range p.Skills {
			fmt.Fprintf(&b, "**%s** %s\n", s.Name, s.Icon)
			fmt.Fprintf(&b, "• %s\n\n", strings.Join(head(s.Skills, skillDigestSize), "\n• "))
		}
	}
	return b.String()
}

// GetCertifications lists every certification.
func GetCertifications(p *model.Portfolio) string {
	var b strings.Builder
	b.WriteString(possessive(p, "Certifications"))
	b.WriteString(":\n\n")
	if p != nil {
		for _, c := range p.Certifications {
			fmt.Fprintf(&b, "• **%s** - %s (%s)\n", c.Name, c.Issuer, firstSet(c.Year, c.Date))
			fmt.Fprintf(&b, "  %s\n\n", c.Description)
		}
	}
	return b.String()
}

// GetEducation lists every education entry.
func GetEducation(p *model.Portfolio) string {
	var b strings.Builder
	b.WriteString(possessive(p, "Education"))
	b.WriteString(":\n\n")
	if p != nil {
		for _, e := range p.Education {
			fmt.Fprintf(&b, "**%s** - %s (%s)\n", e.School, e.Degree, firstSet(e.Year, e.Period))
			if e.Location != "" {
				fmt.Fprintf(&b, "  Location: %s\n", e.Location)
			}
			if e.Achievement != "" {
				fmt.Fprintf(&b, "  Achievement: %s\n", e.Achievement)
			}
			if e.Focus != "" {
				fmt.Fprintf(&b, "  Focus: %s\n", e.Focus)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// AnalyzeMatch explains how well the portfolio fits requirements.
func AnalyzeMatch(p *model.Portfolio, requirements string) string {
	res := scoring.Match(p, requirements)

	var b strings.Builder
	fmt.Fprintf(&b, "Profile Match Analysis for: %s\n\n", requirements)
	if len(res.Experiences) > 0 {
		fmt.Fprintf(&b, "**Relevant Experiences (%d):**\n", len(res.Experiences))
		fmt.Fprintf(&b, "• %s\n\n", strings.Join(head(res.Experiences, maxMatchExperiences), "\n• "))
	}
	if len(res.Skills) > 0 {
		fmt.Fprintf(&b, "**Matching Skills (%d):**\n", len(res.Skills))
		fmt.Fprintf(&b, "• %s\n\n", strings.Join(dedupe(head(res.Skills, maxMatchSkills)), "\n• "))
	}
	b.WriteString(res.Tier.Verdict())
	b.WriteString("\n")
	return b.String()
}

// SearchPortfolio looks for query across experiences, skills and certifications.
func SearchPortfolio(p *model.Portfolio, query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	var results []string
	if p != nil && q != "" {
		for _, e := range p.Experiences {
			if strings.Contains(strings.ToLower(e.Title), q) ||
				strings.Contains(strings.ToLower(e.Description), q) ||
				strings.Contains(strings.ToLower(e.Client), q) ||
				anyContains(e.Technologies, q) {
				results = append(results, fmt.Sprintf("Experience: %s at %s - %s...",
					e.Title, e.Client, prefix(e.Description, searchSnippetPrefix)))
			}
		}
		for _, s := range p.Skills {
			var hits []string
			for _, skill := range s.Skills {
				if strings.Contains(strings.ToLower(skill), q) {
					hits = append(hits, skill)
				}
			}
			if len(hits) > 0 {
				results = append(results, fmt.Sprintf("Skills in %s: %s", s.Name, strings.Join(hits, ", ")))
			}
		}
		for _, c := range p.Certifications {
			if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Issuer), q) {
				results = append(results, fmt.Sprintf("Certification: %s (%s)", c.Name, c.Issuer))
			}
		}
	}
	if len(results) == 0 {
		return fmt.Sprintf("No results found for '%s'", query)
	}
	return fmt.Sprintf("Results for '%s':\n\n• %s", query, strings.Join(results, "\n• "))
}

// RecentExperiences returns up to n experiences ordered by date key,
// most recent first. Equal keys keep file order.
func RecentExperiences(p *model.Portfolio, n int) []model.Experience {
	if p == nil || n <= 0 {
		return nil
	}
	sorted := make([]model.Experience, len(p.Experiences))
	copy(sorted, p.Experiences)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DateKey() > sorted[j].DateKey()
	})
	return head(sorted, n)
}

// RecentProjects lists the n most recent experiences. n <= 0 uses the default.
func RecentProjects(p *model.Portfolio, n int) string {
	if n <= 0 {
		n = defaultRecentCount
	}
	recent := RecentExperiences(p, n)
	if len(recent) == 0 {
		return "No recent projects found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d most recent projects:\n\n", len(recent))
	for i, e := range recent {
		fmt.Fprintf(&b, "%d. **%s** (%s)\n", i+1, e.Title, e.DateKey())
		fmt.Fprintf(&b, "   Client: %s\n", e.Client)
		fmt.Fprintf(&b, "   Impact: %s\n", e.Impact)
		fmt.Fprintf(&b, "   Tech stack: %s\n\n", strings.Join(head(e.Technologies, maxTechnologies), ", "))
	}
	return b.String()
}

func possessive(p *model.Portfolio, noun string) string {
	if owner := p.OwnerName(""); owner != "" {
		return owner + "'s " + noun
	}
	return noun
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func anyContains(list []string, lowerSub string) bool {
	for _, s := range list {
		if strings.Contains(strings.ToLower(s), lowerSub) {
			return true
		}
	}
	return false
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func head[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func firstSet(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

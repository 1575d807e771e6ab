// Package model contains the portfolio records passed between layers.
//
// Each category has its own record type. All of them satisfy Record so the
// navigation and rendering layers can treat a category as an ordered list.
package model

import "strings"

// NoDate is the sort key used when a record carries no date-like field.
const NoDate = "0000"

// Category names one of the four record groupings.
type Category string

// Known categories, in display order.
const (
	CategoryExperiences    Category = "experiences"
	CategorySkills         Category = "skills"
	CategoryCertifications Category = "certifications"
	CategoryEducation      Category = "education"
)

// Categories lists the known categories in display order.
var Categories = []Category{CategoryExperiences, CategorySkills, CategoryCertifications, CategoryEducation}

// ParseCategory normalises a user supplied name. Unknown names are kept as-is
// and simply yield no items.
func ParseCategory(s string) Category {
	return Category(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether c is one of the four categories.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Record is one portfolio entry.
type Record interface {
	Category() Category
	// Heading is the title line shown on cards and in logs.
	Heading() string
	// DateKey is the display and sort key. Records without any date field
	// return NoDate.
	DateKey() string
}

// Experience is a professional engagement.
type Experience struct {
	Title        string   `yaml:"title" validate:"required"`
	Client       string   `yaml:"client" validate:"required"`
	Sector       string   `yaml:"sector"`
	Description  string   `yaml:"description"`
	Duration     string   `yaml:"duration"`
	Date         string   `yaml:"date"`
	Year         string   `yaml:"year"`
	Period       string   `yaml:"period"`
	Technologies []string `yaml:"technologies"`
	Impact       string   `yaml:"impact"`
	Icon         string   `yaml:"icon"`
	ClientLogo   string   `yaml:"client_logo"`
}

func (Experience) Category() Category { return CategoryExperiences }
func (e Experience) Heading() string { return e.Title }
func (e Experience) DateKey() string { return firstNonEmpty(e.Date, e.Year, e.Period) }

// SkillCategory groups related skills.
type SkillCategory struct {
	Name   string   `yaml:"category" validate:"required"`
	Icon   string   `yaml:"icon"`
	Skills []string `yaml:"skills"`
}

func (SkillCategory) Category() Category { return CategorySkills }
func (s SkillCategory) Heading() string { return s.Name }
func (SkillCategory) DateKey() string { return NoDate }

// Certification is an earned credential.
type Certification struct {
	Name        string `yaml:"name" validate:"required"`
	Issuer      string `yaml:"issuer" validate:"required"`
	Year        string `yaml:"year"`
	Date        string `yaml:"date"`
	Period      string `yaml:"period"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Logo        string `yaml:"logo"`
}

func (Certification) Category() Category { return CategoryCertifications }
func (c Certification) Heading() string { return c.Name }
func (c Certification) DateKey() string { return firstNonEmpty(c.Date, c.Year, c.Period) }

// Education is a degree or school entry.
type Education struct {
	School      string `yaml:"school" validate:"required"`
	Degree      string `yaml:"degree"`
	Date        string `yaml:"date"`
	Year        string `yaml:"year"`
	Period      string `yaml:"period"`
	Location    string `yaml:"location"`
	Focus       string `yaml:"focus"`
	Achievement string `yaml:"achievement"`
	Icon        string `yaml:"icon"`
	Logo        string `yaml:"logo"`
}

func (Education) Category() Category { return CategoryEducation }
func (e Education) Heading() string {
	if e.Degree != "" {
		return e.Degree
	}
	return e.School
}
func (e Education) DateKey() string { return firstNonEmpty(e.Date, e.Year, e.Period) }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return NoDate
}

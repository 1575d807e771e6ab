package model

// Link is a labelled profile URL.
type Link struct {
	Label string `yaml:"label" json:"label" validate:"required"`
	URL   string `yaml:"url" json:"url" validate:"required,url"`
}

// Profile describes the portfolio owner. Every field is optional.
type Profile struct {
	Name     string `yaml:"name"`
	Headline string `yaml:"headline"`
	Tagline  string `yaml:"tagline"`
	Summary  string `yaml:"summary"`
	Links    []Link `yaml:"links" validate:"dive"`
}

// Portfolio is the full record set loaded from the data file. It is never
// mutated after load.
type Portfolio struct {
	Profile        *Profile        `yaml:"profile"`
	Experiences    []Experience    `yaml:"experiences" validate:"dive"`
	Skills         []SkillCategory `yaml:"skills" validate:"dive"`
	Certifications []Certification `yaml:"certifications" validate:"dive"`
	Education      []Education     `yaml:"education" validate:"dive"`
}

// Items returns the ordered records of c, or nil for unknown categories.
func (p *Portfolio) Items(c Category) []Record {
	if p == nil {
		return nil
	}
	switch c {
	case CategoryExperiences:
		return toRecords(p.Experiences)
	case CategorySkills:
		return toRecords(p.Skills)
	case CategoryCertifications:
		return toRecords(p.Certifications)
	case CategoryEducation:
		return toRecords(p.Education)
	default:
		return nil
	}
}

// Count returns the number of records in c.
func (p *Portfolio) Count(c Category) int {
	if p == nil {
		return 0
	}
	switch c {
	case CategoryExperiences:
		return len(p.Experiences)
	case CategorySkills:
		return len(p.Skills)
	case CategoryCertifications:
		return len(p.Certifications)
	case CategoryEducation:
		return len(p.Education)
	default:
		return 0
	}
}

// OwnerName returns the profile name or fallback when none is set.
func (p *Portfolio) OwnerName(fallback string) string {
	if p == nil || p.Profile == nil || p.Profile.Name == "" {
		return fallback
	}
	return p.Profile.Name
}

func toRecords[T Record](items []T) []Record {
	if len(items) == 0 {
		return []Record{}
	}
	out := make([]Record, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// Package scoring rates how well the portfolio matches a requirements text.
//
// The heuristic is loose: tokens are whitespace separated and
// matched as substrings, so "go" also hits "django". Ties are not broken.
package scoring

import (
	"strings"

	"github.com/okian/vitrine/internal/domain/model"
)

// Weights and tier thresholds. A score strictly above a threshold
// reaches that tier.
const (
	experienceWeight = 3
	skillWeight      = 1
	excellentAbove   = 15
	goodAbove        = 8
	partialAbove     = 3
)

// Tier is a qualitative match bucket. Higher values are better matches.
type Tier int

// Tiers in ascending order.
const (
	TierLearning Tier = iota
	TierPartial
	TierGood
	TierExcellent
)

// String returns the short tier name.
func (t Tier) String() string {
	switch t {
	case TierExcellent:
		return "excellent"
	case TierGood:
		return "good"
	case TierPartial:
		return "partial"
	default:
		return "learning opportunity"
	}
}

// Verdict is the one-line assessment shown to the reader.
func (t Tier) Verdict() string {
	switch t {
	case TierExcellent:
		return "✅ **Excellent Match**: Strong alignment with requirements"
	case TierGood:
		return "👍 **Good Match**: Relevant experience and skills"
	case TierPartial:
		return "💡 **Partial Match**: Some relevant experience"
	default:
		return "📚 **Learning Opportunity**: Fast learner ready to acquire new skills"
	}
}

// TierFor buckets a score. It is monotonic in score.
func TierFor(score int) Tier {
	switch {
	case score > excellentAbove:
		return TierExcellent
	case score > goodAbove:
		return TierGood
	case score > partialAbove:
		return TierPartial
	default:
		return TierLearning
	}
}

// Result is the outcome of a Match.
type Result struct {
	Score int
	Tier  Tier
	// Experiences holds the titles of matching experiences in file order.
	Experiences []string
	// Skills holds every matching skill in file order, duplicates included.
	Skills []string
}

// Tokens splits requirements into lowercase whitespace separated tokens.
func Tokens(requirements string) []string {
	return strings.Fields(strings.ToLower(requirements))
}

// Match scores requirements against p.
func Match(p *model.Portfolio, requirements string) Result {
	tokens := Tokens(requirements)
	var res Result
	if p == nil || len(tokens) == 0 {
		return res
	}

	for _, exp := range p.Experiences {
		text := strings.ToLower(exp.Title + " " + exp.Description)
		techs := strings.ToLower(strings.Join(exp.Technologies, " "))
		if containsAny(text, tokens) || containsAny(techs, tokens) {
			res.Experiences = append(res.Experiences, exp.Title)
			res.Score += experienceWeight
		}
	}
	for _, set := range p.Skills {
		for _, skill := range set.Skills {
			if containsAny(strings.ToLower(skill), tokens) {
				res.Skills = append(res.Skills, skill)
				res.Score += skillWeight
			}
		}
	}
	res.Tier = TierFor(res.Score)
	return res
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

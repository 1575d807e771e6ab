package scoring

import (
	"testing"

	"github.com/okian/vitrine/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func fixture() *model.Portfolio {
	return &model.Portfolio{
		Experiences: []model.Experience{
			{Title: "GenAI Tech Lead", Description: "Multi-agent platform", Technologies: []string{"Azure", "MCP"}},
			{Title: "Data Engineer", Description: "Batch pipelines", Technologies: []string{"Spark", "Python"}},
			{Title: "Chatbot Builder", Description: "Copilot assistants", Technologies: []string{"Copilot Studio", "Azure"}},
		},
		Skills: []model.SkillCategory{
			{Name: "Cloud", Skills: []string{"Azure", "Azure AI Search", "Docker"}},
			{Name: "Languages", Skills: []string{"Python", "Go"}},
		},
	}
}

func TestMatch(t *testing.T) {
	Convey("Given a portfolio and the default matcher", t, func() {
		p := fixture()

		Convey("When requirements mention a shared technology", func() {
			res := Match(p, "AZURE")

			Convey("Then experiences score 3 and skills score 1 each", func() {
				So(res.Experiences, ShouldResemble, []string{"GenAI Tech Lead", "Chatbot Builder"})
				So(res.Skills, ShouldResemble, []string{"Azure", "Azure AI Search"})
				So(res.Score, ShouldEqual, 2*3+2*1)
				So(res.Tier, ShouldEqual, TierPartial)
			})
		})

		Convey("When tokens match inside words", func() {
			res := Match(p, "pipe")

			Convey("Then substring matches count", func() {
				So(res.Experiences, ShouldResemble, []string{"Data Engineer"})
				So(res.Score, ShouldEqual, 3)
				So(res.Tier, ShouldEqual, TierLearning)
			})
		})

		Convey("When requirements are blank", func() {
			res := Match(p, "   ")

			So(res.Score, ShouldEqual, 0)
			So(res.Tier, ShouldEqual, TierLearning)
		})

		Convey("When the portfolio is nil", func() {
			So(Match(nil, "azure").Score, ShouldEqual, 0)
		})
	})
}

func TestTierFor(t *testing.T) {
	Convey("Given score boundaries", t, func() {
		So(TierFor(0), ShouldEqual, TierLearning)
		So(TierFor(3), ShouldEqual, TierLearning)
		So(TierFor(4), ShouldEqual, TierPartial)
		So(TierFor(8), ShouldEqual, TierPartial)
		So(TierFor(9), ShouldEqual, TierGood)
		So(TierFor(15), ShouldEqual, TierGood)
		So(TierFor(16), ShouldEqual, TierExcellent)

		Convey("Then tiers never decrease as the score grows", func() {
			prev := TierFor(0)
			for s := 1; s <= 40; s++ {
				cur := TierFor(s)
				So(cur, ShouldBeGreaterThanOrEqualTo, prev)
				prev = cur
			}
		})

		Convey("Then a broader requirement never lowers the tier", func() {
			p := fixture()
			narrow := Match(p, "azure")
			broad := Match(p, "azure python docker go")
			So(broad.Score, ShouldBeGreaterThanOrEqualTo, narrow.Score)
			So(broad.Tier, ShouldBeGreaterThanOrEqualTo, narrow.Tier)
		})
	})
}

func TestTierText(t *testing.T) {
	Convey("Given each tier", t, func() {
		So(TierExcellent.String(), ShouldEqual, "excellent")
		So(TierLearning.String(), ShouldEqual, "learning opportunity")
		So(TierGood.Verdict(), ShouldContainSubstring, "Good Match")
		So(TierPartial.Verdict(), ShouldContainSubstring, "Partial Match")
	})
}

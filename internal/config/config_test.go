package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/vitrine/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":7860")
			convey.So(cfg.Backend, convey.ShouldEqual, config.BackendAgent)
			convey.So(cfg.CompletionProvider, convey.ShouldEqual, config.ProviderOpenAI)
			convey.So(cfg.AgentMaxSteps, convey.ShouldEqual, 6)
			convey.So(cfg.MaxTokens, convey.ShouldEqual, 500)
			convey.So(cfg.SessionTTL(), convey.ShouldEqual, time.Hour)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, time.Minute)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the trigger table keeps its order", func() {
			convey.So(len(cfg.EasterEggs), convey.ShouldEqual, 6)
			convey.So(cfg.EasterEggs[0].Phrase, convey.ShouldEqual, "poupouille")
			convey.So(cfg.EasterEggs[1].Phrase, convey.ShouldEqual, "tchoupinoux")
			convey.So(cfg.EasterEggs[1].Special, convey.ShouldBeTrue)
			convey.So(cfg.EasterEggs[2].Phrase, convey.ShouldEqual, "péchailloux")
			convey.So(cfg.EasterEggs[3].Phrase, convey.ShouldEqual, "péchaille")
		})

		convey.Convey("Then known technologies have links", func() {
			convey.So(cfg.TechLinks["docker"], convey.ShouldEqual, "https://www.docker.com/")
			convey.So(cfg.TechLinks["mcp"], convey.ShouldEqual, "https://modelcontextprotocol.io/")
		})
	})
}

func TestConfig_Normalize(t *testing.T) {
	convey.Convey("Given a config with mixed-case values", t, func() {
		cfg := config.New()
		cfg.EasterEggs = []config.EasterEgg{{Phrase: "  ChnaWAX ", Gender: " mon "}}
		cfg.TechLinks = map[string]string{"Docker": "https://www.docker.com/"}
		cfg.Backend = " Completion "
		cfg.CompletionProvider = "GENAI"

		cfg.Normalize()

		convey.Convey("Then phrases, keys and enums are lowercased", func() {
			convey.So(cfg.EasterEggs[0].Phrase, convey.ShouldEqual, "chnawax")
			convey.So(cfg.EasterEggs[0].Gender, convey.ShouldEqual, "mon")
			convey.So(cfg.TechLinks, convey.ShouldContainKey, "docker")
			convey.So(cfg.Backend, convey.ShouldEqual, config.BackendCompletion)
			convey.So(cfg.CompletionProvider, convey.ShouldEqual, config.ProviderGenAI)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := map[string]func(c *config.Config){
			"addr":         func(c *config.Config) { c.Addr = "" },
			"data_path":    func(c *config.Config) { c.DataPath = "" },
			"backend":      func(c *config.Config) { c.Backend = "oracle" },
			"provider":     func(c *config.Config) { c.CompletionProvider = "hf" },
			"ttl":          func(c *config.Config) { c.SessionTTLMinutes = 0 },
			"rate":         func(c *config.Config) { c.ChatRatePerMinute = 0 },
			"dedupe":       func(c *config.Config) { c.DedupeSize = -1 },
			"steps":        func(c *config.Config) { c.AgentMaxSteps = 0 },
			"tokens":       func(c *config.Config) { c.MaxTokens = 0 },
			"timeout":      func(c *config.Config) { c.RequestTimeoutSeconds = -1 },
			"empty phrase": func(c *config.Config) { c.EasterEggs = []config.EasterEgg{{Gender: "ma"}} },
		}
		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			_ = name
		}
	})
}

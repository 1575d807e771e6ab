package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/okian/vitrine/internal/adapters/http/api"
	"github.com/okian/vitrine/internal/adapters/llm"
	"github.com/okian/vitrine/internal/adapters/session"
	service "github.com/okian/vitrine/internal/app"
	"github.com/okian/vitrine/internal/config"
	"github.com/okian/vitrine/internal/domain/chat"
	"github.com/okian/vitrine/internal/domain/model"
	"github.com/okian/vitrine/internal/domain/render"
	"github.com/okian/vitrine/internal/domain/types"
	"github.com/okian/vitrine/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type memStore struct{ p *model.Portfolio }

func (m memStore) Load(context.Context) (*model.Portfolio, error) { return m.p, nil }

func (m memStore) Items(_ context.Context, c model.Category) ([]model.Record, error) {
	return m.p.Items(c), nil
}

type echoBackend struct{ err error }

func (e echoBackend) Name() string     { return "echo" }
func (e echoBackend) Describe() string { return "echo-model (test)" }
func (e echoBackend) Call(_ context.Context, req chat.Request) chat.Result {
	if e.err != nil {
		return chat.Failure(e.err)
	}
	return chat.Success("**echo** " + req.Message)
}

func portfolio() *model.Portfolio {
	return &model.Portfolio{
		Profile: &model.Profile{Name: "Ada Example", Headline: "a GenAI engineer"},
		Experiences: []model.Experience{
			{Title: "Data Engineer", Client: "Globex", Date: "2021-03"},
			{Title: "GenAI Tech Lead", Client: "Acme Rail", Date: "2024-01", Sector: "Transport", Technologies: []string{"MCP"}},
		},
		Skills: []model.SkillCategory{{Name: "Agents", Skills: []string{"MCP"}}},
	}
}

func newServer(be chat.Backend, mutate func(*config.Config)) (*httptest.Server, func()) {
	cfg := config.New()
	cfg.ChatRatePerMinute = 600
	cfg.ChatBurst = 100
	if mutate != nil {
		mutate(cfg)
	}
	svc := service.New(
		service.WithConfig(cfg),
		service.WithStore(memStore{p: portfolio()}),
		service.WithAssets(render.NewAssets(nil, nil)),
		service.WithLogger(logger.Nop()),
		service.WithBackendFactory(func(context.Context, *config.Config, llm.ToolRunner, string) *llm.Backends {
			return &llm.Backends{Preferred: be}
		}),
	)
	So(svc.Start(context.Background()), ShouldBeNil)

	mux := http.NewServeMux()
	api.NewServer(svc, logger.Nop()).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	return srv, func() {
		srv.Close()
		svc.Stop()
	}
}

// client keeps the session cookie between calls.
type client struct {
	base   string
	cookie *http.Cookie
}

func (c *client) do(method, path, body string) *http.Response {
	req, err := http.NewRequest(method, c.base+path, strings.NewReader(body))
	So(err, ShouldBeNil)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	So(err, ShouldBeNil)
	for _, ck := range resp.Cookies() {
		if ck.Name == session.CookieName {
			c.cookie = ck
		}
	}
	return resp
}

func decodeBody(resp *http.Response, v any) {
	defer resp.Body.Close()
	So(json.NewDecoder(resp.Body).Decode(v), ShouldBeNil)
}

func TestNavigationEndpoints(t *testing.T) {
	Convey("Given a running API", t, func() {
		srv, done := newServer(echoBackend{}, nil)
		defer done()
		c := &client{base: srv.URL}

		Convey("GET /api/view issues a cookie and shows the latest experience", func() {
			resp := c.do(http.MethodGet, "/api/view", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(c.cookie, ShouldNotBeNil)
			So(c.cookie.HttpOnly, ShouldBeTrue)

			var v types.View
			decodeBody(resp, &v)
			So(v.Category, ShouldEqual, model.CategoryExperiences)
			So(v.Index, ShouldEqual, 1)
			So(v.Count, ShouldEqual, 2)

			doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(v.Card)))
			So(err, ShouldBeNil)
			So(doc.Text(), ShouldContainSubstring, "GenAI Tech Lead")
		})

		Convey("Navigation state survives across requests on the same cookie", func() {
			resp := c.do(http.MethodPost, "/api/nav/step", `{"direction":1}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var v types.View
			decodeBody(resp, &v)
			So(v.Index, ShouldEqual, 0)
			So(v.Changed, ShouldBeTrue)

			resp = c.do(http.MethodGet, "/api/view", "")
			decodeBody(resp, &v)
			So(v.Index, ShouldEqual, 0)
		})

		Convey("A jump without an index is a bad request", func() {
			resp := c.do(http.MethodPost, "/api/nav/jump", `{}`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An invalid step direction is a bad request", func() {
			resp := c.do(http.MethodPost, "/api/nav/step", `{"direction":3}`)
			var e map[string]string
			decodeBody(resp, &e)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(e["code"], ShouldEqual, "bad_request")
		})

		Convey("Malformed JSON is a bad request", func() {
			resp := c.do(http.MethodPost, "/api/nav/category", `{"category":`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Selecting a category switches the carousel", func() {
			resp := c.do(http.MethodPost, "/api/nav/category", `{"category":"skills"}`)
			var v types.View
			decodeBody(resp, &v)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(v.Category, ShouldEqual, model.CategorySkills)
			So(string(v.Card), ShouldContainSubstring, "Agents")
		})

		Convey("The wrong method is rejected by the mux", func() {
			resp := c.do(http.MethodGet, "/api/nav/step", "")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestChatEndpoints(t *testing.T) {
	Convey("Given a running API", t, func() {
		srv, done := newServer(echoBackend{}, nil)
		defer done()
		c := &client{base: srv.URL}

		Convey("A chat turn appends to the session history", func() {
			resp := c.do(http.MethodPost, "/api/chat", `{"message":"hello","request_id":"r1"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var res types.ChatResult
			decodeBody(resp, &res)
			So(res.History, ShouldHaveLength, 1)
			So(res.History[0].User, ShouldEqual, "hello")
			So(string(res.Reply), ShouldContainSubstring, "<strong>echo</strong>")

			Convey("And a repeated request id is answered without a new turn", func() {
				resp := c.do(http.MethodPost, "/api/chat", `{"message":"hello","request_id":"r1"}`)
				var again types.ChatResult
				decodeBody(resp, &again)
				So(again.Duplicate, ShouldBeTrue)
				So(again.History, ShouldHaveLength, 1)
			})

			Convey("And the history endpoint returns it", func() {
				resp := c.do(http.MethodGet, "/api/chat/history", "")
				var h struct {
					History chat.History `json:"history"`
				}
				decodeBody(resp, &h)
				So(h.History, ShouldHaveLength, 1)
			})
		})

		Convey("A trigger phrase unlocks the easter egg", func() {
			resp := c.do(http.MethodPost, "/api/chat", `{"message":"Salut TCHOUPINOUX"}`)
			var res types.ChatResult
			decodeBody(resp, &res)
			So(res.Triggered, ShouldBeTrue)
			So(res.Notification, ShouldContainSubstring, "Easter egg found")
			So(res.History, ShouldHaveLength, 2)
			So(res.History[1].User, ShouldEqual, "")
		})

		Convey("A history from another cookie is not visible", func() {
			c.do(http.MethodPost, "/api/chat", `{"message":"hello"}`).Body.Close()
			other := &client{base: srv.URL}
			resp := other.do(http.MethodGet, "/api/chat/history", "")
			var h struct {
				History chat.History `json:"history"`
			}
			decodeBody(resp, &h)
			So(h.History, ShouldBeEmpty)
		})
	})

	Convey("Given a failing backend", t, func() {
		srv, done := newServer(echoBackend{err: errors.New("upstream down")}, nil)
		defer done()
		c := &client{base: srv.URL}

		Convey("The turn still succeeds with an apology", func() {
			resp := c.do(http.MethodPost, "/api/chat", `{"message":"hello"}`)
			var res types.ChatResult
			decodeBody(resp, &res)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(res.Failed, ShouldBeTrue)
			So(res.History[0].Assistant, ShouldEqual, chat.ApologyMessage)
			So(res.History[0].Assistant, ShouldNotContainSubstring, "upstream")
		})
	})

	Convey("Given a tight chat rate", t, func() {
		srv, done := newServer(echoBackend{}, func(cfg *config.Config) {
			cfg.ChatRatePerMinute = 1
			cfg.ChatBurst = 1
		})
		defer done()
		c := &client{base: srv.URL}

		Convey("The second turn is rate limited", func() {
			c.do(http.MethodPost, "/api/chat", `{"message":"one"}`).Body.Close()
			resp := c.do(http.MethodPost, "/api/chat", `{"message":"two"}`)
			var e map[string]string
			decodeBody(resp, &e)
			So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
			So(e["code"], ShouldEqual, "rate_limited")
		})
	})
}

func TestToolEndpoints(t *testing.T) {
	Convey("Given a running API", t, func() {
		srv, done := newServer(echoBackend{}, nil)
		defer done()
		c := &client{base: srv.URL}

		Convey("GET /api/tools lists the tools", func() {
			resp := c.do(http.MethodGet, "/api/tools", "")
			var out struct {
				Tools []struct {
					Name string `json:"name"`
				} `json:"tools"`
			}
			decodeBody(resp, &out)
			So(len(out.Tools), ShouldBeGreaterThan, 5)
			So(out.Tools[0].Name, ShouldEqual, "search_experiences")
		})

		Convey("A tool runs with JSON arguments", func() {
			resp := c.do(http.MethodPost, "/api/tools/search_experiences", `{"sector":"transport"}`)
			var out map[string]string
			decodeBody(resp, &out)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(out["tool"], ShouldEqual, "search_experiences")
			So(out["output"], ShouldContainSubstring, "GenAI Tech Lead")
			So(out["output"], ShouldNotContainSubstring, "Data Engineer")
		})

		Convey("An empty body is accepted", func() {
			resp := c.do(http.MethodPost, "/api/tools/get_certifications", "")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("An unknown tool is not found", func() {
			resp := c.do(http.MethodPost, "/api/tools/launch_rockets", `{}`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("A missing required argument is a bad request", func() {
			resp := c.do(http.MethodPost, "/api/tools/analyze_match", `{}`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestPageAndOps(t *testing.T) {
	Convey("Given a running API", t, func() {
		srv, done := newServer(echoBackend{}, nil)
		defer done()
		c := &client{base: srv.URL}

		Convey("GET /api/page returns the shell fragments", func() {
			resp := c.do(http.MethodGet, "/api/page", "")
			var page types.Page
			decodeBody(resp, &page)
			So(page.Owner, ShouldEqual, "Ada Example")
			So(page.ModelInfo, ShouldEqual, "echo-model (test)")
			So(page.Degraded, ShouldBeFalse)
			So(string(page.Header), ShouldContainSubstring, "Ada Example")
			So(page.Categories, ShouldHaveLength, 4)
			So(c.cookie, ShouldNotBeNil)
		})

		Convey("GET /stats reports the backend", func() {
			resp := c.do(http.MethodGet, "/stats", "")
			var stats map[string]any
			decodeBody(resp, &stats)
			So(stats["started"], ShouldEqual, true)
			So(stats["backend"], ShouldEqual, "echo")
		})

		Convey("GET /healthz exposes metrics", func() {
			c.do(http.MethodGet, "/api/view", "").Body.Close()
			resp := c.do(http.MethodGet, "/healthz", "")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}

func TestKindError(t *testing.T) {
	Convey("Given a wrapped kind error", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.chat", api.ErrInternal, cause)

		So(errors.Is(err, api.ErrInternal), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.chat: internal error: boom")
		So(api.NewKind("api.view", api.ErrNotFound).Error(), ShouldEqual, "api.view: not found")
	})
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/vitrine/internal/domain/chat"
	. "github.com/smartystreets/goconvey/convey"
)

func TestOpenAICompleter(t *testing.T) {
	Convey("Given an OpenAI-compatible server", t, func() {
		var got openAIRequest
		var auth, path string
		status := http.StatusOK
		reply := `{"choices":[{"message":{"role":"assistant","content":"  Hi there  "}}]}`

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			auth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
		defer srv.Close()

		c, err := NewOpenAICompleter(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: "gpt-4o-mini", MaxTokens: 500})
		So(err, ShouldBeNil)
		So(c.Model(), ShouldEqual, "gpt-4o-mini")
		msgs := []chat.Message{{Role: chat.RoleSystem, Content: "sys"}, {Role: chat.RoleUser, Content: "hello"}}

		Convey("When completing", func() {
			out, err := c.Complete(context.Background(), msgs)

			Convey("Then the request carries model, token cap, roles and key", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "Hi there")
				So(path, ShouldEqual, "/v1/chat/completions")
				So(auth, ShouldEqual, "Bearer sk-test")
				So(got.Model, ShouldEqual, "gpt-4o-mini")
				So(got.MaxTokens, ShouldEqual, 500)
				So(got.Messages, ShouldResemble, []openAIMessage{{Role: "system", Content: "sys"}, {Role: "user", Content: "hello"}})
			})
		})

		Convey("When the server rejects the call", func() {
			status = http.StatusTooManyRequests
			reply = `{"error":{"message":"slow down"}}`
			_, err := c.Complete(context.Background(), msgs)
			So(errors.Is(err, ErrAPIStatus), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "429")
		})

		Convey("When the server returns no choices", func() {
			reply = `{"choices":[]}`
			_, err := c.Complete(context.Background(), msgs)
			So(errors.Is(err, ErrNoContent), ShouldBeTrue)
		})

		Convey("When the body is not JSON", func() {
			reply = `<html>`
			_, err := c.Complete(context.Background(), msgs)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("A missing key fails construction", t, func() {
		_, err := NewOpenAICompleter(OpenAIConfig{Model: "x"})
		So(errors.Is(err, ErrMissingAPIKey), ShouldBeTrue)
	})
}

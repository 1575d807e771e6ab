package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Given a registry bound to a portfolio", t, func() {
		ctx := WithCaller(context.Background(), "test")
		r := NewRegistry(portfolio())

		Convey("Then the built-in tools are registered in prompt order", func() {
			tools := r.Tools()
			So(len(tools), ShouldEqual, 7)
			So(tools[0].Name, ShouldEqual, "search_experiences")
			So(r.Names()[0], ShouldEqual, "analyze_match")
		})

		Convey("Then the prompt description numbers every tool with its signature", func() {
			desc := r.Describe()
			So(desc, ShouldStartWith, "Available Tools:\n")
			So(desc, ShouldContainSubstring, "1. search_experiences(technology, client, sector) - Search professional experiences with filters")
			So(desc, ShouldContainSubstring, "3. get_certifications() - List all certifications")
		})

		Convey("When calling a tool with arguments", func() {
			out, err := r.Call(ctx, "search_experiences", Args{"client": "globex"})

			So(err, ShouldBeNil)
			So(out, ShouldStartWith, "Found 1 experience(s):")
		})

		Convey("When calling with JSON-decoded numbers", func() {
			var args Args
			So(json.Unmarshal([]byte(`{"limit": 1}`), &args), ShouldBeNil)
			out, err := r.Call(ctx, "recent_projects", args)

			So(err, ShouldBeNil)
			So(out, ShouldStartWith, "1 most recent projects:")
		})

		Convey("When a required argument is missing", func() {
			_, err := r.Call(ctx, "analyze_match", nil)
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
		})

		Convey("When an integer argument is malformed", func() {
			_, err := r.Call(ctx, "recent_projects", Args{"limit": "many"})
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
		})

		Convey("When the tool does not exist", func() {
			_, err := r.Call(ctx, "delete_everything", nil)
			So(errors.Is(err, ErrUnknownTool), ShouldBeTrue)
		})
	})
}

func TestArgs(t *testing.T) {
	Convey("Given loosely typed arguments", t, func() {
		a := Args{"s": "  go ", "n": 4.0, "i": 2, "str": "7", "empty": "", "bad": []int{1}}

		So(a.String("s"), ShouldEqual, "go")
		So(a.String("missing"), ShouldEqual, "")
		n, err := a.Int("n", 0)
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 4)
		i, _ := a.Int("i", 0)
		So(i, ShouldEqual, 2)
		s, _ := a.Int("str", 0)
		So(s, ShouldEqual, 7)
		d, _ := a.Int("empty", 3)
		So(d, ShouldEqual, 3)
		_, err = a.Int("bad", 0)
		So(err, ShouldNotBeNil)
	})
}

package chat

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type fakeAgent struct {
	out   any
	err   error
	panic bool
	got   string
}

func (f *fakeAgent) Run(_ context.Context, message string) (any, error) {
	f.got = message
	if f.panic {
		panic("agent exploded")
	}
	return f.out, f.err
}

type fakeCompleter struct {
	out string
	err error
	got []Message
}

func (f *fakeCompleter) Complete(_ context.Context, messages []Message) (string, error) {
	f.got = messages
	return f.out, f.err
}

type stubBackend struct{ name string }

func (s stubBackend) Name() string                         { return s.name }
func (s stubBackend) Describe() string                     { return s.name + " model" }
func (s stubBackend) Call(context.Context, Request) Result { return Success("ok") }

func TestAgentBackend(t *testing.T) {
	Convey("Given an agent backend", t, func() {
		ctx := context.Background()
		agent := &fakeAgent{out: "plain answer"}
		b := NewAgentBackend(agent, "gemini-1.5-flash")

		So(b.Name(), ShouldEqual, TierAgent)
		So(b.Describe(), ShouldContainSubstring, "gemini-1.5-flash")

		Convey("A normal turn passes the message through untouched", func() {
			res := b.Call(ctx, Request{SystemPrompt: "base", Message: "hello"})
			So(res.OK(), ShouldBeTrue)
			So(res.Text(), ShouldEqual, "plain answer")
			So(agent.got, ShouldEqual, "hello")
		})

		Convey("A triggered turn prepends the playful prompt", func() {
			b.Call(ctx, Request{SystemPrompt: "party time", Message: "hi chnawax", Triggered: true})
			So(agent.got, ShouldEqual, "party time\n\nUser message: hi chnawax")
		})

		Convey("A map output is unwrapped", func() {
			agent.out = map[string]any{"output": "from map"}
			So(b.Call(ctx, Request{Message: "x"}).Text(), ShouldEqual, "from map")
		})

		Convey("Agent errors become failures", func() {
			agent.err = errors.New("quota")
			res := b.Call(ctx, Request{Message: "x"})
			So(res.OK(), ShouldBeFalse)
			So(res.Reason().Error(), ShouldEqual, "quota")
		})

		Convey("Blank output is a failure", func() {
			agent.out = "   "
			So(errors.Is(b.Call(ctx, Request{Message: "x"}).Reason(), ErrEmptyReply), ShouldBeTrue)
		})

		Convey("A panic is recovered as a failure", func() {
			agent.panic = true
			res := b.Call(ctx, Request{Message: "x"})
			So(res.OK(), ShouldBeFalse)
			So(errors.Is(res.Reason(), ErrBackendPanic), ShouldBeTrue)
		})
	})
}

func TestNormalizeOutput(t *testing.T) {
	Convey("Given assorted agent outputs", t, func() {
		So(NormalizeOutput(nil), ShouldEqual, "")
		So(NormalizeOutput("s"), ShouldEqual, "s")
		So(NormalizeOutput(map[string]string{"output": "o"}), ShouldEqual, "o")
		So(NormalizeOutput(map[string]any{"other": 1}), ShouldEqual, "map[other:1]")
		So(NormalizeOutput(42), ShouldEqual, "42")
	})
}

func TestCompletionBackend(t *testing.T) {
	Convey("Given a completion backend", t, func() {
		ctx := context.Background()
		c := &fakeCompleter{out: "done"}
		b := NewCompletionBackend(c, "gpt-4o-mini")
		So(b.Name(), ShouldEqual, TierCompletion)

		Convey("Messages are system, history pairs, preamble then user", func() {
			res := b.Call(ctx, Request{
				SystemPrompt: "sys",
				History:      History{{User: "u1", Assistant: "a1"}, {Assistant: "greet only"}},
				Preamble:     "hello friend",
				Message:      "now",
			})
			So(res.Text(), ShouldEqual, "done")
			So(c.got, ShouldResemble, []Message{
				{Role: RoleSystem, Content: "sys"},
				{Role: RoleUser, Content: "u1"},
				{Role: RoleAssistant, Content: "a1"},
				{Role: RoleAssistant, Content: "greet only"},
				{Role: RoleAssistant, Content: "hello friend"},
				{Role: RoleUser, Content: "now"},
			})
		})

		Convey("Completer errors become failures", func() {
			c.err = errors.New("429")
			So(b.Call(ctx, Request{Message: "x"}).OK(), ShouldBeFalse)
		})
	})
}

func TestSelectBackend(t *testing.T) {
	Convey("Given start-up backend selection", t, func() {
		ctx := context.Background()
		agent := stubBackend{name: TierAgent}
		completion := stubBackend{name: TierCompletion}

		Convey("An initialised preferred backend wins", func() {
			sel := SelectBackend(ctx, agent, nil, completion, nil)
			So(sel.Backend.Name(), ShouldEqual, TierAgent)
			So(sel.Degraded, ShouldBeFalse)
		})

		Convey("An init error falls back", func() {
			boom := errors.New("no key")
			sel := SelectBackend(ctx, agent, boom, completion, nil)
			So(sel.Backend.Name(), ShouldEqual, TierCompletion)
			So(sel.Degraded, ShouldBeTrue)
			So(sel.Reason, ShouldEqual, boom)
		})

		Convey("With nothing usable every call fails", func() {
			sel := SelectBackend(ctx, nil, nil, nil, nil)
			So(sel.Degraded, ShouldBeTrue)
			res := sel.Backend.Call(ctx, Request{Message: "x"})
			So(res.OK(), ShouldBeFalse)
			So(errors.Is(res.Reason(), ErrNoBackend), ShouldBeTrue)
		})
	})
}

func TestResult(t *testing.T) {
	Convey("A failure with no reason is still a failure", t, func() {
		r := Failure(nil)
		So(r.OK(), ShouldBeFalse)
		So(r.Reason(), ShouldEqual, ErrNoBackend)
	})
}

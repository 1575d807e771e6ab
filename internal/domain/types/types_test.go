package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/vitrine/internal/domain/chat"
	"github.com/okian/vitrine/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWireNames(t *testing.T) {
	Convey("Given the API response shapes", t, func() {
		Convey("A view exposes its fragments under *_html keys", func() {
			raw, err := json.Marshal(types.View{Category: "skills", Card: "<div>x</div>", Position: -1})
			So(err, ShouldBeNil)
			var m map[string]any
			So(json.Unmarshal(raw, &m), ShouldBeNil)
			So(m["category"], ShouldEqual, "skills")
			So(m["card_html"], ShouldEqual, "<div>x</div>")
			So(m, ShouldContainKey, "timeline_html")
			So(m["position"], ShouldEqual, -1)
		})

		Convey("A chat result omits an empty notification", func() {
			raw, _ := json.Marshal(types.ChatResult{History: chat.History{{User: "u", Assistant: "a"}}})
			var m map[string]any
			So(json.Unmarshal(raw, &m), ShouldBeNil)
			So(m, ShouldNotContainKey, "notification")
			So(m["history"], ShouldResemble, []any{map[string]any{"user": "u", "assistant": "a"}})
		})
	})
}

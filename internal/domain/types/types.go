// Package types contains the response shapes shared by the service and the
// HTTP API.
package types

import (
	"html/template"

	"github.com/okian/vitrine/internal/domain/chat"
	"github.com/okian/vitrine/internal/domain/model"
	"github.com/okian/vitrine/internal/domain/navigation"
)

// View is what the carousel shows after a navigation action.
type View struct {
	Category model.Category `json:"category"`
	Index    int            `json:"index"`
	Count    int            `json:"count"`
	// Position is the active record's place on the timeline, -1 when empty.
	Position int           `json:"position"`
	Card     template.HTML `json:"card_html"`
	Timeline template.HTML `json:"timeline_html"`
	Changed  bool          `json:"changed"`
}

// ChatResult is the outcome of one submitted chat message.
type ChatResult struct {
	History      chat.History  `json:"history"`
	Notification string        `json:"notification,omitempty"`
	Triggered    bool          `json:"triggered"`
	Duplicate    bool          `json:"duplicate"`
	Failed       bool          `json:"failed"`
	Reply        template.HTML `json:"reply_html"`
}

// CategoryCount is a category tab with its record count.
type CategoryCount struct {
	Name  model.Category `json:"name"`
	Count int            `json:"count"`
}

// Page holds the page shell fragments.
type Page struct {
	Owner      string           `json:"owner"`
	Assistant  string           `json:"assistant"`
	ModelInfo  string           `json:"model_info"`
	Degraded   bool             `json:"degraded"`
	Header     template.HTML    `json:"header_html"`
	Stats      template.HTML    `json:"stats_html"`
	Footer     template.HTML    `json:"footer_html"`
	Categories []CategoryCount  `json:"categories"`
	Links      []model.Link     `json:"links"`
	Initial    navigation.State `json:"initial"`
}

package service

import (
	"context"
	"fmt"

	"github.com/okian/vitrine/internal/adapters/session"
	"github.com/okian/vitrine/internal/domain/model"
	"github.com/okian/vitrine/internal/domain/navigation"
	"github.com/okian/vitrine/internal/domain/render"
	"github.com/okian/vitrine/internal/domain/types"
	"github.com/okian/vitrine/pkg/logger"
	"github.com/okian/vitrine/pkg/metrics"
)

// View renders the session's current display.
func (s *Service) View(ctx context.Context, sess *session.Session) (types.View, error) {
	p, err := s.Portfolio()
	if err != nil {
		return types.View{}, err
	}
	return s.render(ctx, p, sess.Nav(), true)
}

// SelectCategory switches the carousel to category. An empty category keeps
// the previous card on screen.
func (s *Service) SelectCategory(ctx context.Context, sess *session.Session, category string) (types.View, error) {
	return s.navigate(ctx, sess, "category", func(p *model.Portfolio, st navigation.State) (navigation.State, bool) {
		return st.SelectCategory(p, model.ParseCategory(category))
	})
}

// Step moves one record back (-1) or forward (+1), wrapping around.
func (s *Service) Step(ctx context.Context, sess *session.Session, direction int) (types.View, error) {
	if direction != navigation.Prev && direction != navigation.Next {
		return types.View{}, fmt.Errorf("%w: got %d", ErrInvalidDirection, direction)
	}
	return s.navigate(ctx, sess, "step", func(p *model.Portfolio, st navigation.State) (navigation.State, bool) {
		return st.Step(p, direction)
	})
}

// Jump activates the record at its original index, as clicked on the
// timeline. Out of range indexes are ignored.
func (s *Service) Jump(ctx context.Context, sess *session.Session, index int) (types.View, error) {
	return s.navigate(ctx, sess, "jump", func(p *model.Portfolio, st navigation.State) (navigation.State, bool) {
		return st.Jump(p, index)
	})
}

func (s *Service) navigate(ctx context.Context, sess *session.Session, action string,
	move func(*model.Portfolio, navigation.State) (navigation.State, bool),
) (types.View, error) {
	p, err := s.Portfolio()
	if err != nil {
		return types.View{}, err
	}
	var changed bool
	prev, next := sess.UpdateNav(func(st navigation.State) navigation.State {
		var moved navigation.State
		moved, changed = move(p, st)
		return moved
	})
	metrics.RecordNavigation(action, changed)

	if !changed {
		// Previous display stays, but the state still reports the new category.
		v, err := s.render(ctx, p, prev, false)
		v.Category, v.Index = next.Category, next.Index
		v.Count = len(p.Items(next.Category))
		return v, err
	}
	return s.render(ctx, p, next, true)
}

func (s *Service) render(ctx context.Context, p *model.Portfolio, st navigation.State, changed bool) (types.View, error) {
	items := p.Items(st.Category)
	v := types.View{Category: st.Category, Index: st.Index, Count: len(items), Position: -1, Changed: changed}
	rec, ok := st.Active(p)
	if !ok {
		return v, nil
	}
	card, err := render.Card(rec, s.assets)
	if err != nil {
		s.logger.Error(ctx, "rendering card failed", logger.String("category", string(st.Category)), logger.Int("index", st.Index), logger.Error(err))
		return types.View{}, fmt.Errorf("render card: %w", err)
	}
	tl := render.BuildTimeline(items, st.Index)
	timeline, err := tl.HTML()
	if err != nil {
		return types.View{}, fmt.Errorf("render timeline: %w", err)
	}
	v.Card = card
	v.Timeline = timeline
	v.Position = tl.Position(st.Index)
	return v, nil
}

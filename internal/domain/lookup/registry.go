package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/okian/vitrine/internal/domain/model"
	"github.com/okian/vitrine/pkg/logger"
	"github.com/okian/vitrine/pkg/metrics"
)

// Parameter types understood by every tool consumer.
const (
	TypeString  = "string"
	TypeInteger = "integer"
)

// Param describes one tool argument.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Args carries decoded tool arguments. Values come from JSON, so numbers
// usually arrive as float64.
type Args map[string]any

// String returns the named argument as trimmed text, or "".
func (a Args) String(name string) string {
	v, ok := a[name]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// Int returns the named argument as an int, def when absent.
func (a Args) Int(name string, def int) (int, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case int:
		return t, nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case float32:
		return int(t), nil
	case float64:
		return int(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, name, err)
		}
		return int(n), nil
	case string:
		if strings.TrimSpace(t) == "" {
			return def, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, name, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidArgument, name, v)
	}
}

// RunFunc executes a tool against p.
type RunFunc func(ctx context.Context, p *model.Portfolio, args Args) (string, error)

// Tool is a named, described query over the portfolio.
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
	Run         RunFunc `json:"-"`
}

// Signature renders name(arg1, arg2) for prompts.
func (t Tool) Signature() string {
	names := make([]string, len(t.Params))
	for i, p := range t.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("%s(%s)", t.Name, strings.Join(names, ", "))
}

type callerKey struct{}

// WithCaller tags ctx with the component invoking tools, for metrics and logs.
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

func callerFrom(ctx context.Context) string {
	if v, ok := ctx.Value(callerKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// Registry binds the tool set to one loaded portfolio.
type Registry struct {
	portfolio *model.Portfolio
	tools     []Tool
	byName    map[string]int
	log       logger.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for tool calls.
func WithRegistryLogger(l logger.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRegistry returns the built-in tools bound to p.
func NewRegistry(p *model.Portfolio, opts ...RegistryOption) *Registry {
	r := &Registry{
		portfolio: p,
		tools:     DefaultTools(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.byName = make(map[string]int, len(r.tools))
	for i, t := range r.tools {
		r.byName[t.Name] = i
	}
	return r
}

// Tools returns the tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Names returns the sorted tool names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Get looks a tool up by name.
func (r *Registry) Get(name string) (Tool, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Tool{}, false
	}
	return r.tools[i], true
}

// Describe renders the numbered tool list used in system prompts.
func (r *Registry) Describe() string {
	var b strings.Builder
	b.WriteString("Available Tools:\n")
	for i, t := range r.tools {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, t.Signature(), t.Description)
	}
	return b.String()
}

// Call runs the named tool. Missing required arguments and unknown names are
// reported as errors; "no result" outcomes are ordinary text.
func (r *Registry) Call(ctx context.Context, name string, args Args) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if args == nil {
		args = Args{}
	}
	for _, p := range t.Params {
		if p.Required && args.String(p.Name) == "" {
			return "", fmt.Errorf("%w: %s requires %s", ErrInvalidArgument, name, p.Name)
		}
	}

	start := time.Now()
	out, err := t.Run(ctx, r.portfolio, args)
	took := time.Since(start)
	caller := callerFrom(ctx)
	metrics.RecordToolCall(name, caller, took)
	if err != nil {
		r.log.Warn(ctx, "tool call failed", logger.String("tool", name), logger.String("caller", caller), logger.Error(err))
		return "", err
	}
	r.log.Debug(ctx, "tool call", logger.String("tool", name), logger.String("caller", caller),
		logger.Int("output_len", len(out)), logger.Duration("took", took))
	return out, nil
}

// DefaultTools returns the built-in query tools in prompt order.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:        "search_experiences",
			Description: "Search professional experiences with filters",
			Params: []Param{
				{Name: "technology", Type: TypeString, Description: "Filter by technology (e.g. 'MCP', 'Azure')"},
				{Name: "client", Type: TypeString, Description: "Filter by client name"},
				{Name: "sector", Type: TypeString, Description: "Filter by sector (e.g. 'Transport')"},
			},
			Run: func(_ context.Context, p *model.Portfolio, a Args) (string, error) {
				return SearchExperiences(p, Filter{
					Technology: a.String("technology"),
					Client:     a.String("client"),
					Sector:     a.String("sector"),
				}), nil
			},
		},
		{
			Name:        "get_skills",
			Description: "Get technical skills by category",
			Params: []Param{
				{Name: "category", Type: TypeString, Description: "Skill category (e.g. 'Agents', 'GenAI', 'Web')"},
			},
			Run: func(_ context.Context, p *model.Portfolio, a Args) (string, error) {
				return GetSkills(p, a.String("category")), nil
			},
		},
		{
			Name:        "get_certifications",
			Description: "List all certifications",
			Run: func(_ context.Context, p *model.Portfolio, _ Args) (string, error) {
				return GetCertifications(p), nil
			},
		},
		{
			Name:        "get_education",
			Description: "Get educational background",
			Run: func(_ context.Context, p *model.Portfolio, _ Args) (string, error) {
				return GetEducation(p), nil
			},
		},
		{
			Name:        "analyze_match",
			Description: "Analyze how the profile matches job or project requirements",
			Params: []Param{
				{Name: "requirements", Type: TypeString, Description: "Job description or required skills", Required: true},
			},
			Run: func(_ context.Context, p *model.Portfolio, a Args) (string, error) {
				return AnalyzeMatch(p, a.String("requirements")), nil
			},
		},
		{
			Name:        "search_portfolio",
			Description: "Search across experiences, skills and certifications",
			Params: []Param{
				{Name: "query", Type: TypeString, Description: "Search text (e.g. 'hackathon')", Required: true},
			},
			Run: func(_ context.Context, p *model.Portfolio, a Args) (string, error) {
				return SearchPortfolio(p, a.String("query")), nil
			},
		},
		{
			Name:        "recent_projects",
			Description: "List the most recent projects",
			Params: []Param{
				{Name: "limit", Type: TypeInteger, Description: "How many projects to list (default 3)"},
			},
			Run: func(_ context.Context, p *model.Portfolio, a Args) (string, error) {
				n, err := a.Int("limit", defaultRecentCount)
				if err != nil {
					return "", err
				}
				return RecentProjects(p, n), nil
			},
		},
	}
}

package project

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/tinkerfai/tinkerfai/engine/session"
	"github.com/tinkerfai/tinkerfai/pkg/logger"
)

// Getter loads a project owned by the caller.
type Getter interface {
	GetProject(ctx context.Context, id string) (*Project, error)
}

// State of a gate evaluation.
type State string

const (
	GateIdle     State = "idle"
	GateLoading  State = "loading"
	GateReady    State = "ready"
	GateRedirect State = "redirect"
)

// Target is a view the client navigates to instead of the workflow.
type Target string

const (
	TargetProfile Target = "profile"
	TargetSignIn  Target = "signin"
)

// Outcome is the result of resolving a gate.
type Outcome struct {
	State    State
	Project  *Project
	Redirect Target
	Err      error
}

// Gate validates project ownership once per project id before the workflow is shown.
// Any failure redirects to the profile view; an expired session redirects to sign-in.
type Gate struct {
	getter Getter

	mu      sync.Mutex
	id      string
	outcome Outcome
}

func NewGate(getter Getter) *Gate {
	return &Gate{getter: getter, outcome: Outcome{State: GateIdle}}
}

// ExtractID returns the project id from "/project/{id}", "project/{id}/..." or a bare id.
func ExtractID(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !strings.Contains(path, "/") {
		return path
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "project" || parts[i] == "projects" {
			return parts[i+1]
		}
	}
	return ""
}

// Outcome returns the current state without triggering evaluation.
func (g *Gate) Outcome() Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outcome
}

// Resolve evaluates the gate for the project named by path. A resolved gate
// returns its cached outcome for the same id. A result that arrives after ctx
// is cancelled, or after another id was requested, is dropped.
func (g *Gate) Resolve(ctx context.Context, path string) Outcome {
	log := logger.FromContext(ctx)
	id := ExtractID(path)

	g.mu.Lock()
	if id != "" && id == g.id && (g.outcome.State == GateReady || g.outcome.State == GateRedirect) {
		out := g.outcome
		g.mu.Unlock()
		return out
	}
	g.id = id
	if id == "" {
		g.outcome = Outcome{State: GateRedirect, Redirect: TargetProfile, Err: errors.New("no project id")}
		out := g.outcome
		g.mu.Unlock()
		return out
	}
	g.outcome = Outcome{State: GateLoading}
	g.mu.Unlock()

	p, err := g.getter.GetProject(ctx, id)

	g.mu.Lock()
	defer g.mu.Unlock()
	if ctx.Err() != nil || g.id != id {
		log.Debug("Dropping stale project validation", "project_id", id)
		return Outcome{State: GateLoading, Err: context.Cause(ctx)}
	}
	switch {
	case errors.Is(err, session.ErrExpired):
		g.outcome = Outcome{State: GateRedirect, Redirect: TargetSignIn, Err: err}
	case err != nil:
		log.Warn("Project validation failed", "project_id", id, "error", err)
		g.outcome = Outcome{State: GateRedirect, Redirect: TargetProfile, Err: err}
	case p == nil || p.ProjectID == "":
		g.outcome = Outcome{State: GateRedirect, Redirect: TargetProfile, Err: errors.New("project not found")}
	default:
		g.outcome = Outcome{State: GateReady, Project: p}
	}
	return g.outcome
}

// Reset forgets the evaluated project so the next Resolve runs again.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = ""
	g.outcome = Outcome{State: GateIdle}
}

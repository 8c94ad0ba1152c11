package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinkerfai/tinkerfai/engine/session"
)

type fakeGetter struct {
	projects map[string]*Project
	err      error
	calls    int
	before   func()
}

func (f *fakeGetter) GetProject(_ context.Context, id string) (*Project, error) {
	f.calls++
	if f.before != nil {
		f.before()
	}
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.projects[id]
	if !ok {
		return nil, errors.New("Project not found")
	}
	return p, nil
}

func TestExtractID(t *testing.T) {
	cases := map[string]string{
		"/project/abc":          "abc",
		"project/abc/":          "abc",
		"/projects/abc/tasks/1": "abc",
		"abc":                   "abc",
		"/profile":              "",
		"":                      "",
		"/project/":             "",
	}
	for in, want := range cases {
		t.Run(fmt.Sprintf("Should extract %q from %q", want, in), func(t *testing.T) {
			assert.Equal(t, want, ExtractID(in))
		})
	}
}

func TestGate_Resolve(t *testing.T) {
	owned := &Project{ProjectID: "p1", ProjectName: "Intro to ML", ProjectType: TypeBeginner}

	t.Run("Should become ready for an owned project", func(t *testing.T) {
		getter := &fakeGetter{projects: map[string]*Project{"p1": owned}}
		g := NewGate(getter)
		var during State
		getter.before = func() { during = g.Outcome().State }

		out := g.Resolve(context.Background(), "/project/p1")

		assert.Equal(t, GateLoading, during)
		assert.Equal(t, GateReady, out.State)
		assert.Equal(t, owned, out.Project)
	})

	t.Run("Should redirect to the profile without an id", func(t *testing.T) {
		getter := &fakeGetter{}
		out := NewGate(getter).Resolve(context.Background(), "/project/")
		assert.Equal(t, GateRedirect, out.State)
		assert.Equal(t, TargetProfile, out.Redirect)
		assert.Zero(t, getter.calls)
	})

	t.Run("Should fail closed on any error", func(t *testing.T) {
		out := NewGate(&fakeGetter{projects: map[string]*Project{}}).Resolve(context.Background(), "/project/other")
		assert.Equal(t, GateRedirect, out.State)
		assert.Equal(t, TargetProfile, out.Redirect)
	})

	t.Run("Should redirect to sign-in when the session expired", func(t *testing.T) {
		getter := &fakeGetter{err: fmt.Errorf("get project: %w", session.ErrExpired)}
		out := NewGate(getter).Resolve(context.Background(), "p1")
		assert.Equal(t, TargetSignIn, out.Redirect)
	})

	t.Run("Should evaluate once per project id", func(t *testing.T) {
		getter := &fakeGetter{projects: map[string]*Project{"p1": owned}}
		g := NewGate(getter)
		g.Resolve(context.Background(), "/project/p1")
		getter.err = errors.New("boom")

		out := g.Resolve(context.Background(), "/project/p1")

		assert.Equal(t, GateReady, out.State)
		assert.Equal(t, 1, getter.calls)

		g.Reset()
		out = g.Resolve(context.Background(), "/project/p1")
		assert.Equal(t, GateRedirect, out.State)
	})

	t.Run("Should drop a result after the view is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		getter := &fakeGetter{projects: map[string]*Project{"p1": owned}, before: cancel}
		g := NewGate(getter)

		out := g.Resolve(ctx, "p1")

		assert.Equal(t, GateLoading, out.State)
		assert.ErrorIs(t, out.Err, context.Canceled)
		assert.Equal(t, GateLoading, g.Outcome().State)
	})
}

func TestCreateRequest_Normalize(t *testing.T) {
	t.Run("Should trim and accept a valid request", func(t *testing.T) {
		r := CreateRequest{ProjectName: "  Intro to ML ", ProjectType: "Beginner"}
		require.NoError(t, r.Normalize())
		assert.Equal(t, "Intro to ML", r.ProjectName)
		assert.Equal(t, TypeBeginner, r.ProjectType)
	})

	t.Run("Should reject blank and long names", func(t *testing.T) {
		r := CreateRequest{ProjectName: "   ", ProjectType: TypeExpert}
		assert.EqualError(t, r.Normalize(), "project name is required")
		r = CreateRequest{ProjectName: strings.Repeat("x", 51), ProjectType: TypeExpert}
		assert.EqualError(t, r.Normalize(), "project name must be at most 50 characters")
	})

	t.Run("Should reject unknown tracks", func(t *testing.T) {
		r := CreateRequest{ProjectName: "x", ProjectType: "advanced"}
		assert.Error(t, r.Normalize())
	})
}

func TestOrdering(t *testing.T) {
	t.Run("Should keep newest first after insert and remove", func(t *testing.T) {
		list := []Project{
			{ProjectID: "old", CreatedAt: "2025-01-01T10:00:00Z"},
			{ProjectID: "mid", CreatedAt: "2025-03-01T10:00:00.123456"},
		}
		SortNewestFirst(list)
		assert.Equal(t, "mid", list[0].ProjectID)

		list = Insert(list, Project{ProjectID: "new", CreatedAt: "2025-06-01T10:00:00Z"})
		assert.Equal(t, []string{"new", "mid", "old"}, ids(list))

		list = Remove(list, "mid")
		assert.Equal(t, []string{"new", "old"}, ids(list))
	})
}

func ids(ps []Project) []string {
	out := make([]string, len(ps))
	for i := range ps {
		out[i] = ps[i].ProjectID
	}
	return out
}

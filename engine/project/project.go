package project

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Type is the learning track of a project.
type Type string

const (
	TypeBeginner Type = "beginner"
	TypeExpert   Type = "expert"
)

const MaxNameLength = 50

// Project is owned by exactly one user and is immutable except for deletion.
type Project struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
	ProjectType Type   `json:"projectType"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	UserEmail   string `json:"userEmail"`
}

// Created parses CreatedAt. Unparseable timestamps sort last.
func (p *Project) Created() time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, p.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// CreateRequest is the body of a project creation.
type CreateRequest struct {
	ProjectName string `json:"projectName" validate:"required,max=50"`
	ProjectType Type   `json:"projectType" validate:"required,oneof=beginner expert"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Normalize trims the name and validates the request.
func (r *CreateRequest) Normalize() error {
	r.ProjectName = strings.TrimSpace(r.ProjectName)
	r.ProjectType = Type(strings.ToLower(strings.TrimSpace(string(r.ProjectType))))
	if err := getValidator().Struct(r); err != nil {
		return describe(err)
	}
	return nil
}

func describe(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Field() + "." + fe.Tag() {
	case "ProjectName.required":
		return fmt.Errorf("project name is required")
	case "ProjectName.max":
		return fmt.Errorf("project name must be at most %d characters", MaxNameLength)
	case "ProjectType.required", "ProjectType.oneof":
		return fmt.Errorf("project type must be %q or %q", TypeBeginner, TypeExpert)
	}
	return err
}

// SortNewestFirst orders projects by creation time, newest first. The sort is stable.
func SortNewestFirst(projects []Project) {
	slices.SortStableFunc(projects, func(a, b Project) int {
		return b.Created().Compare(a.Created())
	})
}

// Insert adds p to a newest-first list and keeps the order.
func Insert(projects []Project, p Project) []Project {
	out := make([]Project, 0, len(projects)+1)
	out = append(out, p)
	out = append(out, projects...)
	SortNewestFirst(out)
	return out
}

// Remove drops the project with id from the list.
func Remove(projects []Project, id string) []Project {
	return slices.DeleteFunc(slices.Clone(projects), func(p Project) bool {
		return p.ProjectID == id
	})
}

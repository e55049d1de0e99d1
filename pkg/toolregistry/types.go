package toolregistry

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Category is the closed set of tool categories
type Category string

const (
	CategoryDataProcessing Category = "data_processing"
	CategoryWebInteraction Category = "web_interaction"
	CategoryFileOperation  Category = "file_operation"
	CategoryAPICall        Category = "api_call"
	CategoryComputation    Category = "computation"
	CategoryAnalysis       Category = "analysis"
	CategoryCommunication  Category = "communication"
	CategorySystem         Category = "system"
)

// AllCategories returns every valid category in declaration order
func AllCategories() []Category {
	return []Category{
		CategoryDataProcessing,
		CategoryWebInteraction,
		CategoryFileOperation,
		CategoryAPICall,
		CategoryComputation,
		CategoryAnalysis,
		CategoryCommunication,
		CategorySystem,
	}
}

// ParseCategory converts a string into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("invalid category: %s", s)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// Safety levels
const (
	SafetySafe           = 1
	SafetyRequiresReview = 2
	SafetyDangerous      = 3
)

// ToolParameter describes one parameter of a tool. Type is descriptive only.
type ToolParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     any    `json:"default"`
}

// Tool is the metadata and running statistics of a registered tool
type Tool struct {
	ID              string          `json:"-"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Category        Category        `json:"category"`
	Parameters      []ToolParameter `json:"parameters"`
	Returns         string          `json:"returns"`
	SafetyLevel     int             `json:"safety_level"`
	UsageCount      int             `json:"usage_count"`
	SuccessRate     float64         `json:"success_rate"`
	AverageDuration float64         `json:"average_duration"`
	CreatedAt       time.Time       `json:"-"`
}

// Executable is the behaviour bound to a tool
type Executable interface {
	Invoke(ctx context.Context, params map[string]any) (any, error)
}

// ExecutableFunc adapts a plain function to Executable
type ExecutableFunc func(ctx context.Context, params map[string]any) (any, error)

// Invoke calls f
func (f ExecutableFunc) Invoke(ctx context.Context, params map[string]any) (any, error) {
	return f(ctx, params)
}

// clone returns a copy safe to hand out of the registry lock
func (t *Tool) clone() *Tool {
	c := *t
	c.Parameters = append([]ToolParameter(nil), t.Parameters...)
	return &c
}

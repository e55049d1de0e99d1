// Package toolselector picks registered tools for a free-text task.
package toolselector

import (
	"errors"
	"math"
	"strings"

	"github.com/harun/barrot/pkg/toolregistry"
	"github.com/rs/zerolog/log"
)

// ErrNoSuitableTool is returned when no registered tool matches the task
var ErrNoSuitableTool = errors.New("no suitable tool found")

// Searcher is the part of the registry the selector needs
type Searcher interface {
	Search(query string, category *toolregistry.Category, maxSafetyLevel int) []*toolregistry.Tool
}

// Selector scores candidate tools for a task
type Selector struct {
	registry Searcher
}

// New creates a selector over registry
func New(registry Searcher) *Selector {
	return &Selector{registry: registry}
}

// SelectTool returns the highest scoring tool for the task. Ties go to the
// candidate that the registry search ranked first.
func (s *Selector) SelectTool(task string, requiredCategory *toolregistry.Category, context map[string]any) (*toolregistry.Tool, error) {
	candidates := s.registry.Search(task, requiredCategory, toolregistry.SafetyDangerous)
	if len(candidates) == 0 {
		log.Debug().Str("task", task).Msg("No candidate tools for task")
		return nil, ErrNoSuitableTool
	}

	best := candidates[0]
	bestScore := s.Score(best, task, context)
	for _, tool := range candidates[1:] {
		if score := s.Score(tool, task, context); score > bestScore {
			best, bestScore = tool, score
		}
	}

	log.Debug().
		Str("task", task).
		Str("tool_id", best.ID).
		Float64("score", bestScore).
		Int("candidates", len(candidates)).
		Msg("Tool selected")

	return best, nil
}

// SelectToolChain walks the task words in order and picks, per word, the
// first matching tool of a category not yet in the chain.
func (s *Selector) SelectToolChain(task string, maxTools int) []*toolregistry.Tool {
	chain := []*toolregistry.Tool{}
	used := make(map[toolregistry.Category]bool)

	for _, word := range strings.Fields(strings.ToLower(task)) {
		if len(chain) >= maxTools {
			break
		}

		for _, tool := range s.registry.Search(word, nil, toolregistry.SafetyDangerous) {
			if !used[tool.Category] {
				chain = append(chain, tool)
				used[tool.Category] = true
				break
			}
		}
	}

	return chain
}

// Score rates how well a tool fits the task. context is accepted for callers
// that carry one but does not affect the score.
func (s *Selector) Score(tool *toolregistry.Tool, task string, context map[string]any) float64 {
	score := tool.SuccessRate * 10
	score += math.Min(float64(tool.UsageCount)/100, 1.0) * 5

	taskWords := wordSet(task)
	toolWords := wordSet(tool.Name + " " + tool.Description)
	overlap := 0
	for w := range taskWords {
		if toolWords[w] {
			overlap++
		}
	}
	score += float64(overlap) * 2

	if tool.SafetyLevel > 1 {
		score -= float64(tool.SafetyLevel-1) * 3
	}

	if tool.AverageDuration < 1.0 {
		score += 2
	}

	return score
}

func wordSet(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		words[w] = true
	}
	return words
}

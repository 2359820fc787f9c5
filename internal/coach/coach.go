// Package coach implements the nutrition widgets on top of a text
// generator: the cooking companion that plans a timed recipe, the meal
// fixer, the food doctor, and the mindful eating score.
package coach

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/llm"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// Option configures the companion.
type Option func(*Companion)

// WithPrompts replaces the built-in prompt templates.
func WithPrompts(p *Prompts) Option {
	return func(c *Companion) {
		c.prompts = p
	}
}

// Companion is the single entry point the CLI calls for generated content.
// Every method makes at most one model request and never retries.
type Companion struct {
	gen     llm.TextGenerator
	prompts *Prompts
	schemas schemas
	log     *logger.Logger
}

// New creates a companion backed by gen.
func New(gen llm.TextGenerator, log *logger.Logger, opts ...Option) (*Companion, error) {
	c := &Companion{gen: gen, log: log}
	for _, opt := range opts {
		opt(c)
	}
	if c.prompts == nil {
		p, err := DefaultPrompts()
		if err != nil {
			return nil, err
		}
		c.prompts = p
	}

	s, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	c.schemas = s
	return c, nil
}

// recipeResponse is the raw cooking companion answer.
type recipeResponse struct {
	Recipe []struct {
		Step string  `json:"step"`
		Time float64 `json:"time"`
	} `json:"recipe"`
	Summary       string  `json:"summary"`
	Macros        Macros  `json:"macros"`
	Calories      float64 `json:"calories"`
	Difficulty    string  `json:"difficulty"`
	TotalTime     float64 `json:"total_time"`
	GoalAlignment string  `json:"goal_alignment"`
}

// Generate plans a recipe from the user's ingredients. The returned plan's
// Recipe is ready to hand to a session; a response that cannot form a valid
// recipe is an ErrMalformedResponse and never reaches one.
func (c *Companion) Generate(ctx context.Context, req CookRequest) (*RecipePlan, error) {
	if strings.TrimSpace(req.Ingredients) == "" {
		return nil, fmt.Errorf("ingredients: %w", ErrEmptyInput)
	}
	if req.Goal == "" {
		req.Goal = GoalMaintain
	}

	var resp recipeResponse
	if err := c.ask(ctx, PromptCook, req, schemaRecipePlan, &resp); err != nil {
		return nil, err
	}

	inputs := make([]domain.StepInput, len(resp.Recipe))
	for i, s := range resp.Recipe {
		inputs[i] = domain.StepInput{
			Description:     s.Step,
			DurationSeconds: minutesToSeconds(s.Time),
		}
	}
	recipe, err := domain.NewRecipe(titleFor(req, resp.Summary), inputs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	total := resp.TotalTime
	if total <= 0 {
		total = recipe.TotalDuration().Minutes()
	}

	c.log.Info("coach: planned %d-step recipe (%s, %.0f kcal)", len(recipe.Steps), resp.Difficulty, resp.Calories)
	return &RecipePlan{
		Recipe:        recipe,
		Summary:       resp.Summary,
		Macros:        resp.Macros,
		Calories:      resp.Calories,
		Difficulty:    resp.Difficulty,
		TotalMinutes:  total,
		GoalAlignment: resp.GoalAlignment,
	}, nil
}

// FixMeal returns short free-text advice for improving a meal.
func (c *Companion) FixMeal(ctx context.Context, meal string, goal Goal) (string, error) {
	if strings.TrimSpace(meal) == "" {
		return "", fmt.Errorf("meal: %w", ErrEmptyInput)
	}
	if goal == "" {
		goal = GoalMaintain
	}

	prompt, err := c.prompts.Render(PromptFixMeal, struct {
		Meal string
		Goal Goal
	}{meal, goal})
	if err != nil {
		return "", err
	}
	resp, err := c.gen.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("fix meal: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

// Doctor suggests foods for a described health issue.
func (c *Companion) Doctor(ctx context.Context, issue string) (*Diagnosis, error) {
	if strings.TrimSpace(issue) == "" {
		return nil, fmt.Errorf("issue: %w", ErrEmptyInput)
	}

	var d Diagnosis
	data := struct{ Issue string }{issue}
	if err := c.ask(ctx, PromptDoctor, data, schemaDiagnosis, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Mindful scores a meal against the user's goal.
func (c *Companion) Mindful(ctx context.Context, meal string, goal Goal) (*MealScore, error) {
	if strings.TrimSpace(meal) == "" {
		return nil, fmt.Errorf("meal: %w", ErrEmptyInput)
	}
	if goal == "" {
		goal = GoalMaintain
	}

	var s MealScore
	data := struct {
		Meal string
		Goal Goal
	}{meal, goal}
	if err := c.ask(ctx, PromptMindful, data, schemaMealScore, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ask renders a prompt, makes one request, and decodes the validated answer.
func (c *Companion) ask(ctx context.Context, prompt string, data any, schema string, v any) error {
	text, err := c.prompts.Render(prompt, data)
	if err != nil {
		return err
	}

	resp, err := c.gen.GenerateContent(ctx, text)
	if err != nil {
		return fmt.Errorf("%s: %w", strings.TrimSuffix(prompt, ".tmpl"), err)
	}

	if err := c.schemas.decode(schema, resp.Content, v); err != nil {
		c.log.Error("coach: %s response rejected: %v\nraw: %s", prompt, err, truncate(resp.Content, 400))
		return err
	}
	return nil
}

// minutesToSeconds rounds to whole seconds. Anything positive maps to at
// least one second so a "0.001 minute" step stays a valid step.
func minutesToSeconds(m float64) int {
	if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return 0
	}
	s := int(math.Round(m * 60))
	if s < 1 {
		s = 1
	}
	return s
}

// titleFor names a generated recipe after the first sentence of its
// summary, falling back to the ingredients.
func titleFor(req CookRequest, summary string) string {
	if i := strings.IndexAny(summary, ".!\n"); i > 0 {
		summary = summary[:i]
	}
	summary = strings.TrimSpace(summary)
	if summary != "" && len(summary) <= 60 {
		return summary
	}
	return "Recipe with " + truncate(strings.TrimSpace(req.Ingredients), 40)
}

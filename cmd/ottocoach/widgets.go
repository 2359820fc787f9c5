package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottocoach/internal/coach"
	"github.com/hammamikhairi/ottocoach/internal/config"
	"github.com/hammamikhairi/ottocoach/internal/display"
	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/llm"
	"github.com/hammamikhairi/ottocoach/internal/recipe"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes [query]",
	Short: "List the built-in recipes that run without an API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		src, err := recipe.NewMemorySource(e.log)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var list []domain.RecipeSummary
		if query := strings.Join(args, " "); query != "" {
			list, err = src.Search(ctx, query)
		} else {
			list, err = src.List(ctx)
		}
		if err != nil {
			return err
		}

		fmt.Println(display.RenderRecipeList(list))
		return nil
	},
}

var fixMealCmd = &cobra.Command{
	Use:   "fix-meal <meal>",
	Short: "Get advice on making a meal fit your goal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal, err := goalFlag(cmd)
		if err != nil {
			return err
		}
		return withCompanion(cmd, func(ctx context.Context, c *coach.Companion) error {
			advice, err := c.FixMeal(ctx, strings.Join(args, " "), goal)
			if err != nil {
				return err
			}
			fmt.Println(display.RenderAdvice(advice))
			return nil
		})
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor <symptoms>",
	Short: "Find a likely nutrient deficiency and the foods that help",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCompanion(cmd, func(ctx context.Context, c *coach.Companion) error {
			d, err := c.Doctor(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(display.RenderDiagnosis(d))
			return nil
		})
	},
}

var mindfulCmd = &cobra.Command{
	Use:   "mindful <meal>",
	Short: "Score a meal against your goal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal, err := goalFlag(cmd)
		if err != nil {
			return err
		}
		return withCompanion(cmd, func(ctx context.Context, c *coach.Companion) error {
			s, err := c.Mindful(ctx, strings.Join(args, " "), goal)
			if err != nil {
				return err
			}
			fmt.Println(display.RenderScore(s))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(recipesCmd)
	rootCmd.AddCommand(fixMealCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(mindfulCmd)

	fixMealCmd.Flags().StringP("goal", "g", "", "weight loss, weight gain, or maintain")
	mindfulCmd.Flags().StringP("goal", "g", "", "weight loss, weight gain, or maintain")
}

func goalFlag(cmd *cobra.Command) (coach.Goal, error) {
	s, err := cmd.Flags().GetString("goal")
	if err != nil {
		return "", err
	}
	return coach.ParseGoal(s)
}

// withCompanion builds a companion from config, runs fn, and releases the
// model client.
func withCompanion(cmd *cobra.Command, fn func(context.Context, *coach.Companion) error) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	c, closeFn, err := newCompanion(ctx, e)
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Println(display.RenderHint("Thinking..."))
	return fn(ctx, c)
}

func newCompanion(ctx context.Context, e *env) (*coach.Companion, func(), error) {
	gen, err := llm.NewFromConfig(ctx, e.cfg, e.log)
	if err != nil {
		return nil, nil, err
	}

	prompts, err := coach.LoadPrompts(e.fs, e.cfg.PromptDir)
	if err != nil {
		gen.Close()
		return nil, nil, err
	}

	c, err := coach.New(gen, e.log, coach.WithPrompts(prompts))
	if err != nil {
		gen.Close()
		return nil, nil, err
	}
	return c, func() { gen.Close() }, nil
}

// friendlyError turns the errors users can act on into a short hint.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, config.ErrMissingAPIKey):
		return err.Error() + " (or try `ottocoach cook --demo <id>`, see `ottocoach recipes`)"
	case errors.Is(err, llm.ErrUnauthorized):
		return "the model provider rejected the API key"
	case errors.Is(err, llm.ErrRateLimited):
		return "the model provider is rate limiting requests, try again in a minute"
	case errors.Is(err, llm.ErrUnavailable):
		return "the model provider is unavailable right now"
	case errors.Is(err, coach.ErrMalformedResponse):
		return "the model answered in an unexpected shape, please try again"
	case errors.Is(err, coach.ErrEmptyInput):
		return "nothing to work with, please describe your meal or ingredients"
	case errors.Is(err, domain.ErrNotFound):
		return err.Error() + " (see `ottocoach recipes`)"
	default:
		return err.Error()
	}
}

package coach

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hammamikhairi/ottocoach/internal/domain"
)

var (
	// ErrEmptyInput is returned before any request is made when the user
	// gave nothing to work with.
	ErrEmptyInput = errors.New("input is empty")
	// ErrMalformedResponse means the model answered with something that does
	// not have the expected shape.
	ErrMalformedResponse = errors.New("malformed model response")
)

// Goal is the user's dietary goal.
type Goal string

const (
	GoalWeightLoss Goal = "Weight Loss"
	GoalWeightGain Goal = "Weight Gain"
	GoalMaintain   Goal = "Maintain"
)

// ParseGoal accepts the display names and short forms like "loss" or
// "gain". Empty means GoalMaintain.
func ParseGoal(s string) (Goal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "maintain", "maintenance":
		return GoalMaintain, nil
	case "weight loss", "loss", "lose", "cut":
		return GoalWeightLoss, nil
	case "weight gain", "gain", "bulk":
		return GoalWeightGain, nil
	default:
		return "", fmt.Errorf("unknown goal %q (want weight loss, weight gain, or maintain)", s)
	}
}

// CookRequest is what the cooking companion needs to plan a recipe.
type CookRequest struct {
	Ingredients string
	Goal        Goal
	Allergies   string
}

// Macros are grams per serving.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

// Total returns the sum of all macros in grams.
func (m Macros) Total() float64 {
	return m.Protein + m.Carbs + m.Fats
}

// RecipePlan is a generated recipe plus the nutrition report around it.
type RecipePlan struct {
	Recipe        *domain.Recipe
	Summary       string
	Macros        Macros
	Calories      float64
	Difficulty    string
	TotalMinutes  float64
	GoalAlignment string
}

// Diagnosis is the food doctor's answer.
type Diagnosis struct {
	Deficiency                string   `json:"deficiency"`
	RecommendedFoods          []string `json:"recommended_foods"`
	AdditionalRecommendations []string `json:"additional_recommendations"`
}

// Suggestions group the mindful eating advice.
type Suggestions struct {
	Donts []string `json:"donts"`
	Dos   []string `json:"dos"`
	Best  []string `json:"best"`
}

// MealScore is the mindful eating evaluation of one meal.
type MealScore struct {
	Score       float64     `json:"score"`
	Macros      Macros      `json:"macros"`
	Suggestions Suggestions `json:"suggestions"`
	Summary     string      `json:"summary"`
}

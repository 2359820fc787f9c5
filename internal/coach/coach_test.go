package coach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottocoach/internal/llm"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	args := m.Called(ctx, prompt)
	return llm.ContentResponse{Content: args.String(0)}, args.Error(1)
}

func (m *mockGenerator) Close() error { return nil }

func newTestCompanion(t *testing.T, gen llm.TextGenerator, opts ...Option) *Companion {
	t.Helper()
	c, err := New(gen, logger.New(logger.LevelOff, nil), opts...)
	require.NoError(t, err)
	return c
}

const recipeAnswer = "Here you go!\n```json\n" + `{
  "recipe": [
    {"step": "Chop the vegetables", "time": 5},
    {"step": "Simmer the lentils", "time": 20.5}
  ],
  "summary": "A hearty lentil stew. Packed with protein.",
  "macros": {"protein": 30, "carbs": 50, "fats": 15},
  "calories": 500,
  "difficulty": "Easy",
  "total_time": 26,
  "goal_alignment": "High protein keeps you full."
}` + "\n```\nEnjoy!"

func TestGenerateBuildsRecipe(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateContent", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, `"lentils, carrots"`) &&
			strings.Contains(p, "Weight Loss") &&
			strings.Contains(p, `"peanuts"`)
	})).Return(recipeAnswer, nil).Once()

	c := newTestCompanion(t, gen)
	plan, err := c.Generate(context.Background(), CookRequest{
		Ingredients: "lentils, carrots",
		Goal:        GoalWeightLoss,
		Allergies:   "peanuts",
	})
	require.NoError(t, err)
	gen.AssertExpectations(t)

	require.Len(t, plan.Recipe.Steps, 2)
	assert.Equal(t, "Chop the vegetables", plan.Recipe.Steps[0].Description)
	assert.Equal(t, 300, plan.Recipe.Steps[0].PlannedDurationSeconds)
	assert.Equal(t, 1230, plan.Recipe.Steps[1].PlannedDurationSeconds)
	assert.Equal(t, "A hearty lentil stew", plan.Recipe.Title)
	assert.Equal(t, Macros{Protein: 30, Carbs: 50, Fats: 15}, plan.Macros)
	assert.Equal(t, 500.0, plan.Calories)
	assert.Equal(t, "Easy", plan.Difficulty)
	assert.Equal(t, 26.0, plan.TotalMinutes)
	assert.NoError(t, plan.Recipe.Validate())
}

func TestGenerateRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name   string
		answer string
	}{
		{"not json", "Sorry, I can't help with that."},
		{"no steps", `{"recipe": []}`},
		{"zero minutes", `{"recipe": [{"step": "Wait", "time": 0}]}`},
		{"missing time", `{"recipe": [{"step": "Stir"}]}`},
		{"blank step", `{"recipe": [{"step": "", "time": 3}]}`},
		{"truncated", "```json\n{\"recipe\": [{\"step\": \"Stir\", \"time\": 3}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{}
			gen.On("GenerateContent", mock.Anything, mock.Anything).Return(tt.answer, nil)

			_, err := newTestCompanion(t, gen).Generate(context.Background(), CookRequest{Ingredients: "rice"})
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestEmptyInputSkipsModel(t *testing.T) {
	gen := &mockGenerator{}
	c := newTestCompanion(t, gen)
	ctx := context.Background()

	_, err := c.Generate(ctx, CookRequest{Ingredients: "  "})
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = c.FixMeal(ctx, "", GoalMaintain)
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = c.Doctor(ctx, "\n")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = c.Mindful(ctx, "", GoalWeightGain)
	assert.ErrorIs(t, err, ErrEmptyInput)

	gen.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything)
}

func TestProviderErrorsPassThrough(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateContent", mock.Anything, mock.Anything).Return("", llm.ErrUnauthorized).Once()

	_, err := newTestCompanion(t, gen).Doctor(context.Background(), "always tired")
	assert.ErrorIs(t, err, llm.ErrUnauthorized)
	gen.AssertNumberOfCalls(t, "GenerateContent", 1)
}

func TestFixMeal(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateContent", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Meal: white rice and fried chicken") && strings.Contains(p, "Goal: Weight Gain")
	})).Return("\n- Add beans for fibre.\n", nil)

	advice, err := newTestCompanion(t, gen).FixMeal(context.Background(), "white rice and fried chicken", GoalWeightGain)
	require.NoError(t, err)
	assert.Equal(t, "- Add beans for fibre.", advice)
}

func TestDoctor(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateContent", mock.Anything, mock.Anything).Return(`{
		"deficiency": "Iron",
		"recommended_foods": ["spinach", "lentils"],
		"additional_recommendations": ["pair with vitamin C"]
	}`, nil)

	d, err := newTestCompanion(t, gen).Doctor(context.Background(), "always tired, pale skin")
	require.NoError(t, err)
	assert.Equal(t, "Iron", d.Deficiency)
	assert.Equal(t, []string{"spinach", "lentils"}, d.RecommendedFoods)
	assert.Equal(t, []string{"pair with vitamin C"}, d.AdditionalRecommendations)
}

func TestMindful(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateContent", mock.Anything, mock.Anything).Return("```json\n"+`{
		"score": 72,
		"macros": {"protein": 25.5, "carbs": 60, "fats": 12},
		"suggestions": {"donts": ["skip the soda"], "dos": ["add greens"], "best": ["grilled fish"]},
		"summary": "Decent balance."
	}`+"\n```", nil)

	s, err := newTestCompanion(t, gen).Mindful(context.Background(), "burger and soda", GoalWeightLoss)
	require.NoError(t, err)
	assert.Equal(t, 72.0, s.Score)
	assert.Equal(t, 25.5, s.Macros.Protein)
	assert.Equal(t, []string{"skip the soda"}, s.Suggestions.Donts)
	assert.Equal(t, "Decent balance.", s.Summary)
}

func TestMindfulRejectsOutOfRangeScore(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateContent", mock.Anything, mock.Anything).Return(`{"score": 140, "macros": {}}`, nil)

	_, err := newTestCompanion(t, gen).Mindful(context.Background(), "cake", GoalMaintain)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestPromptOverride(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/prompts/doctor.tmpl", []byte("DOC {{.Issue}} json please"), 0o644))

	prompts, err := LoadPrompts(fs, "/prompts")
	require.NoError(t, err)

	gen := &mockGenerator{}
	gen.On("GenerateContent", mock.Anything, "DOC headache json please").
		Return(`{"deficiency": "Magnesium", "recommended_foods": ["almonds"]}`, nil).Once()

	d, err := newTestCompanion(t, gen, WithPrompts(prompts)).Doctor(context.Background(), "headache")
	require.NoError(t, err)
	assert.Equal(t, "Magnesium", d.Deficiency)
	gen.AssertExpectations(t)

	// Templates without an override keep the built-in text.
	out, err := prompts.Render(PromptFixMeal, struct {
		Meal string
		Goal Goal
	}{"toast", GoalMaintain})
	require.NoError(t, err)
	assert.Contains(t, out, "Meal: toast")
}

func TestPromptOverrideParseError(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p/cook.tmpl", []byte("{{.Ingredients"), 0o644))

	_, err := LoadPrompts(fs, "/p")
	assert.Error(t, err)
}

func TestParseGoal(t *testing.T) {
	tests := []struct {
		in   string
		want Goal
		ok   bool
	}{
		{"", GoalMaintain, true},
		{"Weight Loss", GoalWeightLoss, true},
		{"gain", GoalWeightGain, true},
		{" MAINTAIN ", GoalMaintain, true},
		{"shred", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGoal(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMinutesToSeconds(t *testing.T) {
	assert.Equal(t, 300, minutesToSeconds(5))
	assert.Equal(t, 30, minutesToSeconds(0.5))
	assert.Equal(t, 1, minutesToSeconds(0.001))
	assert.Equal(t, 0, minutesToSeconds(0))
	assert.Equal(t, 0, minutesToSeconds(-2))
}

func TestErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrEmptyInput, ErrMalformedResponse))
}

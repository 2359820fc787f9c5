package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottocoach/internal/coach"
	"github.com/hammamikhairi/ottocoach/internal/conversation"
	"github.com/hammamikhairi/ottocoach/internal/display"
	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/engine"
	"github.com/hammamikhairi/ottocoach/internal/logger"
	"github.com/hammamikhairi/ottocoach/internal/recipe"
	"github.com/hammamikhairi/ottocoach/internal/sound"
	"github.com/hammamikhairi/ottocoach/internal/timer"
)

var cookCmd = &cobra.Command{
	Use:   "cook",
	Short: "Plan a recipe and cook it with per-step timers",
	RunE:  runCook,
}

func init() {
	rootCmd.AddCommand(cookCmd)

	cookCmd.Flags().String("demo", "", "cook a built-in recipe by id instead of generating one")
	cookCmd.Flags().StringP("ingredients", "i", "", "ingredients you have, comma separated")
	cookCmd.Flags().StringP("goal", "g", "", "weight loss, weight gain, or maintain")
	cookCmd.Flags().StringP("allergies", "a", "", "allergies or foods to avoid")
}

func runCook(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	r, err := loadRecipe(ctx, cmd, e)
	if err != nil {
		return err
	}

	// The notifier prints through the UI, which reads from the session,
	// which sends through the notifier. ui is assigned before any timer runs.
	var ui *display.UI
	var notifier domain.Notifier = conversation.NewCLINotifier(e.log, func(format string, a ...interface{}) {
		ui.Printf(format, a...)
	})

	var chime *sound.ChimeNotifier
	if e.cfg.Chime {
		player, err := sound.NewPlayer(e.log)
		if err != nil {
			e.log.Warn("audio unavailable, chime disabled: %v", err)
		} else {
			chime = sound.NewChimeNotifier(notifier, player, e.log)
			notifier = chime
		}
	}

	session := engine.New(e.log,
		engine.WithTickInterval(e.cfg.TickInterval),
		engine.WithNotifier(notifier),
	)

	title := "OttoCoach"
	if r.Title != "" {
		title += " · " + r.Title
	}
	ui = display.NewUI(session, title)

	if err := session.Begin(r); err != nil {
		return err
	}

	watcher := timer.NewWatcher(session, notifier, e.log,
		timer.WithWatchInterval(e.cfg.WatchInterval),
		timer.WithAlmostDoneThreshold(e.cfg.AlmostDoneThreshold),
		timer.WithTickLength(e.cfg.TickInterval),
	)
	go watcher.Run(ctx)

	app := &cliApp{
		session: session,
		parser:  conversation.NewKeywordParser(e.log),
		log:     e.log,
		out:     ui,
	}

	fmt.Println(display.RenderBanner())
	fmt.Println(display.RenderHint("  Type 'start N' when you begin step N, 'help' for commands, 'quit' to exit."))
	fmt.Println()

	go func() {
		ui.WaitReady()
		app.showSteps()
		app.run(ctx, ui.InputChan())
		ui.Quit()
	}()

	// Bubble Tea owns the terminal until quit.
	if err := ui.Run(); err != nil {
		e.log.Error("display: %v", err)
	}
	cancel()
	session.Close()
	if chime != nil {
		chime.Wait()
	}
	return nil
}

// loadRecipe returns the built-in recipe named by --demo, or generates one
// from the ingredient flags.
func loadRecipe(ctx context.Context, cmd *cobra.Command, e *env) (*domain.Recipe, error) {
	demo, _ := cmd.Flags().GetString("demo")
	if demo != "" {
		src, err := recipe.NewMemorySource(e.log)
		if err != nil {
			return nil, err
		}
		return src.Get(ctx, demo)
	}

	ingredients, _ := cmd.Flags().GetString("ingredients")
	allergies, _ := cmd.Flags().GetString("allergies")
	goal, err := goalFlag(cmd)
	if err != nil {
		return nil, err
	}

	c, closeFn, err := newCompanion(ctx, e)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	fmt.Println(display.RenderHint("Planning your recipe..."))
	plan, err := c.Generate(ctx, coach.CookRequest{
		Ingredients: ingredients,
		Goal:        goal,
		Allergies:   allergies,
	})
	if err != nil {
		return nil, err
	}
	fmt.Println(display.RenderPlan(plan))
	fmt.Println()
	return plan.Recipe, nil
}

// printer is the part of the UI the command loop writes to.
type printer interface {
	Println(a ...interface{})
	Printf(format string, a ...interface{})
}

type cliApp struct {
	session *engine.Session
	parser  domain.IntentParser
	log     *logger.Logger
	out     printer
}

func (a *cliApp) run(ctx context.Context, input <-chan string) {
	for {
		var line string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case line, ok = <-input:
			if !ok {
				return
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		intent, err := a.parser.Parse(ctx, line)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}

		a.log.Debug("intent: %s (step=%d, payload=%q)", intent.Type, intent.StepIndex, intent.Payload)
		if quit := a.handleIntent(intent); quit {
			return
		}
	}
}

// handleIntent acts on one intent and reports whether the user asked to
// leave.
func (a *cliApp) handleIntent(intent *domain.Intent) bool {
	switch intent.Type {
	case domain.IntentStartStep:
		a.startStep(intent.StepIndex)
	case domain.IntentEndStep:
		a.endStep(intent.StepIndex)
	case domain.IntentStatus:
		a.out.Println(display.RenderStatus(a.session.Steps()))
	case domain.IntentListSteps:
		a.showSteps()
	case domain.IntentHelp:
		a.out.Println(conversation.HelpText)
	case domain.IntentQuit:
		a.out.Println("Bye, enjoy your meal.")
		return true
	default:
		a.out.Printf("Didn't catch %q. Type 'help' for commands.", intent.Payload)
	}
	return false
}

func (a *cliApp) startStep(index int) {
	if v, err := a.session.View(index); err == nil && v.Status == domain.StepRunning {
		a.out.Printf("Step %d is already running, %s left.", index+1, fmtSeconds(v.RemainingSeconds))
		return
	}

	if err := a.session.StartStep(index); err != nil {
		a.stepError(index, err)
		return
	}

	v, err := a.session.View(index)
	if err != nil {
		a.log.Error("view after start: %v", err)
		return
	}
	a.out.Printf("Step %d started: %s (%s)", index+1, v.Step.Description, fmtSeconds(v.RemainingSeconds))
}

func (a *cliApp) endStep(index int) {
	if err := a.session.EndStep(index); err != nil {
		a.stepError(index, err)
		return
	}
	a.out.Printf("Step %d marked done.", index+1)
}

func (a *cliApp) stepError(index int, err error) {
	switch {
	case errors.Is(err, domain.ErrStepCompleted):
		a.out.Println(display.RenderHint(fmt.Sprintf("Step %d is already done.", index+1)))
	case errors.Is(err, domain.ErrStepOutOfRange):
		a.out.Printf("There is no step %d, this recipe has %d steps.", index+1, len(a.session.Steps()))
	default:
		a.log.Error("step %d: %v", index+1, err)
		a.out.Printf("Could not update step %d: %v", index+1, err)
	}
}

func (a *cliApp) showSteps() {
	if r := a.session.Recipe(); r != nil && r.Title != "" {
		a.out.Println(r.Title)
	}
	a.out.Println(display.RenderSteps(a.session.Steps()))
}

func fmtSeconds(n int) string {
	m, s := n/60, n%60
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

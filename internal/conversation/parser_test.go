package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

func TestKeywordParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewKeywordParser(log)
	ctx := context.Background()

	tests := []struct {
		input     string
		wantType  domain.IntentType
		wantIndex int
	}{
		// Start variants
		{"start 1", domain.IntentStartStep, 0},
		{"go 3", domain.IntentStartStep, 2},
		{"timer 2", domain.IntentStartStep, 1},
		{"Start Step 4", domain.IntentStartStep, 3},
		{"  start   #12 ", domain.IntentStartStep, 11},

		// End variants
		{"end 1", domain.IntentEndStep, 0},
		{"done 2", domain.IntentEndStep, 1},
		{"finish step 5", domain.IntentEndStep, 4},

		// Others
		{"status", domain.IntentStatus, 0},
		{"timers", domain.IntentStatus, 0},
		{"list", domain.IntentListSteps, 0},
		{"steps", domain.IntentListSteps, 0},
		{"help", domain.IntentHelp, 0},
		{"?", domain.IntentHelp, 0},
		{"quit", domain.IntentQuit, 0},
		{"Q", domain.IntentQuit, 0},

		// Unknown
		{"start", domain.IntentUnknown, 0},
		{"start 0", domain.IntentUnknown, 0},
		{"start two", domain.IntentUnknown, 0},
		{"end -1", domain.IntentUnknown, 0},
		{"start 99999999999999999999", domain.IntentUnknown, 0},
		{"how long do I boil pasta?", domain.IntentUnknown, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			intent, err := parser.Parse(ctx, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if intent.Type != tt.wantType {
				t.Fatalf("Parse(%q) type = %s, want %s", tt.input, intent.Type, tt.wantType)
			}
			if intent.StepIndex != tt.wantIndex {
				t.Fatalf("Parse(%q) step = %d, want %d", tt.input, intent.StepIndex, tt.wantIndex)
			}
		})
	}
}

func TestKeywordParserEmpty(t *testing.T) {
	parser := NewKeywordParser(logger.New(logger.LevelOff, nil))

	intent, err := parser.Parse(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Type != domain.IntentUnknown || intent.Payload != "" {
		t.Fatalf("expected empty unknown intent, got %+v", intent)
	}
}

func TestKeywordParserUnknownKeepsPayload(t *testing.T) {
	parser := NewKeywordParser(logger.New(logger.LevelOff, nil))

	intent, _ := parser.Parse(context.Background(), "  add   more salt ")
	if intent.Payload != "add more salt" {
		t.Fatalf("expected normalised payload, got %q", intent.Payload)
	}
}

func TestCLINotifier(t *testing.T) {
	var mu sync.Mutex
	var lines []string
	printFn := func(format string, a ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, fmt.Sprintf(format, a...))
	}

	n := NewCLINotifier(logger.New(logger.LevelOff, nil), printFn)
	ctx := context.Background()
	if err := n.Notify(ctx, "Step 2 is almost done"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := n.NotifyUrgent(ctx, "Step 1 is done"); err != nil {
		t.Fatalf("notify urgent: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "Step 2 is almost done") || !strings.Contains(lines[1], "Step 1 is done") {
		t.Fatalf("unexpected output: %q", lines)
	}
}

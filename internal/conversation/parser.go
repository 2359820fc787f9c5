// Package conversation provides intent parsing and user notification implementations.
package conversation

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches user input to intents using keywords and simple
// patterns. Step numbers are 1-based on input and 0-based in the intent.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(?:start|go|timer|begin|s)\s+(?:step\s+)?#?(\d+)$`), domain.IntentStartStep},
		{regexp.MustCompile(`(?i)^(?:end|done|finish|complete|e)\s+(?:step\s+)?#?(\d+)$`), domain.IntentEndStep},
		{regexp.MustCompile(`(?i)^(status|where|progress|timers)$`), domain.IntentStatus},
		{regexp.MustCompile(`(?i)^(list|steps|show|recipe)$`), domain.IntentListSteps},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.IntentHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q|bye)$`), domain.IntentQuit},
	}
	return p
}

// Parse converts user input into an intent. Input that matches nothing, or
// names step 0, comes back as IntentUnknown carrying the raw text.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	trimmed := strings.Join(strings.Fields(input), " ")
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		p.log.Debug("matched intent: %s", rule.intent)

		if rule.intent != domain.IntentStartStep && rule.intent != domain.IntentEndStep {
			return &domain.Intent{Type: rule.intent}, nil
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			break
		}
		return &domain.Intent{Type: rule.intent, StepIndex: n - 1, Payload: trimmed}, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}

// HelpText lists the commands Parse understands.
const HelpText = `Commands:
  start N    start the timer for step N (also: go N, timer N)
  end N      mark step N done, timer or not (also: done N, finish N)
  status     show running timers
  list       show every step and its state
  help       show this help
  quit       leave`

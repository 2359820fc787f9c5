package sound

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*ChimeNotifier)(nil)

// ChimeNotifier wraps a text notifier and plays a chime on urgent
// messages. The chime plays in the background; a chime requested while
// another is still playing is dropped rather than queued.
type ChimeNotifier struct {
	text  domain.Notifier
	sink  Sink
	chime []byte
	log   *logger.Logger

	playing atomic.Bool
	wg      sync.WaitGroup
}

// NewChimeNotifier creates a notifier that prints through text and chimes
// through sink.
func NewChimeNotifier(text domain.Notifier, sink Sink, log *logger.Logger) *ChimeNotifier {
	return &ChimeNotifier{
		text:  text,
		sink:  sink,
		chime: Chime(),
		log:   log,
	}
}

// Notify prints the message. Normal messages are silent.
func (n *ChimeNotifier) Notify(ctx context.Context, message string) error {
	return n.text.Notify(ctx, message)
}

// NotifyUrgent prints the message and starts the chime.
func (n *ChimeNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.text.NotifyUrgent(ctx, message); err != nil {
		return err
	}

	if !n.playing.CompareAndSwap(false, true) {
		n.log.Debug("sound: chime already playing, skipping")
		return nil
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer n.playing.Store(false)
		if err := n.sink.Play(n.chime); err != nil {
			n.log.Warn("sound: playing chime: %v", err)
		}
	}()
	return nil
}

// Wait blocks until any chime in progress has finished.
func (n *ChimeNotifier) Wait() {
	n.wg.Wait()
}

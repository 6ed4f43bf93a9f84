package hostsim

import (
	"log"

	"github.com/louisbranch/deathswap/internal/services/deathswap/round"
)

// Broadcaster logs chat and operator lines and mirrors every line, action
// bar updates included, to a feed.
type Broadcaster struct {
	players *Players
	feed    *Feed
}

// NewBroadcaster returns a broadcaster resolving names through players. A nil
// feed only logs.
func NewBroadcaster(players *Players, feed *Feed) *Broadcaster {
	return &Broadcaster{players: players, feed: feed}
}

// SendAll implements round.Broadcaster.
func (b *Broadcaster) SendAll(text string) {
	log.Printf("chat: %s", text)
	b.publish(Envelope{Type: EnvelopeChat, Text: text})
}

// Send implements round.Broadcaster.
func (b *Broadcaster) Send(id round.Identity, text string) {
	name := b.name(id)
	log.Printf("chat -> %s: %s", name, text)
	b.publish(Envelope{Type: EnvelopeChat, Player: name, Text: text})
}

// SendActionBar implements round.Broadcaster. Action bar lines refresh every
// second, so they go to the feed only.
func (b *Broadcaster) SendActionBar(id round.Identity, text string) {
	b.publish(Envelope{Type: EnvelopeActionBar, Player: b.name(id), Text: text})
}

// SendOperators implements round.Broadcaster.
func (b *Broadcaster) SendOperators(text string) {
	log.Printf("operators: %s", text)
	b.publish(Envelope{Type: EnvelopeOperator, Text: text})
}

func (b *Broadcaster) name(id round.Identity) string {
	if b.players != nil {
		if name := b.players.Name(id); name != "" {
			return name
		}
	}
	return id.String()
}

func (b *Broadcaster) publish(env Envelope) {
	if b.feed != nil {
		b.feed.Publish(env)
	}
}

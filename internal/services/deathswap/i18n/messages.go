// Package i18n renders the lines a round broadcasts to players and
// operators.
package i18n

import (
	"embed"
	"fmt"

	"golang.org/x/text/message"

	"github.com/louisbranch/deathswap/internal/platform/i18n/catalog"
	"github.com/louisbranch/deathswap/internal/services/deathswap/schedule"
)

//go:embed locales/*/*.yaml
var localesFS embed.FS

// Load parses the embedded catalogs.
func Load() (*catalog.Bundle, error) {
	bundle, err := catalog.LoadFromFS(localesFS)
	if err != nil {
		return nil, fmt.Errorf("load round messages: %w", err)
	}
	return bundle, nil
}

// Messages formats round text for one locale.
type Messages struct {
	locale string
	p      *message.Printer
}

// New returns messages for locale, falling back to the base locale when the
// bundle does not carry it.
func New(bundle *catalog.Bundle, locale string) (*Messages, error) {
	if bundle == nil {
		return nil, fmt.Errorf("round messages: bundle is required")
	}
	if !bundle.HasLocale(locale) {
		locale = catalog.BaseLocale
	}
	return &Messages{locale: locale, p: bundle.Printer(locale)}, nil
}

// Locale returns the locale lines are rendered in.
func (m *Messages) Locale() string { return m.locale }

func (m *Messages) RoundStarting() string    { return m.p.Sprintf("round.starting") }
func (m *Messages) NotEnoughPlayers() string { return m.p.Sprintf("round.not_enough_players") }
func (m *Messages) Tie() string              { return m.p.Sprintf("round.tie") }
func (m *Messages) StartingLocation() string { return m.p.Sprintf("round.starting_location") }
func (m *Messages) Spectating() string       { return m.p.Sprintf("round.spectating") }
func (m *Messages) CacheReady() string       { return m.p.Sprintf("round.cache_ready") }
func (m *Messages) NotActive() string        { return m.p.Sprintf("round.not_active") }

func (m *Messages) Winner(name string) string {
	return m.p.Sprintf("round.winner", name)
}

func (m *Messages) SwappingTo(owner string) string {
	return m.p.Sprintf("round.swapping_to", owner)
}

// Eliminated names the owner of the victim's last swap destination when
// there is one.
func (m *Messages) Eliminated(victim, owner string, remaining int) string {
	if owner == "" {
		return m.p.Sprintf("round.eliminated", victim, remaining)
	}
	return m.p.Sprintf("round.eliminated_by_swap", victim, owner, remaining)
}

// Hazard renders the action-bar countdown, e.g. "UNSAFE | Time: 01:05".
func (m *Messages) Hazard(h schedule.Hazard) string {
	return m.p.Sprintf("round.hazard", m.band(h.Band), h.Clock())
}

func (m *Messages) band(b schedule.Band) string {
	switch b {
	case schedule.BandUnsafe:
		return m.p.Sprintf("round.hazard_unsafe")
	case schedule.BandDanger:
		return m.p.Sprintf("round.hazard_danger")
	default:
		return m.p.Sprintf("round.hazard_safe")
	}
}

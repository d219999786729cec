package market

import "math/rand/v2"

// EventDefinition describes one transient market scenario: which assets it
// targets and how it perturbs their simulation parameters while active.
type EventDefinition struct {
	Title       string
	Description string
	// DurationTicks is how many simulation ticks the event stays active.
	DurationTicks int
	// Targets reports whether an asset is affected by this event.
	Targets func(Asset) bool
	// VolatilityMultiplier scales volatility while active; values above 1
	// amplify swings, below 1 calm the market.
	VolatilityMultiplier float64
	// MeanReturnModifier is added to the mean return while active.
	MeanReturnModifier float64
}

// DefaultCatalog returns the built-in market scenarios.
func DefaultCatalog() []EventDefinition {
	return []EventDefinition{
		{
			Title:                "CRYPTO CRASH",
			Description:          "Bitcoin and Altcoins are plunging! Panic in the market.",
			DurationTicks:        5,
			Targets:              func(a Asset) bool { return a.Type() == TypeCryptocurrency },
			VolatilityMultiplier: 3.0,
			MeanReturnModifier:   -0.05,
		},
		{
			Title:                "REAL ESTATE BOOM",
			Description:          "Housing prices are rising due to low interest rates.",
			DurationTicks:        8,
			Targets:              func(a Asset) bool { return a.Type() == TypeRealEstate },
			VolatilityMultiplier: 1.0,
			MeanReturnModifier:   0.02,
		},
		{
			Title:                "GEOPOLITICAL UNCERTAINTY",
			Description:          "Investors are fleeing to gold. Stocks are unstable.",
			DurationTicks:        6,
			Targets:              func(a Asset) bool { return a.Type() == TypeStock || a.Type() == TypeCommodity },
			VolatilityMultiplier: 2.5,
			MeanReturnModifier:   -0.005,
		},
		{
			Title:                "MARKET STABILIZATION",
			Description:          "The market is calming down after recent events.",
			DurationTicks:        3,
			Targets:              func(Asset) bool { return true },
			VolatilityMultiplier: 0.5,
			MeanReturnModifier:   0.0,
		},
	}
}

// triggerChance is the per-tick probability of a new event while idle.
const triggerChance = 0.10

// paramBackup holds an asset's pre-event parameters so expiry can restore
// the exact original values instead of inverting the modifiers, which would
// accumulate float drift. The asset reference is kept so restoration reaches
// assets that were removed or moved to another portfolio mid-event.
type paramBackup struct {
	asset      Asset
	volatility float64
	meanReturn float64
}

// EventEngine runs the transient market-event state machine for one
// portfolio: Idle -> Active -> Idle. While idle, each tick has a fixed
// chance of activating a random catalog entry; while active the engine only
// counts the remaining duration down. At most one event is active at a time.
//
// The engine is driven by the same single-threaded tick loop as the
// portfolio and must not be shared across tick drivers.
type EventEngine struct {
	portfolio *Portfolio
	catalog   []EventDefinition
	rng       *rand.Rand

	current   *EventDefinition
	remaining int
	backup    map[string]paramBackup
	news      string
}

// NewEventEngine creates an engine over the given portfolio and catalog.
// A nil catalog uses DefaultCatalog.
func NewEventEngine(p *Portfolio, catalog []EventDefinition) *EventEngine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &EventEngine{
		portfolio: p,
		catalog:   catalog,
		backup:    make(map[string]paramBackup),
		news:      "Market is stable.",
	}
}

// SetRand injects a seeded random source for reproducible activation rolls.
func (e *EventEngine) SetRand(rng *rand.Rand) { e.rng = rng }

func (e *EventEngine) roll() float64 {
	if e.rng != nil {
		return e.rng.Float64()
	}
	return rand.Float64()
}

// Active reports whether an event is currently running.
func (e *EventEngine) Active() bool { return e.current != nil }

// News returns the current market headline for consumers.
func (e *EventEngine) News() string { return e.news }

// Tick advances the event state machine by one simulation tick. While an
// event is active its duration counts down and expiry restores parameters;
// the activation roll is only performed while idle.
func (e *EventEngine) Tick() {
	if e.current != nil {
		e.remaining--
		if e.remaining <= 0 {
			e.end()
		}
		return
	}

	if len(e.catalog) > 0 && e.roll() < triggerChance {
		def := e.catalog[int(e.roll()*float64(len(e.catalog)))%len(e.catalog)]
		e.Trigger(def)
	} else {
		e.news = "Market is stable. No new reports."
	}
}

// Trigger activates the given event immediately, backing up and perturbing
// the parameters of every targeted asset. It is a no-op while another event
// is active. Exported so drivers and tests can force a specific scenario.
func (e *EventEngine) Trigger(def EventDefinition) {
	if e.current != nil {
		return
	}

	e.current = &def
	e.remaining = def.DurationTicks
	e.news = def.Title + ": " + def.Description
	clear(e.backup)

	for _, a := range e.portfolio.Assets() {
		if def.Targets(a) {
			e.backup[a.ID()] = paramBackup{asset: a, volatility: a.Volatility(), meanReturn: a.MeanReturn()}
			a.SetVolatility(a.Volatility() * def.VolatilityMultiplier)
			a.SetMeanReturn(a.MeanReturn() + def.MeanReturnModifier)
		}
	}
}

// ForceEnd terminates any active event immediately, restoring original
// parameters. Used before persistence and on shutdown so perturbed values
// are never saved.
func (e *EventEngine) ForceEnd() {
	if e.current == nil {
		return
	}
	e.end()
}

func (e *EventEngine) end() {
	// Restore from the backup, not from current membership: a backed-up
	// asset may have been removed or re-parented while the event ran.
	for _, original := range e.backup {
		original.asset.SetVolatility(original.volatility)
		original.asset.SetMeanReturn(original.meanReturn)
	}

	e.current = nil
	e.remaining = 0
	clear(e.backup)
	e.news = "Market event ended. Returning to normal."
}

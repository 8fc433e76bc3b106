// Package wave implements the spawn scheduler: timer-gated population
// control with escalating difficulty, driven once per tick.
package wave

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// Phase is the scheduler's state.
type Phase uint8

const (
	// Spawning creates hostiles on a timer until the wave quota is met.
	Spawning Phase = iota
	// Draining waits for the last hostiles of a fully spawned wave to die.
	Draining
	// Complete is held for the tick on which a wave finished.
	Complete
	// Delay counts down before the next wave starts spawning.
	Delay
	// BossPhase is terminal: no further normal waves.
	BossPhase
	// Finished is terminal for levels whose last wave ends the level.
	Finished
)

var phaseNames = [...]string{"spawning", "draining", "complete", "delay", "boss", "finished"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Weighted is one entry of a kind tier.
type Weighted struct {
	Kind   string `yaml:"kind"`
	Weight int    `yaml:"weight"`
}

// Tier lists the kinds eligible up to and including wave UpTo. UpTo 0 means
// every later wave.
type Tier struct {
	UpTo  int        `yaml:"up_to"`
	Kinds []Weighted `yaml:"kinds"`
}

// Config parameterizes a scheduler.
type Config struct {
	// InitialQuota is the number of hostiles in wave 1.
	InitialQuota int `yaml:"initial_quota"`
	// QuotaStep and QuotaDivisor raise the next quota by
	// QuotaStep + wave/QuotaDivisor after each wave.
	QuotaStep    int `yaml:"quota_step"`
	QuotaDivisor int `yaml:"quota_divisor"`
	// Interval = max(MinInterval, BaseInterval - IntervalStep*wave).
	BaseInterval int `yaml:"base_interval"`
	IntervalStep int `yaml:"interval_step"`
	MinInterval  int `yaml:"min_interval"`
	// DelayTicks separates waves.
	DelayTicks int `yaml:"delay_ticks"`
	// Reward = RewardBase + RewardPerWave*wave, paid on completion with the
	// incremented wave number.
	RewardBase    int `yaml:"reward_base"`
	RewardPerWave int `yaml:"reward_per_wave"`
	// FinalWave is the last normal wave.
	FinalWave int `yaml:"final_wave"`
	// BossAfterFinal selects BossPhase instead of Finished after FinalWave.
	BossAfterFinal bool   `yaml:"boss_after_final"`
	Tiers          []Tier `yaml:"tiers"`
}

// Validate checks the configuration.
//
// Postcondition: Returns nil if valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	if c.InitialQuota < 1 {
		errs = append(errs, fmt.Sprintf("initial_quota must be >= 1, got %d", c.InitialQuota))
	}
	if c.QuotaDivisor < 1 {
		errs = append(errs, fmt.Sprintf("quota_divisor must be >= 1, got %d", c.QuotaDivisor))
	}
	if c.MinInterval < 1 {
		errs = append(errs, fmt.Sprintf("min_interval must be >= 1, got %d", c.MinInterval))
	}
	if c.DelayTicks < 0 {
		errs = append(errs, "delay_ticks must be >= 0")
	}
	if c.FinalWave < 1 {
		errs = append(errs, fmt.Sprintf("final_wave must be >= 1, got %d", c.FinalWave))
	}
	if len(c.Tiers) == 0 {
		errs = append(errs, "at least one kind tier is required")
	}
	for i, t := range c.Tiers {
		if len(t.Kinds) == 0 {
			errs = append(errs, fmt.Sprintf("tier %d has no kinds", i))
		}
		for _, k := range t.Kinds {
			if k.Kind == "" || k.Weight < 1 {
				errs = append(errs, fmt.Sprintf("tier %d entry %q must have a name and weight >= 1", i, k.Kind))
			}
		}
		if i > 0 && t.UpTo != 0 && t.UpTo <= c.Tiers[i-1].UpTo {
			errs = append(errs, fmt.Sprintf("tier %d up_to must increase", i))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Interval returns the spawn interval for wave.
func (c Config) Interval(wave int) int {
	iv := c.BaseInterval - c.IntervalStep*wave
	if iv < c.MinInterval {
		return c.MinInterval
	}
	return iv
}

// ChooseKind selects a hostile kind for wave from the first tier covering it.
// Selection is a pure function of wave and the values drawn from src.
//
// Precondition: c.Validate() == nil.
func ChooseKind(tiers []Tier, wave int, src dice.Source) string {
	tier := tiers[len(tiers)-1]
	for _, t := range tiers {
		if t.UpTo == 0 || wave <= t.UpTo {
			tier = t
			break
		}
	}
	if len(tier.Kinds) == 1 {
		return tier.Kinds[0].Kind
	}
	total := 0
	for _, k := range tier.Kinds {
		total += k.Weight
	}
	r := src.Intn(total)
	for _, k := range tier.Kinds {
		if r < k.Weight {
			return k.Kind
		}
		r -= k.Weight
	}
	return tier.Kinds[len(tier.Kinds)-1].Kind
}

// State is the observable scheduler state.
//
// Invariant: a wave completes only when Spawned >= Quota and no hostiles
// remain alive.
type State struct {
	Wave    int
	Spawned int
	Quota   int
	Phase   Phase
	// DelayLeft counts down during Delay.
	DelayLeft int
	timer     int
}

// Complete reports whether the current tick finished a wave.
func (s State) Complete() bool { return s.Phase == Complete }

// Decision is what the scheduler asks of its caller for one tick.
type Decision struct {
	// Spawn is set when one hostile of Kind should be created this tick.
	Spawn bool
	Kind  string
	// Completed is set on the tick a wave finishes; Reward is its payout and
	// CompletedWave the wave number that finished.
	Completed     bool
	CompletedWave int
	Reward        int
	// EnteredBoss and Finished report transitions into the terminal phases.
	EnteredBoss bool
	Finished    bool
}

// Scheduler runs the wave state machine for one level session.
type Scheduler struct {
	cfg   Config
	src   dice.Source
	state State
}

// NewScheduler returns a scheduler positioned at the start of wave 1.
//
// Precondition: cfg.Validate() == nil; src must be non-nil.
func NewScheduler(cfg Config, src dice.Source) *Scheduler {
	return &Scheduler{
		cfg:   cfg,
		src:   src,
		state: State{Wave: 1, Quota: cfg.InitialQuota, Phase: Spawning},
	}
}

// State returns a copy of the current state.
func (s *Scheduler) State() State { return s.state }

// Tick advances the machine by one tick. liveHostiles is the number of
// scheduler-counted hostiles alive after this tick's collision phase.
func (s *Scheduler) Tick(liveHostiles int) Decision {
	var d Decision
	st := &s.state
	switch st.Phase {
	case BossPhase, Finished:
		return d
	case Complete:
		switch {
		case st.Wave > s.cfg.FinalWave && s.cfg.BossAfterFinal:
			st.Phase = BossPhase
			d.EnteredBoss = true
			return d
		case st.Wave > s.cfg.FinalWave:
			st.Phase = Finished
			d.Finished = true
			return d
		}
		st.Phase = Delay
		fallthrough
	case Delay:
		if st.DelayLeft > 0 {
			st.DelayLeft--
			return d
		}
		st.Phase = Spawning
		st.timer = 0
		return d
	case Spawning:
		st.timer++
		if st.timer >= s.cfg.Interval(st.Wave) && st.Spawned < st.Quota {
			st.timer = 0
			st.Spawned++
			d.Spawn = true
			d.Kind = ChooseKind(s.cfg.Tiers, st.Wave, s.src)
		}
		if st.Spawned >= st.Quota {
			st.Phase = Draining
		}
	}

	live := liveHostiles
	if d.Spawn {
		live++
	}
	if st.Phase == Draining && st.Spawned >= st.Quota && live == 0 {
		s.complete(&d)
	}
	return d
}

func (s *Scheduler) complete(d *Decision) {
	st := &s.state
	d.Completed = true
	d.CompletedWave = st.Wave
	st.Wave++
	d.Reward = s.cfg.RewardBase + s.cfg.RewardPerWave*st.Wave
	st.Phase = Complete
	if st.Wave > s.cfg.FinalWave {
		return
	}
	st.Quota += s.cfg.QuotaStep + st.Wave/s.cfg.QuotaDivisor
	st.Spawned = 0
	st.DelayLeft = s.cfg.DelayTicks
}

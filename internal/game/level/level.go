// Package level defines the static per-session level layout and its YAML
// content format. A Config that fails Validate must never reach a session.
package level

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/boss"
	"github.com/cory-johannsen/skirmish/internal/game/collision"
	"github.com/cory-johannsen/skirmish/internal/game/detection"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/wave"
)

// MaxLevel is the highest level number.
const MaxLevel = 10

// Genre selects the rule set a session applies on top of the shared core.
type Genre string

const (
	GenreShooter    Genre = "shooter"
	GenrePlatformer Genre = "platformer"
	GenreDefense    Genre = "defense"
	GenreStealth    Genre = "stealth"
	GenreSurvival   Genre = "survival"
	GenreStrategy   Genre = "strategy"
	GenreFinal      Genre = "final"
)

var genres = map[Genre]bool{
	GenreShooter: true, GenrePlatformer: true, GenreDefense: true, GenreStealth: true,
	GenreSurvival: true, GenreStrategy: true, GenreFinal: true,
}

// WeaponSpec is the player's gun.
type WeaponSpec struct {
	Cooldown int       `yaml:"cooldown"`
	Speed    float64   `yaml:"speed"`
	Damage   int       `yaml:"damage"`
	Size     geom.Vec2 `yaml:"size"`
	// Aimed fires toward the pointer instead of straight up.
	Aimed bool `yaml:"aimed"`
	// Ammo and Reload enable a magazine when Ammo > 0.
	Ammo   int `yaml:"ammo"`
	Reload int `yaml:"reload"`
}

// JumpSpec enables side-view gravity motion.
type JumpSpec struct {
	Gravity   float64 `yaml:"gravity"`
	MinPower  float64 `yaml:"min_power"`
	MaxPower  float64 `yaml:"max_power"`
	MaxCharge int     `yaml:"max_charge"`
}

// PlayerSpec is the player avatar.
type PlayerSpec struct {
	Start  geom.Vec2   `yaml:"start"`
	Size   geom.Vec2   `yaml:"size"`
	Speed  float64     `yaml:"speed"`
	Health int         `yaml:"health"`
	Weapon *WeaponSpec `yaml:"weapon"`
	Jump   *JumpSpec   `yaml:"jump"`
}

// EnemySpec is one hostile kind, referenced by name from wave tiers.
type EnemySpec struct {
	Size          geom.Vec2 `yaml:"size"`
	Speed         float64   `yaml:"speed"`
	Health        int       `yaml:"health"`
	HealthPerWave int       `yaml:"health_per_wave"`
	// Damage is dealt on contact, on a melee strike, or on reaching the end
	// of the path.
	Damage int `yaml:"damage"`
	Reward int `yaml:"reward"`
	Score  int `yaml:"score"`
	// Regen restores health every tick.
	Regen bool `yaml:"regen"`
	// Reach and Cooldown configure melee strikes.
	Reach    float64 `yaml:"reach"`
	Cooldown int     `yaml:"cooldown"`
}

// HealthAt returns the starting health of this kind in wave.
func (e EnemySpec) HealthAt(wave int) int { return e.Health + e.HealthPerWave*wave }

// Hazard kinds.
const (
	HazardSpike = "spike"
	HazardSaw   = "saw"
)

// HazardSpec is a lethal-on-contact object. Saws oscillate.
type HazardSpec struct {
	Kind string    `yaml:"kind"`
	Pos  geom.Vec2 `yaml:"pos"`
	Size geom.Vec2 `yaml:"size"`
	// Axis is "x" or "y".
	Axis  string  `yaml:"axis"`
	Range float64 `yaml:"range"`
	Step  float64 `yaml:"step"`
}

// SpawnerSpec drops one hostile of Kind every Every ticks at a random x in
// [MinX, MaxX] on row Y.
type SpawnerSpec struct {
	Kind  string  `yaml:"kind"`
	Every int     `yaml:"every"`
	MinX  float64 `yaml:"min_x"`
	MaxX  float64 `yaml:"max_x"`
	Y     float64 `yaml:"y"`
}

// ShooterSpec configures the missile shooter.
type ShooterSpec struct {
	Spawner     SpawnerSpec `yaml:"spawner"`
	TargetScore int         `yaml:"target_score"`
}

// BuildSpec lays out tower build spots.
type BuildSpec struct {
	Area    geom.Rect   `yaml:"area"`
	Step    float64     `yaml:"step"`
	Exclude []geom.Rect `yaml:"exclude"`
	Reach   float64     `yaml:"reach"`
}

// DefenseSpec configures tower defense.
type DefenseSpec struct {
	Path      []geom.Vec2 `yaml:"path"`
	Tolerance float64     `yaml:"tolerance"`
	Lives     int         `yaml:"lives"`
	Money     int         `yaml:"money"`
	Build     BuildSpec   `yaml:"build"`
	// SpotClearance is the radius within which a boss shot that destroys a
	// tower frees build spots.
	SpotClearance float64 `yaml:"spot_clearance"`
}

// AttackSpec parameterizes a boss's basic attack.
type AttackSpec struct {
	// Speed + SpeedPerPhase*phase is the aimed shot speed.
	Speed         float64 `yaml:"speed"`
	SpeedPerPhase float64 `yaml:"speed_per_phase"`
	Damage        int     `yaml:"damage"`
	Size          float64 `yaml:"size"`
	// LaserChance is the percent chance of a laser at a random structure.
	LaserChance int `yaml:"laser_chance"`
	LaserDamage int `yaml:"laser_damage"`
	// Rockets fires max(1, phase/RocketDivisor) rockets at random angles.
	RocketDivisor int     `yaml:"rocket_divisor"`
	RocketSpeed   float64 `yaml:"rocket_speed"`
	RocketDamage  int     `yaml:"rocket_damage"`
}

// BossSpec places a boss encounter in the level.
type BossSpec struct {
	boss.Config `yaml:",inline"`

	Size  geom.Vec2 `yaml:"size"`
	Start geom.Vec2 `yaml:"start"`
	// Box bounds the boss's center while it bounces.
	Box            geom.Rect  `yaml:"box"`
	Dir            geom.Vec2  `yaml:"dir"`
	VerticalFactor float64    `yaml:"vertical_factor"`
	Attack         AttackSpec `yaml:"attack"`
	ContactDamage  int        `yaml:"contact_damage"`
	// Bonus money is paid when the boss phase begins.
	Bonus int `yaml:"bonus"`
	// MinionKind names the enemy kind released by the minion cadence.
	MinionKind string `yaml:"minion_kind"`
	// LobArea bounds lob targets.
	LobArea geom.Rect `yaml:"lob_area"`
	// Score is added per player hit on the boss.
	Score int `yaml:"score"`
}

// StealthSpec configures the infiltration mission.
type StealthSpec struct {
	Target geom.Vec2 `yaml:"target"`
	Reach  float64   `yaml:"reach"`
	// Stages are descending y thresholds.
	Stages []float64             `yaml:"stages"`
	Tuning *detection.Tuning     `yaml:"tuning"`
	Guards []detection.GuardSpec `yaml:"guards"`
	Cover  []geom.Rect           `yaml:"cover"`
}

// SurvivalSpec configures the horde mode.
type SurvivalSpec struct {
	// EdgeMargin is how far outside the field zombies appear.
	EdgeMargin float64 `yaml:"edge_margin"`
	WaveScore  int     `yaml:"wave_score"`
	WaveHeal   int     `yaml:"wave_heal"`
}

// UnitSpec is one trainable strategy unit.
type UnitSpec struct {
	Minerals int       `yaml:"minerals"`
	Supply   int       `yaml:"supply"`
	Health   int       `yaml:"health"`
	Speed    float64   `yaml:"speed"`
	Size     geom.Vec2 `yaml:"size"`
	Damage   int       `yaml:"damage"`
	Range    float64   `yaml:"range"`
	Cooldown int       `yaml:"cooldown"`
	// Capacity is the carry load of a worker; non-zero marks a harvester.
	Capacity int `yaml:"capacity"`
}

// Harvester reports whether the unit gathers instead of fighting.
func (u UnitSpec) Harvester() bool { return u.Capacity > 0 }

// EnemyAISpec drives the opposing side.
type EnemyAISpec struct {
	TrainEvery int `yaml:"train_every"`
	// MinWorkers is the unit count below which a worker is trained.
	MinWorkers int     `yaml:"min_workers"`
	Speed      float64 `yaml:"speed"`
	Range      float64 `yaml:"range"`
	Damage     int     `yaml:"damage"`
	Cooldown   int     `yaml:"cooldown"`
	// UnitReach is the building distance beyond which units are considered.
	UnitReach float64 `yaml:"unit_reach"`
	// PlayerReach is the distance beyond which the player avatar is considered.
	PlayerReach float64 `yaml:"player_reach"`
}

// StrategySpec configures the real-time strategy level.
type StrategySpec struct {
	CommandCenter geom.Vec2           `yaml:"command_center"`
	EnemyCenter   geom.Vec2           `yaml:"enemy_center"`
	BaseHealth    int                 `yaml:"base_health"`
	BaseSize      geom.Vec2           `yaml:"base_size"`
	Patches       []geom.Vec2         `yaml:"patches"`
	PatchMinerals int                 `yaml:"patch_minerals"`
	Minerals      int                 `yaml:"minerals"`
	Supply        int                 `yaml:"supply"`
	EnemyMinerals int                 `yaml:"enemy_minerals"`
	EnemySupply   int                 `yaml:"enemy_supply"`
	Workers       []geom.Vec2         `yaml:"workers"`
	Rally         geom.Vec2           `yaml:"rally"`
	EnemyRally    geom.Vec2           `yaml:"enemy_rally"`
	GatherReach   float64             `yaml:"gather_reach"`
	DepositReach  float64             `yaml:"deposit_reach"`
	Arrive        float64             `yaml:"arrive"`
	Units         map[string]UnitSpec `yaml:"units"`
	Enemy         EnemyAISpec         `yaml:"enemy"`
	// UnitScore and BuildingScore are paid per kill.
	UnitScore     int `yaml:"unit_score"`
	BuildingScore int `yaml:"building_score"`
}

// Strategy unit names; the selection keys train them in this order.
var StrategyUnits = []string{"worker", "marine", "tank"}

// Config is the complete static layout of one level.
type Config struct {
	Number    int                  `yaml:"number"`
	Name      string               `yaml:"name"`
	Genre     Genre                `yaml:"genre"`
	Field     geom.Rect            `yaml:"field"`
	Player    PlayerSpec           `yaml:"player"`
	Obstacles []collision.Obstacle `yaml:"obstacles"`
	Hazards   []HazardSpec         `yaml:"hazards"`
	Goal      *geom.Rect           `yaml:"goal"`
	Enemies   map[string]EnemySpec `yaml:"enemies"`
	Wave      *wave.Config         `yaml:"wave"`
	Boss      *BossSpec            `yaml:"boss"`
	Shooter   *ShooterSpec         `yaml:"shooter"`
	Defense   *DefenseSpec         `yaml:"defense"`
	Stealth   *StealthSpec         `yaml:"stealth"`
	Survival  *SurvivalSpec        `yaml:"survival"`
	Strategy  *StrategySpec        `yaml:"strategy"`
	// ScriptDir names the Lua hook directory, relative to the script root.
	ScriptDir string `yaml:"script_dir"`
}

// ObstacleRects returns the rectangles of every obstacle.
func (c *Config) ObstacleRects() []geom.Rect {
	out := make([]geom.Rect, len(c.Obstacles))
	for i, o := range c.Obstacles {
		out[i] = o.Rect
	}
	return out
}

// applyDefaults fills values content files commonly omit.
func (c *Config) applyDefaults() {
	if c.Field.W == 0 && c.Field.H == 0 {
		c.Field = geom.Rect{W: 800, H: 600}
	}
	if c.Player.Size.IsZero() {
		c.Player.Size = geom.V(30, 20)
	}
	if c.Player.Health == 0 {
		c.Player.Health = 100
	}
	if d := c.Defense; d != nil {
		if d.Tolerance == 0 {
			d.Tolerance = 10
		}
		if d.Build.Reach == 0 {
			d.Build.Reach = 50
		}
		if d.SpotClearance == 0 {
			d.SpotClearance = 30
		}
	}
	if s := c.Stealth; s != nil {
		if s.Tuning == nil {
			t := detection.DefaultTuning()
			s.Tuning = &t
		}
		if s.Reach == 0 {
			s.Reach = 30
		}
	}
	if b := c.Boss; b != nil && b.VerticalFactor == 0 {
		b.VerticalFactor = 1
	}
}

// Validate checks every precondition the session relies on.
//
// Postcondition: Returns nil if valid, or an error describing all violations.
func (c *Config) Validate() error {
	var errs []string
	add := func(format string, args ...any) { errs = append(errs, fmt.Sprintf(format, args...)) }

	if c.Number < 1 || c.Number > MaxLevel {
		add("number must be in 1..%d, got %d", MaxLevel, c.Number)
	}
	if c.Name == "" {
		add("name must not be empty")
	}
	if !genres[c.Genre] {
		add("unknown genre %q", c.Genre)
	}
	if c.Field.W <= 0 || c.Field.H <= 0 {
		add("field must have positive size")
	}
	if c.Player.Health < 1 {
		add("player health must be >= 1")
	}
	if w := c.Player.Weapon; w != nil {
		if w.Speed <= 0 || w.Cooldown < 0 {
			add("weapon needs speed > 0 and cooldown >= 0")
		}
		if w.Ammo > 0 && w.Reload < 1 {
			add("weapon with ammo needs reload >= 1")
		}
	}
	if j := c.Player.Jump; j != nil && (j.Gravity <= 0 || j.MaxPower < j.MinPower) {
		add("jump needs gravity > 0 and max_power >= min_power")
	}
	for i, h := range c.Hazards {
		switch h.Kind {
		case HazardSpike:
		case HazardSaw:
			if h.Axis != "x" && h.Axis != "y" {
				add("hazard %d axis must be x or y", i)
			}
			if h.Step <= 0 {
				add("hazard %d step must be > 0", i)
			}
		default:
			add("hazard %d has unknown kind %q", i, h.Kind)
		}
	}
	for name, e := range c.Enemies {
		if e.Health < 1 || e.Size.X <= 0 || e.Size.Y <= 0 {
			add("enemy %q needs health >= 1 and a positive size", name)
		}
	}
	if c.Wave != nil {
		if err := c.Wave.Validate(); err != nil {
			add("wave: %v", err)
		}
		for _, t := range c.Wave.Tiers {
			for _, k := range t.Kinds {
				if _, ok := c.Enemies[k.Kind]; !ok {
					add("wave tier references unknown enemy %q", k.Kind)
				}
			}
		}
	}
	if b := c.Boss; b != nil {
		if err := b.Config.Validate(); err != nil {
			add("boss: %v", err)
		}
		if b.Size.X <= 0 || b.Size.Y <= 0 {
			add("boss size must be positive")
		}
		if b.Minions != nil {
			if _, ok := c.Enemies[b.MinionKind]; !ok {
				add("boss minions reference unknown enemy %q", b.MinionKind)
			}
			if c.Field.W <= 100 {
				add("boss minions need a field wider than 100, got %.0f", c.Field.W)
			}
		}
	}

	switch c.Genre {
	case GenreShooter:
		c.validateShooter(add)
	case GenrePlatformer:
		if c.Player.Jump == nil {
			add("platformer needs player.jump")
		}
		if c.Goal == nil {
			add("platformer needs a goal")
		}
	case GenreDefense:
		c.validateDefense(add)
	case GenreStealth:
		c.validateStealth(add)
	case GenreSurvival:
		if c.Wave == nil || c.Survival == nil {
			add("survival needs wave and survival sections")
		}
		if c.Player.Weapon == nil {
			add("survival needs player.weapon")
		}
	case GenreStrategy:
		c.validateStrategy(add)
	case GenreFinal:
		if c.Boss == nil {
			add("final needs a boss")
		}
		if c.Player.Weapon == nil {
			add("final needs player.weapon")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateShooter(add func(string, ...any)) {
	s := c.Shooter
	if s == nil {
		add("shooter needs a shooter section")
		return
	}
	if _, ok := c.Enemies[s.Spawner.Kind]; !ok {
		add("shooter spawner references unknown enemy %q", s.Spawner.Kind)
	}
	if s.Spawner.Every < 1 || s.Spawner.MaxX < s.Spawner.MinX {
		add("shooter spawner needs every >= 1 and min_x <= max_x")
	}
	if s.TargetScore < 1 {
		add("shooter target_score must be >= 1")
	}
	if c.Player.Weapon == nil {
		add("shooter needs player.weapon")
	}
}

func (c *Config) validateDefense(add func(string, ...any)) {
	d := c.Defense
	if d == nil {
		add("defense needs a defense section")
		return
	}
	if len(d.Path) < 2 {
		add("defense path needs at least two waypoints, got %d", len(d.Path))
	}
	if d.Lives < 1 {
		add("defense lives must be >= 1")
	}
	if d.Build.Step <= 0 {
		add("defense build step must be > 0")
	}
	if c.Wave == nil {
		add("defense needs a wave section")
	}
	if c.Wave != nil && c.Wave.BossAfterFinal && c.Boss == nil {
		add("wave boss_after_final needs a boss")
	}
}

func (c *Config) validateStealth(add func(string, ...any)) {
	s := c.Stealth
	if s == nil {
		add("stealth needs a stealth section")
		return
	}
	if len(s.Guards) == 0 {
		add("stealth needs at least one guard")
	}
	for i, g := range s.Guards {
		if err := g.Validate(); err != nil {
			add("guard %d: %v", i, err)
		}
	}
	if s.Tuning != nil && s.Tuning.Max <= 0 {
		add("stealth tuning max must be > 0")
	}
}

func (c *Config) validateStrategy(add func(string, ...any)) {
	s := c.Strategy
	if s == nil {
		add("strategy needs a strategy section")
		return
	}
	if s.BaseHealth < 1 {
		add("strategy base_health must be >= 1")
	}
	if len(s.Patches) == 0 {
		add("strategy needs at least one mineral patch")
	}
	for _, name := range StrategyUnits {
		u, ok := s.Units[name]
		if !ok {
			add("strategy is missing unit %q", name)
			continue
		}
		if u.Health < 1 || u.Speed <= 0 {
			add("strategy unit %q needs health >= 1 and speed > 0", name)
		}
		if !u.Harvester() && (u.Range <= 0 || u.Cooldown < 1) {
			add("strategy unit %q needs range > 0 and cooldown >= 1", name)
		}
	}
	if s.Enemy.TrainEvery < 1 || s.Enemy.Cooldown < 1 {
		add("strategy enemy needs train_every >= 1 and cooldown >= 1")
	}
}

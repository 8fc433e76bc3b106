package session

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cory-johannsen/skirmish/internal/game/economy"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// ActorView is the read-only rendering state of one actor.
type ActorView struct {
	ID        uint64    `msgpack:"id"`
	Kind      string    `msgpack:"kind"`
	Variant   string    `msgpack:"variant,omitempty"`
	Faction   string    `msgpack:"faction"`
	Pos       geom.Vec2 `msgpack:"pos"`
	Size      geom.Vec2 `msgpack:"size"`
	Heading   float64   `msgpack:"heading"`
	Health    int       `msgpack:"health"`
	MaxHealth int       `msgpack:"max_health"`
	Frozen    int       `msgpack:"frozen,omitempty"`
	Immune    bool      `msgpack:"immune,omitempty"`
}

// ShotView is the read-only rendering state of one projectile.
type ShotView struct {
	Pos     geom.Vec2 `msgpack:"pos"`
	Vel     geom.Vec2 `msgpack:"vel"`
	Size    geom.Vec2 `msgpack:"size"`
	Tag     string    `msgpack:"tag"`
	Faction string    `msgpack:"faction"`
}

// WaveView mirrors the scheduler state.
type WaveView struct {
	Wave      int    `msgpack:"wave"`
	Spawned   int    `msgpack:"spawned"`
	Quota     int    `msgpack:"quota"`
	Phase     string `msgpack:"phase"`
	DelayLeft int    `msgpack:"delay_left"`
}

// BossView mirrors the boss machine.
type BossView struct {
	ID        uint64 `msgpack:"id"`
	Health    int    `msgpack:"health"`
	MaxHealth int    `msgpack:"max_health"`
	Phase     int    `msgpack:"phase"`
	Phases    int    `msgpack:"phases"`
	Rage      bool   `msgpack:"rage"`
	Shielded  bool   `msgpack:"shielded"`
}

// GuardView is one guard's detection state.
type GuardView struct {
	ID     uint64  `msgpack:"id"`
	Kind   string  `msgpack:"kind"`
	Alert  float64 `msgpack:"alert"`
	Facing float64 `msgpack:"facing"`
	Vision float64 `msgpack:"vision"`
}

// DetectionView mirrors the detection model.
type DetectionView struct {
	Level    float64     `msgpack:"level"`
	Max      float64     `msgpack:"max"`
	Alarm    bool        `msgpack:"alarm"`
	Captures int         `msgpack:"captures"`
	Stage    int         `msgpack:"stage"`
	Guards   []GuardView `msgpack:"guards"`
}

// HUD carries genre-specific counters for the status line.
type HUD struct {
	Ammo          int    `msgpack:"ammo,omitempty"`
	Reloading     bool   `msgpack:"reloading,omitempty"`
	Selection     string `msgpack:"selection,omitempty"`
	Charge        int    `msgpack:"charge,omitempty"`
	Towers        int    `msgpack:"towers,omitempty"`
	FreeSpots     int    `msgpack:"free_spots,omitempty"`
	EnemyMinerals int    `msgpack:"enemy_minerals,omitempty"`
}

// Snapshot is the post-tick state exposed to renderers and spectators.
// It shares no memory with the session.
type Snapshot struct {
	SessionID string         `msgpack:"session_id"`
	Level     int            `msgpack:"level"`
	Genre     string         `msgpack:"genre"`
	Tick      uint64         `msgpack:"tick"`
	Status    string         `msgpack:"status"`
	Field     geom.Rect      `msgpack:"field"`
	Ledger    economy.Ledger `msgpack:"ledger"`
	Actors    []ActorView    `msgpack:"actors"`
	Shots     []ShotView     `msgpack:"shots"`
	Wave      *WaveView      `msgpack:"wave,omitempty"`
	Boss      *BossView      `msgpack:"boss,omitempty"`
	Detection *DetectionView `msgpack:"detection,omitempty"`
	HUD       HUD            `msgpack:"hud"`
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.id.String(),
		Level:     s.cfg.Number,
		Genre:     string(s.cfg.Genre),
		Tick:      s.tick,
		Status:    s.status.String(),
		Field:     s.cfg.Field,
		Ledger:    s.ledger,
	}
	for _, a := range s.reg.Snapshot() {
		snap.Actors = append(snap.Actors, ActorView{
			ID:        uint64(a.ID),
			Kind:      a.Kind.String(),
			Variant:   a.Variant,
			Faction:   a.Faction.String(),
			Pos:       a.Pos,
			Size:      a.Size,
			Heading:   a.Heading,
			Health:    a.Health,
			MaxHealth: a.MaxHealth,
			Frozen:    a.Frozen,
			Immune:    a.Immune,
		})
	}
	for _, p := range s.shots.Live() {
		snap.Shots = append(snap.Shots, ShotView{
			Pos:     p.Pos,
			Vel:     p.Vel,
			Size:    p.Size,
			Tag:     p.Tag.String(),
			Faction: p.Faction.String(),
		})
	}
	s.rules.view(s, &snap)
	return snap
}

// Encode returns the msgpack encoding of the snapshot.
func (snap Snapshot) Encode() ([]byte, error) {
	b, err := msgpack.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot parses a msgpack-encoded snapshot.
func DecodeSnapshot(b []byte) (Snapshot, error) {
	var snap Snapshot
	if err := msgpack.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}

// Digest returns a checksum of the simulation state. The session identity
// is excluded, so two sessions fed the same seed and inputs agree.
func (snap Snapshot) Digest() uint64 {
	snap.SessionID = ""
	b, err := msgpack.Marshal(snap)
	if err != nil {
		panic("session: snapshot encoding failed: " + err.Error())
	}
	return xxhash.Sum64(b)
}

// Package ballistics produces and advances projectiles. Velocity
// generators are pure functions of their parameters; randomized patterns
// draw only from an injected dice.Source.
package ballistics

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// Directional returns a single velocity at angleDeg (standard orientation,
// 0 = +x, 90 = +y).
func Directional(angleDeg, speed float64) geom.Vec2 {
	return geom.FromAngle(rad(angleDeg)).Scale(speed)
}

// Aimed returns the velocity from origin toward target at speed.
//
// Postcondition: coincident points yield the zero vector.
func Aimed(origin, target geom.Vec2, speed float64) geom.Vec2 {
	return geom.Direction(origin, target).Scale(speed)
}

// Fan returns one velocity per angle in [fromDeg, toDeg] stepping by stepDeg,
// with angles measured from straight down and positive toward +x.
//
// Precondition: stepDeg > 0 and fromDeg <= toDeg.
func Fan(fromDeg, toDeg, stepDeg int, speed float64) []geom.Vec2 {
	checkStep(fromDeg, toDeg, stepDeg)
	out := make([]geom.Vec2, 0, (toDeg-fromDeg)/stepDeg+1)
	for a := fromDeg; a <= toDeg; a += stepDeg {
		r := rad(float64(a))
		out = append(out, geom.V(math.Sin(r)*speed, math.Cos(r)*speed))
	}
	return out
}

// Arc returns one velocity per angle in [fromDeg, toDeg] stepping by stepDeg,
// in standard orientation.
//
// Precondition: stepDeg > 0 and fromDeg <= toDeg.
func Arc(fromDeg, toDeg, stepDeg int, speed float64) []geom.Vec2 {
	checkStep(fromDeg, toDeg, stepDeg)
	out := make([]geom.Vec2, 0, (toDeg-fromDeg)/stepDeg+1)
	for a := fromDeg; a <= toDeg; a += stepDeg {
		out = append(out, Directional(float64(a), speed))
	}
	return out
}

// Ring returns a full circle of velocities at angles 0, step, 2*step, ... < 360.
//
// Precondition: 0 < stepDeg <= 360.
func Ring(stepDeg int, speed float64) []geom.Vec2 {
	if stepDeg <= 0 || stepDeg > 360 {
		panic(fmt.Sprintf("ballistics: ring step must be in (0, 360], got %d", stepDeg))
	}
	return Arc(0, 360-1, stepDeg, speed)
}

// Scatter returns count velocities at random whole-degree angles with speeds
// drawn from [minSpeed, maxSpeed].
func Scatter(src dice.Source, count int, minSpeed, maxSpeed float64) []geom.Vec2 {
	out := make([]geom.Vec2, 0, count)
	for i := 0; i < count; i++ {
		angle := float64(src.Intn(360))
		speed := minSpeed
		if maxSpeed > minSpeed {
			speed = dice.FloatRange(src, minSpeed, maxSpeed)
		}
		out = append(out, Directional(angle, speed))
	}
	return out
}

// Lob returns count velocities that carry a shot from origin to a random
// point inside area in exactly flightTicks ticks.
//
// Precondition: flightTicks > 0.
func Lob(src dice.Source, origin geom.Vec2, area geom.Rect, count, flightTicks int) []geom.Vec2 {
	if flightTicks <= 0 {
		panic("ballistics: lob flight ticks must be positive")
	}
	out := make([]geom.Vec2, 0, count)
	for i := 0; i < count; i++ {
		target := geom.V(
			area.X+float64(src.Intn(int(math.Max(1, area.W))+1)),
			area.Y+float64(src.Intn(int(math.Max(1, area.H))+1)),
		)
		out = append(out, target.Sub(origin).Scale(1/float64(flightTicks)))
	}
	return out
}

func checkStep(from, to, step int) {
	if step <= 0 {
		panic(fmt.Sprintf("ballistics: angular step must be positive, got %d", step))
	}
	if from > to {
		panic(fmt.Sprintf("ballistics: angle range [%d, %d] is inverted", from, to))
	}
}

// Pattern kinds accepted in level content.
const (
	KindDirectional = "directional"
	KindAimed       = "aimed"
	KindFan         = "fan"
	KindArc         = "arc"
	KindRing        = "ring"
	KindScatter     = "scatter"
	KindLob         = "lob"
)

// Pattern describes one volley in level content.
type Pattern struct {
	Kind     string  `yaml:"kind"`
	From     int     `yaml:"from"`
	To       int     `yaml:"to"`
	Step     int     `yaml:"step"`
	Angle    float64 `yaml:"angle"`
	Speed    float64 `yaml:"speed"`
	SpeedMax float64 `yaml:"speed_max"`
	Count    int     `yaml:"count"`
	Flight   int     `yaml:"flight"`
	Damage   int     `yaml:"damage"`
	Tag      string  `yaml:"tag"`
	Size     float64 `yaml:"size"`
	// FromCenter fires from the shooter's center instead of its muzzle.
	FromCenter bool `yaml:"from_center"`
}

// Validate checks that the pattern can be generated.
//
// Postcondition: Returns nil if valid, or an error describing all violations.
func (p Pattern) Validate() error {
	var errs []string
	switch p.Kind {
	case KindDirectional, KindAimed:
	case KindFan, KindArc:
		if p.Step <= 0 {
			errs = append(errs, fmt.Sprintf("%s pattern step must be > 0, got %d", p.Kind, p.Step))
		}
		if p.From > p.To {
			errs = append(errs, fmt.Sprintf("%s pattern range [%d, %d] is inverted", p.Kind, p.From, p.To))
		}
	case KindRing:
		if p.Step <= 0 || p.Step > 360 {
			errs = append(errs, fmt.Sprintf("ring pattern step must be in (0, 360], got %d", p.Step))
		}
	case KindScatter:
		if p.Count < 1 {
			errs = append(errs, "scatter pattern count must be >= 1")
		}
	case KindLob:
		if p.Count < 1 {
			errs = append(errs, "lob pattern count must be >= 1")
		}
		if p.Flight < 1 {
			errs = append(errs, "lob pattern flight must be >= 1")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown pattern kind %q", p.Kind))
	}
	if p.Speed <= 0 && p.Kind != KindLob {
		errs = append(errs, fmt.Sprintf("%s pattern speed must be > 0", p.Kind))
	}
	if p.Damage < 0 {
		errs = append(errs, "pattern damage must be >= 0")
	}
	if _, err := ParseTag(p.Tag); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Velocities generates the velocity set for this pattern. aim is consulted
// by aimed patterns; area bounds lob targets; src feeds randomized patterns.
//
// Precondition: p.Validate() == nil.
func (p Pattern) Velocities(origin, aim geom.Vec2, area geom.Rect, src dice.Source) []geom.Vec2 {
	switch p.Kind {
	case KindDirectional:
		return []geom.Vec2{Directional(p.Angle, p.Speed)}
	case KindAimed:
		return []geom.Vec2{Aimed(origin, aim, p.Speed)}
	case KindFan:
		return Fan(p.From, p.To, p.Step, p.Speed)
	case KindArc:
		return Arc(p.From, p.To, p.Step, p.Speed)
	case KindRing:
		return Ring(p.Step, p.Speed)
	case KindScatter:
		return Scatter(src, p.Count, p.Speed, p.SpeedMax)
	case KindLob:
		return Lob(src, origin, area, p.Count, p.Flight)
	}
	panic(fmt.Sprintf("ballistics: unknown pattern kind %q", p.Kind))
}

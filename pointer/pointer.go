// Package pointer tracks where the pointer is over the effect and low-pass
// filters it into the position and influence the shader sees.
package pointer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goliquidglass/graphics"
)

// ErrInvalidAlpha is returned for smoothing factors outside (0, 1].
var ErrInvalidAlpha = errors.New("smoothing factor must be in (0, 1]")

// Neutral is the position reported before any pointer event.
var Neutral = mgl32.Vec2{0.5, 0.5}

// State holds the raw pointer targets written by event listeners and the
// smoothed values advanced by Step. Listeners only write targets and Step
// only writes currents.
type State struct {
	target           mgl32.Vec2
	targetInfluence  float32
	current          mgl32.Vec2
	currentInfluence float32

	positionAlpha  float32
	influenceAlpha float32
}

// New returns a state at the neutral position with zero influence.
func New(positionAlpha, influenceAlpha float32) (*State, error) {
	if !validAlpha(positionAlpha) {
		return nil, fmt.Errorf("position: %w (got %v)", ErrInvalidAlpha, positionAlpha)
	}
	if !validAlpha(influenceAlpha) {
		return nil, fmt.Errorf("influence: %w (got %v)", ErrInvalidAlpha, influenceAlpha)
	}
	return &State{
		target:         Neutral,
		current:        Neutral,
		positionAlpha:  positionAlpha,
		influenceAlpha: influenceAlpha,
	}, nil
}

func validAlpha(a float32) bool {
	return a > 0 && a <= 1
}

// MoveTo sets the target from a pointer position inside region. The result
// is normalized to the region with Y flipped so 1 is up, and clamped to the
// unit square since the hit-region may extend past the container.
func (s *State) MoveTo(x, y float64, region graphics.Rect) {
	if region.Empty() {
		return
	}
	nx := (x - region.Left) / region.Width
	ny := 1 - (y-region.Top)/region.Height
	s.target = mgl32.Vec2{
		mgl32.Clamp(float32(nx), 0, 1),
		mgl32.Clamp(float32(ny), 0, 1),
	}
}

// Enter marks the pointer as hovering.
func (s *State) Enter() { s.targetInfluence = 1 }

// Leave marks the pointer as gone.
func (s *State) Leave() { s.targetInfluence = 0 }

// Step moves each current value a fixed fraction of the way to its target.
// The fraction is per displayed frame, not per second.
func (s *State) Step() {
	s.current = mgl32.Vec2{
		approach(s.current.X(), s.target.X(), s.positionAlpha),
		approach(s.current.Y(), s.target.Y(), s.positionAlpha),
	}
	s.currentInfluence = approach(s.currentInfluence, s.targetInfluence, s.influenceAlpha)
}

func approach(current, target, alpha float32) float32 {
	return current + (target-current)*alpha
}

func (s *State) Position() mgl32.Vec2       { return s.current }
func (s *State) Influence() float32         { return s.currentInfluence }
func (s *State) Target() mgl32.Vec2         { return s.target }
func (s *State) TargetInfluence() float32   { return s.targetInfluence }
func (s *State) Alphas() (float32, float32) { return s.positionAlpha, s.influenceAlpha }

// Attach subscribes the state to the host's pointer events. region is read
// on every move so the mapping follows layout changes. The returned func
// removes all three listeners.
func (s *State) Attach(host graphics.Host, region func() graphics.Rect) (detach func()) {
	removers := []func(){
		host.OnPointerMove(func(x, y float64) { s.MoveTo(x, y, region()) }),
		host.OnPointerEnter(s.Enter),
		host.OnPointerLeave(s.Leave),
	}
	return func() {
		for _, remove := range removers {
			remove()
		}
		removers = nil
	}
}

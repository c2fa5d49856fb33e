// Package anim advances skeletal animation processes on their own fixed-step
// thread: a per-animation fixed-update tick that advances elapsed time,
// resolves the current clip frame, and blends a pose into a bone-transform
// buffer the graphics thread reads once per frame.
package anim

import "math"

// LoopMode selects how a Clip's frame index behaves once elapsed time
// passes the clip's period.
type LoopMode uint8

const (
	// LoopOnce holds on the last frame once the period elapses.
	LoopOnce LoopMode = iota
	// LoopRepeat wraps the frame index back to 0.
	LoopRepeat
	// LoopPingPong plays forward to the last frame, then backward to 0,
	// repeating; a full forward+backward cycle is 2*FrameCount.
	LoopPingPong
)

// Clip is a named skeletal animation: a frame count, playback rate, and
// loop behavior. BoneCount is the number of bones a Skeleton's pose buffer
// needs to hold this clip's keyframes.
type Clip struct {
	Name       string
	FrameCount int
	FPS        float64
	Mode       LoopMode
	BoneCount  int
}

// FrameAt returns the clip's frame index at elapsedSec seconds into
// playback. A FrameCount <= 0 always resolves to frame 0.
func (c *Clip) FrameAt(elapsedSec float64) int {
	if c.FrameCount <= 0 {
		return 0
	}
	frame := int(math.Round(elapsedSec * c.FPS))
	period := c.FrameCount

	switch c.Mode {
	case LoopRepeat:
		return frame % period
	case LoopPingPong:
		cycle := 2 * period
		m := frame % cycle
		if m < period {
			return m
		}
		return 2*period - 1 - m
	default: // LoopOnce
		if frame >= period {
			return period - 1
		}
		return frame
	}
}

// Finished reports whether a LoopOnce clip has played past its last frame at
// elapsedSec, i.e. the rounded frame index elapsedSec*FPS has reached
// FrameCount. Always false for LoopRepeat and LoopPingPong.
func (c *Clip) Finished(elapsedSec float64) bool {
	if c.Mode != LoopOnce || c.FrameCount <= 0 {
		return false
	}
	return int(math.Round(elapsedSec*c.FPS)) >= c.FrameCount
}

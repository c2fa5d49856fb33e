package anim

import (
	"sync"
	"sync/atomic"

	kmath "github.com/kestrel3d/render-core/engine/math"
)

// Process advances one skeleton's clip playback: construction seeds the
// bind pose, FixedUpdate advances elapsed time and resolves the current
// frame, Abort is checked by the owning Thread between ticks.
type Process struct {
	skeleton *Skeleton
	clip     *Clip

	mu            sync.Mutex
	elapsedSec    float64
	currentFrame  int
	pose          []kmath.Mat4
	initialized   bool

	aborted int32
}

// NewProcess returns a Process advancing clip over skeleton, not yet
// initialized.
func NewProcess(skeleton *Skeleton, clip *Clip) *Process {
	return &Process{skeleton: skeleton, clip: clip}
}

// OnInit seeds the process's pose buffer with the skeleton's bind pose. A
// nil skeleton or a skeleton with no bones leaves the process uninitialized, so
// FixedUpdate is a no-op until a valid skeleton/clip pair is set — mirroring
// onInit's early-out when the controller's model/skeleton aren't ready yet.
func (p *Process) OnInit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.skeleton == nil || p.skeleton.BoneCount() == 0 {
		return
	}
	p.pose = p.skeleton.IdentityPose(p.pose)
	p.initialized = true
}

// FixedUpdate advances elapsed playback time by deltaSec and resolves the
// clip's frame at the new elapsed time. A no-op if OnInit hasn't run or the
// process has been aborted.
func (p *Process) FixedUpdate(deltaSec float64) {
	if p.IsAborted() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized || p.clip == nil {
		return
	}

	p.elapsedSec += deltaSec
	p.currentFrame = p.clip.FrameAt(p.elapsedSec)
}

// CurrentFrame returns the clip frame index resolved by the most recent
// FixedUpdate.
func (p *Process) CurrentFrame() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentFrame
}

// ElapsedSeconds returns total playback time advanced so far.
func (p *Process) ElapsedSeconds() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsedSec
}

// Pose returns a copy of the process's current per-bone transform buffer,
// safe to read from the graphics thread once the per-frame barrier has
// passed.
func (p *Process) Pose() []kmath.Mat4 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]kmath.Mat4, len(p.pose))
	copy(out, p.pose)
	return out
}

// Abort requests the owning Thread stop ticking this process. Checked
// between fixed-update ticks, never mid-tick.
func (p *Process) Abort() {
	atomic.StoreInt32(&p.aborted, 1)
}

// IsAborted reports whether Abort has been called.
func (p *Process) IsAborted() bool {
	return atomic.LoadInt32(&p.aborted) != 0
}

package anim

import (
	"testing"
	"time"
)

// TestThreadTicksRegisteredProcesses checks the animation thread advances a
// registered process at its configured tick rate and stops doing so once
// the process is aborted.
func TestThreadTicksRegisteredProcesses(t *testing.T) {
	sk := NewSkeleton([]string{"root"}, []int{-1})
	clip := &Clip{FrameCount: 100, FPS: 30, Mode: LoopRepeat, BoneCount: 1}
	p := NewProcess(sk, clip)

	th := NewThread(time.Millisecond)
	th.Register(p)
	th.Start()

	deadline := time.After(500 * time.Millisecond)
	for p.CurrentFrame() == 0 {
		select {
		case <-deadline:
			th.Stop()
			t.Fatal("process never advanced past frame 0")
		case <-time.After(time.Millisecond):
		}
	}

	p.Abort()
	time.Sleep(20 * time.Millisecond)
	stalled := p.CurrentFrame()
	time.Sleep(50 * time.Millisecond)

	th.Stop()

	if p.CurrentFrame() != stalled {
		t.Fatalf("process kept advancing after Abort: %d -> %d", stalled, p.CurrentFrame())
	}
}

/*
This is an example of application that drives the render pipeline core
against a null graphics backend, for smoke-testing the pipeline without a
real window or GPU.
*/
package main

import (
	"fmt"
	"time"

	"github.com/kestrel3d/render-core/engine/anim"
	"github.com/kestrel3d/render-core/engine/debug"
	kmath "github.com/kestrel3d/render-core/engine/math"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
	"github.com/kestrel3d/render-core/engine/renderer/pipeline"
	"github.com/kestrel3d/render-core/engine/renderer/polygon"
	"github.com/kestrel3d/render-core/engine/renderer/uniform"
	"github.com/kestrel3d/render-core/engine/resources"
	"github.com/kestrel3d/render-core/engine/scene"
	"github.com/kestrel3d/render-core/engine/systems"
)

func main() {
	ctx := gpu.NewNullContext()
	container := uniform.NewContainer()

	jobs, err := systems.NewJobSystem(2, 64)
	if err != nil {
		panic(err)
	}
	cache := resources.NewCache(jobs, nil, 0)

	watcher, err := resources.NewWatcher(cache)
	if err != nil {
		panic(err)
	}
	defer watcher.Close()

	tree := scene.NewTree()
	origin := tree.Create("origin")
	tree.AddLayer(origin, 0)

	camera := pipeline.NewPerspectiveCamera(
		kmath.NewVec3(0, 0, 5),
		kmath.NewVec3Zero(),
		kmath.NewVec3Up(),
		1.0471976, // 60 degrees
		16.0/9.0,
		0.1, 1000,
		[]pipeline.RenderLayer{
			{ID: 0, OrderIndex: 0},
			{ID: pipeline.DebugLayer, OrderIndex: 255},
		},
		nil,
	)

	// Advance a ping-pong walk-cycle clip on its own animation thread for a
	// couple of ticks before the frame runs.
	skeleton := anim.NewSkeleton([]string{"root", "spine", "head"}, []int{-1, 0, 1})
	clip := &anim.Clip{Name: "walk", FrameCount: 24, FPS: 30, Mode: anim.LoopPingPong, BoneCount: 3}
	process := anim.NewProcess(skeleton, clip)

	animThread := anim.NewThread(time.Second / 30)
	animThread.Register(process)
	animThread.Start()
	time.Sleep(50 * time.Millisecond)
	animThread.Stop()

	p := pipeline.New(ctx, container)
	entries := pipeline.CollectEntries(tree, camera)

	debugLayer, err := debug.NewLayer(ctx, container, polygon.NewCache())
	if err != nil {
		panic(err)
	}
	entries = append(entries, debugLayer.DrawCoordinateAxes(kmath.NewMat4Identity(), 1.0)...)
	entries = append(entries, debugLayer.DrawBox(
		kmath.NewExtents3DEmpty().ExpandToInclude(kmath.NewVec3(-0.5, -0.5, -0.5)).ExpandToInclude(kmath.NewVec3(0.5, 0.5, 0.5)),
		0.02,
		kmath.NewVec4Create(1, 1, 1, 1),
	)...)

	if _, err := p.RunFrame(camera, entries, camera.Position(), 0.1, 0.2, 0.3, 1.0); err != nil {
		panic(err)
	}

	doc, err := tree.MarshalDocument(nil)
	if err != nil {
		panic(err)
	}

	fmt.Printf("render-core: ran one frame against the null backend, animation clip at frame %d, scene document %d bytes\n",
		process.CurrentFrame(), len(doc))
}

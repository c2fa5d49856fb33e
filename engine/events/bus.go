package events

import "github.com/google/uuid"

// ResourceLoaded fires once a handle's payload finishes loading and
// post-construction completes.
type ResourceLoaded struct {
	UUID uuid.UUID
}

// ResourceLoadFailed fires when a load fails; Err is NotFound, ParseError,
// or GpuError depending on what went wrong.
type ResourceLoadFailed struct {
	UUID uuid.UUID
	Err  error
}

// SelectedSceneObjectChanged fires when the editor/debug selection changes.
// ID is the scene object's recycled 32-bit id, carried as uint32 to avoid a
// dependency from events on the scene package.
type SelectedSceneObjectChanged struct {
	ID uint32
}

// FontFaceCleared fires when a bitmap or system font face's glyph atlas is
// released.
type FontFaceCleared struct {
	ID uint32
}

// Bus is the fixed set of typed event channels the engine context owns.
type Bus struct {
	ResourceLoaded             *Channel[ResourceLoaded]
	ResourceLoadFailed         *Channel[ResourceLoadFailed]
	SelectedSceneObjectChanged *Channel[SelectedSceneObjectChanged]
	FontFaceCleared            *Channel[FontFaceCleared]
}

// NewBus returns a Bus with every channel ready to subscribe to.
func NewBus() *Bus {
	return &Bus{
		ResourceLoaded:             NewChannel[ResourceLoaded](),
		ResourceLoadFailed:         NewChannel[ResourceLoadFailed](),
		SelectedSceneObjectChanged: NewChannel[SelectedSceneObjectChanged](),
		FontFaceCleared:            NewChannel[FontFaceCleared](),
	}
}

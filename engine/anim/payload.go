package anim

import "github.com/kestrel3d/render-core/engine/resources"

// ClipPayload is the resources.Payload carried by a KindAnimation handle:
// a parsed Clip plus the Skeleton it targets, installed once decoding
// finishes.
type ClipPayload struct {
	Clip     *Clip
	Skeleton *Skeleton
}

// Kind satisfies resources.Payload.
func (p *ClipPayload) Kind() resources.Kind { return resources.KindAnimation }

// PostConstruction satisfies resources.Payload; data, if non-nil, replaces
// the skeleton resolved at decode time (e.g. a skeleton resource that
// finished loading after this clip did).
func (p *ClipPayload) PostConstruction(data interface{}) error {
	if sk, ok := data.(*Skeleton); ok {
		p.Skeleton = sk
	}
	return nil
}

// OnRemoval satisfies resources.Payload; a Clip holds no GPU-owned state to
// release.
func (p *ClipPayload) OnRemoval() {}

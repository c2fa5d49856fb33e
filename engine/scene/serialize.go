// Scene persistence. A Tree and the components registered through a
// ComponentCodec set serialize to a versioned JSON document: nested objects
// mirror the parent/child structure, the document and every object and
// transform block carry a version tag (a component block holds whatever the
// component marshals), unknown keys are ignored on read, and missing keys fall back
// to the defaults documented per field. Binary payloads (mesh vertex data,
// texture pixels) are never embedded; components store the external source
// path instead.
package scene

import (
	"encoding/json"
	"fmt"

	"github.com/kestrel3d/render-core/engine/core"
	kmath "github.com/kestrel3d/render-core/engine/math"
)

const documentVersion = 1

// ComponentCodec registers one component slot for persistence. Name keys the
// component's block in the document; New allocates an empty component for
// the decoder to fill. Components whose slot has no codec are skipped on
// write and left unset on read.
type ComponentCodec struct {
	Type ComponentType
	Name string
	New  func() Component
}

type transformDocument struct {
	Version     int        `json:"version"`
	Translation [3]float32 `json:"translation"`
	Rotation    [4]float32 `json:"rotation"`
	Scale       [3]float32 `json:"scale"`
	Inherit     string     `json:"inherit"`
}

func defaultTransformDocument() transformDocument {
	return transformDocument{
		Version:  documentVersion,
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
		Inherit:  "all",
	}
}

// UnmarshalJSON applies the documented per-field defaults before decoding so
// a document that omits a key reads back as: translation (0,0,0), rotation
// identity, scale (1,1,1), inherit "all".
func (d *transformDocument) UnmarshalJSON(data []byte) error {
	type alias transformDocument
	def := alias(defaultTransformDocument())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*d = transformDocument(def)
	return nil
}

type objectDocument struct {
	Version    int                        `json:"version"`
	Name       string                     `json:"name"`
	Layers     []uint8                    `json:"layers,omitempty"`
	Transform  transformDocument          `json:"transform"`
	Components map[string]json.RawMessage `json:"components,omitempty"`
	Children   []objectDocument           `json:"children,omitempty"`
}

// UnmarshalJSON seeds the transform defaults so an object document with no
// transform block at all still reads back at the identity.
func (d *objectDocument) UnmarshalJSON(data []byte) error {
	type alias objectDocument
	def := alias{Version: documentVersion, Transform: defaultTransformDocument()}
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*d = objectDocument(def)
	return nil
}

type sceneDocument struct {
	Version int              `json:"version"`
	Objects []objectDocument `json:"objects"`
}

var inheritanceModeNames = map[InheritanceMode]string{
	InheritAll:             "all",
	InheritTranslationOnly: "translation",
	PreserveOrientation:    "orientation",
}

func inheritanceModeFromName(name string) (InheritanceMode, error) {
	for mode, n := range inheritanceModeNames {
		if n == name {
			return mode, nil
		}
	}
	return InheritAll, fmt.Errorf("scene: unknown inheritance mode %q: %w", name, core.ErrParseError)
}

// MarshalDocument serializes the tree to a scene document. Root objects
// appear in arena order; children in child-list order; render layers in
// ascending order, so identical trees produce identical documents.
func (t *Tree) MarshalDocument(codecs []ComponentCodec) ([]byte, error) {
	doc := sceneDocument{Version: documentVersion}
	for _, id := range t.AllObjects() {
		if t.Parent(id) != NoObject {
			continue
		}
		obj, err := t.marshalObject(id, codecs)
		if err != nil {
			return nil, err
		}
		doc.Objects = append(doc.Objects, obj)
	}
	return json.Marshal(doc)
}

func (t *Tree) marshalObject(id ObjectID, codecs []ComponentCodec) (objectDocument, error) {
	ref := t.Transform(id)
	translation := t.Transforms.Translation(ref)
	rotation := t.Transforms.Rotation(ref)
	scale := t.Transforms.Scale(ref)

	obj := objectDocument{
		Version: documentVersion,
		Name:    t.Name(id),
		Layers:  t.Layers(id),
		Transform: transformDocument{
			Version:     documentVersion,
			Translation: [3]float32{translation.X, translation.Y, translation.Z},
			Rotation:    [4]float32{rotation.X, rotation.Y, rotation.Z, rotation.W},
			Scale:       [3]float32{scale.X, scale.Y, scale.Z},
			Inherit:     inheritanceModeNames[t.Transforms.Mode(ref)],
		},
	}

	for _, codec := range codecs {
		c := t.Component(id, codec.Type)
		if c == nil {
			continue
		}
		raw, err := json.Marshal(c)
		if err != nil {
			return objectDocument{}, fmt.Errorf("scene: marshal component %q on %q: %w", codec.Name, obj.Name, err)
		}
		if obj.Components == nil {
			obj.Components = make(map[string]json.RawMessage)
		}
		obj.Components[codec.Name] = raw
	}

	for _, child := range t.Children(id) {
		childDoc, err := t.marshalObject(child, codecs)
		if err != nil {
			return objectDocument{}, err
		}
		obj.Children = append(obj.Children, childDoc)
	}
	return obj, nil
}

// UnmarshalDocument builds a fresh tree from a scene document previously
// produced by MarshalDocument. Object ids are reassigned; everything the
// document records (names, structure, transforms, layers, codec-registered
// components) survives the round trip.
func UnmarshalDocument(data []byte, codecs []ComponentCodec) (*Tree, error) {
	var doc sceneDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("scene: malformed document: %w", core.ErrParseError)
	}

	t := NewTree()
	for i := range doc.Objects {
		if _, err := t.unmarshalObject(&doc.Objects[i], NoObject, codecs); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tree) unmarshalObject(doc *objectDocument, parent ObjectID, codecs []ComponentCodec) (ObjectID, error) {
	id := t.Create(doc.Name)
	if parent != NoObject {
		t.SetParent(id, parent)
	}

	mode, err := inheritanceModeFromName(doc.Transform.Inherit)
	if err != nil {
		return NoObject, err
	}
	ref := t.Transform(id)
	t.Transforms.SetInheritanceMode(ref, mode)
	t.Transforms.SetTranslation(ref, kmath.NewVec3(doc.Transform.Translation[0], doc.Transform.Translation[1], doc.Transform.Translation[2]))
	t.Transforms.SetRotation(ref, kmath.Quaternion{
		X: doc.Transform.Rotation[0],
		Y: doc.Transform.Rotation[1],
		Z: doc.Transform.Rotation[2],
		W: doc.Transform.Rotation[3],
	})
	t.Transforms.SetScale(ref, kmath.NewVec3(doc.Transform.Scale[0], doc.Transform.Scale[1], doc.Transform.Scale[2]))

	for _, layer := range doc.Layers {
		t.AddLayer(id, layer)
	}

	for _, codec := range codecs {
		raw, ok := doc.Components[codec.Name]
		if !ok {
			continue
		}
		c := codec.New()
		if err := json.Unmarshal(raw, c); err != nil {
			return NoObject, fmt.Errorf("scene: component %q on %q: %w", codec.Name, doc.Name, core.ErrParseError)
		}
		t.SetComponent(id, codec.Type, c)
	}

	for i := range doc.Children {
		if _, err := t.unmarshalObject(&doc.Children[i], id, codecs); err != nil {
			return NoObject, err
		}
	}
	return id, nil
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package entity defines the editable objects of a canvas scene and their
// JSON wire format.
package entity

import (
	"errors"

	"gocanvas/internal/vector"
)

var (
	// ErrUnknownKind is the panic payload when a descriptor names a type that
	// no constructor is registered for. It signals a configuration bug.
	ErrUnknownKind = errors.New("unknown entity type")
	// ErrInvalidScene is returned when a scene document fails validation.
	ErrInvalidScene = errors.New("invalid scene")
)

// Kind is the closed set of entity types understood by the factory. Hosts may
// extend it through Factory.Register.
type Kind string

const (
	KindRect            Kind = "rect"
	KindCircle          Kind = "circle"
	KindTriangle        Kind = "triangle"
	KindText            Kind = "i-text"
	KindTextbox         Kind = "textbox"
	KindImage           Kind = "image"
	KindSVG             Kind = "svg"
	KindGroup           Kind = "group"
	KindActiveSelection Kind = "activeSelection"
	KindNode            Kind = "node"
	KindPort            Kind = "port"
	KindLink            Kind = "link"
	KindLine            Kind = "line"
	KindPolygon         Kind = "polygon"
	KindGrid            Kind = "grid"
)

// SuperType classifies kinds by their role in the scene graph.
type SuperType string

const (
	SuperPlain   SuperType = ""
	SuperNode    SuperType = "node"
	SuperPort    SuperType = "port"
	SuperLink    SuperType = "link"
	SuperDrawing SuperType = "drawing"
	SuperImage   SuperType = "image"
)

// Layout is the workarea resize behaviour.
type Layout string

const (
	LayoutFixed      Layout = "fixed"
	LayoutResponsive Layout = "responsive"
	LayoutFullscreen Layout = "fullscreen"
)

// ParseLayout maps a config value to a Layout, defaulting to fixed.
func ParseLayout(s string) Layout {
	switch Layout(s) {
	case LayoutResponsive, LayoutFullscreen:
		return Layout(s)
	default:
		return LayoutFixed
	}
}

// PortDirection tells input ports from output ports.
type PortDirection string

const (
	PortIn  PortDirection = "in"
	PortOut PortDirection = "out"
)

// Reserved ids.
const (
	WorkareaID = "workarea"
	GridID     = "grid"
)

// Shadow is a drop shadow.
type Shadow struct {
	Color   string  `json:"color,omitempty"`
	Blur    float64 `json:"blur,omitempty"`
	OffsetX float64 `json:"offsetX,omitempty"`
	OffsetY float64 `json:"offsetY,omitempty"`
}

// HyperLink makes an entity clickable for the host.
type HyperLink struct {
	Enabled bool   `json:"enabled"`
	Type    string `json:"type,omitempty"`
	State   string `json:"state,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Element is the decoded image backing an image entity or a pattern fill.
type Element struct {
	Src         string
	Format      string
	Width       int
	Height      int
	Placeholder bool
}

// Entity is one object of the scene. Geometry is in scene units with the
// origin at the top-left corner; Width and Height are unscaled.
type Entity struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"type"`
	SuperType   SuperType `json:"superType,omitempty"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`

	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	ScaleX float64 `json:"scaleX"`
	ScaleY float64 `json:"scaleY"`
	Angle  float64 `json:"angle"`

	Selectable bool `json:"selectable"`
	Movable    bool `json:"movable"`
	Deletable  bool `json:"deletable"`
	Cloneable  bool `json:"cloneable"`
	Editable   bool `json:"editable"`
	Visible    bool `json:"visible"`
	Evented    bool `json:"evented"`
	Locked     bool `json:"locked,omitempty"`
	DblClick   bool `json:"dblclick,omitempty"`

	// ParentID is the owning node of a port or decoration.
	ParentID string `json:"parentId,omitempty"`

	NodeClazz     string         `json:"nodeClazz,omitempty"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Icon          string         `json:"icon,omitempty"`
	FromPorts     int            `json:"fromPorts,omitempty"`
	PortIDs       []string       `json:"portIds,omitempty"`

	Direction PortDirection `json:"direction,omitempty"`
	LinkIDs   []string      `json:"linkIds,omitempty"`

	FromNodeID string `json:"fromNodeId,omitempty"`
	ToNodeID   string `json:"toNodeId,omitempty"`
	FromPortID string `json:"fromPortId,omitempty"`
	ToPortID   string `json:"toPortId,omitempty"`
	SelectFill string `json:"selectFill,omitempty"`

	Fill        string      `json:"fill,omitempty"`
	Stroke      string      `json:"stroke,omitempty"`
	StrokeWidth float64     `json:"strokeWidth,omitempty"`
	Opacity     float64     `json:"opacity"`
	Shadow      *Shadow     `json:"shadow,omitempty"`
	Text        string      `json:"text,omitempty"`
	FontSize    float64     `json:"fontSize,omitempty"`
	Src         string      `json:"src,omitempty"`
	Link        *HyperLink  `json:"link,omitempty"`
	Points      []vector.Pt `json:"points,omitempty"`
	CropX       float64     `json:"cropX,omitempty"`
	CropY       float64     `json:"cropY,omitempty"`

	Layout         Layout  `json:"layout,omitempty"`
	WorkareaWidth  float64 `json:"workareaWidth,omitempty"`
	WorkareaHeight float64 `json:"workareaHeight,omitempty"`

	// Children are the members of a group or an active selection. Members of
	// an active selection are the live registry entities.
	Children []*Entity `json:"objects,omitempty"`

	// Extra carries host defined properties the core does not interpret.
	Extra map[string]any `json:"-"`

	Element  *Element `json:"-"`
	Animated bool     `json:"-"`
}

func (e *Entity) IsWorkarea() bool  { return e != nil && e.ID == WorkareaID }
func (e *Entity) IsGrid() bool      { return e != nil && e.ID == GridID }
func (e *Entity) IsNode() bool      { return e != nil && e.SuperType == SuperNode }
func (e *Entity) IsPort() bool      { return e != nil && e.SuperType == SuperPort }
func (e *Entity) IsLink() bool      { return e != nil && e.SuperType == SuperLink }
func (e *Entity) IsComposite() bool { return e != nil && e.Kind == KindActiveSelection }
func (e *Entity) IsGroup() bool     { return e != nil && e.Kind == KindGroup }

// ScaledWidth is the rendered width.
func (e *Entity) ScaledWidth() float64 { return e.Width * e.ScaleX }

// ScaledHeight is the rendered height.
func (e *Entity) ScaledHeight() float64 { return e.Height * e.ScaleY }

// Transform maps local coordinates to scene coordinates.
func (e *Entity) Transform() vector.Affine2D {
	return vector.ObjectTransform(e.Left, e.Top, e.ScaleX, e.ScaleY, e.Angle)
}

// Bounds is the axis-aligned scene bounding box.
func (e *Entity) Bounds() vector.Rect {
	if len(e.Children) > 0 && (e.IsGroup() || e.IsComposite()) {
		return ChildBounds(e.Children)
	}
	return vector.TransformRect(vector.R(0, 0, e.Width, e.Height), e.Transform())
}

// Shape is the outline used for hit testing.
func (e *Entity) Shape() vector.Shape {
	switch e.Kind {
	case KindCircle, KindPort:
		return vector.ShapeEllipse
	case KindTriangle:
		return vector.ShapeTriangle
	default:
		return vector.ShapeRect
	}
}

// Hit reports whether the scene point p lies on the entity.
func (e *Entity) Hit(p vector.Pt) bool {
	if e.IsGroup() || e.IsComposite() {
		return e.Bounds().Contains(p)
	}
	return vector.Hit(e.Shape(), vector.R(0, 0, e.Width, e.Height), e.Transform(), p)
}

// ChildBounds is the union of the bounds of es.
func ChildBounds(es []*Entity) vector.Rect {
	var out vector.Rect
	for i, c := range es {
		if i == 0 {
			out = c.Bounds()
			continue
		}
		out = out.Union(c.Bounds())
	}
	return out
}

// Clone returns a deep copy. Children are cloned as well.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	c := *e
	c.Configuration = cloneMap(e.Configuration)
	c.Extra = cloneMap(e.Extra)
	c.PortIDs = append([]string(nil), e.PortIDs...)
	c.LinkIDs = append([]string(nil), e.LinkIDs...)
	c.Points = append([]vector.Pt(nil), e.Points...)
	if e.Shadow != nil {
		s := *e.Shadow
		c.Shadow = &s
	}
	if e.Link != nil {
		l := *e.Link
		c.Link = &l
	}
	if e.Element != nil {
		el := *e.Element
		c.Element = &el
	}
	if e.Children != nil {
		c.Children = make([]*Entity, len(e.Children))
		for i, ch := range e.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = cloneValue(x)
		}
		return out
	default:
		return v
	}
}

// Walk visits e and all its descendants depth first.
func Walk(e *Entity, fn func(*Entity)) {
	if e == nil {
		return
	}
	fn(e)
	for _, c := range e.Children {
		Walk(c, fn)
	}
}

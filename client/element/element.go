// Package element implements the retained-mode widget tree client
// windows compose their contents from: a parent/child element tree,
// rect-based layout, event dispatch, and theme-aware drawing. Grounded
// on original_source/src/libpatchwork/element.c and
// include/libpatchwork/element.h.
package element

import (
	"patchwork/client/draw"
	"patchwork/client/theme"
	"patchwork/geom"
	"patchwork/wire"
)

// ID names an element within its window, used to target events at a
// specific widget and to identify which widget sent one (e.g. which
// button a LEventAction came from). Mirrors element_id_t.
type ID = uint64

// NoID marks "no element". Mirrors ELEMENT_ID_NONE.
const NoID ID = ^ID(0)

// Flags is a bitset of element behavior toggles. Declared as a 64-bit
// type to leave room for more flags, mirroring element_flags_t's own
// comment.
type Flags uint64

const (
	FlagNone      Flags = 0
	FlagToggle    Flags = 1 << 0
	FlagFlat      Flags = 1 << 1
	FlagNoBezel   Flags = 1 << 2
	FlagNoOutline Flags = 1 << 3
)

// TextProps controls how an element's text is drawn. Mirrors
// element_text_props_t; since draw.AlignCenter is zero-valued, the zero
// value is already centred on both axes, and New sets both alignments
// to draw.AlignCenter, so no separate default constant is needed.
type TextProps struct {
	Font           draw.Font
	XAlign, YAlign draw.Align
}

// ImageProps controls how an element's image is drawn. Mirrors
// element_image_props_t; see TextProps on why no separate default
// constant is needed.
type ImageProps struct {
	XAlign, YAlign draw.Align
	SrcOffset      draw.Point
}

// Owner is what an element's window provides it: access to the
// window's pixel buffer and stride, invalidation and default-font
// lookup, and a place to deliver library-synthesized events.
// Implemented by client/window.Window, standing in for element_t's
// win field (win->disp, win->surface, win->buffer, win->rect,
// window_invalidate, font_default).
type Owner interface {
	SurfaceID() wire.SurfaceID
	PushEvent(ev wire.Event)
	Buffer() []geom.Pixel
	Stride() int
	Invalidate(globalRect geom.Rect)
	DefaultFont() draw.Font
}

// Procedure is an element's event handler, returning an error only
// when dispatch should abort (mirroring procedure_t returning ERR).
type Procedure func(owner Owner, elem *Element, event wire.Event) error

// Element is one node of a window's widget tree. Mirrors element_t.
type Element struct {
	parent   *Element
	children []*Element
	owner    Owner

	id    ID
	proc  Procedure
	rect  geom.Rect
	flags Flags
	text  string

	image      draw.Imager
	imageProps ImageProps
	textProps  TextProps

	theme theme.Override

	private any
}

func newRaw(id ID, rect geom.Rect, text string, flags Flags, proc Procedure, private any) *Element {
	return &Element{
		id:    id,
		proc:  proc,
		rect:  rect,
		flags: flags,
		text:  text,
		imageProps: ImageProps{
			XAlign: draw.AlignCenter,
			YAlign: draw.AlignCenter,
		},
		textProps: TextProps{
			XAlign: draw.AlignCenter,
			YAlign: draw.AlignCenter,
		},
		private: private,
	}
}

// New creates elem as a child of parent, sends it LEventInit, and
// queues a non-propagating redraw. Mirrors element_new.
func New(parent *Element, id ID, rect geom.Rect, text string, flags Flags, proc Procedure, private any) *Element {
	elem := newRaw(id, rect, text, flags, proc, private)
	elem.parent = parent
	elem.owner = parent.owner
	parent.children = append(parent.children, elem)

	elem.sendInit()
	elem.SendRedraw(false)
	return elem
}

// NewRoot creates elem as a window's root element, with no parent.
// Mirrors element_new_root.
func NewRoot(owner Owner, id ID, rect geom.Rect, text string, flags Flags, proc Procedure, private any) *Element {
	elem := newRaw(id, rect, text, flags, proc, private)
	elem.owner = owner

	elem.sendInit()
	elem.SendRedraw(false)
	return elem
}

func (e *Element) sendInit() {
	e.owner.PushEvent(wire.NewEvent(wire.LEventInit, e.owner.SurfaceID(), wire.LEventInitPayload{ID: e.id}.Encode))
}

// Free sends elem a synthetic LEventFree directly to its procedure
// (bypassing Dispatch, like element_free calling elem->proc itself),
// then recursively frees its children. Mirrors element_free.
func (e *Element) Free() {
	ev := wire.Event{Type: wire.LEventFree, Target: e.owner.SurfaceID()}
	e.proc(e.owner, e, ev)

	for _, child := range e.children {
		child.Free()
	}
	e.children = nil
	e.theme.Clear()
}

// Find searches elem and its descendants for id, depth-first, mirroring
// element_find.
func (e *Element) Find(id ID) *Element {
	if e.id == id {
		return e
	}
	for _, child := range e.children {
		if child.id == id {
			return child
		}
		if found := child.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Parent returns elem's parent, or nil for the root element.
func (e *Element) Parent() *Element { return e.parent }

// Private returns elem's widget-private state. Mirrors
// element_get_private.
func (e *Element) Private() any { return e.private }

// SetPrivate replaces elem's widget-private state. Mirrors
// element_set_private.
func (e *Element) SetPrivate(private any) { e.private = private }

// ID returns elem's id. Mirrors element_get_id.
func (e *Element) ID() ID { return e.id }

// Rect returns elem's rect, in parent-local coordinates. Mirrors
// element_get_rect.
func (e *Element) Rect() geom.Rect { return e.rect }

// Move sets elem's rect. Mirrors element_move (element_rect_set in
// the .c file; the header renamed it, and we follow the header since
// it's the public name client/window calls).
func (e *Element) Move(rect geom.Rect) { e.rect = rect }

// ContentRect returns elem's rect translated to local origin (0, 0).
// Mirrors element_get_content_rect.
func (e *Element) ContentRect() geom.Rect {
	return geom.Rectangle(0, 0, e.rect.Width(), e.rect.Height())
}

// GlobalRect returns elem's rect in window-global coordinates. Mirrors
// element_get_global_rect.
func (e *Element) GlobalRect() geom.Rect {
	p := e.GlobalPoint()
	return geom.Rectangle(p.X, p.Y, e.rect.Width(), e.rect.Height())
}

// GlobalPoint returns the window-global coordinates of elem's
// top-left corner, accumulated by walking the parent chain. Mirrors
// element_get_global_point.
func (e *Element) GlobalPoint() draw.Point {
	p := draw.Point{X: e.rect.Left, Y: e.rect.Top}
	for parent := e.parent; parent != nil; parent = parent.parent {
		p.X += parent.rect.Left
		p.Y += parent.rect.Top
	}
	return p
}

// RectToGlobal translates src, given in elem-local coordinates, to
// window-global coordinates. Mirrors element_rect_to_global.
func (e *Element) RectToGlobal(src geom.Rect) geom.Rect {
	p := e.GlobalPoint()
	return src.Translate(p.X, p.Y)
}

// PointToGlobal translates src, given in elem-local coordinates, to
// window-global coordinates. Mirrors element_point_to_global.
func (e *Element) PointToGlobal(src draw.Point) draw.Point {
	p := e.GlobalPoint()
	return draw.Point{X: p.X + src.X, Y: p.Y + src.Y}
}

// GlobalToRect translates src, given in window-global coordinates, to
// elem-local coordinates. Mirrors element_global_to_rect.
func (e *Element) GlobalToRect(src geom.Rect) geom.Rect {
	p := e.GlobalPoint()
	return src.Translate(-p.X, -p.Y)
}

// GlobalToPoint translates src, given in window-global coordinates,
// to elem-local coordinates. Mirrors element_global_to_point.
func (e *Element) GlobalToPoint(src draw.Point) draw.Point {
	p := e.GlobalPoint()
	return draw.Point{X: src.X - p.X, Y: src.Y - p.Y}
}

// DrawBegin returns a Drawable clipped to elem's content rect, sliced
// out of the owning window's full pixel buffer. Mirrors
// element_draw_begin.
func (e *Element) DrawBegin() *draw.Drawable {
	global := e.GlobalRect()
	stride := e.owner.Stride()
	buffer := e.owner.Buffer()
	start := global.Left + global.Top*stride

	return &draw.Drawable{
		Stride:      stride,
		Buffer:      buffer[start:],
		ContentRect: e.ContentRect(),
		DefaultFont: e.owner.DefaultFont(),
	}
}

// DrawEnd propagates d's invalid rect back to the owning window and
// queues a non-propagating redraw for every child it overlaps.
// Mirrors element_draw_end.
func (e *Element) DrawEnd(d *draw.Drawable) {
	e.owner.Invalidate(e.RectToGlobal(d.InvalidRect))

	if d.InvalidRect.Area() == 0 {
		return
	}
	for _, child := range e.children {
		if d.InvalidRect.Overlap(child.rect) {
			child.SendRedraw(false)
		}
	}
}

// SendRedraw queues a LEventRedraw for elem, optionally propagating to
// its children once its own procedure returns. Mirrors
// element_send_redraw.
func (e *Element) SendRedraw(propagate bool) {
	e.owner.PushEvent(wire.NewEvent(wire.LEventRedraw, e.owner.SurfaceID(),
		wire.LEventRedrawPayload{ID: e.id, Propagate: propagate}.Encode))
}

// Dispatch routes event to elem's procedure and, depending on the
// event, to its children. Mirrors element_dispatch.
func (e *Element) Dispatch(event wire.Event) error {
	switch event.Type {
	case wire.LEventInit, wire.LEventRedraw:
		if err := e.proc(e.owner, e, event); err != nil {
			return err
		}
		// Both LEventInit and LEventRedraw share the same raw layout
		// here, so an INIT event's unwritten propagate byte happens
		// to decode as false; this mirrors the original's identical
		// behavior from sharing one tagged-union buffer.
		if wire.DecodeLEventRedraw(event.Raw[:]).Propagate {
			for _, child := range e.children {
				child.SendRedraw(true)
			}
		}
	case wire.EventMouse:
		moved := event
		mouse := wire.DecodeEventMouse(event.Raw[:])
		mouse.Pos.X -= int64(e.rect.Left)
		mouse.Pos.Y -= int64(e.rect.Top)
		mouse.Encode(moved.Raw[:])

		if err := e.proc(e.owner, e, moved); err != nil {
			return err
		}
		for _, child := range e.children {
			if err := child.Dispatch(moved); err != nil {
				return err
			}
		}
	default:
		if err := e.proc(e.owner, e, event); err != nil {
			return err
		}
		for _, child := range e.children {
			if err := child.Dispatch(event); err != nil {
				return err
			}
		}
	}
	return nil
}

// Emit builds an event of type typ, filled by enc, targeted at elem's
// window, and dispatches it through elem. Mirrors element_emit.
func (e *Element) Emit(typ wire.EventType, enc func([]byte)) error {
	return e.Dispatch(wire.NewEvent(typ, e.owner.SurfaceID(), enc))
}

// Flags returns elem's flags. Mirrors element_get_flags.
func (e *Element) Flags() Flags { return e.flags }

// SetFlags replaces elem's flags. Mirrors element_set_flags.
func (e *Element) SetFlags(flags Flags) { e.flags = flags }

// Text returns elem's text. Mirrors element_get_text.
func (e *Element) Text() string { return e.text }

// SetText replaces elem's text. Mirrors element_set_text.
func (e *Element) SetText(text string) { e.text = text }

// TextProps returns a pointer to elem's text properties, mutable in
// place like element_get_text_props returning element_text_props_t*.
func (e *Element) TextProps() *TextProps { return &e.textProps }

// Image returns elem's image, or nil if unset. Mirrors
// element_get_image.
func (e *Element) Image() draw.Imager { return e.image }

// SetImage replaces elem's image. Mirrors element_set_image.
func (e *Element) SetImage(image draw.Imager) { e.image = image }

// ImageProps returns a pointer to elem's image properties. Mirrors
// element_get_image_props.
func (e *Element) ImageProps() *ImageProps { return &e.imageProps }

// Color reads a themed color through elem's override chain. Mirrors
// element_get_color.
func (e *Element) Color(set theme.Set, role theme.Role) geom.Pixel {
	return theme.ColorGet(set, role, &e.theme)
}

// SetColor records a per-element color override. Mirrors
// element_set_color.
func (e *Element) SetColor(set theme.Set, role theme.Role, color geom.Pixel) {
	e.theme.SetColor(set, role, color)
}

// StringValue reads a themed string through elem's override chain.
// Mirrors element_get_string (named to avoid shadowing fmt.Stringer).
func (e *Element) StringValue(name theme.StringName) string {
	return theme.StringGet(name, &e.theme)
}

// SetStringValue records a per-element string override. Mirrors
// element_set_string.
func (e *Element) SetStringValue(name theme.StringName, value string) {
	e.theme.SetString(name, value)
}

// IntValue reads a themed integer through elem's override chain.
// Mirrors element_get_int.
func (e *Element) IntValue(name theme.IntName) int64 {
	return theme.IntGet(name, &e.theme)
}

// SetIntValue records a per-element integer override. Mirrors
// element_set_int.
func (e *Element) SetIntValue(name theme.IntName, value int64) {
	e.theme.SetInt(name, value)
}

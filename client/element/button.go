package element

import (
	"patchwork/client/draw"
	"patchwork/client/theme"
	"patchwork/geom"
	"patchwork/wire"
)

// button is a Button's widget-private state. Mirrors button_t.
//
// mouseButtons is carried over from button_t but, like the original,
// is never actually read anywhere in buttonProcedure — the field
// exists in the struct without a use.
type button struct {
	mouseButtons wire.Button
	pressed      bool
	hovered      bool
	focused      bool
}

// NewButton creates a clickable or toggleable button element under
// parent. Mirrors button_new.
func NewButton(parent *Element, id ID, rect geom.Rect, text string, flags Flags) *Element {
	return New(parent, id, rect, text, flags, buttonProcedure, &button{})
}

func buttonDraw(elem *Element, b *button) {
	rect := elem.ContentRect()
	d := elem.DrawBegin()

	bezelSize := int(elem.IntValue(theme.IntBezelSize))
	frameSize := int(elem.IntValue(theme.IntFrameSize))
	smallPadding := int(elem.IntValue(theme.IntSmallPadding))
	bezelColor := elem.Color(theme.SetButton, theme.RoleBezel)
	highlight := elem.Color(theme.SetButton, theme.RoleHighlight)
	shadow := elem.Color(theme.SetButton, theme.RoleShadow)
	background := elem.Color(theme.SetButton, theme.RoleBackgroundNormal)
	foreground := elem.Color(theme.SetButton, theme.RoleForegroundNormal)
	selectedEnd := elem.Color(theme.SetButton, theme.RoleBackgroundSelectedEnd)
	selectedForeground := elem.Color(theme.SetButton, theme.RoleForegroundSelected)

	flags := elem.Flags()

	if flags&FlagFlat != 0 {
		if b.pressed || b.hovered {
			d.Rect(rect, selectedEnd)
		} else {
			d.Rect(rect, background)
		}
	} else {
		if flags&FlagNoBezel == 0 {
			d.Bezel(rect, bezelSize, bezelColor)
			rect = rect.Shrink(bezelSize)
		}

		if b.pressed {
			d.Frame(rect, frameSize, shadow, highlight)
		} else {
			d.Frame(rect, frameSize, highlight, shadow)
		}
		rect = rect.Shrink(frameSize)

		d.Rect(rect, background)
	}

	if flags&FlagNoOutline == 0 {
		rect = rect.Shrink(smallPadding)
		if b.focused {
			d.Outline(rect, bezelColor, 2, 2)
		}
		rect = rect.Shrink(2)
	}

	if img := elem.Image(); img != nil {
		dr := img.Drawable()
		w, h := dr.ContentRect.Width(), dr.ContentRect.Height()
		props := elem.ImageProps()

		var left int
		switch props.XAlign {
		case draw.AlignMin:
			left = rect.Left
		case draw.AlignMax:
			left = rect.Left + rect.Width() - w
		default:
			left = rect.Left + (rect.Width()-w)/2
		}

		var top int
		switch props.YAlign {
		case draw.AlignMin:
			top = rect.Top
		case draw.AlignMax:
			top = rect.Top + rect.Height() - h
		default:
			top = rect.Top + (rect.Height()-h)/2
		}

		destRect := geom.Rectangle(left, top, w, h)
		d.ImageBlend(img, destRect, props.SrcOffset)
	}

	textColor := foreground
	if flags&FlagFlat != 0 && (b.hovered || b.pressed) {
		textColor = selectedForeground
	}
	d.Text(rect, elem.TextProps().Font, draw.AlignCenter, draw.AlignCenter, textColor, elem.Text())

	elem.DrawEnd(d)
}

func buttonSendAction(elem *Element, typ wire.ActionType) {
	elem.owner.PushEvent(wire.NewEvent(wire.LEventAction, elem.owner.SurfaceID(),
		wire.LEventActionPayload{Source: elem.id, Type: typ}.Encode))
}

func buttonProcedure(owner Owner, elem *Element, event wire.Event) error {
	b := elem.Private().(*button)

	switch event.Type {
	case wire.LEventInit:
	case wire.LEventFree:
		elem.SetPrivate(nil)
	case wire.LEventRedraw:
		buttonDraw(elem, b)
	case wire.EventMouse:
		prevPressed, prevHovered, prevFocused := b.pressed, b.hovered, b.focused

		mouse := wire.DecodeEventMouse(event.Raw[:])
		rect := elem.ContentRect()
		inBounds := rect.ContainsPoint(int(mouse.Pos.X), int(mouse.Pos.Y))
		leftPressed := mouse.Pressed&wire.BtnLeft != 0
		leftReleased := mouse.Released&wire.BtnLeft != 0

		if elem.Flags()&FlagToggle != 0 {
			if inBounds {
				b.hovered = true
				if leftPressed {
					b.pressed = !b.pressed
					b.focused = true
					if b.pressed {
						buttonSendAction(elem, wire.ActionPress)
					} else {
						buttonSendAction(elem, wire.ActionRelease)
					}
				}
			} else {
				b.hovered = false
				if leftPressed {
					b.focused = false
				}
			}
		} else {
			if inBounds {
				b.hovered = true
				if leftPressed && !b.pressed {
					b.pressed = true
					b.focused = true
					buttonSendAction(elem, wire.ActionPress)
				} else if leftReleased && b.pressed {
					b.pressed = false
					buttonSendAction(elem, wire.ActionRelease)
				}
			} else {
				b.hovered = false
				if b.pressed {
					b.pressed = false
					buttonSendAction(elem, wire.ActionCancel)
				}
				if leftPressed {
					b.focused = false
				}
			}
		}

		if b.pressed != prevPressed || b.hovered != prevHovered || b.focused != prevFocused {
			buttonDraw(elem, b)
		}
	case wire.EventCursorLeave:
		if b.hovered {
			b.hovered = false
			buttonDraw(elem, b)
		}
	case wire.EventFocusOut:
		if b.focused {
			b.focused = false
			buttonDraw(elem, b)
		}
	case wire.LEventForceAction:
		force := wire.DecodeLEventForceAction(event.Raw[:])
		switch force.Action {
		case wire.ActionPress:
			b.pressed = true
			b.focused = true
		case wire.ActionRelease:
			b.pressed = false
			b.focused = false
		}
		buttonDraw(elem, b)
	}

	return nil
}

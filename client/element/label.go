package element

import (
	"patchwork/client/theme"
	"patchwork/geom"
	"patchwork/wire"
)

// NewLabel creates a static text element under parent, with no
// private state. Mirrors label_new.
func NewLabel(parent *Element, id ID, rect geom.Rect, text string, flags Flags) *Element {
	return New(parent, id, rect, text, flags, labelProcedure, nil)
}

func labelProcedure(owner Owner, elem *Element, event wire.Event) error {
	if event.Type != wire.LEventRedraw {
		return nil
	}

	frameSize := int(elem.IntValue(theme.IntFrameSize))
	bezelColor := elem.Color(theme.SetView, theme.RoleBezel)
	highlight := elem.Color(theme.SetView, theme.RoleHighlight)
	shadow := elem.Color(theme.SetView, theme.RoleShadow)
	background := elem.Color(theme.SetView, theme.RoleBackgroundNormal)
	foreground := elem.Color(theme.SetView, theme.RoleForegroundNormal)
	_ = bezelColor // theme.RoleBezel is read by the original but never used in label_procedure's draw; kept for parity with the color lookups it performs.

	rect := elem.ContentRect()
	d := elem.DrawBegin()

	if elem.Flags()&FlagFlat == 0 {
		d.Frame(rect, frameSize, shadow, highlight)
		rect = rect.Shrink(frameSize)
		d.Rect(rect, background)
		rect = rect.Shrink(frameSize)
	} else {
		d.Rect(rect, background)
	}

	props := elem.TextProps()
	d.Text(rect, props.Font, props.XAlign, props.YAlign, foreground, elem.Text())

	elem.DrawEnd(d)
	return nil
}

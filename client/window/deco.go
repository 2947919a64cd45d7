package window

import (
	"patchwork/client/draw"
	"patchwork/client/element"
	clientimage "patchwork/client/image"
	"patchwork/client/theme"
	"patchwork/geom"
	"patchwork/wire"
)

// Element ids reserved for a decorated window's own elements. Mirrors
// WINDOW_CLIENT_ELEM_ID/WINDOW_DECO_ELEM_ID/WINDOW_DECO_*_BUTTON_ID.
//
// windowClientElemID is numerically identical to element.NoID in the
// retrieved source (both UINT64_MAX) — a genuine collision in the
// original, reproduced here rather than fixed.
const (
	windowClientElemID         element.ID = ^element.ID(0)
	windowDecoElemID           element.ID = ^element.ID(0) - 1
	windowDecoCloseButtonID    element.ID = ^element.ID(0) - 2
	windowDecoMinimizeButtonID element.ID = ^element.ID(0) - 3
)

const (
	windowDecoCloseButtonIndex    = 0
	windowDecoMinimizeButtonIndex = 1
	windowDecoButtonAmount        = 2
)

// decoPrivate is a decorated window's deco-root private state. Mirrors
// deco_private_t.
type decoPrivate struct {
	isFocused bool
	isVisible bool

	isDragging bool
	dragOffset draw.Point

	closeIcon    *clientimage.Image
	minimizeIcon *clientimage.Image
}

// windowDecoTitlebarRect computes elem's titlebar rect, in elem-local
// coordinates. Mirrors window_deco_titlebar_rect (which drops its win
// argument via UNUSED; the Go port drops it too since nothing else
// here needs it).
func windowDecoTitlebarRect(elem *element.Element) geom.Rect {
	content := elem.ContentRect()
	frameSize := int(elem.IntValue(theme.IntFrameSize))
	smallPadding := int(elem.IntValue(theme.IntSmallPadding))
	titlebarSize := int(elem.IntValue(theme.IntTitlebarSize))

	return geom.Rect{
		Left:   frameSize + smallPadding,
		Top:    frameSize + smallPadding,
		Right:  content.Width() - frameSize - smallPadding,
		Bottom: frameSize + titlebarSize,
	}
}

// windowDecoButtonRect computes the rect of the index'th titlebar
// button (0 = closest to the right edge), in elem-local coordinates.
// Mirrors window_deco_button_rect (also drops win, see
// windowDecoTitlebarRect).
func windowDecoButtonRect(elem *element.Element, index int) geom.Rect {
	rect := windowDecoTitlebarRect(elem)
	frameSize := int(elem.IntValue(theme.IntFrameSize))
	rect = rect.Shrink(frameSize)

	size := rect.Bottom - rect.Top
	rect.Right -= size * index
	rect.Left = rect.Right - size
	return rect
}

// windowDecoDrawTitlebar paints elem's titlebar frame, gradient
// background, and window name onto d. Mirrors
// window_deco_draw_titlebar.
func windowDecoDrawTitlebar(win *Window, elem *element.Element, d *draw.Drawable) {
	priv := elem.Private().(*decoPrivate)

	titlebar := windowDecoTitlebarRect(elem)

	frameSize := int(elem.IntValue(theme.IntFrameSize))
	d.Frame(titlebar, frameSize, elem.Color(theme.SetDeco, theme.RoleShadow), elem.Color(theme.SetDeco, theme.RoleHighlight))
	titlebar = titlebar.Shrink(frameSize)

	if priv.isFocused {
		d.Gradient(titlebar,
			elem.Color(theme.SetDeco, theme.RoleBackgroundSelectedStart),
			elem.Color(theme.SetDeco, theme.RoleBackgroundSelectedEnd),
			draw.DirectionHorizontal, nil, false)
	} else {
		d.Gradient(titlebar,
			elem.Color(theme.SetDeco, theme.RoleBackgroundUnselectedStart),
			elem.Color(theme.SetDeco, theme.RoleBackgroundUnselectedEnd),
			draw.DirectionHorizontal, nil, false)
	}

	bigPadding := int(elem.IntValue(theme.IntBigPadding))
	panelSize := int(elem.IntValue(theme.IntPanelSize))
	titlebar.Left += bigPadding
	titlebar.Right -= panelSize

	d.Text(titlebar, nil, draw.AlignMin, draw.AlignCenter, elem.Color(theme.SetDeco, theme.RoleForegroundNormal), win.name)
}

// windowDecoHandleDragging implements click-and-drag window movement
// from a mouse event landing on the titlebar outside its buttons.
// Mirrors window_deco_handle_dragging.
func windowDecoHandleDragging(win *Window, elem *element.Element, mouse wire.EventMousePayload) {
	priv := elem.Private().(*decoPrivate)

	titlebarWithoutButtons := windowDecoTitlebarRect(elem)
	if win.flags&FlagNoControls == 0 {
		lastButton := windowDecoButtonRect(elem, windowDecoButtonAmount-1)
		titlebarWithoutButtons.Right = lastButton.Left
	}

	switch {
	case priv.isDragging:
		if mouse.Held&wire.BtnLeft != 0 {
			rect := geom.Rectangle(
				int(mouse.ScreenPos.X)-priv.dragOffset.X,
				int(mouse.ScreenPos.Y)-priv.dragOffset.Y,
				win.rect.Width(), win.rect.Height())
			win.Move(rect)
		} else {
			priv.isDragging = false
		}

	case titlebarWithoutButtons.ContainsPoint(int(mouse.Pos.X), int(mouse.Pos.Y)) && mouse.Pressed&wire.BtnLeft != 0:
		priv.dragOffset = draw.Point{
			X: int(mouse.ScreenPos.X) - win.rect.Left,
			Y: int(mouse.ScreenPos.Y) - win.rect.Top,
		}
		priv.isDragging = true
	}
}

// windowDecoInitControls builds the close/minimize buttons and loads
// their icons. Mirrors window_deco_init_controls; since
// element.New/NewButton never fail in this port and icon-loading
// failures only surface once LEventInit is actually dispatched (see
// decoProcedure), there is no malloc-failure-driven cleanup chain to
// replicate here beyond propagating loadIcon's error.
func windowDecoInitControls(win *Window, elem *element.Element, priv *decoPrivate) error {
	closeRect := windowDecoButtonRect(elem, windowDecoCloseButtonIndex)
	closeButton := element.NewButton(elem, windowDecoCloseButtonID, closeRect, "", element.FlagNoOutline)

	minimizeRect := windowDecoButtonRect(elem, windowDecoMinimizeButtonIndex)
	minimizeButton := element.NewButton(elem, windowDecoMinimizeButtonID, minimizeRect, "", element.FlagNoOutline)

	closeIcon, err := loadIcon(elem.StringValue(theme.StringIconClose))
	if err != nil {
		return err
	}
	minimizeIcon, err := loadIcon(elem.StringValue(theme.StringIconMinimize))
	if err != nil {
		return err
	}

	priv.closeIcon = closeIcon
	priv.minimizeIcon = minimizeIcon
	closeButton.SetImage(closeIcon)
	minimizeButton.SetImage(minimizeIcon)
	return nil
}

// windowDecoInit allocates elem's private deco state and, unless
// FlagNoControls is set, builds its buttons. Mirrors window_deco_init.
func windowDecoInit(win *Window, elem *element.Element) error {
	priv := &decoPrivate{isVisible: true}
	elem.SetPrivate(priv)

	if win.flags&FlagNoControls == 0 {
		if err := windowDecoInitControls(win, elem, priv); err != nil {
			return err
		}
	}
	return nil
}

// windowDecoFree is a no-op beyond what Go's garbage collector already
// does for priv.closeIcon/minimizeIcon; kept as its own function to
// mirror window_deco_free's place in decoProcedure's switch.
func windowDecoFree(elem *element.Element) {
	elem.SetPrivate(nil)
}

// windowDecoRedraw paints the deco root's frame, background, and
// titlebar. Mirrors window_deco_redraw.
func windowDecoRedraw(win *Window, elem *element.Element) {
	rect := elem.ContentRect()

	d := elem.DrawBegin()

	frameSize := int(elem.IntValue(theme.IntFrameSize))
	d.Frame(rect, frameSize, elem.Color(theme.SetDeco, theme.RoleHighlight), elem.Color(theme.SetDeco, theme.RoleShadow))
	rect = rect.Shrink(frameSize)
	d.Rect(rect, elem.Color(theme.SetDeco, theme.RoleBackgroundNormal))

	windowDecoDrawTitlebar(win, elem, d)

	elem.DrawEnd(d)
}

// windowDecoAction reacts to a titlebar button's release: the close
// button asks the display to quit the window, the minimize button
// hides it. Mirrors window_deco_action.
func windowDecoAction(win *Window, action wire.LEventActionPayload) error {
	if action.Type != wire.ActionRelease {
		return nil
	}

	switch action.Source {
	case windowDecoCloseButtonID:
		win.PushEvent(wire.NewEvent(wire.LEventQuit, win.surface, nil))
	case windowDecoMinimizeButtonID:
		return win.disp.SetVisible(win.surface, false)
	}
	return nil
}

// windowDecoReport updates elem's focused/visible shadow state from a
// report and redraws the titlebar, skipping any report that isn't the
// focus-change kind. Mirrors window_deco_report.
func windowDecoReport(win *Window, elem *element.Element, report wire.EventReportPayload) {
	if report.Flags != wire.ReportFocused {
		return
	}

	priv := elem.Private().(*decoPrivate)
	priv.isFocused = report.Info.Focused
	priv.isVisible = report.Info.Visible

	d := elem.DrawBegin()
	windowDecoDrawTitlebar(win, elem, d)
	elem.DrawEnd(d)
}

// decoProcedure is the deco root's element.Procedure, bound to win so
// it can reach window-level state (win.name, win.rect, win.flags) the
// fixed element.Procedure signature has no slot for. Mirrors
// window_deco_procedure.
func (win *Window) decoProcedure(owner element.Owner, elem *element.Element, event wire.Event) error {
	switch event.Type {
	case wire.LEventInit:
		return windowDecoInit(win, elem)

	case wire.LEventFree:
		windowDecoFree(elem)

	case wire.LEventRedraw:
		windowDecoRedraw(win, elem)

	case wire.LEventAction:
		return windowDecoAction(win, wire.DecodeLEventAction(event.Raw[:]))

	case wire.EventReport:
		windowDecoReport(win, elem, wire.DecodeEventReport(event.Raw[:]))

	case wire.EventMouse:
		windowDecoHandleDragging(win, elem, wire.DecodeEventMouse(event.Raw[:]))
	}

	return nil
}

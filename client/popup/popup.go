// Package popup implements the synchronous popup convenience (spec
// §4.11): a blocking call that opens its own display connection, puts
// up a small decorated window with a message and 1-2 buttons, and
// spins a private event loop until the user answers or the display
// goes away. Grounded on original_source/src/libpatchwork/popup.c and
// include/libdwm/popup.h.
package popup

import (
	"patchwork/client/display"
	"patchwork/client/draw"
	"patchwork/client/element"
	"patchwork/client/theme"
	"patchwork/client/window"
	"patchwork/geom"
	"patchwork/wire"
)

// Type selects which button combination a popup shows. Mirrors
// popup_type_t.
type Type int

const (
	OK Type = iota
	RetryCancel
	YesNo
)

// Result is the outcome of a popup: either the id of the button the
// user released, or Close/Error if the loop ended some other way.
// Mirrors popup_result_t. The first five values are numerically
// identical to element.ElementOK/Retry/Cancel/Yes/No, since the
// original passes this same enum directly as a button's element id.
type Result int

const (
	ResOK Result = iota
	ResRetry
	ResCancel
	ResYes
	ResNo
	ResClose
	ResError
)

// Popup layout constants, in pixels. Mirror POPUP_HEIGHT, POPUP_WIDTH,
// POPUP_BUTTON_AREA_HEIGHT, POPUP_BUTTON_HEIGHT, POPUP_BUTTON_WIDTH
// from include/libdwm/popup.h.
const (
	Height           = 125
	Width            = 325
	ButtonAreaHeight = 50
	ButtonHeight     = 32
	ButtonWidth      = 100
)

// HorizontalPadding insets the message text from the popup's left and
// right edges. popup.c's EVENT_LIB_REDRAW case references
// POPUP_HORIZONTAL_PADDING, but no retrieved header defines it; this
// value is a supplement sized to look reasonable against Width and
// the other popup constants above.
const HorizontalPadding = 10

// popup is a popup's private element state. Mirrors popup_t.
type popup struct {
	result Result
	text   string
	typ    Type
}

// popupButtonRects computes the middle/left/right button rects within
// a popup's content rect, in elem-local coordinates. Mirrors the rect
// math at the top of popup_procedure's EVENT_LIB_INIT case.
func popupButtonRects(elem *element.Element) (middle, left, right geom.Rect) {
	content := elem.ContentRect()
	bigPadding := int(elem.IntValue(theme.IntBigPadding))

	middle = geom.Rectangle(
		content.Width()/2-ButtonWidth/2,
		content.Height()-ButtonAreaHeight+ButtonHeight/2-10,
		ButtonWidth, ButtonHeight)

	left = middle
	left.Left -= ButtonWidth + bigPadding
	left.Right -= ButtonWidth + bigPadding

	right = middle
	right.Left += ButtonWidth + bigPadding
	right.Right += ButtonWidth + bigPadding

	return middle, left, right
}

// popupInit builds the 1-2 buttons a popup's type calls for. Mirrors
// popup_procedure's EVENT_LIB_INIT case.
func popupInit(elem *element.Element, p *popup) {
	middle, _, right := popupButtonRects(elem)

	switch p.typ {
	case OK:
		element.NewButton(elem, element.ElementOK, right, "Ok", element.FlagNone)
	case RetryCancel:
		element.NewButton(elem, element.ElementRetry, middle, "Retry", element.FlagNone)
		element.NewButton(elem, element.ElementCancel, right, "Cancel", element.FlagNone)
	case YesNo:
		element.NewButton(elem, element.ElementYes, middle, "Yes", element.FlagNone)
		element.NewButton(elem, element.ElementNo, right, "No", element.FlagNone)
	}
}

// popupRedraw paints the popup's message area. Mirrors
// popup_procedure's EVENT_LIB_REDRAW case.
func popupRedraw(elem *element.Element, p *popup) {
	rect := elem.ContentRect()
	rect.Bottom -= ButtonAreaHeight
	rect.Left += HorizontalPadding
	rect.Right -= HorizontalPadding

	d := elem.DrawBegin()
	d.Rect(rect, elem.Color(theme.SetDeco, theme.RoleBackgroundNormal))
	d.TextMultiline(rect, nil, draw.AlignMin, draw.AlignCenter, elem.Color(theme.SetView, theme.RoleForegroundNormal), p.text)
	elem.DrawEnd(d)
}

// popupAction records a button release as the popup's result and
// disconnects the display, breaking Open's event loop. Mirrors
// popup_procedure's EVENT_LIB_ACTION case.
func popupAction(disp *display.Display, p *popup, action wire.LEventActionPayload) {
	if action.Type != wire.ActionRelease {
		return
	}

	p.result = Result(action.Source)
	disp.Disconnect()
}

// procedure is a popup's element.Procedure, closed over the display
// connection it runs on so its EVENT_LIB_ACTION handler can disconnect
// it. Mirrors popup_procedure.
func procedure(disp *display.Display) element.Procedure {
	return func(owner element.Owner, elem *element.Element, event wire.Event) error {
		p := elem.Private().(*popup)

		switch event.Type {
		case wire.LEventInit:
			popupInit(elem, p)
		case wire.LEventRedraw:
			popupRedraw(elem, p)
		case wire.LEventAction:
			popupAction(disp, p, wire.DecodeLEventAction(event.Raw[:]))
		case wire.LEventQuit:
			disp.Disconnect()
		}

		return nil
	}
}

// Open puts up a popup with the given text, title and button
// combination, and blocks until the user answers it, a LEventQuit
// arrives (result ResClose), or the display connection is lost. It opens its own display connection rather than
// reusing a caller's, matching popup_open's display_new() call.
// Mirrors popup_open.
func Open(text, title string, typ Type) Result {
	disp, err := display.New(defaultSocketPath)
	if err != nil {
		return ResError
	}
	defer disp.Close()

	screenRect, err := disp.ScreenRect(0)
	if err != nil {
		return ResError
	}

	p := &popup{result: ResClose, text: text, typ: typ}

	rect := geom.Rectangle(
		screenRect.Width()/2-Width/2,
		screenRect.Height()/2-Height/2,
		Width, Height)

	win, err := window.New(disp, title, rect, wire.SurfaceWindow,
		window.FlagDeco|window.FlagNoControls, procedure(disp), p)
	if err != nil {
		return ResError
	}

	for {
		ev, err := disp.NextEvent(display.Forever)
		if err != nil {
			break
		}
		if err := disp.Dispatch(ev); err != nil {
			break
		}
	}

	win.Free()
	return p.result
}

// defaultSocketPath is the DWM's well-known listening socket (spec
// §6), matching cmd/dwmd's -socket default.
const defaultSocketPath = "/tmp/dwm"

// Package theme implements the color/string/integer theme config and
// per-element override chains client/element and client/window widgets
// read through (spec §3, §4.11, §6). Grounded on
// original_source/src/libpatchwork/theme.c.
//
// The retrieved source tree carries two incompatible theme APIs: a
// simple struct (theme_t/theme_color_set_t in
// original_source/include/libpatchwork/theme.h, consumed by
// window.c's decoration code) and an enum-keyed override-chain API
// (theme_color_set_t/theme_color_role_t as enums, consumed by
// theme.c/element.c/button.c). This package implements the latter,
// since it is what actually drives element and widget behavior; the
// decoration code is adapted in client/window to call through the
// same enum-keyed accessors instead of introducing a second theme
// representation.
package theme

import (
	"sync"

	"golang.org/x/image/font/basicfont"

	"patchwork/client/draw"
	"patchwork/client/font"
	"patchwork/geom"
)

// ColorInvalid marks a color role with no configured value. Mirrors
// THEME_COLOR_INVALID.
const ColorInvalid geom.Pixel = 0xFFFF00FF

// Set selects which kind of element a color role applies to. Mirrors
// theme_color_set_t as used by theme.c/element.c (COLOR_SET_*).
type Set int

const (
	SetButton Set = iota
	SetView
	SetElement
	SetPanel
	SetDeco
	setAmount
)

// Role selects which part of a Set's palette to read. Mirrors
// theme_color_role_t (COLOR_ROLE_*).
type Role int

const (
	RoleBackgroundNormal Role = iota
	RoleBackgroundSelectedStart
	RoleBackgroundSelectedEnd
	RoleBackgroundUnselectedStart
	RoleBackgroundUnselectedEnd
	RoleForegroundNormal
	RoleForegroundInactive
	RoleForegroundLink
	RoleForegroundSelected
	RoleBezel
	RoleHighlight
	RoleShadow
	roleAmount
)

// StringName selects a themed string value. Mirrors theme_string_t
// (STRING_*). IconMinimize is a supplement over theme.c's own string
// table: window.c's decoration code reads theme->iconMinimize for its
// minimize button, so this table carries a matching entry even though
// theme_lazy_load (the enum-API source of truth) never loads one.
type StringName int

const (
	StringWallpaper StringName = iota
	StringFontsDir
	StringCursorArrow
	StringDefaultFont
	StringIconClose
	StringIconMinimize
	stringAmount
)

// IntName selects a themed integer value. Mirrors theme_int_t
// (INT_*). SeparatorSize is a supplement over theme.c's own table, for
// the same reason as StringIconMinimize: window.c's decoration divider
// needs a themed size theme_lazy_load never populates.
type IntName int

const (
	IntFrameSize IntName = iota
	IntBezelSize
	IntTitlebarSize
	IntPanelSize
	IntBigPadding
	IntSmallPadding
	IntSeparatorSize
	intAmount
)

var (
	loadOnce sync.Once
	mu       sync.RWMutex

	colorSets [setAmount][roleAmount]geom.Pixel
	strings   [stringAmount]string
	integers  [intAmount]int64
)

var colorSectionNames = [setAmount]string{
	SetButton:  "button",
	SetView:    "view",
	SetElement: "element",
	SetPanel:   "panel",
	SetDeco:    "deco",
}

var colorRoleKeys = [roleAmount]string{
	RoleBackgroundNormal:           "background_normal",
	RoleBackgroundSelectedStart:    "background_selected_start",
	RoleBackgroundSelectedEnd:      "background_selected_end",
	RoleBackgroundUnselectedStart:  "background_unselected_start",
	RoleBackgroundUnselectedEnd:    "background_unselected_end",
	RoleForegroundNormal:           "foreground_normal",
	RoleForegroundInactive:         "foreground_inactive",
	RoleForegroundLink:             "foreground_link",
	RoleForegroundSelected:         "foreground_selected",
	RoleBezel:                      "bezel",
	RoleHighlight:                  "highlight",
	RoleShadow:                     "shadow",
}

// Load parses colorsINI/varsINI (the contents of theme/colors.ini and
// theme/vars.ini) into the process-wide theme defaults, replacing
// whatever Load or the lazy first-use default previously set. Mirrors
// theme_lazy_load, generalized to take the file contents directly
// rather than reaching out to a global config_open.
func Load(colorsINI, varsINI string) {
	mu.Lock()
	defer mu.Unlock()
	loadLocked(colorsINI, varsINI)
	loadOnce.Do(func() {}) // mark lazyLoad's Once as already satisfied
}

func loadLocked(colorsINI, varsINI string) {
	colors := parseConfig(colorsINI)
	for set := Set(0); set < setAmount; set++ {
		section := colorSectionNames[set]
		for role := Role(0); role < roleAmount; role++ {
			colorSets[set][role] = geom.Pixel(colors.Int(section, colorRoleKeys[role], int64(ColorInvalid)))
		}
	}

	vars := parseConfig(varsINI)
	strings[StringWallpaper] = vars.String("strings", "wallpaper", "")
	strings[StringFontsDir] = vars.String("strings", "fonts_dir", "")
	strings[StringCursorArrow] = vars.String("strings", "cursor_arrow", "")
	strings[StringDefaultFont] = vars.String("strings", "default_font", "")
	strings[StringIconClose] = vars.String("strings", "icon_close", "")
	strings[StringIconMinimize] = vars.String("strings", "icon_minimize", "")

	integers[IntFrameSize] = vars.Int("integers", "frame_size", 1)
	integers[IntBezelSize] = vars.Int("integers", "bezel_size", 1)
	integers[IntTitlebarSize] = vars.Int("integers", "titlebar_size", 1)
	integers[IntPanelSize] = vars.Int("integers", "panel_size", 1)
	integers[IntBigPadding] = vars.Int("integers", "big_padding", 1)
	integers[IntSmallPadding] = vars.Int("integers", "small_padding", 1)
	integers[IntSeparatorSize] = vars.Int("integers", "separator_size", 1)
}

// lazyLoad installs hardcoded fallback defaults exactly once if Load
// was never called, mirroring theme_lazy_load's loaded guard, except
// the fallback here is an empty config (all defaults) rather than
// reading from disk, since client/theme has no filesystem path
// conventions of its own to reach for.
func lazyLoad() {
	loadOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		loadLocked("", "")
	})
}

// ColorGet returns the color for set/role, preferring override's
// chain if override is non-nil and has a matching entry. Mirrors
// theme_color_get.
func ColorGet(set Set, role Role, override *Override) geom.Pixel {
	lazyLoad()
	if set < 0 || set >= setAmount || role < 0 || role >= roleAmount {
		return ColorInvalid
	}

	if override != nil {
		if c, ok := override.color(set, role); ok {
			return c
		}
	}

	mu.RLock()
	defer mu.RUnlock()
	return colorSets[set][role]
}

// StringGet returns the themed string for name, preferring override's
// chain. Mirrors theme_string_get.
func StringGet(name StringName, override *Override) string {
	lazyLoad()
	if name < 0 || name >= stringAmount {
		return ""
	}

	if override != nil {
		if s, ok := override.string(name); ok {
			return s
		}
	}

	mu.RLock()
	defer mu.RUnlock()
	return strings[name]
}

// IntGet returns the themed integer for name, preferring override's
// chain. Mirrors theme_int_get.
func IntGet(name IntName, override *Override) int64 {
	lazyLoad()
	if name < 0 || name >= intAmount {
		return 0
	}

	if override != nil {
		if v, ok := override.int(name); ok {
			return v
		}
	}

	mu.RLock()
	defer mu.RUnlock()
	return integers[name]
}

// DefaultFont is the built-in fallback glyph source handed out before
// a .grf font named by StringDefaultFont is loaded, mirroring
// shiny/widget.defaultTheme.GetFace's built-in basicfont fallback.
func DefaultFont() draw.Font {
	return font.FromFace(basicfont.Face7x13)
}

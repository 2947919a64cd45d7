package theme

import "patchwork/geom"

// Override is a per-element chain of color/string/int overrides,
// checked before the global theme defaults. A nil *Override or a zero
// Override both behave as "no overrides". Mirrors theme_override_t
// plus its lazily-allocated theme_override_buffer_t, expressed as
// maps instead of theme.c's linked lists — a Go map already gives
// first-write allocation and overwrite-in-place on a repeated key,
// which is all theme_override_buffer_lazy_alloc plus the
// LIST_FOR_EACH update-or-append scans are doing.
type Override struct {
	colors  map[colorKey]geom.Pixel
	strings map[StringName]string
	ints    map[IntName]int64
}

type colorKey struct {
	set  Set
	role Role
}

// SetColor records a color override for set/role. A nil o is a no-op,
// mirroring theme_override_color_set's override == NULL check.
// Mirrors theme_override_color_set.
func (o *Override) SetColor(set Set, role Role, color geom.Pixel) {
	if o == nil {
		return
	}
	if o.colors == nil {
		o.colors = map[colorKey]geom.Pixel{}
	}
	o.colors[colorKey{set, role}] = color
}

// SetString records a string override for name. Mirrors
// theme_override_string_set.
func (o *Override) SetString(name StringName, value string) {
	if o == nil {
		return
	}
	if o.strings == nil {
		o.strings = map[StringName]string{}
	}
	o.strings[name] = value
}

// SetInt records an integer override for name. Mirrors
// theme_override_int_set.
func (o *Override) SetInt(name IntName, value int64) {
	if o == nil {
		return
	}
	if o.ints == nil {
		o.ints = map[IntName]int64{}
	}
	o.ints[name] = value
}

// Clear drops every override, mirroring theme_override_deinit, kept
// as its own method since an element can be re-themed without being
// freed.
func (o *Override) Clear() {
	if o == nil {
		return
	}
	o.colors = nil
	o.strings = nil
	o.ints = nil
}

func (o *Override) color(set Set, role Role) (geom.Pixel, bool) {
	if o == nil || o.colors == nil {
		return 0, false
	}
	c, ok := o.colors[colorKey{set, role}]
	return c, ok
}

func (o *Override) string(name StringName) (string, bool) {
	if o == nil || o.strings == nil {
		return "", false
	}
	s, ok := o.strings[name]
	return s, ok
}

func (o *Override) int(name IntName) (int64, bool) {
	if o == nil || o.ints == nil {
		return 0, false
	}
	v, ok := o.ints[name]
	return v, ok
}

package element

// Popup button ids. SPEC_FULL.md's citation of
// include/libdwm/widgets.h for these names does not match the
// retrieved source: that header only defines the separate
// button_t/label_t API and has no ElementOK/ElementYes/etc constants.
// The real grounding is include/libdwm/popup.h's popup_result_t enum,
// whose first five members (POPUP_RES_OK, POPUP_RES_RETRY,
// POPUP_RES_CANCEL, POPUP_RES_YES, POPUP_RES_NO) src/libpatchwork/popup.c
// passes directly as the id argument of button_new — there is no
// separate id namespace in the original, so these constants mirror
// those enum values exactly. POPUP_RES_CLOSE and POPUP_RES_ERROR are
// never button ids (they are loop-termination/error result values
// only) and so have no corresponding Element constant.
const (
	ElementOK     ID = 0
	ElementRetry  ID = 1
	ElementCancel ID = 2
	ElementYes    ID = 3
	ElementNo     ID = 4
)

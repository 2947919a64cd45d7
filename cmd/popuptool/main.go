// Command popuptool is a tiny client binary exercising client/popup:
// it puts up one popup with the requested text, title and button
// combination, prints the result, and exits.
package main

import (
	"flag"
	"fmt"
	"os"

	"patchwork/client/popup"
)

var (
	text  = flag.String("text", "", "popup message text")
	title = flag.String("title", "popuptool", "popup window title")
	kind  = flag.String("type", "ok", "button combination: ok, retry-cancel, or yes-no")
)

func main() {
	flag.Parse()

	var typ popup.Type
	switch *kind {
	case "ok":
		typ = popup.OK
	case "retry-cancel":
		typ = popup.RetryCancel
	case "yes-no":
		typ = popup.YesNo
	default:
		fmt.Fprintf(os.Stderr, "popuptool: unknown -type %q (want ok, retry-cancel, or yes-no)\n", *kind)
		os.Exit(2)
	}

	result := popup.Open(*text, *title, typ)
	fmt.Println(resultName(result))

	if result == popup.ResError {
		os.Exit(1)
	}
}

func resultName(r popup.Result) string {
	switch r {
	case popup.ResOK:
		return "ok"
	case popup.ResRetry:
		return "retry"
	case popup.ResCancel:
		return "cancel"
	case popup.ResYes:
		return "yes"
	case popup.ResNo:
		return "no"
	case popup.ResClose:
		return "close"
	default:
		return "error"
	}
}

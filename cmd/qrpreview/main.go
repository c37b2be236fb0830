// Command qrpreview serves QR code previews over HTTP and provides
// helpers to sign integrity tokens and render previews offline.
package main

import (
	"context"
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

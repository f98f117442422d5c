// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package auth

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenBrowser launches the system browser at the given URL. Callers treat
// failure as best-effort: a share must never depend on a browser existing.
func OpenBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	default:
		return fmt.Errorf("no browser launcher for %s", runtime.GOOS)
	}
}

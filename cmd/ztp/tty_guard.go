package main

import (
	"os"
	"strings"
)

// Lipgloss queries the terminal background with OSC/DSR sequences the first
// time a style is rendered. For output that is piped or parsed (--print,
// --version, --help) those replies leak into the captured text, so CI=1 is
// set before anything renders; termenv skips probing when CI is set.
func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !plainOutput(os.Args[1:], os.Getenv("ZTP_TEST_MODE") != "") {
		return
	}
	_ = os.Setenv("CI", "1")
}

func plainOutput(args []string, testMode bool) bool {
	if testMode {
		return true
	}
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		switch strings.TrimLeft(arg, "-") {
		case "print", "version", "help", "h":
			return true
		}
	}
	return false
}

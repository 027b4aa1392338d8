package ui

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"

	"github.com/vanderheijden86/ztprofile/pkg/debug"
)

// URLOpener hands a URL to whatever the platform uses to open links.
type URLOpener interface {
	OpenURL(rawURL string) error
}

// SystemOpener opens URLs with open(1) on macOS, the URL protocol handler on
// Windows and xdg-open elsewhere.
type SystemOpener struct{}

// OpenURL starts the platform handler without waiting for it.
func (SystemOpener) OpenURL(rawURL string) error {
	if err := checkLink(rawURL); err != nil {
		return err
	}
	name, args := openCommand(runtime.GOOS, rawURL)
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("no URL handler: %w", err)
	}
	return exec.Command(name, args...).Start()
}

func openCommand(goos, rawURL string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}

// checkLink only lets web links through to the handler.
func checkLink(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid link %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: scheme must be http or https", rawURL)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open %q: missing host", rawURL)
	}
	return nil
}

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// openLink opens link, falling back to copying it to the clipboard.
func openLink(id int, opener URLOpener, link string) linkOpenedMsg {
	if opener == nil {
		opener = SystemOpener{}
	}
	err := opener.OpenURL(link)
	if err == nil {
		return linkOpenedMsg{id: id}
	}
	debug.Warn("Error opening %s: %v", link, err)

	if checkLink(link) != nil {
		return linkOpenedMsg{id: id, err: err}
	}
	if clipErr := writeClipboard(link); clipErr != nil {
		debug.Warn("Error copying %s to clipboard: %v", link, clipErr)
		return linkOpenedMsg{id: id, err: err}
	}
	return linkOpenedMsg{id: id, err: err, copied: true}
}

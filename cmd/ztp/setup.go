package main

import (
	"errors"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/ztprofile/pkg/config"
)

// newForm uses accessible mode when stdin is not a terminal.
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		form = form.WithAccessible(true)
	}
	return form
}

// setupForm edits cfg in place.
func setupForm(cfg *config.Config) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&cfg.Profile.Name).
				Validate(notBlank("name")),
			huh.NewInput().
				Title("Profile link").
				Description("Opened by the link button").
				Value(&cfg.Profile.LinkURL).
				Validate(webLink),
			huh.NewInput().
				Title("Portrait image (optional)").
				Description("PNG or JPEG; reloaded when the file changes").
				Value(&cfg.Profile.PortraitPath),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("City you live in").
				Value(&cfg.Weather.DisplayCity).
				Validate(notBlank("city")),
			huh.NewInput().
				Title("City used for the weather lookup").
				Description("Use the nearest city the weather service knows").
				Value(&cfg.Weather.LookupCity).
				Validate(notBlank("lookup city")),
			huh.NewText().
				Title("Default about me text").
				CharLimit(cfg.About.MaxLength).
				Value(&cfg.About.DefaultText),
		),
	)
}

func runSetup(path string, cfg config.Config) error {
	if err := setupForm(&cfg).Run(); err != nil {
		return err
	}
	cfg.Profile.PortraitPath = strings.TrimSpace(cfg.Profile.PortraitPath)
	if err := cfg.Validate(); err != nil {
		return err
	}
	return config.SaveTo(cfg, path)
}

func notBlank(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(what + " is required")
		}
		return nil
	}
}

func webLink(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("enter an http or https link")
	}
	return nil
}

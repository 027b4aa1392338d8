package main

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/ztprofile/pkg/config"
	"github.com/vanderheijden86/ztprofile/pkg/debug"
	"github.com/vanderheijden86/ztprofile/pkg/kvstore"
	"github.com/vanderheijden86/ztprofile/pkg/ui"
	"github.com/vanderheijden86/ztprofile/pkg/weather"
)

// profileSummary is what --print shows: the same data as the profile
// screen.
type profileSummary struct {
	Name        string
	About       string
	City        string
	LookupCity  string
	Temperature float64
	HasTemp     bool
	Link        string
}

// collectSummary runs the weather lookup and the store read concurrently.
// Failures of either are logged and leave the screen defaults in place, so
// it always returns a summary.
func collectSummary(ctx context.Context, cfg config.Config, provider weather.Provider, store kvstore.Store) profileSummary {
	s := profileSummary{
		Name:       cfg.Profile.Name,
		About:      cfg.About.DefaultText,
		City:       cfg.Weather.DisplayCity,
		LookupCity: cfg.Weather.LookupCity,
		Link:       cfg.Profile.LinkURL,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		temp, err := provider.CurrentTemperature(ctx, cfg.Weather.LookupCity)
		if err != nil {
			debug.Warn("Error fetching weather for %s: %v", cfg.Weather.LookupCity, err)
			return nil
		}
		s.Temperature, s.HasTemp = temp, true
		return nil
	})

	var about string
	var found bool
	g.Go(func() error {
		v, ok, err := store.Get(ctx, ui.InputValueKey)
		if err != nil {
			debug.Warn("Error retrieving data. %v", err)
			return nil
		}
		about, found = v, ok
		return nil
	})

	// Neither lookup returns an error.
	_ = g.Wait()
	if found {
		s.About = about
	}
	s.About = ui.TruncateRunes(s.About, cfg.About.MaxLength)
	return s
}

func writeSummary(w io.Writer, s profileSummary) {
	temp := "temperature unavailable"
	if s.HasTemp {
		temp = ui.FormatTemperature(s.Temperature)
	}
	fmt.Fprintln(w, s.Name)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "About me: %s\n", s.About)
	if s.LookupCity != s.City {
		fmt.Fprintf(w, "%s: %s (weather for %s)\n", s.City, temp, s.LookupCity)
	} else {
		fmt.Fprintf(w, "%s: %s\n", s.City, temp)
	}
	fmt.Fprintln(w, s.Link)
}

// Package macro collects a small set of macroeconomic series from FRED,
// with a chart-provider fallback for VIX so at least volatility sentiment
// survives a missing API key.
package macro

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"marketbrief/internal/model"
	"marketbrief/internal/provider"
)

// Series names one tracked economic indicator.
type Series struct {
	Name string // display name, e.g. "FED_RATE"
	ID   string // FRED series id, e.g. "FEDFUNDS"
}

// DefaultSeries is the standard watchlist.
func DefaultSeries() []Series {
	return []Series{
		{Name: "FED_RATE", ID: "FEDFUNDS"},
		{Name: "CPI", ID: "CPIAUCSL"},
		{Name: "UNEMPLOYMENT", ID: "UNRATE"},
		{Name: "VIX", ID: "VIXCLS"},
	}
}

// observationLimit covers roughly a year of monthly series; only the two
// newest valid points are used.
const observationLimit = 12

// Collector pulls the configured series. Chart is optional; when set it
// serves as the VIX fallback source.
type Collector struct {
	FRED   *provider.FREDProvider
	Chart  provider.SeriesProvider
	Series []Series

	log *logrus.Entry
}

func NewCollector(fred *provider.FREDProvider, chart provider.SeriesProvider, series []Series) *Collector {
	if len(series) == 0 {
		series = DefaultSeries()
	}
	return &Collector{
		FRED:   fred,
		Chart:  chart,
		Series: series,
		log:    logrus.WithField("component", "macro"),
	}
}

// CollectAll fetches every configured series. Failures are logged and
// skipped; with no FRED key only the VIX alternative is attempted.
func (c *Collector) CollectAll(ctx context.Context) []model.MacroObservation {
	var out []model.MacroObservation

	for _, s := range c.Series {
		if c.FRED == nil || !c.FRED.Configured() {
			if s.Name != "VIX" {
				continue
			}
			if obs, err := c.vixAlternative(ctx); err == nil {
				out = append(out, obs)
			} else {
				c.log.WithError(err).Warn("vix fallback failed")
			}
			continue
		}

		obs, err := c.fromFRED(ctx, s)
		if err != nil {
			c.log.WithFields(logrus.Fields{"series": s.Name, "id": s.ID}).WithError(err).Warn("series failed")
			if s.Name == "VIX" && c.Chart != nil {
				if alt, aerr := c.vixAlternative(ctx); aerr == nil {
					out = append(out, alt)
				}
			}
			continue
		}
		out = append(out, obs)
	}

	c.log.WithFields(logrus.Fields{"requested": len(c.Series), "collected": len(out)}).Info("macro collected")
	return out
}

func (c *Collector) fromFRED(ctx context.Context, s Series) (model.MacroObservation, error) {
	raw, err := c.FRED.FetchObservations(ctx, s.ID, observationLimit)
	if err != nil {
		return model.MacroObservation{}, err
	}
	if len(raw) == 0 {
		return model.MacroObservation{}, fmt.Errorf("no valid observations for %s", s.ID)
	}

	obs := model.MacroObservation{
		Name:     s.Name,
		SeriesID: s.ID,
		Value:    raw[0].Value,
		Date:     raw[0].Date,
		Source:   c.FRED.Name(),
	}
	if len(raw) > 1 {
		obs.HasPrevious = true
		obs.Previous = raw[1].Value
		obs.Change = obs.Value - obs.Previous
		if obs.Previous != 0 {
			obs.ChangePct = obs.Change / obs.Previous * 100
		}
	}
	return obs, nil
}

// vixAlternative derives VIX level and one-month change from the chart
// provider's ^VIX daily series.
func (c *Collector) vixAlternative(ctx context.Context) (model.MacroObservation, error) {
	if c.Chart == nil {
		return model.MacroObservation{}, fmt.Errorf("no chart provider for vix fallback")
	}
	bars, err := c.Chart.FetchDailySeries(ctx, "^VIX", 22)
	if err != nil {
		return model.MacroObservation{}, err
	}
	if len(bars) < 2 {
		return model.MacroObservation{}, fmt.Errorf("vix series too short (%d bars)", len(bars))
	}

	last := bars[len(bars)-1]
	first := bars[0]
	obs := model.MacroObservation{
		Name:        "VIX",
		Value:       last.Close,
		Date:        last.Time.Format("2006-01-02"),
		HasPrevious: true,
		Previous:    first.Close,
		Change:      last.Close - first.Close,
		Source:      c.Chart.Name(),
	}
	if first.Close != 0 {
		obs.ChangePct = obs.Change / first.Close * 100
	}
	return obs, nil
}

// SentimentSummary condenses the collected observations into one line.
func SentimentSummary(observations []model.MacroObservation) string {
	byName := make(map[string]model.MacroObservation, len(observations))
	for _, o := range observations {
		byName[o.Name] = o
	}

	var parts []string
	if vix, ok := byName["VIX"]; ok {
		switch {
		case vix.Value < 15:
			parts = append(parts, "VIX low (market calm)")
		case vix.Value > 25:
			parts = append(parts, "VIX high (market stress)")
		default:
			parts = append(parts, "VIX moderate")
		}
	}
	if fed, ok := byName["FED_RATE"]; ok {
		switch {
		case fed.HasPrevious && fed.Change > 0:
			parts = append(parts, fmt.Sprintf("Fed rate rising (%.2f%%)", fed.Value))
		case fed.HasPrevious && fed.Change < 0:
			parts = append(parts, fmt.Sprintf("Fed rate falling (%.2f%%)", fed.Value))
		default:
			parts = append(parts, fmt.Sprintf("Fed rate steady (%.2f%%)", fed.Value))
		}
	}
	if u, ok := byName["UNEMPLOYMENT"]; ok {
		switch {
		case u.Value < 4:
			parts = append(parts, "unemployment low (economy strong)")
		case u.Value > 6:
			parts = append(parts, "unemployment high (economy weak)")
		}
	}

	if len(parts) == 0 {
		return "insufficient macro data"
	}
	return strings.Join(parts, " | ")
}

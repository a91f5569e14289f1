// Package report renders a briefing into a Telegram HTML message and into a
// plain-text prompt for downstream summarization.
package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"marketbrief/internal/briefing"
	"marketbrief/internal/model"
)

// FormatBriefing renders the full daily briefing for Telegram (HTML mode).
func FormatBriefing(rep *briefing.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Daily Market Briefing</b> | %s\n\n", rep.StartedAt.Format("2006-01-02")))

	for _, ir := range rep.Instruments {
		if ir.Failed() {
			b.WriteString(fmt.Sprintf("❌ <b>%s</b>: no data (all providers failed)\n\n", instrumentLabel(ir.Request)))
			continue
		}
		writeInstrument(&b, ir)
	}

	if len(rep.Spreads) > 0 || len(rep.SpreadFails) > 0 {
		writeSpreads(&b, rep)
	}

	if len(rep.Macro) > 0 {
		writeMacro(&b, rep)
	}

	return b.String()
}

// FormatSpreads renders only the spread section, for the /spread command.
func FormatSpreads(rep *briefing.Report) string {
	if len(rep.Spreads) == 0 && len(rep.SpreadFails) == 0 {
		return "No spread data available."
	}
	var b strings.Builder
	writeSpreads(&b, rep)
	return strings.TrimRight(b.String(), "\n")
}

// FormatMacro renders only the macro section, for the /macro command.
func FormatMacro(rep *briefing.Report) string {
	if len(rep.Macro) == 0 {
		return "No macro data available."
	}
	var b strings.Builder
	writeMacro(&b, rep)
	return strings.TrimRight(b.String(), "\n")
}

func instrumentLabel(req model.InstrumentRequest) string {
	if req.Name != "" {
		return req.Name
	}
	return req.Symbol
}

func writeInstrument(b *strings.Builder, ir briefing.InstrumentResult) {
	snap := ir.Snapshot
	sig := ir.Signal

	b.WriteString(fmt.Sprintf("%s <b>%s</b> (%s)\n", actionEmoji(sig.Action), instrumentLabel(ir.Request), ir.Source))
	b.WriteString(fmt.Sprintf("  Price: %s\n", humanize.CommafWithDigits(snap.LastClose, 2)))

	if snap.RSI.Valid {
		b.WriteString(fmt.Sprintf("  RSI(14): %.1f (%s)\n", snap.RSI.Value, snap.RSI.State))
	} else {
		b.WriteString(fmt.Sprintf("  RSI(14): n/a (%s)\n", snap.RSI.Reason))
	}

	if ma, ok := snap.MA(200); ok && ma.Valid {
		b.WriteString(fmt.Sprintf("  MA200: %s (%+.1f%%)\n", humanize.CommafWithDigits(ma.Value, 2), ma.OffsetPct))
	}
	b.WriteString(fmt.Sprintf("  Trend: %s", snap.Alignment))
	if snap.Cross.Valid && snap.Cross.Detected {
		b.WriteString(fmt.Sprintf(" | %s cross", snap.Cross.Kind))
	}
	b.WriteString("\n")

	if snap.Bollinger.Valid {
		b.WriteString(fmt.Sprintf("  Bollinger: %s (position %.0f%%)\n", snap.Bollinger.State, snap.Bollinger.PositionPct))
	}
	if snap.Volatility.Valid {
		b.WriteString(fmt.Sprintf("  Volatility: %.1f%% annualized\n", snap.Volatility.Value))
	}

	b.WriteString(fmt.Sprintf("  Signal: <b>%s</b> (strength %+d)\n", sig.Action, sig.Strength))
	b.WriteString("\n")
}

func writeSpreads(b *strings.Builder, rep *briefing.Report) {
	b.WriteString("💱 <b>Kimchi Premium</b>")
	if rep.FXFallback {
		b.WriteString(fmt.Sprintf(" (fallback FX %.1f)", rep.FXRate))
	} else {
		b.WriteString(fmt.Sprintf(" (USD/KRW %.1f, %s)", rep.FXRate, rep.FXSource))
	}
	b.WriteString("\n")

	for _, s := range rep.Spreads {
		b.WriteString(fmt.Sprintf("  %s %s: %+.2f%% (%s)\n", spreadEmoji(s.State), s.Asset, s.SpreadPct, s.State))
	}
	for _, f := range rep.SpreadFails {
		b.WriteString(fmt.Sprintf("  ⚠️ %s: skipped (%s)\n", f.Asset, strings.Join(f.Reasons, "; ")))
	}
	b.WriteString("\n")
}

func writeMacro(b *strings.Builder, rep *briefing.Report) {
	b.WriteString("🏛 <b>Macro</b>\n")
	for _, m := range rep.Macro {
		b.WriteString(fmt.Sprintf("  %s: %.2f", m.Name, m.Value))
		if m.HasPrevious {
			b.WriteString(fmt.Sprintf(" (%+.2f, %+.1f%%)", m.Change, m.ChangePct))
		}
		b.WriteString("\n")
	}
	if rep.Sentiment != "" {
		b.WriteString(fmt.Sprintf("  Sentiment: %s\n", rep.Sentiment))
	}
}

func actionEmoji(a model.SignalAction) string {
	switch a {
	case model.SignalStrongBuy:
		return "🟢"
	case model.SignalBuy:
		return "🔵"
	case model.SignalSell:
		return "🟠"
	case model.SignalStrongSell:
		return "🔴"
	default:
		return "⚪"
	}
}

func spreadEmoji(s model.SpreadState) string {
	switch s {
	case model.SpreadPremium:
		return "🔺"
	case model.SpreadDiscount:
		return "🔻"
	default:
		return "▪️"
	}
}

// BuildPrompt flattens the briefing into a plain-text prompt suitable for an
// LLM summarization call. The caller owns the actual model invocation.
func BuildPrompt(rep *briefing.Report) string {
	var b strings.Builder

	b.WriteString("You are a market analyst. Summarize today's data in 3-5 sentences,\n")
	b.WriteString("covering overall direction, notable indicator extremes, and the\n")
	b.WriteString("crypto premium situation. Data follows.\n\n")

	for _, ir := range rep.Instruments {
		if ir.Failed() {
			b.WriteString(fmt.Sprintf("%s: unavailable\n", ir.Request.Symbol))
			continue
		}
		snap := ir.Snapshot
		b.WriteString(fmt.Sprintf("%s close=%.2f", ir.Request.Symbol, snap.LastClose))
		if snap.RSI.Valid {
			b.WriteString(fmt.Sprintf(" rsi=%.1f", snap.RSI.Value))
		}
		b.WriteString(fmt.Sprintf(" trend=%s signal=%s(%+d)\n", snap.Alignment, ir.Signal.Action, ir.Signal.Strength))
	}

	for _, s := range rep.Spreads {
		b.WriteString(fmt.Sprintf("%s premium=%+.2f%% state=%s\n", s.Asset, s.SpreadPct, s.State))
	}
	for _, m := range rep.Macro {
		b.WriteString(fmt.Sprintf("%s=%.2f\n", m.Name, m.Value))
	}
	if rep.Sentiment != "" {
		b.WriteString("macro sentiment: " + rep.Sentiment + "\n")
	}
	return b.String()
}

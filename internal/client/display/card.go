package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/verifynow/internal/client/models"
)

// RenderResult writes a result card for r. historical marks a result loaded
// from history.
func RenderResult(w io.Writer, r models.VerificationResult, historical bool) error {
	var b strings.Builder
	verdict := r.Presentation()

	title := "Analysis Complete"
	if historical {
		title = "Saved Analysis"
	}
	fmt.Fprintf(&b, "%s %s: %s\n", Emoji(verdict), title, verdict)
	fmt.Fprintf(&b, "Confidence: %s\n", Meter(r.Score()))

	if t := Sanitize(r.Title); t != "" {
		fmt.Fprintf(&b, "Title: %s\n", t)
	}
	if s := Sanitize(r.Summary); s != "" {
		fmt.Fprintf(&b, "\nExplanation:\n  %s\n", s)
	}
	if a := Sanitize(r.ImageAnalysis); a != "" {
		fmt.Fprintf(&b, "\nImage analysis:\n  %s\n", a)
	}

	writeSafety(&b, r)

	if len(r.Evidence) > 0 {
		b.WriteString("\nEvidence:\n")
		for i, e := range r.Evidence {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, EvidenceLine(e))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSafety(b *strings.Builder, r models.VerificationResult) {
	sc := r.Safety
	if sc == nil && r.SafetyStatus == "" {
		return
	}
	b.WriteString("\nLink safety: ")
	switch {
	case sc == nil:
		b.WriteString(Sanitize(r.SafetyStatus) + "\n")
		return
	case sc.Error != "":
		b.WriteString("check unavailable (" + Sanitize(sc.Error) + ")\n")
		return
	case sc.Safe:
		b.WriteString("✅ Safe")
	default:
		b.WriteString("❌ Unsafe")
	}
	if d := Sanitize(sc.Details); d != "" {
		b.WriteString(" - " + d)
	}
	b.WriteString("\n")
	for _, th := range sc.Threats {
		fmt.Fprintf(b, "  ! %s on %s: %s\n", Sanitize(th.Type), Sanitize(th.Platform), Sanitize(th.URL))
	}
}

// EvidenceLine renders one evidence item on a single line. Citations from
// trusted domains are marked with ★.
func EvidenceLine(e models.Evidence) string {
	if e.Kind == models.EvidenceNote {
		return Sanitize(e.Text)
	}

	var parts []string
	if e.Kind == models.EvidenceProvenance {
		parts = append(parts, "Provenance:")
	}
	if s := Sanitize(e.Source); s != "" {
		parts = append(parts, "["+s+"]")
	}
	if t := Sanitize(e.Title); t != "" {
		parts = append(parts, t)
	}
	if r := Sanitize(e.Rating); r != "" {
		parts = append(parts, "("+r+")")
	}
	if t := Sanitize(e.Text); t != "" {
		parts = append(parts, t)
	}
	if s := Sanitize(e.Snippet); s != "" {
		parts = append(parts, "- "+s)
	}
	if e.URL != "" {
		parts = append(parts, "<"+e.URL+">")
	}
	if IsTrustedDomain(e.Domain) {
		parts = append(parts, "★")
	}
	return strings.Join(parts, " ")
}

// RenderHistory writes one numbered line per record.
func RenderHistory(w io.Writer, recs []models.HistoryRecord, now time.Time) error {
	if len(recs) == 0 {
		_, err := io.WriteString(w, "No verifications yet.\n")
		return err
	}

	var b strings.Builder
	for i, rec := range recs {
		verdict := rec.Verdict.Presentation()
		summary := Sanitize(rec.Summary)
		if len([]rune(summary)) > 80 {
			summary = string([]rune(summary)[:77]) + "..."
		}
		kind := string(rec.InputType)
		if kind == "" {
			kind = "unknown"
		}
		fmt.Fprintf(&b, "%3d. %s %-19s %4s  %-5s  %-13s %s\n",
			i+1, Emoji(verdict), verdict, FormatConfidence(rec.Result().Score()), kind,
			RelativeTime(rec.CreatedAt, now), summary)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

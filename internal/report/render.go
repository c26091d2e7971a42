package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Render.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the accepted output formats, text first.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatYAML}
}

// Render writes r to w in the given format.
func Render(w io.Writer, r *Report, format string) error {
	switch format {
	case FormatText, "":
		return renderText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(r)
	default:
		return fmt.Errorf("unsupported output format %q (expected one of %s)", format, strings.Join(Formats(), ", "))
	}
}

var statusStyles = map[Status]color.Color{
	StatusCurrent:  color.FgGreen,
	StatusOutdated: color.FgYellow,
	StatusMissing:  color.FgRed,
	StatusUnknown:  color.FgGray,
}

func renderText(w io.Writer, r *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Environment: %s\n", r.Environment)
	fmt.Fprintf(&b, "Mode:        %s\n", r.Mode)
	if r.RunID != "" {
		fmt.Fprintf(&b, "Run:         %s\n", r.RunID)
	}
	if r.BaseVersion != "" {
		fmt.Fprintf(&b, "Base:        %s\n", r.BaseVersion)
	}
	b.WriteString("\n")

	headers := []string{"INSTANCE", "VERSION", "STATUS"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, e := range r.Entries {
		widths[0] = max(widths[0], runewidth.StringWidth(e.InstanceID))
		widths[1] = max(widths[1], runewidth.StringWidth(displayValue(e)))
	}

	fmt.Fprintf(&b, "%s  %s  %s\n",
		runewidth.FillRight(headers[0], widths[0]),
		runewidth.FillRight(headers[1], widths[1]),
		headers[2],
	)
	for _, e := range r.Entries {
		style, ok := statusStyles[e.Status]
		if !ok {
			style = color.FgDefault
		}
		fmt.Fprintf(&b, "%s  %s  %s\n",
			runewidth.FillRight(e.InstanceID, widths[0]),
			runewidth.FillRight(displayValue(e), widths[1]),
			style.Sprint(string(e.Status)),
		)
	}

	counts := r.Counts()
	fmt.Fprintf(&b, "\n%d instances: %d current, %d outdated, %d missing\n",
		len(r.Entries), counts[StatusCurrent], counts[StatusOutdated], counts[StatusMissing])

	_, err := io.WriteString(w, b.String())
	return err
}

func displayValue(e Entry) string {
	if e.Value == "" {
		return "-"
	}
	// Multi-line output is shown on one row.
	return strings.Join(strings.Fields(e.Value), " ")
}

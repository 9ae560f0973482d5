// Package changes decides whether a rendered page differs from the copy on
// disk, ignoring the "last updated" footer.
package changes

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"git.home.luguber.info/inful/framedoc/internal/logfields"
	"git.home.luguber.info/inful/framedoc/internal/templates"
)

// FooterPrefix starts the timestamp line of every generated page.
const FooterPrefix = "      <p>This page was last updated on "

// Timestamp layouts.
const (
	DateLayout = "Mon Jan 02 2006"
	TimeLayout = "3:04:05 PM"
	ZoneLayout = "MST"
)

var stampToken = regexp.MustCompile(`%(DATE|TIME|TZ)%`)

// Detector compares candidates against written pages.
type Detector struct {
	Logger *slog.Logger
}

func (d Detector) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// HasChanged reports whether candidate, an unstamped page, differs from the
// file at path in anything but the recorded timestamp. It fails open: a
// missing file, missing footer or read error all report true.
func (d Detector) HasChanged(path, candidate string) bool {
	data, err := os.ReadFile(path) // #nosec G304 -- path is a generated page under the output dir
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			d.logger().Error("Could not read existing page", logfields.Path(path), logfields.Error(err))
		}
		return true
	}
	existing := string(data)

	oldFooter, ok := footerLine(existing)
	if !ok {
		d.logger().Error("Existing page has no update footer", logfields.Path(path))
		return true
	}
	newFooter, ok := footerLine(candidate)
	if !ok {
		return candidate != existing
	}

	stamped, ok := restamp(newFooter, oldFooter)
	if !ok {
		d.logger().Debug("Footer format changed", logfields.Path(path))
		return true
	}
	return strings.Replace(candidate, newFooter, stamped, 1) != existing
}

// footerLine returns the first line of page starting with FooterPrefix.
func footerLine(page string) (string, bool) {
	for line := range strings.SplitSeq(page, "\n") {
		if strings.HasPrefix(line, FooterPrefix) {
			return line, true
		}
	}
	return "", false
}

// restamp fills the timestamp tokens of tpl with the values recorded in old.
func restamp(tpl, old string) (string, bool) {
	locs := stampToken.FindAllStringIndex(tpl, -1)
	if len(locs) == 0 {
		return tpl, tpl == old
	}

	var pattern strings.Builder
	pattern.WriteString("^")
	last := 0
	for _, loc := range locs {
		pattern.WriteString(regexp.QuoteMeta(tpl[last:loc[0]]))
		pattern.WriteString("(.*?)")
		last = loc[1]
	}
	pattern.WriteString(regexp.QuoteMeta(tpl[last:]))
	pattern.WriteString("$")

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(old)
	if m == nil {
		return "", false
	}

	var out strings.Builder
	last = 0
	for i, loc := range locs {
		out.WriteString(tpl[last:loc[0]])
		out.WriteString(m[i+1])
		last = loc[1]
	}
	out.WriteString(tpl[last:])
	return out.String(), true
}

// Stamp fills the timestamp tokens of the footer line with now. Tokens
// elsewhere in the page are content and stay as written; a page without a
// footer is returned unchanged.
func Stamp(page string, now time.Time) string {
	footer, ok := footerLine(page)
	if !ok {
		return page
	}
	stamped := templates.Substitute(footer,
		templates.T("DATE", now.Format(DateLayout)),
		templates.T("TIME", now.Format(TimeLayout)),
		templates.T("TZ", now.Format(ZoneLayout)),
	)
	return strings.Replace(page, footer, stamped, 1)
}

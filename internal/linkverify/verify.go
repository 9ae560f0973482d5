package linkverify

import (
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/framedoc/internal/logfields"
)

// Broken describes one unresolved link.
type Broken struct {
	// Page is the referring page, relative to the site root.
	Page   string
	URL    string
	Tag    string
	Reason string
}

// Verifier checks internal links of pages under Root.
type Verifier struct {
	Root   string
	Logger *slog.Logger

	pages map[string]*Page
}

// NewVerifier returns a verifier for the site rooted at root.
func NewVerifier(root string, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{Root: root, Logger: logger, pages: make(map[string]*Page)}
}

func (v *Verifier) page(rel string) (*Page, error) {
	if p, ok := v.pages[rel]; ok {
		return p, nil
	}
	p, err := ParseFile(filepath.Join(v.Root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	v.pages[rel] = p
	return p, nil
}

// Verify checks every internal link of the given pages (paths relative to
// Root, slash separated). Broken links are logged as warnings and returned.
func (v *Verifier) Verify(pages []string) []Broken {
	var broken []Broken
	for _, rel := range pages {
		p, err := v.page(rel)
		if err != nil {
			v.Logger.Warn("Could not verify page", logfields.Path(rel), logfields.Error(err))
			continue
		}
		for _, link := range p.Links {
			if !link.IsInternal {
				continue
			}
			if reason := v.check(rel, p, link.URL); reason != "" {
				b := Broken{Page: rel, URL: link.URL, Tag: link.Tag, Reason: reason}
				v.Logger.Warn("Broken link", logfields.Path(rel), logfields.URL(link.URL), "reason", reason)
				broken = append(broken, b)
			}
		}
	}
	return broken
}

func (v *Verifier) check(from string, p *Page, raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "unparsable url"
	}
	if u.Path == "" {
		if u.Fragment != "" && !p.IDs[u.Fragment] {
			return "missing anchor #" + u.Fragment
		}
		return ""
	}

	target := path.Clean(path.Join(path.Dir(from), u.Path))
	if strings.HasPrefix(target, "..") {
		return "link leaves the site"
	}
	if _, err := os.Stat(filepath.Join(v.Root, filepath.FromSlash(target))); err != nil {
		return "missing target " + target
	}
	if u.Fragment == "" || !strings.HasSuffix(target, ".html") {
		return ""
	}
	tp, err := v.page(target)
	if err != nil {
		return "unreadable target " + target
	}
	if !tp.IDs[u.Fragment] {
		return "missing anchor " + target + "#" + u.Fragment
	}
	return ""
}

package site

import (
	"github.com/inful/mdfp"
)

// Fingerprint returns the content hash recorded for a written page. The page
// path takes the place of front matter so equal bodies at different paths
// hash differently.
func Fingerprint(rel, content string) string {
	return mdfp.CalculateFingerprintFromParts("path: "+rel, content)
}

package metrics

import (
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
)

// WriteTextfile writes the gathered metrics to path in the text exposition
// format. The write is atomic.
func WriteTextfile(g prom.Gatherer, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create metrics directory").
			WithContext("path", path).Build()
	}
	if err := prom.WriteToTextfile(path, g); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write metrics textfile").
			WithContext("path", path).Build()
	}
	return nil
}

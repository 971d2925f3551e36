package cleanup

import (
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/file"
)

// Remove deletes every path independently. Missing paths are skipped, so
// running it twice is harmless.
func Remove(paths []string) error {
	slog.Info("Removing temporary files")

	var result *multierror.Error
	for _, p := range paths {
		if err := file.RemoveIfExists(p); err != nil {
			slog.Warn("Could not remove " + p + ": " + err.Error())
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

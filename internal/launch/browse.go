package launch

import (
	"fmt"
	"os"

	"github.com/skratchdot/open-golang/open"

	"github.com/jmylchreest/retroroam/internal/core"
)

// opener is swapped in tests.
var opener = open.Start

// OpenDirectory opens a directory in the desktop file manager.
func OpenDirectory(path string) error {
	path = core.UnquotePath(path)
	if path == "" {
		return fmt.Errorf("no directory configured")
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	return opener(path)
}

package graphic

import (
	"os"
	"strings"
)

// normalizeTerminal looks for incompatibilities in the terminal configuration
// with tcell and makes some adjustments to avoid problems.
//
// Returns a function that allows you to restore the terminal configuration to its original state.
func normalizeTerminal() (func(), error) {
	prevTERMINFO, hadTERMINFO := os.LookupEnv("TERMINFO")

	if strings.HasPrefix(os.Getenv("TERM"), "tmux") {
		// Some combinations of TERMINFO with TERM in some Tmux value
		// break the terminfo lookup.
		if err := os.Unsetenv("TERMINFO"); err != nil {
			return nil, err
		}
	}

	restore := func() {
		if hadTERMINFO {
			os.Setenv("TERMINFO", prevTERMINFO)
		}
	}

	return restore, nil
}

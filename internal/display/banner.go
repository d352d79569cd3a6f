package display

import (
	"fmt"
	"io"

	"github.com/backmassage/muxprobe/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, ` __  __            ____            _
|  \/  |_   ___  _|  _ \ _ __ ___ | |__   ___
| |\/| | | | \ \/ / |_) | '__/ _ \| '_ \ / _ \
| |  | | |_| |>  <|  __/| | | (_) | |_) |  __/
|_|  |_|\__,_/_/\_\_|   |_|  \___/|_.__/ \___|
`)
	fmt.Fprint(w, term.NC)
}

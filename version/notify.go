package version

import (
	"fmt"

	"github.com/vibe-audio/vibe/color"
	"github.com/vibe-audio/vibe/constant"
	"github.com/vibe-audio/vibe/icon"
	"github.com/vibe-audio/vibe/key"
	"github.com/vibe-audio/vibe/log"
	"github.com/vibe-audio/vibe/style"
	"github.com/vibe-audio/vibe/util"
	"github.com/spf13/viper"
)

// Notify prints a banner when a newer release exists. Lookup failures are only logged.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking for a newer release...", icon.Get(icon.Progress)))
	latest, err := Latest()
	erase()
	if err != nil {
		log.Debugf("version check: %s", err)
		return
	}

	if newer, err := Compare(latest, constant.Version); err != nil || newer <= 0 {
		return
	}

	fmt.Printf("\n%s %s is out %s\n%s\n\n",
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(constant.Vibe+" "+latest),
		style.Faint(fmt.Sprintf("(you have %s)", constant.Version)),
		style.Faint("https://github.com/vibe-audio/vibe/releases/tag/v"+latest),
	)
}

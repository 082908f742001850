package main

import (
	"os"

	"github.com/gabinollier/water-rocket-and-launchpad/cmd/padctl/subcmd"
)

func main() {
	if err := subcmd.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	silexcmd "github.com/opensilex/silexctl/pkg/silexctl/cmd"
)

func main() {
	root := silexcmd.NewRootCommand(silexcmd.DefaultConfig())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

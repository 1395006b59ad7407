// main is the entry point for the pilotkpi CLI.
package main

import (
	"github.com/huangsam/pilotkpi/cmd"
	"github.com/huangsam/pilotkpi/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Cannot start pilotkpi", err)
	}
}

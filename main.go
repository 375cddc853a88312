// Package main is the entry point of tilawah.
package main

import (
	"github.com/samber/lo"
	"github.com/tilawah-cli/tilawah/cmd"
	"github.com/tilawah-cli/tilawah/config"
	"github.com/tilawah-cli/tilawah/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}

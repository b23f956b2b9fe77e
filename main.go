// Package main is the entry point for syncwatch.
package main

import (
	"github.com/samber/lo"
	"github.com/syncwatch/syncwatch/cmd"
	"github.com/syncwatch/syncwatch/config"
	"github.com/syncwatch/syncwatch/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}

package main

import (
	"os"

	"k8s.io/component-base/logs"

	"github.com/kubemetalio/nixup/cmd/nixup/app"
)

func main() {
	logs.InitLogs()
	defer logs.FlushLogs()

	command := app.NewNixupCommand()
	if err := command.Execute(); err != nil {
		logs.FlushLogs()
		os.Exit(1)
	}
}

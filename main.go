package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/zbiljic/blueprint/cmd"
)

func main() {
	cmd.Execute()
}

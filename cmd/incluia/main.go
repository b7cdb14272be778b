package main

import (
	"os"

	"github.com/incluia/assessment-adapter/cmd/incluia/commands"
)

func main() {
	os.Exit(commands.Execute())
}

package main

import (
	"AutoDJ/cmd"
)

func main() {
	cmd.Execute()
}

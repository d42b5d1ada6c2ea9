package main

import "github.com/mastermindon/cadence/cmd"

func main() {
	cmd.Execute()
}

package main

import (
	"github.com/sagan/naimeta/cmd"
	_ "github.com/sagan/naimeta/cmd/all"
)

func main() {
	cmd.Execute()
}

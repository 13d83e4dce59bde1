package main

import (
	"github.com/rvasm/rvasm/cmd"
)

func main() {
	cmd.Execute()
}

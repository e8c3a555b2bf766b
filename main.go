package main

import (
	"github.com/foomo/navserver/cmd"
)

func main() {
	cmd.Execute()
}

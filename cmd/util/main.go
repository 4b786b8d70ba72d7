package main

import (
	"github.com/servicechain/executor/cmd/util/cmd"
)

func main() {
	cmd.Execute()
}

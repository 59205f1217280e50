package main

import (
	"github.com/kvmwatch/kvmwatch/pkg/cmd"
)

func main() {
	cmd.Execute()
}

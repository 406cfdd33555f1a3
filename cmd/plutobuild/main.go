package main

import (
	"github.com/plutolang/pluto-build/cmd/plutobuild/internal"
)

func main() {
	internal.Execute()
}

package main

import (
	"fmt"
	"os"

	"github.com/blacktop/snapshare/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "snapshare:", err)
		os.Exit(1)
	}
}

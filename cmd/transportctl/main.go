package main

import (
	"fmt"
	"os"

	"github.com/erp/carrier-transport/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "transportctl:", err)
		os.Exit(1)
	}
}

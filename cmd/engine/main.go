package main

import (
	"fmt"
	"os"

	"github.com/ChuLiYu/jobcore/internal/clifacade"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "jobcore: fatal: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := clifacade.BuildCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

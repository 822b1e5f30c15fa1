package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/odyssey-erp/odyssey-journals/cmd/odyssey/cli"
)

func main() {
	root := cli.NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(context.Background()); err != nil {
		var exit *cli.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		fmt.Fprintf(os.Stderr, "journalctl: %v\n", err)
		os.Exit(1)
	}
}

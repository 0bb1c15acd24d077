// Command querydoc translates JSON query documents to SQL.
package main

import (
	"os"

	"github.com/roach88/querydoc/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}

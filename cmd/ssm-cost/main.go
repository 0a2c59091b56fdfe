// Package main is the ssm-cost command itself.
package main

import (
	"log"
	"os"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

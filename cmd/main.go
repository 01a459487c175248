package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "maju",
		Usage: "Bol MAJU storefront and checkout API",
		Commands: []*cli.Command{
			serveCommand(),
			shopCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("maju exited with error")
	}
}

// Command naming-server runs the naming server: the Service interface
// for clients and the Registration interface for storage servers, over
// a single in-memory namespace.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsflags"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfslog"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/naming"
)

func runServer(c *cli.Context) error {
	srv := naming.NewServer(dfsflags.ServiceAddr, dfsflags.RegistrationAddr)
	srv.Stopped = func(cause error) {
		if cause != nil {
			dfslog.Error.Printf("naming-server: stopped: %v", cause)
		}
	}
	if err := srv.Start(); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	dfslog.Info.Printf("naming-server: Service on %s, Registration on %s", srv.ServiceAddr(), srv.RegistrationAddr())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	sig := <-stop
	dfslog.Info.Printf("naming-server: stopping on signal %v", sig)
	srv.Stop()
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "naming-server"
	app.Usage = "run the distributed filesystem naming server"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "service_addr",
			Value:       dfsflags.ServiceAddr,
			Usage:       "address for the client-facing Service interface",
			Destination: &dfsflags.ServiceAddr,
		},
		cli.StringFlag{
			Name:        "registration_addr",
			Value:       dfsflags.RegistrationAddr,
			Usage:       "address for the storage-server-facing Registration interface",
			Destination: &dfsflags.RegistrationAddr,
		},
		cli.GenericFlag{
			Name:  "log",
			Value: &dfsflags.Log,
			Usage: "level of logging: debug, info, error, disabled",
		},
	}
	app.Action = runServer
	if err := app.Run(os.Args); err != nil {
		dfslog.Error.Printf("naming-server: %v", err)
		os.Exit(1)
	}
}

// Command storage-server runs a storage server: the Storage and
// Command capabilities backed by a local directory, registered with a
// naming server at startup.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsflags"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfslog"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfspath"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsrpc"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfsstore"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/internal/diskstore"
	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/naming"
)

func runServer(c *cli.Context) error {
	store, err := diskstore.New(dfsflags.StorageRoot)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	storageSk, err := dfsrpc.NewSkeleton("Storage", (*dfsstore.Storage)(nil), store, dfsflags.StorageAddr)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	commandSk, err := dfsrpc.NewSkeleton("Command", (*dfsstore.Command)(nil), store, dfsflags.CommandAddr)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	if err := storageSk.Start(); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	if err := commandSk.Start(); err != nil {
		storageSk.Stop()
		return cli.NewExitError(err.Error(), 1)
	}
	defer storageSk.Stop()
	defer commandSk.Stop()

	files, err := dfspath.ListLocal(dfsflags.StorageRoot)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	reg, err := naming.NewRegistrationStub(dfsrpc.Endpoint(dfsflags.NamingAddr))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	rejected, err := reg.Register(storageSk.Addr(), commandSk.Addr(), files)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	for _, p := range rejected {
		if _, err := store.Delete(p); err != nil {
			dfslog.Error.Printf("storage-server: removing rejected duplicate %s: %v", p, err)
		}
	}
	dfslog.Info.Printf("storage-server: registered with %s, serving Storage on %s and Command on %s",
		dfsflags.NamingAddr, storageSk.Addr(), commandSk.Addr())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	sig := <-stop
	dfslog.Info.Printf("storage-server: stopping on signal %v", sig)
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "storage-server"
	app.Usage = "run a distributed filesystem storage server"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "storage_addr",
			Value:       dfsflags.StorageAddr,
			Usage:       "address for this storage server's Storage interface",
			Destination: &dfsflags.StorageAddr,
		},
		cli.StringFlag{
			Name:        "command_addr",
			Value:       dfsflags.CommandAddr,
			Usage:       "address for this storage server's Command interface",
			Destination: &dfsflags.CommandAddr,
		},
		cli.StringFlag{
			Name:        "naming_addr",
			Value:       dfsflags.NamingAddr,
			Usage:       "address of the naming server's Registration interface",
			Destination: &dfsflags.NamingAddr,
		},
		cli.StringFlag{
			Name:        "storage_root",
			Value:       dfsflags.StorageRoot,
			Usage:       "local directory backing this storage server's files",
			Destination: &dfsflags.StorageRoot,
		},
		cli.GenericFlag{
			Name:  "log",
			Value: &dfsflags.Log,
			Usage: "level of logging: debug, info, error, disabled",
		},
	}
	app.Action = runServer
	if err := app.Run(os.Args); err != nil {
		dfslog.Error.Printf("storage-server: %v", err)
		os.Exit(1)
	}
}

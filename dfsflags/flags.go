// Package dfsflags defines command-line flags shared between the
// naming-server and storage-server binaries, so the two processes
// agree on defaults without each cmd/ package re-declaring them.
package dfsflags

import (
	"flag"

	"github.com/ashraghunath/DSD-Assignment3-DFS-RMI/dfslog"
)

// We define the flags in two steps so clients don't have to write
// *flags.Flag; it also keeps the documentation easy to read.
var (
	// ServiceAddr is the naming server's client-facing (Service)
	// listen address.
	ServiceAddr = "localhost:8090"

	// RegistrationAddr is the naming server's storage-server-facing
	// (Registration) listen address.
	RegistrationAddr = "localhost:8091"

	// NamingAddr is the naming server's Registration address a
	// storage server dials to announce itself.
	NamingAddr = "localhost:8091"

	// StorageAddr is a storage server's Storage (byte I/O) listen
	// address.
	StorageAddr = "localhost:9090"

	// CommandAddr is a storage server's Command (file mutation)
	// listen address.
	CommandAddr = "localhost:9091"

	// StorageRoot is the local directory a storage server uses to
	// back the files it hosts.
	StorageRoot = "/tmp/dfs-storage"

	// Log sets the level of logging: debug, info, error, disabled.
	Log = logFlag("info")
)

type logFlag string

// String implements flag.Value.
func (l *logFlag) String() string {
	return dfslog.CurrentLevel().String()
}

// Set implements flag.Value.
func (l *logFlag) Set(level string) error {
	return dfslog.SetLevel(level)
}

func init() {
	flag.StringVar(&ServiceAddr, "service_addr", ServiceAddr, "address for the naming server's client-facing Service interface")
	flag.StringVar(&RegistrationAddr, "registration_addr", RegistrationAddr, "address for the naming server's Registration interface")
	flag.StringVar(&NamingAddr, "naming_addr", NamingAddr, "address of the naming server's Registration interface to register with")
	flag.StringVar(&StorageAddr, "storage_addr", StorageAddr, "address for this storage server's Storage interface")
	flag.StringVar(&CommandAddr, "command_addr", CommandAddr, "address for this storage server's Command interface")
	flag.StringVar(&StorageRoot, "storage_root", StorageRoot, "local directory backing this storage server's files")
	flag.Var(&Log, "log", "level of logging: debug, info, error, disabled")
}

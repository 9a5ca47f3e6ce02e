package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kyleterry/vhttp/pkg/config"
	"github.com/kyleterry/vhttp/pkg/control"
	"github.com/kyleterry/vhttp/pkg/files/store"
	"github.com/kyleterry/vhttp/pkg/files/store/backends"
	"github.com/kyleterry/vhttp/pkg/logging"
	"github.com/kyleterry/vhttp/pkg/version"
)

type snapshotFlags struct {
	dir      string
	manifest string
	demo     bool
}

func (f *snapshotFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "dir", "", "directory whose files make up the initial snapshot")
	cmd.Flags().StringVar(&f.manifest, "manifest", "", "YAML manifest listing the files of the initial snapshot")
	cmd.Flags().BoolVar(&f.demo, "demo", false, "serve the built-in placeholder files")
}

// apply lets flags that were set on the command line override the environment.
func (f *snapshotFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("dir") {
		cfg.DataDir = f.dir
	}
	if cmd.Flags().Changed("manifest") {
		cfg.Manifest = f.manifest
	}
	if cmd.Flags().Changed("demo") {
		cfg.Demo = f.demo
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vhttp",
		Short:         "Serve an in-memory file set as a virtual HTTP server",
		Version:       fmt.Sprintf("%s (%s)", version.Version, version.Commit),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(newServeCmd(), newGetCmd())

	return cmd
}

// loadSnapshot reads the initial snapshot selected by cfg. A nil slice with no
// error means the store starts empty.
func loadSnapshot(cfg *config.Config) ([]store.Entry, error) {
	switch cfg.SnapshotSource() {
	case "manifest":
		return backends.LoadManifest(cfg.Manifest)
	case "dir":
		return backends.NewFilesystem(backends.FilesystemOptions{Path: cfg.DataDir}).Load()
	case "demo":
		return backends.Placeholder(), nil
	}

	return nil, nil
}

// setup builds the store and its control channel and installs the initial
// snapshot through the channel, the same way a remote owner would.
func setup(cfg *config.Config, logger zerolog.Logger) (*store.Store, *control.Channel, error) {
	s := store.New()

	channel, err := control.NewChannel(s, logging.WithComponent(logger, "control"))
	if err != nil {
		return nil, nil, err
	}

	entries, err := loadSnapshot(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("loading initial snapshot: %w", err)
	}

	if entries != nil {
		if _, err := channel.Update(entries); err != nil {
			return nil, nil, fmt.Errorf("installing initial snapshot: %w", err)
		}
	}

	return s, channel, nil
}

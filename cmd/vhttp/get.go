package main

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kyleterry/vhttp/pkg/config"
	"github.com/kyleterry/vhttp/pkg/logging"
	"github.com/kyleterry/vhttp/pkg/server"
)

// virtualOrigin is the origin requests from the get command are made against.
// Paths that are not virtual routes go out to it over the real network.
const virtualOrigin = "http://vhttp.localhost"

func newGetCmd() *cobra.Command {
	var (
		snap        snapshotFlags
		showHeaders bool
	)

	cmd := &cobra.Command{
		Use:   "get PATH",
		Short: "Make one request through the interceptor and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			snap.apply(cmd, cfg)

			logger := logging.New(cfg.Log)

			s, _, err := setup(cfg, logger)
			if err != nil {
				return err
			}

			client := server.NewClient(server.NewRouter(s, logging.WithComponent(logger, "router")), nil)

			path := args[0]
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}

			resp, err := client.Get(virtualOrigin + path)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			return printResponse(cmd.OutOrStdout(), resp, showHeaders)
		},
	}

	snap.register(cmd)
	cmd.Flags().BoolVarP(&showHeaders, "include", "i", false, "print response headers")

	return cmd
}

func printResponse(w io.Writer, resp *http.Response, showHeaders bool) error {
	status := color.New(color.FgGreen, color.Bold)
	if resp.StatusCode >= 400 {
		status = color.New(color.FgRed, color.Bold)
	}

	status.Fprintf(w, "%s %s\n", resp.Proto, resp.Status)

	if showHeaders {
		names := make([]string, 0, len(resp.Header))
		for name := range resp.Header {
			names = append(names, name)
		}
		sort.Strings(names)

		key := color.New(color.FgCyan)
		for _, name := range names {
			for _, v := range resp.Header[name] {
				key.Fprintf(w, "%s", name)
				fmt.Fprintf(w, ": %s\n", v)
			}
		}
		fmt.Fprintln(w)
	}

	_, err := io.Copy(w, resp.Body)

	return err
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/jonwraymond/qrpreview/config"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "qrpreview",
		Short: "On-demand QR preview rendering and caching service",
		Long: `qrpreview renders QR code previews as SVG or PNG, caching each distinct
(content, options) pair and collapsing concurrent requests for it.

Example usage:
  qrpreview serve --config qrpreview.yaml
  qrpreview sign "https://example.com/r/abc"
  qrpreview render "https://example.com/r/abc" --format png -o abc.png`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: built-in defaults)")

	cmd.AddCommand(
		newServeCmd(opts),
		newSignCmd(opts),
		newRenderCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	return config.Load(cmd.Context(), o.configPath, nil)
}

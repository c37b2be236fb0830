package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/qrpreview/preview"
)

func newRenderCmd(root *rootOptions) *cobra.Command {
	var (
		output string
		token  string
		raw    = map[string]*string{}
	)

	cmd := &cobra.Command{
		Use:   "render <content>",
		Short: "Render one preview through the service pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			svc, err := newService(cfg, nil)
			if err != nil {
				return err
			}

			opts := preview.RawOptions{}
			for k, v := range raw {
				if cmd.Flags().Changed(k) {
					opts[k] = *v
				}
			}

			result, err := svc.Render(cmd.Context(), preview.NewRenderRequest(args[0], token, opts))
			if err != nil {
				return err
			}
			resp, err := svc.Respond(result)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(resp.Body)
				return err
			}
			if err := os.WriteFile(output, resp.Body, 0o644); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s, %d bytes, %s)\n",
				output, resp.ContentType, len(resp.Body), result.Options)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&token, "token", "", "integrity token (the h query parameter)")
	for _, k := range []string{preview.OptECL, preview.OptMargin, preview.OptWidth, preview.OptDark, preview.OptLight, preview.OptFormat} {
		raw[k] = cmd.Flags().String(k, "", k+" option, as in the query string")
	}
	return cmd
}

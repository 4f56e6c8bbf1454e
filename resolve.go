package main

import (
	"encoding/json"
	"os"

	"TeraLink/internal/helpers"
	"TeraLink/internal/manifest"

	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	var mode string
	var dir manifest.Continuation
	cmd := &cobra.Command{
		Use:   "resolve <link>",
		Short: "Resolve a share link once and print the manifest as JSON",
		Long: `Resolve a share link once and print the manifest as JSON.

With --path, --js-token and --shorturl the link argument is omitted and a
single directory is listed from a continuation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			helpers.RedirectConsole(os.Stderr)
			cfg := helpers.GlobalConfig
			listMode, err := helpers.ParseListMode(mode)
			if err != nil {
				return err
			}
			if listMode == "" {
				listMode = cfg.Mode
			}

			a := newApp(cfg)
			defer a.Close()

			var m *manifest.Manifest
			if dir.Path != "" {
				m, err = a.resolver.ResolveDirectory(cmd.Context(), dir, a.cred, listMode)
			} else {
				link := ""
				if len(args) == 1 {
					link = args[0]
				}
				m, err = a.resolver.Resolve(cmd.Context(), link, a.cred, listMode)
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "eager或lazy，默认使用配置中的mode")
	cmd.Flags().StringVar(&dir.Path, "path", "", "续取的目录路径")
	cmd.Flags().StringVar(&dir.Folder, "folder", "", "输出中使用的相对目录")
	cmd.Flags().StringVar(&dir.JsToken, "js-token", "", "续取使用的jsToken")
	cmd.Flags().StringVar(&dir.ShortURL, "shorturl", "", "续取使用的shorturl")
	return cmd
}

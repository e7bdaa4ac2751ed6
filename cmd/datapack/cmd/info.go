package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// infoCmd prints the manifest behind an id without touching any piece.
var infoCmd = &cobra.Command{
	Use:   "info <manifest-id>",
	Short: "Show the manifest of a stored object",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		pipeline, closer, err := paramsToPipeline(ctx, datapackFlags)
		defer func() { _ = closer() }()
		if err != nil {
			wrapFatalln("create pipeline", err)
			return
		}

		manifest, err := pipeline.DownloadManifest(ctx, args[0])
		if err != nil {
			wrapFatalln("fetch manifest", err)
			return
		}
		out, err := yaml.Marshal(manifest)
		if err != nil {
			wrapFatalln("render manifest", err)
			return
		}
		infoLogger.Print(string(out))
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

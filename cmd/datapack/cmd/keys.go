package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// keysCmd lists the content ids of every stored object.
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the content ids of all stored objects",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		pipeline, closer, err := paramsToPipeline(ctx, datapackFlags)
		defer func() { _ = closer() }()
		if err != nil {
			wrapFatalln("create pipeline", err)
			return
		}

		keys, err := pipeline.Store().Keys(ctx)
		if err != nil {
			wrapFatalln("list store keys", err)
			return
		}
		for _, key := range keys {
			infoLogger.Println(key.String())
		}
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}

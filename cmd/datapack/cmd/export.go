package cmd

import (
	"context"
	"os"

	"github.com/oneconcern/datapack/pkg/core"
	"github.com/spf13/cobra"
)

// exportCmd packages stored objects into one portable archive file.
var exportCmd = &cobra.Command{
	Use:   "export <content-id> ...",
	Short: "Export stored objects into a portable archive",
	Long: `Export fetches the objects behind the given content ids and packages
them into a single length prefixed archive file, optionally gzip
compressed. With --all, every object in the store is archived, manifests
and pieces included, so the archive can be imported into a fresh store
and downloaded from there.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		pipeline, closer, err := paramsToPipeline(ctx, datapackFlags)
		defer func() { _ = closer() }()
		if err != nil {
			wrapFatalln("create pipeline", err)
			return
		}

		ids := args
		if datapackFlags.archive.all {
			keys, erk := pipeline.Store().Keys(ctx)
			if erk != nil {
				wrapFatalln("list store keys", erk)
				return
			}
			ids = make([]string, 0, len(keys))
			for _, key := range keys {
				ids = append(ids, key.String())
			}
		}
		if len(ids) == 0 {
			wrapFatalln("nothing to export: pass content ids or --all", nil)
			return
		}
		if datapackFlags.archive.file == "" {
			wrapFatalln("an --archive file is required", nil)
			return
		}

		out, err := os.Create(datapackFlags.archive.file)
		if err != nil {
			wrapFatalln("create archive file", err)
			return
		}
		defer out.Close()

		var opts []core.ExportOption
		if datapackFlags.archive.gzip {
			opts = append(opts, core.ExportCompressed())
		}
		meta, err := pipeline.Export(ctx, out, ids, opts...)
		if err != nil {
			wrapFatalln("export archive", err)
			return
		}
		infoLogger.Printf("Exported %d object(s), %d bytes of payload, to %s",
			meta.ItemCount, meta.TotalSize, datapackFlags.archive.file)
	},
}

func init() {
	addArchiveFileFlag(exportCmd)
	addGzipFlag(exportCmd)
	addAllFlag(exportCmd)
	addConcurrencyFactorFlag(exportCmd)

	rootCmd.AddCommand(exportCmd)
}

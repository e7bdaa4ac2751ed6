package cmd

import (
	"context"
	"os"

	"github.com/gosuri/uitable"
	"github.com/oneconcern/datapack/pkg/core"
	"github.com/spf13/cobra"
)

// importCmd restores the objects of an archive into the store.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import objects from a portable archive",
	Long: `Import reads an archive (gzip compression is detected automatically) and
stores every object it carries. Objects already present in the store are
reported as duplicates and left unchanged.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		pipeline, closer, err := paramsToPipeline(ctx, datapackFlags)
		defer func() { _ = closer() }()
		if err != nil {
			wrapFatalln("create pipeline", err)
			return
		}
		if datapackFlags.archive.file == "" {
			wrapFatalln("an --archive file is required", nil)
			return
		}

		in, err := os.Open(datapackFlags.archive.file)
		if err != nil {
			wrapFatalln("open archive file", err)
			return
		}
		defer in.Close()

		var opts []core.ImportOption
		if datapackFlags.archive.verifyIDs {
			opts = append(opts, core.ImportVerifyIDs())
		}
		res, err := pipeline.Import(ctx, in, opts...)
		if err != nil {
			wrapFatalln("import archive", err)
			return
		}

		table := uitable.New()
		table.AddRow("CONTENT ID", "SIZE", "DUPLICATE")
		for _, item := range res.Items {
			table.AddRow(item.ContentID, item.Size, item.Duplicate)
		}
		infoLogger.Print(table.String())
		infoLogger.Printf("Imported %d object(s)", res.Metadata.ItemCount)
	},
}

func init() {
	addArchiveFileFlag(importCmd)
	addVerifyIDsFlag(importCmd)
	addConcurrencyFactorFlag(importCmd)

	rootCmd.AddCommand(importCmd)
}

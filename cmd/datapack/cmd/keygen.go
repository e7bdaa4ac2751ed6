package cmd

import (
	"github.com/oneconcern/datapack/pkg/cipher"
	"github.com/spf13/cobra"
)

// keygenCmd prints fresh key material for use with upload --key.
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate key material for object encryption",
	Long: `Generate a fresh 32 byte key, hex encoded. Datapack never stores keys:
persist the output somewhere safe and pass it back with --key.`,
	Run: func(cmd *cobra.Command, args []string) {
		keyMaterial, err := cipher.GenerateKeyMaterial()
		if err != nil {
			wrapFatalln("generate key", err)
			return
		}
		infoLogger.Println(keyMaterial)
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

package cmd

import (
	"os"
	"os/user"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/spf13/cobra"
)

// configCmd groups configuration commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage the datapack config file",
}

var configGen = &cobra.Command{
	Use:   "create",
	Short: "Create a config",
	Long:  "Create a config to use for datapack. Config file will be placed in $HOME/.datapack/datapack.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		usr, err := user.Current()
		if usr == nil || err != nil {
			wrapFatalln("Could not get home directory for user", nil)
			return
		}
		generated := CLIConfig{
			Store:       datapackFlags.root.store,
			Credential:  datapackFlags.root.credFile,
			PieceSize:   datapackFlags.pack.pieceSize.String(),
			Replication: datapackFlags.pack.replication,
		}
		o, e := yaml.Marshal(generated)
		if e != nil {
			wrapFatalln("serialize config to yaml", e)
			return
		}
		_ = os.Mkdir(filepath.Join(usr.HomeDir, ".datapack"), 0777)
		err = os.WriteFile(filepath.Join(usr.HomeDir, ".datapack", "datapack.yaml"), o, 0666)
		if err != nil {
			wrapFatalln("write config file", err)
			return
		}
		infoLogger.Println("Config created at", filepath.Join(usr.HomeDir, ".datapack", "datapack.yaml"))
	},
}

func init() {
	addPieceSizeFlag(configGen)
	addReplicationFlag(configGen)

	configCmd.AddCommand(configGen)
	rootCmd.AddCommand(configCmd)
}

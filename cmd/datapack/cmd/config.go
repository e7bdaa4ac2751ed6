package cmd

import (
	"github.com/spf13/viper"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	// bug in viper? Need to keep names of fields the same as the serialized names..
	Store       string `json:"store" yaml:"store"`             // Store URL (localfs://, badger://, gs://, s3://)
	Credential  string `json:"credential" yaml:"credential"`   // Credentials file for cloud backends
	PieceSize   string `json:"pieceSize" yaml:"pieceSize"`     // Default piece size, human units
	Replication uint32 `json:"replication" yaml:"replication"` // Default replication factor
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *CLIConfig) setDatapackParams(flags *flagsT) {
	if flags.root.store == "" {
		flags.root.store = c.Store
	}
	if flags.root.credFile == "" {
		flags.root.credFile = c.Credential
	}
	if flags.pack.replication == 0 && c.Replication > 0 {
		flags.pack.replication = c.Replication
	}
}

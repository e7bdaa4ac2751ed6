// Copyright © 2018 One Concern

package main

import "github.com/oneconcern/datapack/cmd/datapack/cmd"

func main() {
	cmd.Execute()
}

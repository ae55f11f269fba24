/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/gnames/dwcagent/pkg/config"
	"github.com/spf13/cobra"
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process dataset-id",
	Short: "Runs the dataset's workflow until agents need a user reply",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			slog.Error("Cannot parse dataset id", "error", err, "arg", args[0])
			os.Exit(1)
		}

		cfg := config.New(opts...)
		dwa, done := wire(cfg)
		defer done()

		err = dwa.Process(cmd.Context(), uint(id))
		if err != nil {
			slog.Error("Cannot process dataset", "error", err, "dataset", id)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
}

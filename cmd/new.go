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
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnames/dwcagent/pkg/config"
	"github.com/spf13/cobra"
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new file [file...]",
	Short: "Creates a dataset from the given spreadsheet or delimited files",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.New(opts...)
		dwa, done := wire(cfg)
		defer done()

		files := make(map[string]io.Reader)
		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				slog.Error("Cannot open file", "error", err, "path", path)
				os.Exit(1)
			}
			defer f.Close()
			files[filepath.Base(path)] = f
		}

		ds, err := dwa.NewDataset(cmd.Context(), files)
		if err != nil {
			slog.Error("Cannot create dataset", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Created dataset %d\n", ds.ID)
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}

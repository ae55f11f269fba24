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
	"log/slog"
	"os"
	"strconv"

	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/dwcagent/pkg/ent/model"
	"github.com/spf13/cobra"
)

// transcriptCmd represents the transcript command
var transcriptCmd = &cobra.Command{
	Use:   "transcript dataset-id",
	Short: "Prints the dataset's conversation across all of its agents",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			slog.Error("Cannot parse dataset id", "error", err, "arg", args[0])
			os.Exit(1)
		}

		cfg := config.New(opts...)
		dwa, done := wire(cfg)
		defer done()

		msgs, err := dwa.Transcript(uint(id))
		if err != nil {
			slog.Error("Cannot get transcript", "error", err, "dataset", id)
			os.Exit(1)
		}
		for _, msg := range msgs {
			fmt.Printf("--- %s ---\n%s\n", msg.Role, msg.Content)
			if msg.Role == model.RoleAssistant {
				for _, tc := range msg.ToolCalls {
					fmt.Printf("[tool call %s: %s %s]\n",
						tc.ID, tc.Name, tc.Arguments)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
}

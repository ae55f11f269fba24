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

	"github.com/gnames/dwcagent/pkg/config"
	"github.com/spf13/cobra"
)

// tasksCmd represents the tasks command
var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Loads the workflow task sequence into the database",
	Run: func(_ *cobra.Command, _ []string) {
		cfg := config.New(opts...)
		dwa, done := wire(cfg)
		defer done()
		err := dwa.LoadTasks()
		if err != nil {
			slog.Error("Cannot load tasks", "error", err)
			os.Exit(1)
		}
		slog.Info("Tasks are loaded")
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}

/*
	(c) Copyright NetFoundry Inc. Inc.

	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at

	https://www.apache.org/licenses/LICENSE-2.0

	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package subcmd

import (
	"fmt"
	"os"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/loader"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewCheckCommand())
}

func NewCheckCommand() *cobra.Command {
	checkCmd := &CheckCommand{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a padctl configuration file",
		Args:  cobra.NoArgs,
		RunE:  checkCmd.check,
	}

	cmd.Flags().StringVarP(&checkCmd.ConfigPath, "config", "c", "", "path to YAML configuration file")
	cmd.MarkFlagRequired("config")

	return cmd
}

type CheckCommand struct {
	ConfigPath string
}

func (c *CheckCommand) check(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(c.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	result, err := loader.ValidateConfigBytes(data)
	if err != nil {
		return err
	}

	if len(result.Errors)+len(result.Warnings) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Level", "Path", "Problem"})
		for _, e := range result.Errors {
			t.AppendRow(table.Row{"error", e.Path, e.Message})
		}
		for _, w := range result.Warnings {
			t.AppendRow(table.Row{"warning", w.Path, w.Message})
		}
		t.Render()
	}

	if !result.IsValid() {
		return fmt.Errorf("config '%s' is invalid: %w", c.ConfigPath, result.Err())
	}

	logrus.Infof("check: config '%s' is valid (%d warning(s))", c.ConfigPath, len(result.Warnings))
	return nil
}

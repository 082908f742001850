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
	"context"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/mcp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewMCPServerCommand())
}

func NewMCPServerCommand() *cobra.Command {
	mcpCmd := &MCPServerCommand{}

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Start MCP server for AI-assisted launchpad operation",
		Long: `Start an MCP (Model Context Protocol) server that exposes the launchpad
to AI assistants over stdio.

The server provides tools for:
  - get_snapshot: Current rocket state, launchpad state and fill telemetry
  - decide_actions: Which actions are permitted and which need confirmation
  - dispatch_action: Send an action (hazardous actions need confirm=true)
  - list_inflight: Actions sent and not yet acknowledged

And resources:
  - padctl://snapshot: Current snapshot with action decisions`,
		Args: cobra.NoArgs,
		RunE: mcpCmd.run,
	}

	mcpCmd.Device.register(cmd)

	return cmd
}

type MCPServerCommand struct {
	Device deviceFlags
}

func (m *MCPServerCommand) run(cmd *cobra.Command, args []string) error {
	session, _, err := m.Device.newSession(true, mcp.ContextConfirmer, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if _, err := session.Start(ctx); err != nil {
		return err
	}

	logrus.Info("starting MCP server on stdio...")
	server := mcp.NewPadMCPServer(session)
	return server.ServeStdio()
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/engine"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
)

const snapshotURI = "padctl://snapshot"

type PadMCPServer struct {
	server  *server.MCPServer
	session *engine.Session
}

func NewPadMCPServer(s *engine.Session) *PadMCPServer {
	srv := server.NewMCPServer(
		"Water Rocket Launchpad",
		"v1.0.0",
		server.WithResourceCapabilities(true, true),
		server.WithToolCapabilities(true),
	)

	ps := &PadMCPServer{
		server:  srv,
		session: s,
	}

	ps.registerTools()
	ps.registerResources()

	return ps
}

func (ps *PadMCPServer) ServeStdio() error {
	return server.ServeStdio(ps.server)
}

type approvalKey struct{}

// ContextConfirmer approves a prompt only when the tool call that triggered it passed confirm=true.
// Sessions served over MCP should be built with it.
var ContextConfirmer = engine.ConfirmerFunc(func(ctx context.Context, _ model.ActionID, _ string) (bool, error) {
	approved, _ := ctx.Value(approvalKey{}).(bool)
	return approved, nil
})

func withApproval(ctx context.Context, approved bool) context.Context {
	return context.WithValue(ctx, approvalKey{}, approved)
}

func (ps *PadMCPServer) registerTools() {
	actions := make([]string, 0, len(model.Actions))
	for _, a := range model.Actions {
		if a.Dispatchable() {
			actions = append(actions, string(a))
		}
	}

	ps.server.AddTool(mcp.NewTool("get_snapshot",
		mcp.WithDescription("Get the current rocket state, launchpad state and fill telemetry"),
	), ps.getSnapshotHandler)

	ps.server.AddTool(mcp.NewTool("decide_actions",
		mcp.WithDescription("List every operator action with whether it is currently permitted and whether it needs confirmation"),
	), ps.decideActionsHandler)

	ps.server.AddTool(mcp.NewTool("dispatch_action",
		mcp.WithDescription("Send an operator action to the launchpad. Hazardous actions are refused unless confirm is true."),
		mcp.WithString("action",
			mcp.Description("Action to send"),
			mcp.Required(),
			mcp.Enum(actions...),
		),
		mcp.WithNumber("water_volume",
			mcp.Description("Target water volume in liters (start-filling)"),
		),
		mcp.WithNumber("pressure",
			mcp.Description("Target pressure in bars (start-filling)"),
		),
		mcp.WithNumber("degrees",
			mcp.Description("Servo rotation in degrees (rotate-servo)"),
		),
		mcp.WithBoolean("confirm",
			mcp.Description("Accept the confirmation warning for this action"),
		),
	), ps.dispatchActionHandler)

	ps.server.AddTool(mcp.NewTool("list_inflight",
		mcp.WithDescription("List actions sent to the launchpad that have not been acknowledged yet"),
	), ps.listInflightHandler)
}

func (ps *PadMCPServer) registerResources() {
	resource := mcp.NewResource(snapshotURI, "Launchpad Snapshot",
		mcp.WithResourceDescription("Current launchpad snapshot and action decisions"),
		mcp.WithMIMEType("application/json"),
	)
	ps.server.AddResource(resource, ps.snapshotResourceHandler)
}

type snapshotView struct {
	model.Snapshot
	RocketSeverity    string `json:"rocket-severity"`
	LaunchpadSeverity string `json:"launchpad-severity"`
}

func (ps *PadMCPServer) getSnapshotHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, _ := ps.session.Snapshot()
	return jsonResult(viewOf(s))
}

func (ps *PadMCPServer) decideActionsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, d := ps.session.Snapshot()
	out := make([]model.ActionDecision, 0, len(model.Actions))
	for _, a := range model.Actions {
		out = append(out, d[a])
	}
	return jsonResult(out)
}

func (ps *PadMCPServer) dispatchActionHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action argument is required"), nil
	}
	action, err := model.ParseActionID(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	params := model.Params{
		WaterVolume: request.GetFloat("water_volume", 0),
		Pressure:    request.GetFloat("pressure", 0),
		Degrees:     request.GetFloat("degrees", 0),
	}
	approved := request.GetBool("confirm", false)

	o, err := ps.session.Dispatch(withApproval(ctx, approved), action, params)
	if err == nil {
		return jsonResult(o)
	}

	if errors.Is(err, engine.ErrActionCancelled) && !approved {
		s, _ := ps.session.Snapshot()
		d := ps.session.Gate.DecideAction(s, action, params)
		return mcp.NewToolResultError(fmt.Sprintf("%s\nCall again with confirm=true to proceed.", d.ConfirmationText)), nil
	}
	return mcp.NewToolResultError(o.Message), nil
}

func (ps *PadMCPServer) listInflightHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pending := ps.session.Dispatcher.InFlight()
	return jsonResult(map[string]interface{}{
		"count":   len(pending),
		"pending": pending,
	})
}

func (ps *PadMCPServer) snapshotResourceHandler(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s, d := ps.session.Snapshot()
	data, err := json.Marshal(map[string]interface{}{
		"snapshot":  viewOf(s),
		"decisions": d,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      snapshotURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func viewOf(s model.Snapshot) snapshotView {
	return snapshotView{
		Snapshot:          s,
		RocketSeverity:    s.RocketState.Severity().String(),
		LaunchpadSeverity: s.LaunchpadState.Severity().String(),
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

package subcmd

import (
	"fmt"
	"io"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/engine"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewStatusCommand())
}

func NewStatusCommand() *cobra.Command {
	statusCmd := &StatusCommand{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show rocket and launchpad state and which actions are available",
		Args:  cobra.NoArgs,
		RunE:  statusCmd.run,
	}

	statusCmd.Device.register(cmd)

	return cmd
}

type StatusCommand struct {
	Device deviceFlags
}

func (s *StatusCommand) run(cmd *cobra.Command, args []string) error {
	session, _, err := s.Device.newSession(false, nil, nil)
	if err != nil {
		return err
	}
	if _, err := session.Start(cmd.Context()); err != nil {
		return err
	}

	snap, decisions := session.Snapshot()
	renderSnapshot(cmd.OutOrStdout(), snap, session.Form)
	renderDecisions(cmd.OutOrStdout(), decisions)
	return nil
}

func renderSnapshot(out io.Writer, s model.Snapshot, form *engine.FillForm) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "State", "Severity"})
	t.AppendRow(table.Row{"Rocket", s.RocketState.DisplayName(), s.RocketState.Severity()})
	t.AppendRow(table.Row{"Launchpad", s.LaunchpadState.DisplayName(), s.LaunchpadState.Severity()})
	t.AppendSeparator()

	targets := "read-only"
	if form.Editable() {
		targets = "editable"
	}
	v := form.Values()
	t.AppendRow(table.Row{"Water volume", fmt.Sprintf("%.2f L", v.WaterVolume), targets})
	t.AppendRow(table.Row{"Pressure", fmt.Sprintf("%.2f bar", v.Pressure), targets})
	if s.LastData != nil {
		t.AppendRow(table.Row{"Last flight", fmt.Sprintf("%.1f m max altitude", s.LastData.MaxRelativeAltitude), ""})
	}
	t.Render()
}

func renderDecisions(out io.Writer, d engine.Decisions) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Action", "Available", "Note"})
	for _, a := range model.Actions {
		decision := d[a]
		available := "no"
		note := decision.ReasonIfBlocked
		if decision.Permitted {
			available = "yes"
			if decision.RequiresConfirmation {
				available = "yes, confirm"
				note = decision.ConfirmationText
			}
		}
		t.AppendRow(table.Row{a, available, note})
	}
	t.Render()
}

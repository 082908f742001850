package subcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/engine"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var actionHelp = map[model.ActionID]string{
	model.ActionStartFilling:     "Fill the rocket with water, then pressurize it",
	model.ActionLaunch:           "Launch the rocket",
	model.ActionAbort:            "Abort the current sequence step and return the launchpad to rest",
	model.ActionOpenFairing:      "Open the rocket fairing",
	model.ActionCloseFairing:     "Close the rocket fairing",
	model.ActionSkipWaterFilling: "Stop water filling and move on to pressurizing",
	model.ActionSkipPressurizing: "Stop pressurizing and move on to ready for launch",
	model.ActionRotateServo:      "Rotate the launch servo (debug)",
}

func init() {
	for _, a := range model.Actions {
		if a.Dispatchable() {
			RootCmd.AddCommand(NewActionCommand(a))
		}
	}
}

func NewActionCommand(action model.ActionID) *cobra.Command {
	actionCmd := &ActionCommand{Action: action}

	cmd := &cobra.Command{
		Use:   string(action),
		Short: actionHelp[action],
		Args:  cobra.NoArgs,
		RunE:  actionCmd.run,
	}

	actionCmd.Device.register(cmd)
	cmd.Flags().BoolVarP(&actionCmd.Yes, "yes", "y", false, "accept the confirmation warning without prompting")

	switch action {
	case model.ActionStartFilling:
		cmd.Flags().Float64Var(&actionCmd.Params.WaterVolume, "water", 0, "target water volume in liters")
		cmd.Flags().Float64Var(&actionCmd.Params.Pressure, "pressure", 0, "target pressure in bars")
		cmd.MarkFlagRequired("water")
		cmd.MarkFlagRequired("pressure")
	case model.ActionRotateServo:
		cmd.Flags().Float64Var(&actionCmd.Params.Degrees, "degrees", 0, "rotation in degrees, negative for counter-clockwise")
		cmd.MarkFlagRequired("degrees")
	}

	return cmd
}

type ActionCommand struct {
	Action model.ActionID
	Params model.Params
	Device deviceFlags
	Yes    bool
}

func (a *ActionCommand) run(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	confirmer := &promptConfirmer{
		in:          cmd.InOrStdin(),
		out:         out,
		assumeYes:   a.Yes,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
	notifier := engine.NotifierFunc(func(o engine.Outcome) {
		fmt.Fprintf(out, "%s: %s\n", o.Status, o.Message)
	})

	session, _, err := a.Device.newSession(false, confirmer, notifier)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if _, err := session.Start(ctx); err != nil {
		return err
	}

	_, err = session.Dispatch(ctx, a.Action, a.Params)
	return err
}

// promptConfirmer asks on the terminal. Without a terminal it declines unless --yes was given.
type promptConfirmer struct {
	in          io.Reader
	out         io.Writer
	assumeYes   bool
	interactive bool
}

func (c *promptConfirmer) Confirm(_ context.Context, _ model.ActionID, text string) (bool, error) {
	fmt.Fprintln(c.out, text)
	if c.assumeYes {
		fmt.Fprintln(c.out, "confirmed by --yes")
		return true, nil
	}
	if !c.interactive {
		fmt.Fprintln(c.out, "stdin is not a terminal; pass --yes to confirm")
		return false, nil
	}

	fmt.Fprint(c.out, "[y/N] ")
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

package subcmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/engine"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewWatchCommand())
}

func NewWatchCommand() *cobra.Command {
	watchCmd := &WatchCommand{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow launchpad state live until interrupted",
		Args:  cobra.NoArgs,
		RunE:  watchCmd.run,
	}

	watchCmd.Device.register(cmd)
	cmd.Flags().StringVar(&watchCmd.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (e.g. :9100)")

	return cmd
}

type WatchCommand struct {
	Device      deviceFlags
	MetricsAddr string
}

func (w *WatchCommand) run(cmd *cobra.Command, args []string) error {
	session, cfg, err := w.Device.newSession(true, nil, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	session.Reconciler.Subscribe(engine.ListenerFunc(func(s model.Snapshot, _ engine.Decisions) {
		fmt.Fprintln(out, summary(s))
	}))

	if cfg.Influx.Enabled() {
		recorder, client := telemetry.Dial(cfg.Influx)
		defer client.Close()
		defer recorder.Close()
		session.Reconciler.Subscribe(recorder)
		logrus.Infof("recording telemetry to %s bucket '%s'", cfg.Influx.URL, cfg.Influx.Bucket)
	}

	if w.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: w.MetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logrus.WithError(err).Error("metrics server failed")
			}
		}()
		defer srv.Close()
		logrus.Infof("serving metrics on %s/metrics", w.MetricsAddr)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := session.Start(ctx); err != nil {
		return err
	}
	if err := session.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func summary(s model.Snapshot) string {
	line := fmt.Sprintf("rocket=%s launchpad=%s", s.RocketState, s.LaunchpadState)
	if s.LaunchpadState.Filling() {
		line += fmt.Sprintf(" water=%.2fL pressure=%.2fbar", s.FillTelemetry.WaterVolume, s.FillTelemetry.Pressure)
	}
	return line
}

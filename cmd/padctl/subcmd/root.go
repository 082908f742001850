package subcmd

import (
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/engine"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/loader"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/transport"
	"github.com/michaelquigley/pfxlog"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "padctl",
	Short: "Monitor and operate the water rocket launchpad",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		pfxlog.GlobalInit(level, pfxlog.DefaultOptions().SetTrimPrefix("github.com/gabinollier/water-rocket-and-launchpad/"))
		return nil
	},
	SilenceUsage: true,
}

var logLevel string

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
}

// deviceFlags are shared by every command that talks to the launchpad.
type deviceFlags struct {
	ConfigPath string
	BaseURL    string
}

func (f *deviceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.ConfigPath, "config", "c", "", "path to config file (default ~/.padctl/config.yml)")
	cmd.Flags().StringVar(&f.BaseURL, "base-url", "", "launchpad base url, overrides the config file")
}

func (f *deviceFlags) loadConfig() (*model.PadConfig, error) {
	path := f.ConfigPath
	if path == "" {
		var err error
		if path, err = loader.DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := loader.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if f.BaseURL != "" {
		cfg.Device.BaseURL = f.BaseURL
		cfg.Device.PushURL = model.DerivePushURL(f.BaseURL)
	}
	return cfg, nil
}

// newSession builds a session against the configured device. Only live sessions follow the push stream.
func (f *deviceFlags) newSession(live bool, confirmer engine.Confirmer, notifier engine.Notifier) (*engine.Session, *model.PadConfig, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	var push transport.PushSource
	if live {
		if cfg.Device.PushURL == "" {
			return nil, nil, errors.Errorf("no push url for '%s'", cfg.Device.BaseURL)
		}
		push = transport.NewSocketSource(cfg.Device.PushURL, cfg.Device.BaseURL)
	}

	s, err := engine.NewSession(cfg, transport.NewHTTPClient(cfg.Device.BaseURL), push, confirmer, notifier)
	if err != nil {
		return nil, nil, err
	}
	logrus.Debugf("launchpad at %s (push %s)", cfg.Device.BaseURL, cfg.Device.PushURL)
	return s, cfg, nil
}

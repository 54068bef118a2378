package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tetris-ga/internal/config"
	"github.com/vovakirdan/tetris-ga/internal/platform/tui"
)

var (
	serveWeights     weightFlags
	serveAddr        string
	serveHostKey     string
	serveIdleTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start SSH server for spectators",
	Long: `Start an SSH server where every connection spectates its own bot game.
Games restart with a new piece sequence when they end.

Examples:
  tetrisga serve
  tetrisga serve --ssh :2222 --best
  tetrisga serve --host-key /etc/tetrisga/host_key --idle-timeout 30m

Then connect with: ssh -p 2323 localhost`,
	Run: runServe,
}

func init() {
	serveWeights.register(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "ssh", "", "Listen address (empty = config)")
	serveCmd.Flags().StringVar(&serveHostKey, "host-key", "", "Host key path (empty = config)")
	serveCmd.Flags().DurationVar(&serveIdleTimeout, "idle-timeout", 0, "Idle connection timeout (0 = config)")
}

func runServe(_ *cobra.Command, _ []string) {
	logger := newLogger()
	cfg := loadConfig()

	w, source, err := serveWeights.resolve(cfg)
	if err != nil {
		fatal("%v", err)
	}

	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.Sim = cfg.Driver(w)
	sshCfg.Sim.Rounds = 1
	sshCfg.TickRate = cfg.Viewer.TickRate
	sshCfg.StepsPerTick = cfg.Viewer.StepsPerTick
	if cfg.Viewer.SSHAddress != "" {
		sshCfg.Address = cfg.Viewer.SSHAddress
	}
	if cfg.Viewer.IdleTimeoutMinutes > 0 {
		sshCfg.IdleTimeout = cfg.Viewer.IdleTimeout()
	}
	sshCfg.HostKeyPath = config.ExpandHome(cfg.Viewer.HostKeyPath)

	if serveAddr != "" {
		sshCfg.Address = serveAddr
	}
	if serveHostKey != "" {
		sshCfg.HostKeyPath = config.ExpandHome(serveHostKey)
	}
	if serveIdleTimeout > 0 {
		sshCfg.IdleTimeout = serveIdleTimeout
	}

	srv, err := tui.NewSSHServer(sshCfg, logger.WithPrefix("tetrisga-ssh"))
	if err != nil {
		fatal("%v", err)
	}
	logger.Info("spectators watch", "weights", w.Encode(), "source", source)

	ctx, stop := signalContext()
	defer stop()

	err = srv.ListenAndServe(ctx)
	logger.Info("server stopped", "address", srv.Addr(), "active_sessions", srv.ActiveSessions())
	if err != nil {
		fatal("%v", err)
	}
}

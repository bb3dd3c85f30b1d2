package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/avelichko/quizduel-client/internal/catalog"
	"github.com/avelichko/quizduel-client/internal/config"
	"github.com/avelichko/quizduel-client/internal/conn"
	"github.com/avelichko/quizduel-client/internal/restapi"
	"github.com/avelichko/quizduel-client/internal/session"
	"github.com/avelichko/quizduel-client/internal/tui"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := buildLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("fatal", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rest := restapi.New(cfg.APIURL, restapi.StaticToken(cfg.Token))

	me, err := rest.Me(ctx)
	if err != nil {
		return fmt.Errorf("resolve profile: %w", err)
	}
	log.Info("authenticated", zap.Int("player_id", me.ID), zap.String("username", me.Username))

	sess := session.New(ctx, me.ID, log.Named("session"))

	c, err := conn.Dial(ctx, cfg.WSURL, cfg.Token, sess, log.Named("conn"))
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer c.Close()
	sess.Inbox() <- session.Bind{Sender: c}

	resolver := catalog.NewResolver(rest, log.Named("catalog"))

	g, ctx := errgroup.WithContext(ctx)
	program := tea.NewProgram(tui.New(sess, resolver, rest, me.ID), tea.WithAltScreen(), tea.WithContext(ctx))

	g.Go(func() error {
		_, err := program.Run()
		cancel()
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		program.Quit()
		return nil
	})
	return g.Wait()
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	// Stdout belongs to the TUI.
	zcfg.OutputPaths = []string{"quizduel.log"}
	zcfg.ErrorOutputPaths = []string{"quizduel.log"}
	return zcfg.Build()
}

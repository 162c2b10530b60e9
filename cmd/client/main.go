// Command client is a headless participant: it walks to a position,
// optionally joins a room and keeps voice sessions with whoever it should
// hear until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/Office/internal/adapters/rtc"
	"github.com/dkeye/Office/internal/adapters/wsclient"
	"github.com/dkeye/Office/internal/app/agent"
	"github.com/dkeye/Office/internal/config"
	"github.com/dkeye/Office/internal/domain"
)

const statusPeriod = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	v := config.New()
	fs := pflag.NewFlagSet("client", pflag.ExitOnError)
	fs.String("server", v.GetString("client.server_url"), "signaling websocket url")
	fs.String("name", v.GetString("client.name"), "display name")
	fs.Float64("x", 0, "initial x position")
	fs.Float64("y", 0, "initial y position")
	fs.String("room", "", "room to join after connecting")
	fs.StringSlice("ice", v.GetStringSlice("client.ice_servers"), "STUN/TURN urls")
	fs.Bool("debug", false, "debug logging")
	_ = fs.Parse(os.Args[1:])

	for key, flag := range map[string]string{
		"client.server_url":  "server",
		"client.name":        "name",
		"client.x":           "x",
		"client.y":           "y",
		"client.room":        "room",
		"client.ice_servers": "ice",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			log.Fatal().Err(err).Str("flag", flag).Msg("bind flag")
		}
	}
	if debug, _ := fs.GetBool("debug"); debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.LoadWith(v)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	place := fs.Changed("x") || fs.Changed("y")

	if err := run(ctx, cfg, place); err != nil {
		log.Error().Err(err).Msg("client stopped")
		os.Exit(1)
	}
	log.Info().Msg("client exited")
}

func run(ctx context.Context, cfg *config.Config, place bool) error {
	conn, err := wsclient.Dial(ctx, cfg.Client.ServerURL, cfg.Client.Name, log.Logger)
	if err != nil {
		return err
	}
	caller := rtc.NewCaller(rtc.WebRTCConfig(cfg.Client.ICEServers), conn, log.Logger)
	conn.OnSignal(caller.HandleSignal)

	media, err := rtc.NewLocalAudio(fmt.Sprintf("participant-%s", conn.ID()))
	if err != nil {
		conn.Close()
		return err
	}
	ag, err := agent.New(conn.ID(), conn.Layout(), conn, caller, media, conn.Snapshots(), log.Logger, agent.Options{
		ReconcilePeriod: cfg.Client.ReconcilePeriod,
		GainPeriod:      cfg.Client.GainPeriod,
	})
	if err != nil {
		conn.Close()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return conn.Run(gctx) })
	g.Go(func() error {
		defer caller.Close()
		return ag.Run(gctx)
	})
	g.Go(func() error {
		if place {
			pos := domain.Position{X: cfg.Client.X, Y: cfg.Client.Y}
			if err := ag.Move(gctx, pos); err != nil {
				return err
			}
		}
		if cfg.Client.Room != "" {
			if err := ag.JoinRoom(gctx, domain.RoomID(cfg.Client.Room)); err != nil {
				log.Warn().Err(err).Str("module", "cmd.client").Str("room", cfg.Client.Room).Msg("join failed")
			}
		}
		return report(gctx, ag)
	})

	err = g.Wait()
	// An interrupt closes the socket first, so the agent may report the
	// closed snapshot stream instead of the cancellation.
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, agent.ErrStopped) {
		return nil
	}
	return err
}

func report(ctx context.Context, ag *agent.Agent) error {
	t := time.NewTicker(statusPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			st, err := ag.Status(ctx)
			if err != nil {
				return nil
			}
			ev := log.Info().
				Str("module", "cmd.client").
				Str("room", string(st.Local.RoomID)).
				Float64("x", st.Local.Position.X).
				Float64("y", st.Local.Position.Y).
				Uint64("version", st.Version).
				Int("sessions", len(st.Sessions))
			audible := 0
			for _, s := range st.Sessions {
				if s.Gain > 0 {
					audible++
				}
			}
			ev.Int("audible", audible).Msg("status")
		}
	}
}

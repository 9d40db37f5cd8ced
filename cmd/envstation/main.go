package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"codeberg.org/mutker/envstation/internal/config"
	"codeberg.org/mutker/envstation/internal/display"
	"codeberg.org/mutker/envstation/internal/errors"
	"codeberg.org/mutker/envstation/internal/feed"
	"codeberg.org/mutker/envstation/internal/journal"
	"codeberg.org/mutker/envstation/internal/logger"
	"codeberg.org/mutker/envstation/internal/observability/metrics"
	"codeberg.org/mutker/envstation/internal/publish"
	"codeberg.org/mutker/envstation/internal/sensor"
	"codeberg.org/mutker/envstation/internal/station"
	"codeberg.org/mutker/envstation/internal/status"
	"codeberg.org/mutker/envstation/internal/telemetry"
	"codeberg.org/mutker/envstation/internal/transport"
)

const shutdownTimeout = 10 * time.Second

var cfg *config.Config

func init() {
	// The .env file is optional
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	var err error
	switch cfg.Mode() {
	case config.ModeLatest:
		err = runLatest(ctx)
	case config.ModeHistory:
		err = runHistory(ctx)
	default:
		err = runStations(ctx)
	}

	if err != nil {
		logger.ErrorWithCode(errors.Wrap(errors.ErrMainLoop, err)).Msg("error in main loop")
		os.Exit(1)
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func runStations(ctx context.Context) error {
	metrics.Init()

	rec, err := journal.NewService(journal.Config{DBPath: cfg.JournalDB, Enabled: cfg.Journal})
	if err != nil {
		return errors.Wrap(errors.ErrInitApp, err)
	}
	defer func() {
		if err := rec.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close journal")
		}
	}()

	runners := make([]*station.Runner, 0, cfg.Stations)
	for i := 0; i < cfg.Stations; i++ {
		runner, err := buildStation(i, rec)
		if err != nil {
			return errors.Wrap(errors.ErrInitStation, err)
		}
		runners = append(runners, runner)
	}
	fleet := station.NewFleet(runners...)

	server, err := startStatusServer(fleet)
	if err != nil {
		return err
	}

	fleet.Run(ctx)

	if server != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("error during status server shutdown")
		}
	}

	return nil
}

func buildStation(index int, rec journal.Recorder) (*station.Runner, error) {
	tc := transport.DefaultConfig()
	tc.ChannelID = cfg.ChannelID
	tc.WriteAPIKey = cfg.WriteAPIKey
	tc.Broker = cfg.Broker
	tc.Port = cfg.Port
	tc.Username = cfg.Username
	tc.MQTTAPIKey = cfg.MQTTAPIKey
	tc.BaseURL = cfg.APIBaseURL

	pub, err := buildPublisher(tc)
	if err != nil {
		return nil, err
	}

	model := sensor.New(time.Now().UnixNano() + int64(index))

	return station.NewRunner(
		telemetry.NewStationIdentity(cfg.StationID),
		model,
		pub,
		rec,
		station.Config{
			Interval: time.Duration(cfg.Interval) * time.Second,
			Count:    cfg.Count,
		},
	)
}

func buildPublisher(tc transport.Config) (*publish.Publisher, error) {
	rest, err := transport.NewHTTP(tc)
	if err != nil {
		return nil, err
	}

	if cfg.RequestOnly {
		return publish.New(rest, nil, 0), nil
	}

	broker, err := transport.NewMQTT(tc)
	if err != nil {
		return nil, err
	}

	return publish.New(broker, rest, 0), nil
}

func startStatusServer(fleet *station.Fleet) (*status.Server, error) {
	if !cfg.Status {
		return nil, nil
	}

	server, err := status.NewServer(status.Config{Enabled: true, Addr: cfg.StatusAddr}, fleet)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInitApp, err)
	}

	go func() {
		if err := server.Listen(); err != nil {
			logger.Error().Err(err).Msg("status server stopped")
		}
	}()
	logger.Info().Str("addr", cfg.StatusAddr).Msg("Status server listening")

	return server, nil
}

func feedClient() (*feed.Client, error) {
	fc := feed.DefaultConfig()
	fc.ChannelID = cfg.ChannelID
	fc.ReadAPIKey = cfg.ReadAPIKey
	fc.BaseURL = cfg.APIBaseURL

	return feed.New(fc)
}

func runLatest(ctx context.Context) error {
	client, err := feedClient()
	if err != nil {
		return err
	}

	for {
		entry, err := client.Latest(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if cfg.Refresh > 0 {
			fmt.Print("\033c")
		}
		display.RenderLatest(os.Stdout, entry)

		if cfg.Refresh <= 0 {
			return nil
		}

		fmt.Printf("\nRefreshing in %d seconds... (Press Ctrl+C to exit)\n", cfg.Refresh)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(cfg.Refresh) * time.Second):
		}
	}
}

func runHistory(ctx context.Context) error {
	ch, err := telemetry.ChannelByKey(cfg.History)
	if err != nil {
		return err
	}

	client, err := feedClient()
	if err != nil {
		return err
	}

	window := time.Duration(cfg.Hours) * time.Hour
	result, err := client.History(ctx, window)
	if err != nil {
		return err
	}

	display.RenderHistory(os.Stdout, result, ch, window)

	if cfg.NoPlot {
		return nil
	}

	points := result.Points(ch)
	if len(points) < 2 {
		return nil
	}

	filename := display.PlotFilename(ch, window)
	if err := display.SavePlot(points, ch, window, filename); err != nil {
		return err
	}
	fmt.Printf("\nPlot saved to %s\n", filename)

	return nil
}

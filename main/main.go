package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cigarlounge/smokesim"
	"github.com/cigarlounge/smokesim/config"
	"github.com/cigarlounge/smokesim/control"
	"github.com/cigarlounge/smokesim/datalog"
	"github.com/cigarlounge/smokesim/httpapi"
	"github.com/cigarlounge/smokesim/rand"
	"github.com/cigarlounge/smokesim/smoke"
	"github.com/cigarlounge/smokesim/telemetry"
)

func main() {
	var (
		configPath    string
		exampleConfig bool
	)
	flag.StringVar(&configPath, "Config", "", "Configuration file.")
	flag.BoolVar(
		&exampleConfig, "ExampleConfig", false,
		"Prints an example configuration file to stdout.",
	)
	flag.Parse()

	if exampleConfig {
		fmt.Print(config.ExampleConfig)
		return
	}
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "Must supply a -Config file. "+
			"Run with -ExampleConfig for the format.")
		os.Exit(1)
	}

	wrap, err := config.ReadFile(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(wrap, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(wrap *config.Wrapper, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lounge, err := buildLounge(wrap, logger)
	if err != nil {
		return err
	}

	pubs, err := buildPublishers(&wrap.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() {
		for _, p := range pubs {
			p.Close()
		}
	}()

	csvLog := datalog.NewLogger(wrap.Log.Interval)
	logger.Info("simulation starting",
		"runId", csvLog.RunID,
		"smokers", wrap.Simulation.NumSmokers,
		"fanMode", wrap.Simulation.FanMode,
		"timeStep", wrap.Simulation.TimeStep,
		"speed", wrap.Simulation.Speed)

	// Guards the lounge against the HTTP handlers.
	var mu sync.Mutex

	if wrap.HTTP.Addr != "" {
		srv := &http.Server{
			Addr:    wrap.HTTP.Addr,
			Handler: httpapi.NewServer(lounge, &mu, logger).Router(),
		}
		go func() {
			logger.Info("http server listening", "addr", wrap.HTTP.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server failed", "error", err)
			}
		}()
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutCtx)
		}()
	}

	loop(ctx, wrap, lounge, &mu, csvLog, pubs, logger)

	if path, err := csvLog.Export(wrap.Log.CSVDir); err != nil {
		logger.Error("csv export failed", "error", err)
	} else if csvLog.Len() > 0 {
		logger.Info("csv exported", "path", path,
			"samples", csvLog.Len(),
			"peakPPM", csvLog.PeakPPM,
			"meanPPM", csvLog.MeanPPM,
			"timeToClear", csvLog.TimeToClear)
	}
	return nil
}

func buildLounge(wrap *config.Wrapper, logger *slog.Logger) (*smokesim.Lounge, error) {
	s := &wrap.Simulation

	var gen *rand.Generator
	if s.Seed != 0 {
		gen = rand.New(rand.Xorshift, s.Seed)
	} else {
		gen = rand.NewTimeSeed(rand.Xorshift)
	}

	lounge := smokesim.New(smoke.DefaultParams(), gen)
	lounge.SetNumSmokers(s.NumSmokers)
	lounge.SetSpeedMultiplier(s.Speed)
	if err := lounge.SetMode(control.Mode(s.FanMode)); err != nil {
		return nil, err
	}

	if s.LayoutFile == "" {
		return lounge, nil
	}
	layout, _ := config.LoadLayout(s.LayoutFile)
	if layout == nil {
		logger.Info("no sensor layout loaded", "path", s.LayoutFile)
		return lounge, nil
	}

	for i := range layout.Sensors {
		if _, err := lounge.AddSensorPair(layout.Sensors[i].PairConfig()); err != nil {
			return nil, fmt.Errorf("layout sensor %d: %w",
				layout.Sensors[i].PairID, err)
		}
	}
	if layout.Simulation.NumSmokers > 0 {
		lounge.SetNumSmokers(layout.Simulation.NumSmokers)
	}
	if layout.Simulation.SimulationSpeed > 0 {
		lounge.SetSpeedMultiplier(layout.Simulation.SimulationSpeed)
	}
	if layout.Simulation.FanMode != "" {
		if err := lounge.SetMode(control.Mode(layout.Simulation.FanMode)); err != nil {
			return nil, err
		}
	}
	logger.Info("sensor layout loaded",
		"path", s.LayoutFile, "pairs", len(layout.Sensors))
	return lounge, nil
}

func buildPublishers(cfg *config.TelemetryConfig, logger *slog.Logger) ([]telemetry.Publisher, error) {
	var pubs []telemetry.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		pubs = append(pubs,
			telemetry.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger))
		logger.Info("kafka publisher enabled",
			"brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	if cfg.MQTTBroker != "" {
		p, err := telemetry.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTTopic, logger)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, p)
	}
	return pubs, nil
}

// loop runs the simulation at wall-clock rate scaled by the speed
// multiplier until the context is canceled or the configured duration of
// simulated time has elapsed.
func loop(ctx context.Context, wrap *config.Wrapper, lounge *smokesim.Lounge,
	mu *sync.Mutex, csvLog *datalog.Logger, pubs []telemetry.Publisher,
	logger *slog.Logger) {

	s := &wrap.Simulation
	ticker := time.NewTicker(time.Duration(s.TimeStep * float64(time.Second)))
	defer ticker.Stop()

	sinceTelemetry := 0.0
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down", "simTime", lounge.Time)
			return
		case <-ticker.C:
		}

		dt := s.TimeStep * lounge.Speed

		mu.Lock()
		lounge.Step(dt)
		simTime := lounge.Time
		stats := lounge.Statistics()
		fanInfo := lounge.Fan.Info()
		pidStatus := lounge.PID.Status()
		tripStatus := lounge.Trip.Status()
		readings := lounge.Registry.Readings()
		mu.Unlock()

		csvLog.Update(simTime, fanInfo, stats, readings, dt)

		sinceTelemetry += dt
		if len(pubs) > 0 && sinceTelemetry >= wrap.Telemetry.Interval {
			sinceTelemetry = 0
			msgs := telemetry.Snapshot(
				csvLog.RunID, stats, fanInfo, pidStatus, tripStatus, readings)
			for _, msg := range msgs {
				for _, p := range pubs {
					p.Publish(ctx, msg)
				}
			}
		}

		if s.Duration > 0 && simTime >= s.Duration {
			logger.Info("configured duration reached", "simTime", simTime)
			return
		}
	}
}

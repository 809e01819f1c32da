// Command camera-snitch watches a video capture device and publishes its
// in-use state to MQTT with Home Assistant auto-discovery.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sweeney/camera-snitch/internal/camera"
	"github.com/sweeney/camera-snitch/internal/config"
	"github.com/sweeney/camera-snitch/internal/logger"
	"github.com/sweeney/camera-snitch/internal/logic"
	"github.com/sweeney/camera-snitch/internal/mqtt"
	"github.com/sweeney/camera-snitch/internal/status"
	"github.com/sweeney/camera-snitch/internal/web"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.New(logger.InfoLevel).Fatalw("invalid configuration", "err", err)
	}

	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatalw("fatal", "err", err)
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	detector, err := newDetector(cfg)
	if err != nil {
		return fmt.Errorf("init detector: %w", err)
	}
	defer detector.Close()

	publisher, err := mqtt.NewRealPublisher(mqtt.Options{
		Host:       cfg.MQTTHost,
		Port:       cfg.MQTTPort,
		ClientID:   "camera-snitch",
		KeepAlive:  cfg.KeepAlive,
		Throttle:   cfg.Throttle,
		DeviceID:   cfg.DeviceID,
		DeviceName: cfg.DeviceName,
	})
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Detector:   cfg.Detector,
		DeviceGlob: cfg.DeviceGlob,
		DebounceMs: cfg.Debounce.Milliseconds(),
		PollMs:     cfg.PollInterval.Milliseconds(),
		Broker:     cfg.Broker(),
		HTTPAddr:   cfg.HTTPAddr,
		DeviceID:   cfg.DeviceID,
	})

	// Best-effort: the hub rebuilds its registry from the retained
	// topic, so a failure here only delays discovery until restart.
	if err := publisher.PublishDiscovery(); err != nil {
		log.Errorw("discovery publish failed", "err", err)
	} else {
		log.Infow("published discovery", "topic", mqtt.ConfigTopic(cfg.DeviceID))
	}

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorw("http server error", "err", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infow("status server listening", "addr", cfg.HTTPAddr)
	}

	log.Infow("started",
		"detector", cfg.Detector,
		"glob", cfg.DeviceGlob,
		"debounce", cfg.Debounce,
		"broker", cfg.Broker(),
	)

	// The loop runs until the process is killed. The context exists for
	// tests; nothing cancels it here.
	ctx := context.Background()

	signals := make(chan camera.Signal)
	go pump(ctx, detector, signals, log)

	ticker := time.NewTicker(cfg.IdleTick)
	defer ticker.Stop()

	deb := logic.NewDebouncer(cfg.Debounce, time.Now())
	return runLoop(ctx, signals, publisher.Events(), ticker.C, deb, publisher, publisher, tracker, log)
}

func newDetector(cfg config.Config) (camera.Detector, error) {
	switch cfg.Detector {
	case config.DetectorPoll:
		return camera.NewPollDetector(cfg.DeviceGlob, cfg.PollInterval), nil
	default:
		return camera.NewWatchDetector(cfg.DeviceGlob)
	}
}

// pump forwards detector signals into the coordinator's channel.
// Transient detector errors are logged and retried; the pump only stops
// when ctx is cancelled.
func pump(ctx context.Context, det camera.Detector, out chan<- camera.Signal, log *logger.Logger) {
	for {
		sig, err := det.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warnw("detector error", "err", err)
			continue
		}
		select {
		case out <- sig:
		case <-ctx.Done():
			return
		}
	}
}

// runLoop is the single coordinator. It owns the debouncer and is the
// only goroutine that publishes. Broker events are consumed for logging
// only; the idle tick just wakes the loop.
func runLoop(
	ctx context.Context,
	signals <-chan camera.Signal,
	events <-chan mqtt.Event,
	tick <-chan time.Time,
	deb *logic.Debouncer,
	publisher mqtt.Publisher,
	connStatus mqtt.ConnectionStatus,
	tracker *status.Tracker,
	log *logger.Logger,
) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case sig := <-signals:
			tr, ok := deb.Observe(sig.State, sig.At)
			if !ok {
				log.Debugw("signal absorbed", "candidate", sig.State, "confirmed", deb.State())
				continue
			}

			log.Infow("camera state change", "from", tr.From, "to", tr.To)
			if tracker != nil {
				tracker.RecordTransition(tr)
				if connStatus != nil {
					tracker.SetMQTTConnected(connStatus.IsConnected())
				}
			}
			if err := publisher.PublishState(tr.To); err != nil {
				// The retained topic self-heals on the next transition.
				log.Errorw("publish error", "state", tr.To, "err", err)
			}

		case ev := <-events:
			switch ev.Kind {
			case mqtt.EventConnected:
				log.Infow("broker connected")
				if tracker != nil {
					tracker.SetMQTTConnected(true)
				}
			case mqtt.EventConnectionLost:
				log.Warnw("broker connection lost", "detail", ev.Detail)
				if tracker != nil {
					tracker.SetMQTTConnected(false)
				}
			case mqtt.EventReconnecting:
				log.Infow("broker reconnecting")
			case mqtt.EventMessage:
				log.Debugw("broker message", "topic", ev.Topic, "detail", ev.Detail)
			}

		case <-tick:
			// Wakeup only. State changes only on detector signals.
		}
	}
}

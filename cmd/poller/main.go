// The poller daemon keeps the current day's prices warm and records them:
// it polls incomplete days every 15s, refreshes today on a cron schedule,
// and probes for tomorrow's publication during the evening window.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"precio-luz/internal/config"
	"precio-luz/internal/dates"
	"precio-luz/internal/fetch"
	"precio-luz/internal/logger"
	"precio-luz/internal/poller"
	"precio-luz/internal/prices"
	"precio-luz/internal/recorder"
	"precio-luz/internal/store"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Setup(logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})

	client := fetch.NewClient(fetch.Config{
		Timeout:       cfg.Fetch.Timeout,
		MaxRetries:    cfg.Fetch.MaxRetries,
		BaseDelay:     cfg.Fetch.BaseDelay,
		MaxDelay:      cfg.Fetch.MaxDelay,
		RatePerSecond: cfg.Fetch.RatePerSecond,
		Burst:         cfg.Fetch.Burst,
	}, log)
	svc := prices.NewService(cfg.Upstream.BaseURL, client, log)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Recorder.SQLitePath != "" {
		sqlRec, err := recorder.NewSQLiteRecorder(cfg.Recorder.SQLitePath, log)
		if err != nil {
			log.WithError(err).Fatal("open recorder")
		}
		rec = sqlRec
	}
	defer rec.Close()

	activeDate := store.NewActiveDate()

	ctrl := poller.New(svc, cfg.Poller.Interval, log)
	ctrl.OnUpdate = func(u poller.Update) {
		if u.Result.Data == nil || u.Meta == nil {
			return
		}
		if err := rec.RecordDay(u.Result.Data, *u.Meta); err != nil {
			log.WithError(err).WithField("date", u.Date).Error("record day")
		}
	}
	detach := ctrl.Watch(activeDate)
	defer detach()

	// Cron keeps the watched date honest across midnight and chases
	// tomorrow's publication in the evening.
	sched := cron.New(cron.WithSeconds(), cron.WithLocation(dates.Location()))
	if _, err := sched.AddFunc(cfg.Poller.RefreshCron, func() {
		activeDate.ResetToToday()
	}); err != nil {
		log.WithError(err).Fatal("register refresh schedule")
	}
	if _, err := sched.AddFunc(cfg.Poller.TomorrowCron, func() {
		avail := poller.CheckTomorrow(context.Background(), svc)
		log.WithFields(logrus.Fields{
			"date":      avail.Date,
			"available": avail.Available,
		}).Info("tomorrow availability probe")
		if avail.Available {
			activeDate.Set(avail.Date)
		}
	}); err != nil {
		log.WithError(err).Fatal("register tomorrow schedule")
	}
	sched.Start()
	defer sched.Stop()

	log.WithField("date", activeDate.Get()).Info("poller started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctrl.Stop()
}

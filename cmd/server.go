package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ironbank/config"
	"ironbank/core"
	"ironbank/handler"
	"ironbank/worker"
	"ironbank/worker/interest"
	"ironbank/worker/liquidity"

	"github.com/drone/signal"
	"github.com/facebookgo/clock"
	"github.com/fox-one/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run ironbank api server with its workers",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		var (
			events    core.IEventStore
			snapshots core.IMarketSnapshotStore
		)

		if cfg.Pool.Journal {
			database := provideDatabase()
			defer database.Close()
			events = provideEventStore(database)
			snapshots = provideMarketSnapshotStore(database)
		}

		bank := provideBank(ctx, provideEventSink(events), clock.New())

		limit, _ := cmd.Flags().GetInt("scan-limit")
		scanner := liquidity.New(bank.Pool, limit)
		accrual := interest.New(bank.Pool, snapshots)

		jobs := []struct {
			job      *worker.BaseJob
			interval string
		}{
			{&accrual.BaseJob, cfg.Worker.Interest},
			{&scanner.BaseJob, cfg.Worker.Liquidity},
		}

		for _, j := range jobs {
			interval, err := config.Duration(j.interval)
			if err != nil {
				logrus.WithError(err).Fatalln("invalid interval", j.job.Name)
			}

			if err := j.job.Schedule(ctx, interval, cfg.Worker.Location); err != nil {
				logrus.WithError(err).Fatalln("schedule", j.job.Name)
			}

			_ = j.job.Start()
			defer j.job.Stop()
		}

		svr := handler.Server{
			Version:   rootCmd.Version,
			Pool:      bank.Pool,
			Oracle:    bank.Oracle,
			Events:    events,
			Snapshots: snapshots,
			Scanner:   scanner,
		}

		port, _ := cmd.Flags().GetInt("port")
		addr := fmt.Sprintf(":%d", port)

		server := &http.Server{
			Addr:    addr,
			Handler: svr.Handler(),
		}

		ctx, quit := context.WithCancel(ctx)
		done := make(chan struct{}, 1)
		signal.WithContextFunc(ctx, func() {
			quit()

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logrus.WithError(err).Error("graceful shutdown server failed")
			}

			close(done)
		})

		logrus.Infoln("serve at", addr, "markets", len(bank.Pool.Markets()))
		err := server.ListenAndServe()
		if err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server aborted")
		}

		<-done
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 9000, "server port")
	serverCmd.Flags().Int("scan-limit", 8, "concurrent account checks of the liquidity scan")
}

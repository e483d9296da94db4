package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// IJob job的接口
type IJob interface {
	Start() error
	Run()
	Stop() error
}

type OnWork func(ctx context.Context) error

// BaseJob cron driven job, a run is skipped while the previous one is still working
type BaseJob struct {
	Name   string
	Cron   *cron.Cron
	OnWork OnWork

	ctx     context.Context
	running int32
}

// Schedule run the job every interval in location
func (job *BaseJob) Schedule(ctx context.Context, interval time.Duration, location string) error {
	l, err := time.LoadLocation(location)
	if err != nil {
		return err
	}

	job.ctx = logger.WithContext(ctx, logger.FromContext(ctx).WithField("worker", job.Name))
	job.Cron = cron.New(cron.WithLocation(l))
	_, err = job.Cron.AddFunc("@every "+interval.String(), job.Run)
	return err
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	<-job.Cron.Stop().Done()
	return nil
}

func (job *BaseJob) Run() {
	if !atomic.CompareAndSwapInt32(&job.running, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&job.running, 0)

	ctx := job.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	if err := job.OnWork(ctx); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("work failed")
	}
}

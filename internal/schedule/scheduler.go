package schedule

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type CronScheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

func NewCronScheduler() *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &CronScheduler{
		cron: cron.New(cron.WithParser(parser)),
	}
}

func (c *CronScheduler) AddJob(job Job, spec string) error {
	name := job.Name()
	logger := logutil.GetLogger(context.Background()).With(zap.String("job", name), zap.String("spec", spec))
	_, err := c.cron.AddFunc(spec, func() {
		ctx := c.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		if err := job.Run(ctx); err != nil {
			logger.Error("scheduled job failed", zap.Error(err))
			return
		}
		logger.Debug("scheduled job completed")
	})
	if err != nil {
		return err
	}
	logger.Info("scheduled job registered")
	return nil
}

func (c *CronScheduler) Start(ctx context.Context) {
	c.ctx = ctx
	c.cron.Start()
}

func (c *CronScheduler) Stop() {
	c.cron.Stop()
}

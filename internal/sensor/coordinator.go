package sensor

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-gridstat/internal/csg"
)

// Logger defines the logging interface used by the sensor platform.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ReadingWriter persists sensor readings. recorder.Client implements it.
type ReadingWriter interface {
	WriteEnergyReading(entityID string, kwh float64)
	WriteCostReading(entityID string, cost float64)
}

// fetchTimeout bounds one account's usage fetch within a poll cycle.
const fetchTimeout = time.Minute

// Coordinator polls the utility backend for one entry's accounts and
// writes the readings to the recorder.
//
// A coordinator runs one goroutine; Stop blocks until it has exited.
// Fetch failures for one account are logged and do not stop the loop
// or skip the remaining accounts.
type Coordinator struct {
	fetcher  csg.Fetcher
	writer   ReadingWriter
	accounts []string
	interval time.Duration
	logger   Logger

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewCoordinator creates a coordinator for one entry's accounts.
func NewCoordinator(fetcher csg.Fetcher, writer ReadingWriter, accounts []string, interval time.Duration, logger Logger) *Coordinator {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Coordinator{
		fetcher:  fetcher,
		writer:   writer,
		accounts: accounts,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins polling. The first refresh runs immediately, then on
// every interval tick until Stop is called.
func (c *Coordinator) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		c.refresh()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.refresh()
			case <-c.done:
				return
			}
		}
	}()
}

// Stop ends polling and waits for the loop goroutine to exit.
// Safe to call more than once.
func (c *Coordinator) Stop() {
	c.once.Do(func() { close(c.done) })
	c.wg.Wait()
}

// refresh fetches and records one reading per account.
func (c *Coordinator) refresh() {
	for _, account := range c.accounts {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		kwh, cost, err := c.fetcher.MonthUsage(ctx, account)
		cancel()
		if err != nil {
			c.logger.Warn("usage fetch failed", "account", account, "error", err)
			continue
		}

		c.writer.WriteEnergyReading(EntityID(account, KindEnergy), kwh)
		c.writer.WriteCostReading(EntityID(account, KindCost), cost)
		c.logger.Debug("reading recorded", "account", account, "kwh", kwh, "cost", cost)
	}
}

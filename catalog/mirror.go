package catalog

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// mirror writes catalog snapshots to the remote store on a single goroutine.
// A newer snapshot replaces one that has not been written yet.
type mirror struct {
	pending chan []byte
	done    chan struct{}
	write   func(ctx context.Context, data []byte) error
	timeout time.Duration
	logger  logrus.FieldLogger
}

func newMirror(write func(ctx context.Context, data []byte) error, timeout time.Duration, logger logrus.FieldLogger) *mirror {
	m := &mirror{
		pending: make(chan []byte, 1),
		done:    make(chan struct{}),
		write:   write,
		timeout: timeout,
		logger:  logger,
	}
	go m.run()
	return m
}

// push never blocks. Callers must serialize push and close.
func (m *mirror) push(data []byte) {
	for {
		select {
		case m.pending <- data:
			return
		default:
		}
		select {
		case <-m.pending:
			m.logger.Debug("superseded pending remote write")
		default:
		}
	}
}

func (m *mirror) run() {
	defer close(m.done)
	for data := range m.pending {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		if err := m.write(ctx, data); err != nil {
			m.logger.WithError(err).Error("remote write failed")
		}
		cancel()
	}
}

// close waits for the pending snapshot to be written.
func (m *mirror) close() {
	close(m.pending)
	<-m.done
}

/*
Copyright 2025 The fgp Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package interrupts exposes helpers for graceful handling of interrupt
// signals. Servers and workers registered here are shut down with a grace
// period when SIGINT or SIGTERM arrives, and the process does not exit
// until all of them have finished or the grace period runs out.
//
// The helpers here must only be used by the main goroutine of a binary;
// the registry is process-global.
package interrupts

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	gracePeriod = time.Minute

	signalsLock sync.Mutex
	// signals is swapped out by tests to trigger interrupts on demand.
	signals = func() <-chan os.Signal {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		return sig
	}

	single = struct {
		sync.Once
		ctx    context.Context
		cancel context.CancelFunc
		wg     sync.WaitGroup
	}{}
)

// setup starts the signal handler on first use.
func setup() {
	single.Do(func() {
		single.ctx, single.cancel = context.WithCancel(context.Background())
		signalsLock.Lock()
		sig := signals()
		signalsLock.Unlock()
		go func() {
			s := <-sig
			logrus.WithField("signal", s).Info("Received signal, shutting down.")
			single.cancel()
		}()
	})
}

// Context returns a context that is cancelled when an interrupt arrives.
func Context() context.Context {
	setup()
	return single.ctx
}

// Run starts work immediately in a goroutine; the work func is expected to
// stop when its context is cancelled. WaitForGracefulShutdown blocks until
// the work returns.
func Run(work func(ctx context.Context)) {
	setup()
	single.wg.Add(1)
	go func() {
		defer single.wg.Done()
		work(single.ctx)
	}()
}

// ListenAndServe runs the server and shuts it down gracefully on
// interrupt, waiting up to gracePeriod for in-flight requests.
func ListenAndServe(server *http.Server, gracePeriod time.Duration) {
	setup()
	single.wg.Add(1)
	go func() {
		defer single.wg.Done()
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Server exited.")
		}
	}()
	single.wg.Add(1)
	go func() {
		defer single.wg.Done()
		<-single.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), gracePeriod)
		defer cancel()
		logrus.Info("Server shutting down.")
		if err := server.Shutdown(ctx); err != nil {
			logrus.WithError(err).Info("Error shutting down server.")
		}
	}()
}

// TickLiteral runs work periodically until an interrupt arrives, starting
// with one immediate invocation.
func TickLiteral(work func(), interval time.Duration) {
	setup()
	single.wg.Add(1)
	go func() {
		defer single.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			work()
			select {
			case <-ticker.C:
			case <-single.ctx.Done():
				return
			}
		}
	}()
}

// WaitForGracefulShutdown blocks until all registered servers and workers
// have finished after an interrupt. Intended to be deferred from main.
func WaitForGracefulShutdown() {
	setup()
	<-single.ctx.Done()
	finished := make(chan struct{})
	go func() {
		single.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(gracePeriod):
		logrus.Error("Grace period expired, exiting without waiting for workers.")
	}
}

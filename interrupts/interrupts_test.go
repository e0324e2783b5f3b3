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

package interrupts

import (
	"context"
	"net"
	"net/http"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// interrupt allows tests to trigger an interrupt as needed.
var interrupt = make(chan os.Signal, 1)

// this init runs before the one in the code package, so the test
// implementation of the signal channel gets injected first.
func init() {
	signalsLock.Lock()
	gracePeriod = time.Second
	signals = func() <-chan os.Signal {
		return interrupt
	}
	signalsLock.Unlock()
}

// The signal handler is process-global and fires once, so this is one
// integration test that triggers the mock interrupt a single time.
func TestInterrupts(t *testing.T) {
	lock := sync.Mutex{}

	ctx := Context()
	var ctxDone bool
	ctxWatcherDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		lock.Lock()
		ctxDone = true
		lock.Unlock()
		close(ctxWatcherDone)
	}()

	var workStarted bool
	var workCancelled bool
	Run(func(ctx context.Context) {
		lock.Lock()
		workStarted = true
		lock.Unlock()

		<-ctx.Done()

		lock.Lock()
		workCancelled = true
		lock.Unlock()
	})

	var tickCount int
	TickLiteral(func() {
		lock.Lock()
		tickCount++
		lock.Unlock()
	}, 10*time.Millisecond)

	// httptest mocks expect to start the server themselves, so the server
	// under ListenAndServe gets a manually reserved port instead.
	listener, err := net.Listen("tcp", "127.0.0.1:")
	if err != nil {
		t.Fatalf("could not listen on random port: %v", err)
	}
	if err := listener.Close(); err != nil {
		t.Fatalf("could not close listener: %v", err)
	}
	var serverCalled bool
	server := &http.Server{Addr: listener.Addr().String(), Handler: http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		lock.Lock()
		serverCalled = true
		lock.Unlock()
	})}
	ListenAndServe(server, time.Second)
	time.Sleep(100 * time.Millisecond)
	if _, err := http.Get("http://" + listener.Addr().String()); err != nil {
		t.Errorf("could not reach server registered with ListenAndServe(): %v", err)
	}

	interrupt <- syscall.SIGINT
	WaitForGracefulShutdown()

	// The watcher goroutine above is not registered with the shutdown wait
	// group, so give it a bounded window to observe the cancellation.
	select {
	case <-ctxWatcherDone:
	case <-time.After(time.Second):
	}

	lock.Lock()
	defer lock.Unlock()
	assert.True(t, ctxDone, "context should be cancelled on interrupt")
	assert.True(t, workStarted, "work registered with Run() should have started")
	assert.True(t, workCancelled, "work registered with Run() should be cancelled on interrupt")
	assert.True(t, serverCalled, "server registered with ListenAndServe() should have served")
	assert.GreaterOrEqual(t, tickCount, 1, "work registered with TickLiteral() should have run")
}

/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package connectivity

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/cli/utils"
	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
)

// Probe reports whether the remote service is reachable
type Probe interface {
	Online(ctx context.Context) bool
}

// Notifier is a Probe that can push changes as they happen. Watch blocks
// until the context is done.
type Notifier interface {
	Probe
	Watch(ctx context.Context, notify func(online bool)) error
}

// StaticProbe reports a value set by the caller
type StaticProbe struct {
	mu     sync.Mutex
	online bool
}

// NewStaticProbe returns a probe reporting the given value
func NewStaticProbe(online bool) *StaticProbe {
	return &StaticProbe{online: online}
}

// Set changes the reported value
func (p *StaticProbe) Set(online bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.online = online
}

// Online implements Probe
func (p *StaticProbe) Online(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.online
}

// DefaultProbeTimeout bounds a single health check
const DefaultProbeTimeout = 2 * time.Second

// HTTPProbe is online when the health endpoint of the server answers with a
// 2xx status
type HTTPProbe struct {
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client
}

// NewHTTPProbe returns a probe for the server at the given endpoint
func NewHTTPProbe(endpoint string) *HTTPProbe {
	return &HTTPProbe{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Timeout:  DefaultProbeTimeout,
		Client:   &http.Client{},
	}
}

// Online implements Probe
func (p *HTTPProbe) Online(ctx context.Context) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint+"/health", nil)
	if err != nil {
		log.Debug("connectivity: building the health request: %s\n", err)
		return false
	}

	hc := p.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	return res.StatusCode >= 200 && res.StatusCode < 300
}

// FlagFileProbe is offline while a flag file exists. Creating or removing
// the file switches the client without touching the network.
type FlagFileProbe struct {
	Path string
	// Next is consulted when the flag file is absent. Online is reported if nil.
	Next Probe
	// WatchInterval is how often the watcher scans the directory of the flag file
	WatchInterval time.Duration
}

// NewFlagFileProbe returns a probe for the flag file at the given path
func NewFlagFileProbe(path string, next Probe) *FlagFileProbe {
	return &FlagFileProbe{Path: path, Next: next, WatchInterval: 100 * time.Millisecond}
}

func (p *FlagFileProbe) flagged() bool {
	ok, err := utils.FileExists(p.Path)
	if err != nil {
		log.Debug("connectivity: checking the offline flag: %s\n", err)
		return false
	}

	return ok
}

// Online implements Probe
func (p *FlagFileProbe) Online(ctx context.Context) bool {
	if p.flagged() {
		return false
	}
	if p.Next != nil {
		return p.Next.Online(ctx)
	}

	return true
}

// Watch implements Notifier. It reports a change as soon as the flag file
// is created or removed.
func (p *FlagFileProbe) Watch(ctx context.Context, notify func(online bool)) error {
	dir := filepath.Dir(p.Path)
	if err := utils.EnsureDir(dir); err != nil {
		return errors.Wrap(err, "preparing the flag directory")
	}

	w := watcher.New()
	w.FilterOps(watcher.Create, watcher.Remove, watcher.Rename, watcher.Move)
	if err := w.Add(dir); err != nil {
		return errors.Wrapf(err, "watching %s", dir)
	}

	interval := p.WatchInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	go func() {
		if err := w.Start(interval); err != nil {
			log.Debug("connectivity: flag watcher stopped: %s\n", err)
		}
	}()
	w.Wait()
	defer stopWatcher(w)

	target, err := filepath.Abs(p.Path)
	if err != nil {
		return errors.Wrap(err, "resolving the flag path")
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-w.Event:
			if filepath.Clean(event.Path) != target && filepath.Clean(event.OldPath) != target {
				continue
			}

			notify(p.Online(ctx))
		case err := <-w.Error:
			log.Debug("connectivity: flag watcher: %s\n", err)
		case <-w.Closed:
			return nil
		}
	}
}

// stopWatcher closes the watcher while draining its channels, which the
// watcher blocks on until they are read
func stopWatcher(w *watcher.Watcher) {
	go w.Close()

	for {
		select {
		case <-w.Event:
		case <-w.Error:
		case <-w.Closed:
			return
		}
	}
}

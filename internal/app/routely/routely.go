/*
Copyright 2025 The Routely Authors
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

// Package routely wires the gateway together: configuration, route
// table loading, the dispatcher service and route-file hot reload.
package routely

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/routely/routely/internal/pkg/config"
	"github.com/routely/routely/internal/pkg/core/dispatch"
	"github.com/routely/routely/internal/pkg/core/loaders"
	"github.com/routely/routely/internal/pkg/loggerfactory"
)

const (
	componentName = "app"
	// Base listen port; the configured server offset is added to it.
	basePort = 8290
)

// Run starts the gateway with the conf folder resolved next to the
// binary (bin/../conf) and blocks until the context is cancelled.
// Handlers for route actions must be registered on the registry before
// calling Run.
func Run(ctx context.Context, registry *dispatch.Registry) error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot determine executable path: %w", err)
	}
	binDir := filepath.Dir(exePath)
	confPath := filepath.Join(binDir, "..", "conf")
	return RunWithConf(ctx, confPath, registry)
}

// RunWithConf is Run with an explicit conf folder.
func RunWithConf(ctx context.Context, confPath string, registry *dispatch.Registry) error {
	start := time.Now()
	PrintWelcomeMessage()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deployment, err := config.InitializeConfig(confPath)
	if err != nil {
		return fmt.Errorf("initialization error: %w", err)
	}

	logger := loggerfactory.GetLogger(componentName, nil)

	listenPort := fmt.Sprintf(":%d", basePort+deployment.Server.Offset)
	service := dispatch.NewDispatcherService(listenPort, deployment.Server.Hostname, registry)
	service.SetCORSConfig(deployment.CORS)

	// The whole table is built before the server starts; a broken
	// route file means the gateway does not come up at all.
	loader := loaders.NewLoader(deployment.Routes.Prefix)
	table, err := loader.LoadURI(deployment.Routes.File)
	if err != nil {
		return err
	}
	service.SwapTable(table)

	stopWatch, err := watchRouteFile(ctx, deployment.Routes.File, loader, service, logger)
	if err != nil {
		logger.Warn("Route file hot reload disabled", slog.String("error", err.Error()))
	} else if stopWatch != nil {
		defer stopWatch()
	}

	service.StartServer(ctx)
	log.Printf("Server started in: %v", time.Since(start))

	<-ctx.Done()
	service.StopServer()
	logger.Info("HTTP server shutdown gracefully")
	return nil
}

// watchRouteFile reloads the route table when the route file changes.
// A reload builds the new table fully off to the side and publishes it
// with one atomic swap; if the new file is broken the old table stays
// in service. Remote route-file URIs are not watched.
func watchRouteFile(ctx context.Context, routeFile string, loader *loaders.Loader,
	service *dispatch.DispatcherService, logger *slog.Logger) (func(), error) {

	if strings.Contains(routeFile, "://") {
		return nil, fmt.Errorf("cannot watch non-local route file %q", routeFile)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors and config tools typically replace
	// the file rather than write it in place.
	if err := watcher.Add(filepath.Dir(routeFile)); err != nil {
		watcher.Close()
		return nil, err
	}

	fileName := filepath.Base(routeFile)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != fileName {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				logger.Info("Route file changed. Reloading ...", slog.String("file", routeFile))
				table, err := loader.LoadURI(routeFile)
				if err != nil {
					logger.Error("Route file reload failed, keeping previous table",
						slog.String("error", err.Error()))
					continue
				}
				service.SwapTable(table)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("Route file watch error", slog.String("error", err.Error()))
			}
		}
	}()

	return func() { watcher.Close() }, nil
}

func PrintWelcomeMessage() {
	colors := []string{
		"\033[31m", // Red
		"\033[33m", // Yellow
		"\033[32m", // Green
		"\033[36m", // Cyan
		"\033[34m", // Blue
		"\033[35m", // Magenta
	}

	// ANSI code to reset color to default
	reset := "\033[0m"

	art := []string{
		"",
		"                  _       _        ",
		" _ __ ___  _   _| |_ ___| |_   _  ",
		"| '__/ _ \\| | | | __/ _ \\ | | | | ",
		"| | | (_) | |_| | ||  __/ | |_| | ",
		"|_|  \\___/ \\__,_|\\__\\___|_|\\__, | ",
		"                           |___/  ",
	}
	// Iterate over each line of the ASCII art
	for _, line := range art {
		// Iterate over each character in the line
		for i, char := range line {
			// Select color based on character position to create a gradient
			color := colors[i%len(colors)]
			// Print the colored character without adding a newline
			fmt.Printf("%s%c", color, char)
		}
		// Reset color at the end of each line and add a newline
		fmt.Println(reset)
	}
}

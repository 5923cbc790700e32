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

// Package loggerfactory hands out slog loggers with per-package
// levels. Levels and the handler shape come from configuration and can
// change at runtime: components that implement LoggerUser are notified
// and re-fetch their logger.
package loggerfactory

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LoggerUser is implemented by components that hold a logger and need
// to rebuild it when the logging configuration changes.
type LoggerUser interface {
	UpdateLogger()
}

// SlogHandlerConfig selects the handler shape.
// Format: json or text. OutputPath: stdout or stderr.
type SlogHandlerConfig struct {
	Format     string `koanf:"format"`
	OutputPath string `koanf:"outputPath"`
}

// ConfigManager holds the live logging configuration and the set of
// registered logger users.
type ConfigManager struct {
	mu                   sync.RWMutex
	logLevelMap          map[string]string
	slogHandlerConfig    SlogHandlerConfig
	registeredComponents map[string]LoggerUser
}

var (
	configManagerInstance *ConfigManager
	once                  sync.Once
)

func GetConfigManager() *ConfigManager {
	once.Do(func() {
		configManagerInstance = &ConfigManager{
			logLevelMap:          make(map[string]string),
			registeredComponents: make(map[string]LoggerUser),
		}
	})
	return configManagerInstance
}

// SetLogLevelMap replaces the per-package level map and notifies every
// registered component. The key "default" sets the fallback level for
// packages without an entry.
func (cm *ConfigManager) SetLogLevelMap(levelMap map[string]string) {
	cm.mu.Lock()
	if levelMap == nil {
		levelMap = make(map[string]string)
	}
	cm.logLevelMap = levelMap
	components := cm.componentsLocked()
	cm.mu.Unlock()

	// Notify after releasing the lock; UpdateLogger calls back into
	// the manager.
	for _, component := range components {
		component.UpdateLogger()
	}
}

// SetSlogHandlerConfig replaces the handler configuration and notifies
// every registered component.
func (cm *ConfigManager) SetSlogHandlerConfig(config SlogHandlerConfig) {
	cm.mu.Lock()
	cm.slogHandlerConfig = config
	components := cm.componentsLocked()
	cm.mu.Unlock()

	for _, component := range components {
		component.UpdateLogger()
	}
}

func (cm *ConfigManager) componentsLocked() []LoggerUser {
	components := make([]LoggerUser, 0, len(cm.registeredComponents))
	for _, component := range cm.registeredComponents {
		components = append(components, component)
	}
	return components
}

// RegisterLoggerUser records a component so later configuration
// changes reach it. The first registration per package name wins.
func (cm *ConfigManager) RegisterLoggerUser(packageName string, component LoggerUser) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if _, ok := cm.registeredComponents[packageName]; !ok {
		cm.registeredComponents[packageName] = component
	}
}

func (cm *ConfigManager) levelFor(packageName string) slog.Leveler {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if levelStr, ok := cm.logLevelMap[packageName]; ok {
		return LevelFromString(levelStr)
	}
	if levelStr, ok := cm.logLevelMap["default"]; ok {
		return LevelFromString(levelStr)
	}
	return slog.LevelInfo
}

func (cm *ConfigManager) handlerConfig() SlogHandlerConfig {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.slogHandlerConfig
}

// GetSlogHandler builds a handler from the configuration. Unknown
// values fall back to text on stdout so a logger is always usable.
func GetSlogHandler(config SlogHandlerConfig) slog.Handler {
	var out io.Writer = os.Stdout
	if strings.EqualFold(config.OutputPath, "stderr") {
		out = os.Stderr
	}
	if strings.EqualFold(config.Format, "json") {
		return slog.NewJSONHandler(out, nil)
	}
	return slog.NewTextHandler(out, nil)
}

// LevelFromString converts a level name to a slog.Leveler, defaulting
// to Info for unknown names.
func LevelFromString(levelStr string) slog.Leveler {
	switch strings.ToLower(levelStr) {
	case "debug", "trace":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLogger returns a logger for the package and registers the
// component for reconfiguration if it implements LoggerUser.
func GetLogger(packageName string, component interface{}) *slog.Logger {
	cm := GetConfigManager()
	if loggerUser, ok := component.(LoggerUser); ok {
		cm.RegisterLoggerUser(packageName, loggerUser)
	}

	handler := GetSlogHandler(cm.handlerConfig())
	return slog.New(NewLevelHandler(cm.levelFor(packageName), handler)).
		With(slog.String("component", packageName))
}

// A LevelHandler wraps a Handler with an Enabled method that returns
// false for levels below a minimum.
type LevelHandler struct {
	level   slog.Leveler
	handler slog.Handler
}

// NewLevelHandler returns a LevelHandler with the given level.
// All methods except Enabled delegate to h.
func NewLevelHandler(level slog.Leveler, h slog.Handler) *LevelHandler {
	// Avoid chains of LevelHandlers.
	if lh, ok := h.(*LevelHandler); ok {
		h = lh.Handler()
	}
	return &LevelHandler{level, h}
}

func (h *LevelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LevelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler.Handle(ctx, r)
}

func (h *LevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewLevelHandler(h.level, h.handler.WithAttrs(attrs))
}

func (h *LevelHandler) WithGroup(name string) slog.Handler {
	return NewLevelHandler(h.level, h.handler.WithGroup(name))
}

// Handler returns the Handler wrapped by h.
func (h *LevelHandler) Handler() slog.Handler {
	return h.handler
}

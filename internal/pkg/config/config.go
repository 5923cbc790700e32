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

package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/routely/routely/internal/pkg/core/dispatch"
	"github.com/routely/routely/internal/pkg/loggerfactory"
)

// Config implements the common.ConfigProvider interface
type Config struct {
	koanf *koanf.Koanf
}

func ReadFile(filename string) (*Config, error) {
	k := koanf.New(".")
	f := file.Provider(filename)
	if err := k.Load(f, toml.Parser()); err != nil {
		return nil, err
	}
	cfg := &Config{
		koanf: k,
	}
	return cfg, nil
}

func (c *Config) IsSet(key string) bool {
	return c.koanf.Exists(key)
}

func (c *Config) Unmarshal(key string, out interface{}) error {
	err := c.koanf.Unmarshal(key, out)
	if err != nil {
		return fmt.Errorf("cannot unmarshal config for key %q: %v", key, err)
	}
	return nil
}

func (c *Config) MustUnmarshal(key string, out interface{}) {
	err := c.Unmarshal(key, out)
	if err != nil {
		panic(err)
	}
}

// Watch reloads the logger configuration whenever the file changes.
func (c *Config) Watch(filename string) {
	f := file.Provider(filename)

	f.Watch(func(event interface{}, err error) {
		if err != nil {
			log.Printf("watch error: %v", err)
			return
		}
		// Throw away the old config and load a fresh copy.
		log.Println("logger config changed. Reloading ...")
		newK := koanf.New(".")
		if err := newK.Load(f, toml.Parser()); err != nil {
			log.Printf("error loading new config: %v", err)
			return
		}
		c.koanf = newK

		applyLoggerConfig(c)
	})
}

// ServerConfig is the [server] section of deployment.toml.
type ServerConfig struct {
	Hostname string `koanf:"hostname"`
	Offset   int    `koanf:"offset"`
}

// RoutesConfig is the [routes] section of deployment.toml: where the
// route-definition file lives and the servlet prefix prepended to
// every declared path.
type RoutesConfig struct {
	File   string `koanf:"file"`
	Prefix string `koanf:"prefix"`
}

// DeploymentConfig is everything the gateway needs to start serving.
type DeploymentConfig struct {
	Server ServerConfig
	Routes RoutesConfig
	CORS   dispatch.CORSConfig
}

// InitializeConfig reads LoggerConfig.toml and deployment.toml from
// the conf folder. The logger configuration is applied immediately
// and watched for changes; the deployment configuration is validated
// and returned.
func InitializeConfig(confFolderPath string) (*DeploymentConfig, error) {
	loggerPath := filepath.Join(confFolderPath, "LoggerConfig.toml")
	loggerCfg, err := ReadFile(loggerPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}
	applyLoggerConfig(loggerCfg)
	loggerCfg.Watch(loggerPath)

	deployPath := filepath.Join(confFolderPath, "deployment.toml")
	deployCfg, err := ReadFile(deployPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}
	return parseDeploymentConfig(deployCfg)
}

func applyLoggerConfig(cfg *Config) {
	var levelMap map[string]string
	var slogHandlerConfig loggerfactory.SlogHandlerConfig

	if cfg.IsSet("logger") {
		cfg.MustUnmarshal("logger.handler", &slogHandlerConfig)
		cfg.MustUnmarshal("logger.level.packages", &levelMap)
	}

	cm := loggerfactory.GetConfigManager()
	cm.SetLogLevelMap(levelMap)
	cm.SetSlogHandlerConfig(slogHandlerConfig)
}

func parseDeploymentConfig(cfg *Config) (*DeploymentConfig, error) {
	deployment := &DeploymentConfig{
		CORS: dispatch.DefaultCORSConfig(),
	}

	if !cfg.IsSet("server") {
		return nil, fmt.Errorf("server configuration section is required in deployment.toml")
	}
	if err := cfg.Unmarshal("server", &deployment.Server); err != nil {
		return nil, err
	}
	if deployment.Server.Hostname == "" {
		return nil, fmt.Errorf("server hostname cannot be empty")
	}
	if deployment.Server.Offset < 0 {
		return nil, fmt.Errorf("server offset must be non-negative, got: %d", deployment.Server.Offset)
	}

	if !cfg.IsSet("routes") {
		return nil, fmt.Errorf("routes configuration section is required in deployment.toml")
	}
	if err := cfg.Unmarshal("routes", &deployment.Routes); err != nil {
		return nil, err
	}
	if deployment.Routes.File == "" {
		return nil, fmt.Errorf("routes file cannot be empty")
	}

	if cfg.IsSet("cors") {
		if err := cfg.Unmarshal("cors", &deployment.CORS); err != nil {
			return nil, err
		}
	}

	return deployment, nil
}

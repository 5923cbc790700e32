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

package dispatch

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSConfig carries the gateway's CORS settings, read from the
// deployment configuration.
type CORSConfig struct {
	Enabled          bool     `koanf:"enabled"`
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	ExposeHeaders    []string `koanf:"expose_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

// DefaultCORSConfig returns a disabled configuration with permissive
// values to start from when enabled.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled:          false,
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{},
		AllowCredentials: false,
		MaxAge:           86400,
	}
}

// CORSMiddleware applies CORS headers based on the provided
// configuration using the rs/cors package. Preflight OPTIONS requests
// are answered by the middleware and never reach the route table.
func CORSMiddleware(handler http.Handler, config CORSConfig) http.Handler {
	if !config.Enabled {
		return handler
	}

	options := cors.Options{
		AllowedOrigins:   config.AllowOrigins,
		AllowedMethods:   config.AllowMethods,
		AllowedHeaders:   config.AllowHeaders,
		ExposedHeaders:   config.ExposeHeaders,
		AllowCredentials: config.AllowCredentials,
		MaxAge:           config.MaxAge,
	}
	return cors.New(options).Handler(handler)
}

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

package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/routely/routely/internal/pkg/core/dispatch"
	"github.com/routely/routely/internal/pkg/core/loaders"
	"github.com/routely/routely/internal/pkg/core/routing"
)

// SampleRouteSource is a small route file exercising every declaration
// shape: static paths, default and constrained parameters and static
// action arguments.
const SampleRouteSource = `# sample routes
GET    /home                            PageController.showPage(id:'home')
GET    /page/{id}                       PageController.showPage
POST   /customer/{<[0-9]+>customerid}   CustomerController.createCustomer
`

// MustLoadTable builds a route table from source, panicking on error.
// Intended for test fixtures only.
func MustLoadTable(prefix string, source string) *routing.RouteTable {
	table, err := loaders.NewLoader(prefix).Load("test-routes.conf", source)
	if err != nil {
		panic(err)
	}
	return table
}

// EchoHandler responds with the matched action reference and the
// extracted parameters as JSON, so tests can assert on the full
// dispatch outcome.
func EchoHandler() dispatch.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, match *routing.MatchResult) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"action": match.Route.Action.Ref(),
			"args":   match.Route.Action.StaticArgs,
			"params": match.Params,
		})
	}
}

// NewDispatcher builds a registry-backed dispatcher preloaded with the
// given table and an echo handler for every action it references.
func NewDispatcher(table *routing.RouteTable) *dispatch.DispatcherService {
	registry := dispatch.NewRegistry()
	seen := make(map[string]bool)
	for _, route := range table.Routes() {
		ref := route.Action.Ref()
		if seen[ref] {
			continue
		}
		seen[ref] = true
		if err := registry.Register(route.Action.Controller, route.Action.Method, EchoHandler()); err != nil {
			panic(err)
		}
	}
	service := dispatch.NewDispatcherService(":0", "localhost", registry)
	service.SwapTable(table)
	return service
}

// NewRequestRecorder runs one request through the full handler chain
// and returns the recorder.
func NewRequestRecorder(service *dispatch.DispatcherService, method, target string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	service.Handler().ServeHTTP(recorder, httptest.NewRequest(method, target, nil))
	return recorder
}

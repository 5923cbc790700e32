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
	"fmt"
	"net/http"
	"sync"

	"github.com/routely/routely/internal/pkg/core/routing"
)

// HandlerFunc handles one matched request. The match result carries
// the winning route, its action descriptor and the extracted path
// parameters.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, match *routing.MatchResult)

// Registry maps (controller, method) references to handlers. It
// replaces by-name reflection lookup: handlers are registered
// explicitly at startup and the dispatcher resolves each matched
// route's action descriptor against it.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

// Register binds a handler to a controller/method reference.
// Registering the same reference twice is an error.
func (reg *Registry) Register(controller, method string, handler HandlerFunc) error {
	if controller == "" || method == "" || handler == nil {
		return fmt.Errorf("registry: controller, method and handler are all required")
	}
	key := controller + "." + method

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.handlers[key]; exists {
		return fmt.Errorf("registry: handler already registered for %s", key)
	}
	reg.handlers[key] = handler
	return nil
}

// Lookup resolves an action descriptor to its registered handler.
func (reg *Registry) Lookup(action routing.ActionDescriptor) (HandlerFunc, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	handler, ok := reg.handlers[action.Ref()]
	return handler, ok
}

// Len returns the number of registered handlers.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.handlers)
}

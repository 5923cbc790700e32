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

package routing

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoRoute is the sentinel matched by errors.Is for routing misses.
// The concrete error returned by Match is always a *NoRouteError.
var ErrNoRoute = errors.New("no route found")

// NoRouteError signals that no declared route accepts the request.
// It is a normal, recoverable outcome — callers typically map it to
// HTTP 404 — and carries the offending method and path for
// diagnostics.
type NoRouteError struct {
	Method string
	Path   string
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("no route found for method [%s] and path [%s]", e.Method, e.Path)
}

func (e *NoRouteError) Is(target error) bool {
	return target == ErrNoRoute
}

// PathParam is one extracted path parameter. MatchResult keeps
// parameters both as an ordered list (segment order) and as a map.
type PathParam struct {
	Name  string
	Value string
}

// MatchResult is a successful resolution of one request to exactly one
// route. Produced fresh per request and owned by the caller; the
// engine retains nothing.
type MatchResult struct {
	Route *CompiledRoute
	// Params maps parameter name to its percent-decoded captured value.
	Params map[string]string
	// ParamList holds the same values in segment order.
	ParamList []PathParam
	// RawMethod and RawPath echo the request exactly as received.
	RawMethod string
	RawPath   string
}

// Match resolves a request method and path against the table. Routes
// are scanned in declaration order and the first full match wins, even
// if a later route would also match; a more general route declared
// first intentionally shadows more specific ones. On a miss the
// returned error is a *NoRouteError.
//
// The table is never written to, so Match may be called from any
// number of goroutines concurrently.
func (t *RouteTable) Match(method, path string) (*MatchResult, error) {
	normalized := strings.ToUpper(strings.TrimSpace(method))
	tokens := SplitPath(path)

	for i := range t.routes {
		route := &t.routes[i]
		if route.Method != normalized {
			continue
		}
		if len(route.Segments) != len(tokens) {
			continue
		}
		if result := evaluate(route, tokens, method, path); result != nil {
			return result, nil
		}
	}
	return nil, &NoRouteError{Method: method, Path: path}
}

// evaluate tests one candidate route segment by segment, short-
// circuiting on the first failure, and assembles the result on a full
// match.
func evaluate(route *CompiledRoute, tokens []string, rawMethod, rawPath string) *MatchResult {
	for i := range route.Segments {
		if !route.Segments[i].matches(tokens[i]) {
			return nil
		}
	}

	result := &MatchResult{
		Route:     route,
		Params:    make(map[string]string),
		RawMethod: rawMethod,
		RawPath:   rawPath,
	}
	for i := range route.Segments {
		seg := &route.Segments[i]
		if seg.Kind != SegmentParam {
			continue
		}
		value := decodeSegment(tokens[i])
		result.Params[seg.Name] = value
		result.ParamList = append(result.ParamList, PathParam{Name: seg.Name, Value: value})
	}
	return result
}

// decodeSegment percent-decodes a captured path token. A token that is
// not valid percent-encoding is passed through verbatim rather than
// failing the whole match.
func decodeSegment(token string) string {
	decoded, err := url.PathUnescape(token)
	if err != nil {
		return token
	}
	return decoded
}

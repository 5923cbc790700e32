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

// Package routing implements the route matching core: path template
// compilation, the immutable ordered route table and the per-request
// matching engine. Route tables are built once by the loaders package
// and are read-only afterwards, so matching is safe from any number
// of concurrent goroutines.
package routing

import (
	"strings"
)

// SupportedMethods is the fixed verb set accepted in route declarations.
// Method tokens in route files are case-insensitive and normalized to
// these uppercase forms.
var SupportedMethods = map[string]bool{
	"GET":     true,
	"HEAD":    true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"OPTIONS": true,
}

// IsSupportedMethod reports whether the (already normalized) verb is part
// of the supported set.
func IsSupportedMethod(method string) bool {
	return SupportedMethods[method]
}

// ActionDescriptor is the resolved target attached to a route:
// a controller identifier, a method name on that controller and the
// static arguments declared inline in the route line. The matching
// engine never inspects it; resolution to a callable is the
// dispatcher's job.
type ActionDescriptor struct {
	Controller string
	Method     string
	StaticArgs map[string]string
}

// Ref returns the dotted controller/method reference, e.g.
// "PageController.showPage".
func (a ActionDescriptor) Ref() string {
	return a.Controller + "." + a.Method
}

// CompiledRoute is one route declaration compiled into matchable form.
// Owned exclusively by a RouteTable and immutable after construction.
type CompiledRoute struct {
	// Method is the uppercase HTTP verb the route is declared for.
	Method string
	// Template is the full path template after prefixing, kept for
	// diagnostics and the route table dump.
	Template string
	// Segments is the compiled segment sequence, in template order.
	Segments []PathSegment
	// Action is the opaque dispatch target.
	Action ActionDescriptor
	// Order is the declaration order among successfully parsed routes,
	// starting at 0. It is the sole priority key.
	Order int
}

// ParamNames returns the route's parameter names in segment order.
func (r *CompiledRoute) ParamNames() []string {
	var names []string
	for _, seg := range r.Segments {
		if seg.Kind == SegmentParam {
			names = append(names, seg.Name)
		}
	}
	return names
}

// SplitPath breaks a request path or path template into its
// slash-delimited segments. The root path "/" yields no segments.
func SplitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

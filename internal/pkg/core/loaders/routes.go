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

// Package loaders turns route-definition sources into immutable route
// tables. The source grammar is one route per non-comment, non-blank
// line:
//
//	METHOD  PATH_TEMPLATE  ACTION
//
// e.g.
//
//	GET    /home                            PageController.showPage(id:'home')
//	GET    /page/{id}                       PageController.showPage
//	POST   /customer/{<[0-9]+>customerid}   CustomerController.createCustomer
//
// Loading is all-or-nothing: the first broken line aborts the whole
// load and no partial table is ever returned.
package loaders

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/routely/routely/internal/pkg/core/common"
	"github.com/routely/routely/internal/pkg/core/routing"
	"github.com/routely/routely/internal/pkg/loggerfactory"
)

const (
	componentName = "loaders"
	commentMarker = "#"
)

// LoadError is the fatal error kind for route loading. Any syntax
// violation aborts table construction entirely; the error pinpoints
// the offending line.
type LoadError struct {
	Position common.Position
	Line     string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot parse route file %s line %d: %v",
		e.Position.FileName, e.Position.LineNo, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader parses route-definition sources into route tables. The
// servlet prefix, when non-empty, is prepended to every declared path
// before compilation.
type Loader struct {
	prefix string
	logger *slog.Logger
	upper  cases.Caser
}

func NewLoader(prefix string) *Loader {
	l := &Loader{
		prefix: prefix,
		upper:  cases.Upper(language.Und),
	}
	l.logger = loggerfactory.GetLogger(componentName, l)
	return l
}

func (l *Loader) UpdateLogger() {
	l.logger = loggerfactory.GetLogger(componentName, l)
}

// Load parses the full text of a route-definition source and builds
// the route table. fileName is used for error reporting only.
// Declaration order is assigned by position among successfully parsed
// routes, so comments and blank lines do not perturb it.
func (l *Loader) Load(fileName string, source string) (*routing.RouteTable, error) {
	var routes []routing.CompiledRoute

	scanner := bufio.NewScanner(strings.NewReader(source))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}

		route, err := l.parseLine(line)
		if err != nil {
			return nil, &LoadError{
				Position: common.Position{FileName: fileName, LineNo: lineNo},
				Line:     line,
				Err:      err,
			}
		}
		route.Order = len(routes)
		routes = append(routes, route)
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{
			Position: common.Position{FileName: fileName, LineNo: lineNo},
			Err:      fmt.Errorf("cannot read source: %w", err),
		}
	}

	table := routing.NewRouteTable(l.prefix, routes)
	l.logger.Info("Loaded route table",
		slog.String("file", fileName),
		slog.Int("routes", table.Len()))
	for _, warning := range table.ShadowedRoutes() {
		l.logger.Warn("Route is unreachable", slog.String("detail", warning.String()))
	}
	return table, nil
}

// LoadURI reads the route-definition source behind the given URI (see
// ReadRouteSource) and loads it.
func (l *Loader) LoadURI(uri string) (*routing.RouteTable, error) {
	source, err := ReadRouteSource(uri)
	if err != nil {
		return nil, &LoadError{
			Position: common.Position{FileName: uri},
			Err:      fmt.Errorf("cannot read route file: %w", err),
		}
	}
	return l.Load(uri, source)
}

// parseLine compiles one `METHOD PATH ACTION` declaration.
func (l *Loader) parseLine(line string) (routing.CompiledRoute, error) {
	methodToken, rest := splitToken(line)
	pathToken, actionToken := splitToken(rest)
	if methodToken == "" || pathToken == "" || actionToken == "" {
		return routing.CompiledRoute{}, fmt.Errorf("expected 'METHOD PATH ACTION', got %q", line)
	}

	method := l.upper.String(methodToken)
	if !routing.IsSupportedMethod(method) {
		return routing.CompiledRoute{}, fmt.Errorf("unsupported HTTP method %q", methodToken)
	}

	if !strings.HasPrefix(pathToken, "/") {
		return routing.CompiledRoute{}, fmt.Errorf("path %q must begin with '/'", pathToken)
	}
	template := joinPrefix(l.prefix, pathToken)
	segments, err := routing.CompilePath(template)
	if err != nil {
		return routing.CompiledRoute{}, err
	}

	action, err := parseAction(actionToken)
	if err != nil {
		return routing.CompiledRoute{}, err
	}

	return routing.CompiledRoute{
		Method:   method,
		Template: template,
		Segments: segments,
		Action:   action,
	}, nil
}

// splitToken cuts off the first whitespace-delimited token and returns
// it with the trimmed remainder.
func splitToken(s string) (token, rest string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}

// joinPrefix prepends the servlet prefix to a declared path, keeping
// exactly one slash at the seam.
func joinPrefix(prefix, path string) string {
	if prefix == "" {
		return path
	}
	prefix = "/" + strings.Trim(prefix, "/")
	if path == "/" {
		return prefix
	}
	return prefix + "/" + strings.TrimPrefix(path, "/")
}

// parseAction parses `Controller.method` or
// `Controller.method(key:'value', ...)` into an action descriptor.
// The controller identifier may itself be dotted; the method name is
// everything after the last dot.
func parseAction(text string) (routing.ActionDescriptor, error) {
	ref := text
	var argsText string
	hasArgs := false

	if open := strings.Index(text, "("); open >= 0 {
		if !strings.HasSuffix(text, ")") {
			return routing.ActionDescriptor{}, fmt.Errorf("malformed action %q: unbalanced parentheses", text)
		}
		ref = strings.TrimSpace(text[:open])
		argsText = text[open+1 : len(text)-1]
		hasArgs = true
	}

	dot := strings.LastIndex(ref, ".")
	if dot <= 0 || dot == len(ref)-1 {
		return routing.ActionDescriptor{}, fmt.Errorf("malformed action %q: expected 'Controller.method'", text)
	}
	controller := ref[:dot]
	method := ref[dot+1:]
	if !isIdentifier(method) || !isDottedIdentifier(controller) {
		return routing.ActionDescriptor{}, fmt.Errorf("malformed action %q: expected 'Controller.method'", text)
	}

	action := routing.ActionDescriptor{Controller: controller, Method: method}
	if hasArgs {
		args, err := parseStaticArgs(argsText)
		if err != nil {
			return routing.ActionDescriptor{}, fmt.Errorf("malformed action %q: %w", text, err)
		}
		action.StaticArgs = args
	}
	return action, nil
}

// parseStaticArgs scans a `key:'value', key:'value'` list. Values are
// passed through unchanged as strings; type conversion belongs to the
// dispatcher.
func parseStaticArgs(text string) (map[string]string, error) {
	args := make(map[string]string)
	rest := strings.TrimSpace(text)
	if rest == "" {
		return args, nil
	}
	for {
		colon := strings.Index(rest, ":")
		if colon < 0 {
			return nil, fmt.Errorf("argument %q is not of the form key:'value'", rest)
		}
		key := strings.TrimSpace(rest[:colon])
		if !isIdentifier(key) {
			return nil, fmt.Errorf("invalid argument name %q", key)
		}
		if _, dup := args[key]; dup {
			return nil, fmt.Errorf("duplicate argument name %q", key)
		}

		rest = strings.TrimSpace(rest[colon+1:])
		if !strings.HasPrefix(rest, "'") {
			return nil, fmt.Errorf("argument %q must carry a quoted value", key)
		}
		closing := strings.Index(rest[1:], "'")
		if closing < 0 {
			return nil, fmt.Errorf("unterminated value for argument %q", key)
		}
		args[key] = rest[1 : closing+1]

		rest = strings.TrimSpace(rest[closing+2:])
		if rest == "" {
			return args, nil
		}
		if !strings.HasPrefix(rest, ",") {
			return nil, fmt.Errorf("expected ',' between arguments, got %q", rest)
		}
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return nil, fmt.Errorf("trailing ',' in argument list")
		}
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isDottedIdentifier(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if !isIdentifier(part) {
			return false
		}
	}
	return true
}

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

import "fmt"

// RouteTable is the immutable, ordered collection of compiled routes.
// It is built once at load time and never mutated afterwards;
// reconfiguration means building a new table and atomically swapping
// the reference at the owner.
type RouteTable struct {
	prefix string
	routes []CompiledRoute
}

// NewRouteTable builds a table over the given routes. The slice is
// owned by the table from this point on; routes must already be in
// declaration order with Order assigned 0..n-1.
func NewRouteTable(prefix string, routes []CompiledRoute) *RouteTable {
	return &RouteTable{prefix: prefix, routes: routes}
}

// Prefix returns the servlet prefix every template was compiled under.
func (t *RouteTable) Prefix() string {
	return t.prefix
}

// Len returns the number of routes in the table.
func (t *RouteTable) Len() int {
	return len(t.routes)
}

// Routes returns a copy of the compiled routes in declaration order.
func (t *RouteTable) Routes() []CompiledRoute {
	out := make([]CompiledRoute, len(t.routes))
	copy(out, t.routes)
	return out
}

// ShadowWarning reports a route that can never match because an
// earlier declaration covers every path it accepts. First-match-wins
// is the contract, so this is a lint condition, not an error.
type ShadowWarning struct {
	Shadowed *CompiledRoute
	By       *CompiledRoute
}

func (w ShadowWarning) String() string {
	return fmt.Sprintf("route #%d %s %s is shadowed by route #%d %s %s",
		w.Shadowed.Order, w.Shadowed.Method, w.Shadowed.Template,
		w.By.Order, w.By.Method, w.By.Template)
}

// ShadowedRoutes detects routes made unreachable by earlier
// declarations. The check is structural and conservative: a later
// route is reported only when every segment of the earlier route
// provably accepts everything the later one's segment accepts.
func (t *RouteTable) ShadowedRoutes() []ShadowWarning {
	var warnings []ShadowWarning
	for i := range t.routes {
		later := &t.routes[i]
		for j := 0; j < i; j++ {
			earlier := &t.routes[j]
			if shadows(earlier, later) {
				warnings = append(warnings, ShadowWarning{Shadowed: later, By: earlier})
				break
			}
		}
	}
	return warnings
}

// shadows reports whether every request matched by b would already be
// claimed by a.
func shadows(a, b *CompiledRoute) bool {
	if a.Method != b.Method || len(a.Segments) != len(b.Segments) {
		return false
	}
	for i := range a.Segments {
		as, bs := &a.Segments[i], &b.Segments[i]
		switch as.Kind {
		case SegmentStatic:
			// A static segment only covers the identical literal.
			if bs.Kind != SegmentStatic || as.Literal != bs.Literal {
				return false
			}
		case SegmentParam:
			switch bs.Kind {
			case SegmentStatic:
				if !as.Constraint.MatchString(bs.Literal) {
					return false
				}
			case SegmentParam:
				// Without regex-inclusion analysis, treat the default
				// constraint as covering everything and otherwise
				// require identical constraint text.
				if as.ConstraintSrc != defaultConstraint && as.ConstraintSrc != bs.ConstraintSrc {
					return false
				}
			}
		}
	}
	return true
}

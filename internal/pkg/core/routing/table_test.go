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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteTable_RoutesReturnsCopy(t *testing.T) {
	table := buildTable(t, [2]string{"GET", "/home"})

	routes := table.Routes()
	require.Len(t, routes, 1)
	routes[0].Method = "POST"

	// The table itself must be unaffected.
	_, err := table.Match("GET", "/home")
	assert.NoError(t, err)
}

func TestShadowedRoutes_GeneralParamShadowsLiteral(t *testing.T) {
	table := buildTable(t,
		[2]string{"GET", "/page/{id}"},
		[2]string{"GET", "/page/home"},
	)

	warnings := table.ShadowedRoutes()
	require.Len(t, warnings, 1)
	assert.Equal(t, 1, warnings[0].Shadowed.Order)
	assert.Equal(t, 0, warnings[0].By.Order)
	assert.Contains(t, warnings[0].String(), "shadowed")
}

func TestShadowedRoutes_NoFalsePositives(t *testing.T) {
	table := buildTable(t,
		// Literal before param: not a shadow, the param route still
		// catches every other id.
		[2]string{"GET", "/page/home"},
		[2]string{"GET", "/page/{id}"},
		// Different method.
		[2]string{"POST", "/page/home"},
		// Different segment count.
		[2]string{"GET", "/page/home/extra"},
		// Narrow constraint does not cover a non-matching literal.
		[2]string{"GET", "/customer/{<[0-9]+>id}"},
		[2]string{"GET", "/customer/profile"},
	)

	assert.Empty(t, table.ShadowedRoutes())
}

func TestShadowedRoutes_ConstraintCoversLiteral(t *testing.T) {
	table := buildTable(t,
		[2]string{"GET", "/customer/{<[0-9]+>id}"},
		[2]string{"GET", "/customer/42"},
	)

	warnings := table.ShadowedRoutes()
	require.Len(t, warnings, 1)
	assert.Equal(t, 1, warnings[0].Shadowed.Order)
}

func TestShadowedRoutes_IdenticalConstraints(t *testing.T) {
	table := buildTable(t,
		[2]string{"GET", "/customer/{<[0-9]+>id}"},
		[2]string{"GET", "/customer/{<[0-9]+>other}"},
	)

	warnings := table.ShadowedRoutes()
	require.Len(t, warnings, 1)
}

func TestCompiledRoute_ParamNames(t *testing.T) {
	segments, err := CompilePath("/shop/{category}/item/{<[0-9]+>sku}")
	require.NoError(t, err)
	route := CompiledRoute{Segments: segments}
	assert.Equal(t, []string{"category", "sku"}, route.ParamNames())
}

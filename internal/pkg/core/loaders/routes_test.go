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

package loaders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routely/routely/internal/pkg/core/routing"
)

const sampleRoutes = `
# static pages
GET     /home                            PageController.showPage(id:'home')
GET     /page/{id}                       PageController.showPage

# customers
POST    /customer/{<[0-9]+>customerid}   CustomerController.createCustomer
delete  /customer/{<[0-9]+>customerid}   CustomerController.deleteCustomer
`

func TestLoad_SampleRoutes(t *testing.T) {
	loader := NewLoader("")
	table, err := loader.Load("routes.conf", sampleRoutes)
	require.NoError(t, err)
	require.Equal(t, 4, table.Len())

	routes := table.Routes()

	assert.Equal(t, "GET", routes[0].Method)
	assert.Equal(t, "/home", routes[0].Template)
	assert.Equal(t, "PageController", routes[0].Action.Controller)
	assert.Equal(t, "showPage", routes[0].Action.Method)
	assert.Equal(t, map[string]string{"id": "home"}, routes[0].Action.StaticArgs)

	assert.Equal(t, "GET", routes[1].Method)
	assert.Nil(t, routes[1].Action.StaticArgs)

	// Method tokens are normalized to uppercase.
	assert.Equal(t, "DELETE", routes[3].Method)

	// Declaration order counts routes only, not raw line numbers.
	for i, route := range routes {
		assert.Equal(t, i, route.Order)
	}
}

func TestLoad_CommentsAndBlanksDoNotPerturbOrder(t *testing.T) {
	loader := NewLoader("")
	table, err := loader.Load("routes.conf", "# leading comment\n\nGET /a A.a\n\n# mid comment\nGET /b B.b\n")
	require.NoError(t, err)

	routes := table.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, 0, routes[0].Order)
	assert.Equal(t, "/a", routes[0].Template)
	assert.Equal(t, 1, routes[1].Order)
	assert.Equal(t, "/b", routes[1].Template)
}

func TestLoad_ServletPrefix(t *testing.T) {
	loader := NewLoader("/myservlet")
	table, err := loader.Load("routes.conf", "GET /home PageController.showPage\nGET / PageController.index\n")
	require.NoError(t, err)

	routes := table.Routes()
	assert.Equal(t, "/myservlet", table.Prefix())
	assert.Equal(t, "/myservlet/home", routes[0].Template)
	assert.Equal(t, "/myservlet", routes[1].Template)

	result, err := table.Match("GET", "/myservlet/home")
	require.NoError(t, err)
	assert.Equal(t, "showPage", result.Route.Action.Method)

	_, err = table.Match("GET", "/home")
	assert.True(t, errors.Is(err, routing.ErrNoRoute))
}

func TestLoad_StaticArgsList(t *testing.T) {
	loader := NewLoader("")
	table, err := loader.Load("routes.conf",
		"GET /report ReportController.render(format:'pdf', layout:'a4 landscape')\n")
	require.NoError(t, err)

	action := table.Routes()[0].Action
	assert.Equal(t, map[string]string{
		"format": "pdf",
		"layout": "a4 landscape",
	}, action.StaticArgs)
}

func TestLoad_DottedControllerIdentifier(t *testing.T) {
	loader := NewLoader("")
	table, err := loader.Load("routes.conf", "GET /home controllers.admin.PageController.showPage\n")
	require.NoError(t, err)

	action := table.Routes()[0].Action
	assert.Equal(t, "controllers.admin.PageController", action.Controller)
	assert.Equal(t, "showPage", action.Method)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		expected string
		lineNo   int
	}{
		{
			name:     "Unknown method",
			source:   "FETCH /home PageController.showPage\n",
			expected: "unsupported HTTP method",
			lineNo:   1,
		},
		{
			name:     "Missing action",
			source:   "GET /home\n",
			expected: "expected 'METHOD PATH ACTION'",
			lineNo:   1,
		},
		{
			name:     "Path without leading slash",
			source:   "GET home PageController.showPage\n",
			expected: "must begin with '/'",
			lineNo:   1,
		},
		{
			name:     "Unbalanced braces",
			source:   "GET /page/{id PageController.showPage\n",
			expected: "unbalanced braces",
			lineNo:   1,
		},
		{
			name:     "Duplicate parameter name",
			source:   "GET /x/{id}/{id} Foo.bar\n",
			expected: "duplicate parameter name",
			lineNo:   1,
		},
		{
			name:     "Invalid constraint regex",
			source:   "GET /x/{<[0-9>id} Foo.bar\n",
			expected: "invalid constraint",
			lineNo:   1,
		},
		{
			name:     "Action without method",
			source:   "GET /home PageController\n",
			expected: "malformed action",
			lineNo:   1,
		},
		{
			name:     "Action with trailing dot",
			source:   "GET /home PageController.\n",
			expected: "malformed action",
			lineNo:   1,
		},
		{
			name:     "Action with unbalanced parentheses",
			source:   "GET /home PageController.showPage(id:'home'\n",
			expected: "unbalanced parentheses",
			lineNo:   1,
		},
		{
			name:     "Action with unquoted value",
			source:   "GET /home PageController.showPage(id:home)\n",
			expected: "quoted value",
			lineNo:   1,
		},
		{
			name:     "Action with unterminated value",
			source:   "GET /home PageController.showPage(id:'home)\n",
			expected: "unterminated value",
			lineNo:   1,
		},
		{
			name:     "Action with duplicate argument",
			source:   "GET /home PageController.showPage(id:'a', id:'b')\n",
			expected: "duplicate argument",
			lineNo:   1,
		},
		{
			name:     "Error on a later line",
			source:   "GET /a A.a\n\n# comment\nPOST /b B\n",
			expected: "malformed action",
			lineNo:   4,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			loader := NewLoader("")
			table, err := loader.Load("routes.conf", tc.source)
			require.Error(t, err)
			// All-or-nothing: no partial table is exposed.
			assert.Nil(t, table)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, "routes.conf", loadErr.Position.FileName)
			assert.Equal(t, tc.lineNo, loadErr.Position.LineNo)
			assert.Contains(t, err.Error(), tc.expected)
		})
	}
}

func TestLoad_EmptySourceYieldsEmptyTable(t *testing.T) {
	loader := NewLoader("")
	table, err := loader.Load("routes.conf", "")
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())

	_, err = table.Match("GET", "/anything")
	assert.True(t, errors.Is(err, routing.ErrNoRoute))
}

func TestParseStaticArgs_Empty(t *testing.T) {
	loader := NewLoader("")
	table, err := loader.Load("routes.conf", "GET /home PageController.showPage()\n")
	require.NoError(t, err)
	assert.Empty(t, table.Routes()[0].Action.StaticArgs)
}

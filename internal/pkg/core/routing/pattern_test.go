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

func TestCompilePath_StaticSegments(t *testing.T) {
	segments, err := CompilePath("/customer/orders")
	require.NoError(t, err)
	require.Len(t, segments, 2)

	if segments[0].Kind != SegmentStatic || segments[0].Literal != "customer" {
		t.Errorf("expected static segment 'customer', got %+v", segments[0])
	}
	if segments[1].Kind != SegmentStatic || segments[1].Literal != "orders" {
		t.Errorf("expected static segment 'orders', got %+v", segments[1])
	}
}

func TestCompilePath_RootTemplate(t *testing.T) {
	segments, err := CompilePath("/")
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestCompilePath_DefaultParam(t *testing.T) {
	segments, err := CompilePath("/page/{id}")
	require.NoError(t, err)
	require.Len(t, segments, 2)

	param := segments[1]
	assert.Equal(t, SegmentParam, param.Kind)
	assert.Equal(t, "id", param.Name)
	assert.Equal(t, "[^/]+", param.ConstraintSrc)
	assert.True(t, param.Constraint.MatchString("home"))
	assert.False(t, param.Constraint.MatchString(""))
	assert.False(t, param.Constraint.MatchString("a/b"))
}

func TestCompilePath_ConstrainedParam(t *testing.T) {
	segments, err := CompilePath("/customer/{<[0-9]+>customerid}")
	require.NoError(t, err)
	require.Len(t, segments, 2)

	param := segments[1]
	assert.Equal(t, SegmentParam, param.Kind)
	assert.Equal(t, "customerid", param.Name)
	assert.Equal(t, "[0-9]+", param.ConstraintSrc)
	assert.True(t, param.Constraint.MatchString("42"))
	assert.False(t, param.Constraint.MatchString("abc"))
	// The constraint is anchored on both ends.
	assert.False(t, param.Constraint.MatchString("42abc"))
	assert.False(t, param.Constraint.MatchString("abc42"))
}

func TestCompilePath_ConstraintContainingGreaterThan(t *testing.T) {
	// The name starts after the last '>', so a regex may contain one.
	segments, err := CompilePath("/v/{<[a-z>]{2}>tag}")
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "tag", segments[1].Name)
	assert.True(t, segments[1].Constraint.MatchString("a>"))
}

func TestCompilePath_MixedSegments(t *testing.T) {
	segments, err := CompilePath("/shop/{category}/item/{<[0-9]+>sku}")
	require.NoError(t, err)
	require.Len(t, segments, 4)
	assert.Equal(t, SegmentStatic, segments[0].Kind)
	assert.Equal(t, SegmentParam, segments[1].Kind)
	assert.Equal(t, SegmentStatic, segments[2].Kind)
	assert.Equal(t, SegmentParam, segments[3].Kind)
}

func TestCompilePath_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		template string
		expected string
	}{
		{
			name:     "Missing leading slash",
			template: "page/{id}",
			expected: "must begin with '/'",
		},
		{
			name:     "Unbalanced opening brace",
			template: "/page/{id",
			expected: "unbalanced braces",
		},
		{
			name:     "Unbalanced closing brace",
			template: "/page/id}",
			expected: "unbalanced braces",
		},
		{
			name:     "Empty parameter name",
			template: "/page/{}",
			expected: "empty parameter name",
		},
		{
			name:     "Empty constrained parameter name",
			template: "/page/{<[0-9]+>}",
			expected: "empty parameter name",
		},
		{
			name:     "Unterminated constraint",
			template: "/page/{<[0-9]+id}",
			expected: "unterminated constraint",
		},
		{
			name:     "Empty constraint",
			template: "/page/{<>id}",
			expected: "empty constraint",
		},
		{
			name:     "Invalid constraint regex",
			template: "/page/{<[0-9>id}",
			expected: "invalid constraint",
		},
		{
			name:     "Duplicate parameter name",
			template: "/x/{id}/{id}",
			expected: "duplicate parameter name",
		},
		{
			name:     "Duplicate across constraint forms",
			template: "/x/{id}/{<[0-9]+>id}",
			expected: "duplicate parameter name",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CompilePath(tc.template)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expected)
		})
	}
}

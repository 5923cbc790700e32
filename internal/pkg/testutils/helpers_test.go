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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleFixtureDispatchesEndToEnd(t *testing.T) {
	table := MustLoadTable("", SampleRouteSource)
	require.Equal(t, 3, table.Len())

	service := NewDispatcher(table)

	recorder := NewRequestRecorder(service, "GET", "/home")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Action string            `json:"action"`
		Args   map[string]string `json:"args"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "PageController.showPage", body.Action)
	assert.Equal(t, map[string]string{"id": "home"}, body.Args)

	recorder = NewRequestRecorder(service, "POST", "/customer/7")
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = NewRequestRecorder(service, "POST", "/customer/seven")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestMustLoadTablePanicsOnBrokenSource(t *testing.T) {
	assert.Panics(t, func() {
		MustLoadTable("", "GET /x/{id}/{id} Foo.bar\n")
	})
}

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

package common

// ConfigProvider defines the interface for configuration operations
type ConfigProvider interface {
	IsSet(key string) bool
	Unmarshal(key string, out interface{}) error
	MustUnmarshal(key string, out interface{})
}

// Position locates a declaration inside a route-definition source.
// Load errors carry it so a broken line can be reported exactly.
type Position struct {
	LineNo   int
	FileName string
}

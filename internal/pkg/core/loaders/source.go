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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/c2fo/vfs/v7/vfssimple"
)

// ReadRouteSource returns the full text behind a route-file location.
// A plain path is read from the local filesystem; a URI with a scheme
// is resolved through the registered VFS backends, so route files can
// live on any store vfs knows about (file, ftp, sftp, s3, gs, ...).
func ReadRouteSource(location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("route file location is blank")
	}

	if !strings.Contains(location, "://") {
		data, err := os.ReadFile(location)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	f, err := vfssimple.NewFile(location)
	if err != nil {
		return "", fmt.Errorf("cannot resolve route file location %q: %w", location, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("cannot read route file %q: %w", location, err)
	}
	return string(data), nil
}

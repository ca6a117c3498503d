/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"godeklar/internal/scene"
)

// Formats lists the file extensions File understands.
var Formats = []string{".png", ".svg", ".pdf"}

// File writes the scene in the format named by the path's extension.
func File(sc *scene.Scene, path string, opts Options) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return PNGFile(sc, path, opts)
	case ".svg":
		return SVGFile(sc, path, opts)
	case ".pdf":
		return PDF(sc, path, opts)
	default:
		return fmt.Errorf("export %s: unsupported format %q (want one of %s)", path, ext, strings.Join(Formats, ", "))
	}
}

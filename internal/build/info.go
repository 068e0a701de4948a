// Copyright 2022 The MQLogger Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package build provides the information about the application build.
package build

import (
	"bytes"
	"fmt"
	"runtime"
	"text/tabwriter"
)

// Variables updated at build time with -ldflags "-X ...".
var (
	version   = "0.0.0-dev"           // The application version.
	revision  = "unknown"             // The commit ID of the build.
	buildTime = "1970-01-01 00:00:00" // The build time in UTC.
	buildType = "development"         // Type of the build: "development" or "release".
)

// Info contains build information.
type Info struct {
	// The application version.
	Version string

	// The commit ID of the build.
	Revision string

	// The build time in UTC (year-month-day hour:min:sec).
	BuildTime string

	// Type of the build: "development" or "release"
	BuildType string

	// The runtime platform (operating system and architecture).
	Platform string

	// The runtime Go version.
	GoVersion string
}

// GetInfo returns the build Info.
func GetInfo() Info {
	return Info{
		Version:   version,
		Revision:  revision,
		BuildTime: buildTime,
		BuildType: buildType,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		GoVersion: runtime.Version(),
	}
}

// ShortVersion return a pretty printed version summary.
func (i Info) ShortVersion() string {
	return fmt.Sprintf("MQLogger %s\n", i.Version)
}

// LongVersion returns a pretty printed build summary.
func (i Info) LongVersion() string {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 2, 1, 2, ' ', 0)

	_, _ = fmt.Fprintf(tw, "Version:     %s\n", i.Version)
	_, _ = fmt.Fprintf(tw, "Revision:    %s\n", i.Revision)
	_, _ = fmt.Fprintf(tw, "Build Time:  %s\n", i.BuildTime)
	_, _ = fmt.Fprintf(tw, "Build Type:  %s\n", i.BuildType)
	_, _ = fmt.Fprintf(tw, "Platform:    %s\n", i.Platform)

	// The last line does not need newline as it's already printed by cobra
	_, _ = fmt.Fprintf(tw, "Go Version:  %s", i.GoVersion)

	_ = tw.Flush()
	return buf.String()
}

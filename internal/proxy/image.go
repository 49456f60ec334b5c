// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"fmt"
	"runtime"
)

// imageRepo is the vendor registry for the prebuilt localproxy images.
const imageRepo = "public.ecr.aws/aws-iot-securetunneling-localproxy/ubuntu-bin"

// archToTag maps GOARCH values to the published image tags.
var archToTag = map[string]string{
	"amd64": "amd64-latest",
	"arm64": "arm64-latest",
	"arm":   "armv7-latest",
}

// ImageForArch returns the localproxy image for a GOARCH value.
func ImageForArch(arch string) (string, error) {
	tag, ok := archToTag[arch]
	if !ok {
		return "", fmt.Errorf("unsupported architecture %q: no localproxy image published", arch)
	}
	return imageRepo + ":" + tag, nil
}

// Image returns the localproxy image for the host architecture.
func Image() (string, error) {
	return ImageForArch(runtime.GOARCH)
}

//go:build tools

package hzcloud

import (
	_ "golang.org/x/tools/cmd/stringer"
)

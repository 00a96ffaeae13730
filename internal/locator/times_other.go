//go:build !linux

package locator

import (
	"os"

	"github.com/conneroisu/resrepo/internal/resource"
)

func fillTimes(os.FileInfo, *resource.Metadata) {}

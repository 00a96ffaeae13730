//go:build linux

package locator

import (
	"os"
	"syscall"
	"time"

	"github.com/conneroisu/resrepo/internal/resource"
)

func fillTimes(info os.FileInfo, md *resource.Metadata) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}

	md.AccessTime = time.Unix(int64(st.Atim.Sec), int64(st.Atim.Nsec))
	md.ChangeTime = time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
}

// pkg/utils/utils.go

package utils

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// NewProgressBar init a progress bar of total steps, the title will appears at the head of the progress bar.
// Output is discarded when quiet is set or stdout is not a terminal.
func NewProgressBar(title string, total int64, quiet bool) (*mpb.Progress, *mpb.Bar) {
	var progress *mpb.Progress
	if !quiet && isatty.IsTerminal(os.Stdout.Fd()) {
		progress = mpb.New(mpb.WithWidth(64))
	} else {
		progress = mpb.New(mpb.WithWidth(64), mpb.WithOutput(nil))
	}
	bar := progress.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(title, decor.WCSyncWidth),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done"),
		),
	)
	return progress, bar
}

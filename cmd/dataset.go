package cmd

import (
	"github.com/lehigh-university-libraries/artcaptions/internal/datasetcmd"
	"github.com/spf13/cobra"
)

func newDatasetCmds() []*cobra.Command {
	return []*cobra.Command{
		datasetcmd.NewCaptionsCmd(),
		datasetcmd.NewPreprocessCmd(),
		datasetcmd.NewCaptionOneCmd(),
		datasetcmd.NewExportCmd(),
	}
}

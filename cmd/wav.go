package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdmic/micdump/pkg/wavpcm"
)

var wavOutput string

var wavCmd = &cobra.Command{
	Use:   "wav <pcm>...",
	Short: "Wrap raw PCM in a WAV container",
	Long: `Wrap raw PCM in a WAV container (16 kHz, mono, 16-bit little-endian).

Each input <name> is written to <name>.wav unless --output is given, which is
only allowed with a single input.

Examples:
  micdump wav output.pcm
  micdump wav a.pcm b.pcm
  micdump wav output.pcm -o take1.wav`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if wavOutput != "" && len(args) > 1 {
			return fmt.Errorf("--output can only be used with a single input")
		}

		wrapper := wavpcm.NewWrapper(log, cfg.Atomic)
		for _, in := range args {
			out, err := wrapper.WrapFile(in, wavOutput)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(wavCmd)

	wavCmd.Flags().StringVarP(&wavOutput, "output", "o", "", "Output file (default: <input>.wav)")
}

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sdmic/micdump/pkg/binfile"
	"github.com/sdmic/micdump/pkg/config"
	"github.com/sdmic/micdump/pkg/hextext"
)

var (
	// hex decode flags
	decodeStream bool

	// hex encode flags
	encodeOutput   string
	encodeFirmware bool
	encodeUpper    bool
	encodeNoPrefix bool
	encodePerLine  int
	encodeGroup    int
)

var hexCmd = &cobra.Command{
	Use:   "hex",
	Short: "Hex text conversion",
	Long: `Convert between hex text dumps and raw binary.

Subcommands:
  decode  Hex text to raw bytes
  encode  Raw bytes to hex text`,
}

var hexDecodeCmd = &cobra.Command{
	Use:   "decode <input|->",
	Short: "Convert a hex text dump to raw bytes",
	Long: `Convert a hex text dump to raw bytes.

Newlines, spaces, commas and "0x" prefixes are stripped, then the remaining
digits are read two at a time. An odd trailing digit becomes a byte of its own
(0x0-0xf) unless --strict is set.

Examples:
  micdump hex decode data.txt
  micdump hex decode data.txt -o rec.pcm --swap16
  micdump hex decode - --stream -o - < data.txt > rec.pcm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := decodeHexFile(args[0], cfg)
		if err != nil {
			return err
		}

		out := statusOutput(summary.Path)
		fmt.Fprintf(out, "Conversion complete. Binary data written to %s\n", summary.Path)
		fmt.Fprintf(out, "  Bytes:       %d\n", summary.Bytes)
		fmt.Fprintf(out, "  BLAKE2b-256: %s\n", summary.Digest)
		return nil
	},
}

var hexEncodeCmd = &cobra.Command{
	Use:   "encode <input|->",
	Short: "Render raw bytes as hex text",
	Long: `Render raw bytes as hex text that "hex decode" reads back.

Examples:
  micdump hex encode output.pcm
  micdump hex encode output.pcm --firmware -o replay.txt
  micdump hex encode output.pcm --no-prefix --per-line 0 --upper`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := encodeHexFile(args[0], encodeOutput, encodeFormat())
		if err != nil {
			return err
		}

		if summary.Path != binfile.StdioPath {
			fmt.Printf("Encoded %s to %s (%d bytes of text)\n", args[0], summary.Path, summary.Bytes)
		}
		return nil
	},
}

// decodeHexFile converts input to bytes and writes them to c.DecodeOutput.
func decodeHexFile(input string, c config.Config) (binfile.Summary, error) {
	opts := []binfile.Option{binfile.WithAtomic(c.Atomic)}

	if decodeStream {
		r, err := binfile.Open(input)
		if err != nil {
			return binfile.Summary{}, err
		}
		defer r.Close()

		src := hextext.NewReader(r, c.Strict)
		if c.Swap16 {
			src = hextext.NewSwap16Reader(src)
		}
		summary, err := binfile.WriteFrom(c.DecodeOutput, src, opts...)
		if err != nil {
			return binfile.Summary{}, fmt.Errorf("failed to convert %s: %w", input, err)
		}
		return summary, nil
	}

	text, err := binfile.ReadText(input)
	if err != nil {
		return binfile.Summary{}, err
	}

	decoder := hextext.NewDecoder(
		hextext.WithLogger(log),
		hextext.WithStrict(c.Strict),
	)
	data, err := decoder.Convert(text)
	if err != nil {
		return binfile.Summary{}, fmt.Errorf("failed to decode %s: %w", input, err)
	}
	if c.Swap16 {
		data = hextext.SwapBytes16(data)
	}
	log.Debug("decoded hex text",
		zap.String("input", input),
		zap.Int("textBytes", len(text)),
		zap.Int("bytes", len(data)),
	)

	return binfile.WriteFile(c.DecodeOutput, data, opts...)
}

func encodeFormat() hextext.EncodeFormat {
	f := hextext.ByteFormat
	if encodeFirmware {
		f = hextext.FirmwareFormat
	}
	f.Upper = encodeUpper
	f.Prefix = !encodeNoPrefix
	if encodePerLine >= 0 {
		f.PerLine = encodePerLine
	}
	if encodeGroup > 0 {
		f.GroupSize = encodeGroup
	}
	return f
}

// encodeHexFile renders input as hex text into output.
func encodeHexFile(input, output string, f hextext.EncodeFormat) (binfile.Summary, error) {
	r, err := binfile.Open(input)
	if err != nil {
		return binfile.Summary{}, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return binfile.Summary{}, fmt.Errorf("failed to read %s: %w", input, err)
	}

	return binfile.WriteFile(output, []byte(hextext.Encode(data, f)), binfile.WithAtomic(cfg.Atomic))
}

func init() {
	rootCmd.AddCommand(hexCmd)
	hexCmd.AddCommand(hexDecodeCmd)
	hexCmd.AddCommand(hexEncodeCmd)

	hexDecodeCmd.Flags().StringP("output", "o", cfg.DecodeOutput, `Output file ("-" for stdout)`)
	hexDecodeCmd.Flags().Bool("strict", cfg.Strict, "Fail on an odd number of hex digits")
	hexDecodeCmd.Flags().Bool("swap16", cfg.Swap16, "Swap each byte pair (firmware dumps are big-endian, PCM is little-endian)")
	hexDecodeCmd.Flags().BoolVar(&decodeStream, "stream", false, "Decode chunk by chunk instead of loading the whole input")
	bindConfigKey(hexDecodeCmd.Flags(), "output", config.KeyDecodeOutput)
	bindConfigKey(hexDecodeCmd.Flags(), "strict", config.KeyStrict)
	bindConfigKey(hexDecodeCmd.Flags(), "swap16", config.KeySwap16)

	hexEncodeCmd.Flags().StringVarP(&encodeOutput, "output", "o", binfile.StdioPath, `Output file ("-" for stdout)`)
	hexEncodeCmd.Flags().BoolVar(&encodeFirmware, "firmware", false, "One big-endian 16-bit token per line, as the firmware prints")
	hexEncodeCmd.Flags().BoolVar(&encodeUpper, "upper", false, "Uppercase hex digits")
	hexEncodeCmd.Flags().BoolVar(&encodeNoPrefix, "no-prefix", false, `Omit the "0x" prefix`)
	hexEncodeCmd.Flags().IntVar(&encodePerLine, "per-line", -1, "Tokens per line, 0 for a single line (default: format's own)")
	hexEncodeCmd.Flags().IntVar(&encodeGroup, "group", 0, "Bytes per token (default: format's own)")
}

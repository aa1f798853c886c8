// micdump gets microphone recordings off the recorder board: it captures the
// serial console, converts the hex dump to raw PCM and wraps it as WAV.
package main

import (
	"github.com/sdmic/micdump/cmd"
)

func main() {
	cmd.Execute()
}

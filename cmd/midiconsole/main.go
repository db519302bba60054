package main

import (
	"embed"
	"fmt"
	"os"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/zurustar/midiconsole/pkg/app"
)

// .sf2 を soundfonts/ に置いてビルドすると実行ファイルに埋め込まれる
//
//go:embed soundfonts
var embeddedSoundFonts embed.FS

func main() {
	application := app.New(embeddedSoundFonts)
	if err := application.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package app

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/zurustar/midiconsole/pkg/fileutil"
	"github.com/zurustar/midiconsole/pkg/synth"
)

// SoundFontLocation represents the location of a SoundFont file.
type SoundFontLocation struct {
	// Path is the file name inside FileSystem
	Path string
	// FileSystem is the directory or embedded tree holding the file
	FileSystem fileutil.FileSystem
}

// String returns a human-readable location for logs.
func (l *SoundFontLocation) String() string {
	if l.FileSystem.IsEmbedded() {
		return "embedded:" + l.FileSystem.BasePath() + "/" + l.Path
	}
	return l.FileSystem.BasePath() + "/" + l.Path
}

// DefaultSoundFontName is preferred when a directory holds several SoundFonts.
const DefaultSoundFontName = "GeneralUser-GS.sf2"

// findSoundFont searches for a SoundFont file in the following order:
// 1. The explicitly configured path (an error if it does not exist)
// 2. Embedded soundfonts directory
// 3. Current directory
// 4. The MIDI file's directory
//
// It returns nil, nil when nothing is found.
func findSoundFont(embedFS fs.FS, explicit, midiDir string) (*SoundFontLocation, error) {
	// 1. 明示的に指定されたファイル
	if explicit != "" {
		dir, name := fileutil.SplitPath(explicit)
		fsys := fileutil.NewRealFS(dir)
		actual, err := fsys.Find(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", synth.ErrSoundFontNotFound, explicit)
		}
		return &SoundFontLocation{Path: actual, FileSystem: fsys}, nil
	}

	var candidates []fileutil.FileSystem

	// 2. 埋め込みsoundfontsディレクトリ
	if embedFS != nil {
		if efs, err := fileutil.NewEmbedFS(embedFS, "soundfonts"); err == nil {
			candidates = append(candidates, efs)
		}
	}

	// 3. カレントディレクトリ
	candidates = append(candidates, fileutil.NewRealFS("."))

	// 4. MIDIファイルのディレクトリ
	if midiDir != "" && midiDir != "." {
		candidates = append(candidates, fileutil.NewRealFS(midiDir))
	}

	for _, fsys := range candidates {
		if name := pickSoundFont(fsys); name != "" {
			return &SoundFontLocation{Path: name, FileSystem: fsys}, nil
		}
	}

	return nil, nil
}

// pickSoundFont returns DefaultSoundFontName if fsys has it, otherwise the
// first .sf2 file by name, or "".
func pickSoundFont(fsys fileutil.FileSystem) string {
	names, err := fsys.ListByExt(".sf2")
	if err != nil || len(names) == 0 {
		return ""
	}
	for _, name := range names {
		if strings.EqualFold(name, DefaultSoundFontName) {
			return name
		}
	}
	return names[0]
}

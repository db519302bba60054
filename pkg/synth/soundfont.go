package synth

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/zurustar/midiconsole/pkg/fileutil"
)

// ErrNoSoundFont is returned when no SoundFont path is given.
var ErrNoSoundFont = errors.New("SoundFont file is required for audio output")

// ErrSoundFontNotFound is returned when the SoundFont file cannot be found.
var ErrSoundFontNotFound = errors.New("SoundFont file not found")

// ReadSoundFont reads a SoundFont through fsys, which may be a directory on
// disk or an embedded file system.
func ReadSoundFont(fsys fileutil.FileSystem, path string) ([]byte, error) {
	if path == "" {
		return nil, ErrNoSoundFont
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		if fileutil.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSoundFontNotFound, path)
		}
		return nil, fmt.Errorf("failed to read SoundFont file: %w", err)
	}
	return data, nil
}

// LoadSoundFont reads and parses a SoundFont.
func LoadSoundFont(fsys fileutil.FileSystem, path string) (*meltysynth.SoundFont, error) {
	data, err := ReadSoundFont(fsys, path)
	if err != nil {
		return nil, err
	}

	soundFont, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SoundFont: %w", err)
	}

	return soundFont, nil
}

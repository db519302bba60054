// Package fileutil gives MIDI files and SoundFonts one lookup path whether they
// live on disk or in an embedded file system.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// FileSystem は実ファイルシステムと埋め込みファイルシステムを統一的に扱うインターフェース
type FileSystem interface {
	// Open はファイルを開く（大文字小文字を無視）
	Open(name string) (fs.File, error)
	// ReadFile はファイルの内容を読み込む（大文字小文字を無視）
	ReadFile(name string) ([]byte, error)
	// Find は大文字小文字を無視してファイルを検索し、実際のパスを返す
	Find(name string) (string, error)
	// ListByExt はルート直下で拡張子が一致するファイルを名前順に返す
	ListByExt(ext string) ([]string, error)
	// BasePath はベースパスを返す
	BasePath() string
	// IsEmbedded は埋め込みファイルシステムかどうかを返す
	IsEmbedded() bool
}

// DirFS はベースパス以下を fs.FS として扱う FileSystem の実装
type DirFS struct {
	fsys     fs.FS
	basePath string
	embedded bool
}

// NewRealFS は実ファイルシステム用のFileSystemを作成する
func NewRealFS(basePath string) *DirFS {
	if basePath == "" {
		basePath = "."
	}
	return &DirFS{fsys: os.DirFS(basePath), basePath: basePath}
}

// NewEmbedFS は埋め込みファイルシステム用のFileSystemを作成する
// basePath が空または "." の場合は fsys のルートを使う
func NewEmbedFS(fsys fs.FS, basePath string) (*DirFS, error) {
	sub := fsys
	if basePath != "" && basePath != "." {
		s, err := fs.Sub(fsys, basePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded directory %s: %w", basePath, err)
		}
		sub = s
	}
	return &DirFS{fsys: sub, basePath: basePath, embedded: true}, nil
}

func (d *DirFS) Open(name string) (fs.File, error) {
	actual, err := d.Find(name)
	if err != nil {
		return nil, err
	}
	return d.fsys.Open(actual)
}

func (d *DirFS) ReadFile(name string) ([]byte, error) {
	actual, err := d.Find(name)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(d.fsys, actual)
}

func (d *DirFS) Find(name string) (string, error) {
	clean := cleanPath(name)
	if !fs.ValidPath(clean) {
		return "", &fs.PathError{Op: "find", Path: name, Err: fs.ErrInvalid}
	}

	// まず直接アクセスを試みる
	if info, err := fs.Stat(d.fsys, clean); err == nil && !info.IsDir() {
		return clean, nil
	}

	// 大文字小文字を無視して検索
	return FindFileCaseInsensitiveFS(d.fsys, path.Dir(clean), path.Base(clean))
}

func (d *DirFS) ListByExt(ext string) ([]string, error) {
	entries, err := fs.ReadDir(d.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", d.basePath, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(path.Ext(entry.Name()), ext) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func (d *DirFS) BasePath() string {
	return d.basePath
}

func (d *DirFS) IsEmbedded() bool {
	return d.embedded
}

// Exists はファイルが存在するかどうかを返す
func Exists(fsys FileSystem, name string) bool {
	_, err := fsys.Find(name)
	return err == nil
}

// IsNotExist はファイルが見つからなかったエラーかどうかを返す
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// cleanPath は "/" や "\" で始まる名前やWindows形式の区切り文字を fs.FS 用に正規化する
func cleanPath(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "."
	}
	return path.Clean(name)
}

package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zurustar/midiconsole/pkg/midifile"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	MIDIPath  string        // 再生するMIDIファイルのパス
	SoundFont string        // SoundFont (.sf2) のパス（空なら自動検索）
	Port      string        // 出力先MIDIポート名（空なら使用しない）
	Charset   string        // メタイベントの文字コード（auto, shift_jis など）
	Timeout   time.Duration // タイムアウト時間（0は無制限）
	LogLevel  string        // ログレベル（debug, info, warn, error）
	LogFile   string        // ログの出力先ファイル（TUI表示中は画面に出さない）
	FPS       int           // 画面の更新レート
	Headless  bool          // ヘッドレスモード
	Paused    bool          // 一時停止状態で開始
	ShowHelp  bool          // ヘルプ表示フラグ
}

// 値を取らないフラグ（reorderArgsで次の引数を消費しない）
var boolFlags = map[string]bool{
	"-h":         true,
	"--help":     true,
	"-help":      true,
	"--headless": true,
	"-headless":  true,
	"--paused":   true,
	"-paused":    true,
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("midiconsole", flag.ContinueOnError)

	config := &Config{}

	var timeoutSec int
	fs.IntVar(&timeoutSec, "timeout", 0, "タイムアウト時間（秒）")
	fs.IntVar(&timeoutSec, "t", 0, "タイムアウト時間（秒）（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.StringVar(&config.LogFile, "log-file", "", "ログの出力先ファイル")
	fs.StringVar(&config.SoundFont, "soundfont", "", "SoundFontファイルのパス")
	fs.StringVar(&config.SoundFont, "s", "", "SoundFontファイルのパス（短縮形）")
	fs.StringVar(&config.Port, "port", "", "出力先MIDIポート名")
	fs.StringVar(&config.Port, "p", "", "出力先MIDIポート名（短縮形）")
	fs.StringVar(&config.Charset, "charset", "auto", "メタイベントの文字コード")
	fs.StringVar(&config.Charset, "c", "auto", "メタイベントの文字コード（短縮形）")
	fs.IntVar(&config.FPS, "fps", 60, "画面の更新レート")
	fs.BoolVar(&config.Headless, "headless", false, "ヘッドレスモード")
	fs.BoolVar(&config.Paused, "paused", false, "一時停止状態で開始")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 環境変数からの設定（コマンドラインフラグが優先）
	if !config.Headless {
		if headlessEnv := os.Getenv("HEADLESS"); headlessEnv != "" {
			config.Headless = headlessEnv == "1" || strings.ToLower(headlessEnv) == "true"
		}
	}

	// 環境変数からタイムアウトを取得（コマンドラインフラグが優先）
	if timeoutSec == 0 {
		if timeoutEnv := os.Getenv("TIMEOUT"); timeoutEnv != "" {
			if t, err := strconv.Atoi(timeoutEnv); err == nil && t > 0 {
				timeoutSec = t
			}
		}
	}

	// 環境変数からログレベルを取得（コマンドラインフラグが優先）
	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	if config.LogFile == "" {
		config.LogFile = os.Getenv("LOG_FILE")
	}
	if config.SoundFont == "" {
		config.SoundFont = os.Getenv("SOUNDFONT")
	}
	if config.Port == "" {
		config.Port = os.Getenv("MIDI_PORT")
	}
	if config.Charset == "auto" {
		if charsetEnv := os.Getenv("MIDI_CHARSET"); charsetEnv != "" {
			config.Charset = strings.ToLower(charsetEnv)
		}
	}

	// タイムアウトの検証
	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	// ログレベルの検証
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	// 文字コードの検証
	if _, err := midifile.LookupEncoding(config.Charset); err != nil {
		return nil, err
	}

	if config.FPS < 1 || config.FPS > 240 {
		return nil, fmt.Errorf("fps must be between 1 and 240, got %d", config.FPS)
	}

	// 位置引数（MIDIファイルのパス）
	if fs.NArg() > 0 {
		config.MIDIPath = fs.Arg(0)
	}

	return config, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			// 次の引数が値である可能性をチェック
			// （-t 5 のような場合、--fps=30 の形式は値を含む）
			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				if !boolFlags[arg] && !strings.Contains(arg, "=") {
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp() {
	fmt.Fprintf(os.Stdout, `midiconsole - Standard MIDI File player and visualizer

Usage:
  midiconsole [options] <midi-file>

Arguments:
  midi-file     再生するStandard MIDI File（フォーマット0または1）

Options:
  -s, --soundfont <path>      SoundFontファイル（省略時は自動検索）
  -p, --port <name>           出力先MIDIポート名（部分一致）
  -c, --charset <name>        メタイベントの文字コード（デフォルト: auto）
  -t, --timeout <seconds>     指定秒数後にプログラムを終了（デフォルト: 無制限）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  --log-file <path>           ログの出力先（省略時、TUI表示中はログを出さない）
  --fps <n>                   画面の更新レート（デフォルト: 60）
  --headless                  ヘッドレスモード（画面表示・音声出力なし）
  --paused                    一時停止状態で開始
  -h, --help                  このヘルプを表示

Keys:
  space                       一時停止／再開
  m                           ミュート切り替え（SoundFont使用時）
  q, ctrl+c                   終了

Environment Variables:
  HEADLESS=1                  ヘッドレスモードを有効化
  TIMEOUT=<seconds>           タイムアウト時間（秒）
  LOG_LEVEL=<level>           ログレベル
  LOG_FILE=<path>             ログの出力先ファイル
  SOUNDFONT=<path>            SoundFontファイル
  MIDI_PORT=<name>            出力先MIDIポート名
  MIDI_CHARSET=<name>         メタイベントの文字コード

Examples:
  midiconsole song.mid                     SoundFontを自動検索して再生
  midiconsole -s GeneralUser.sf2 song.mid  SoundFontを指定して再生
  midiconsole -p "Microsoft GS" song.mid   MIDIポートへ出力
  midiconsole -c shift_jis song.mid        曲名をShift_JISとして表示
  midiconsole --headless -t 30 song.mid    画面なしで30秒だけ処理
`)
}

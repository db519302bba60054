package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zurustar/midiconsole/pkg/cli"
	"github.com/zurustar/midiconsole/pkg/fileutil"
	"github.com/zurustar/midiconsole/pkg/logger"
	"github.com/zurustar/midiconsole/pkg/midifile"
	"github.com/zurustar/midiconsole/pkg/player"
	"github.com/zurustar/midiconsole/pkg/port"
	"github.com/zurustar/midiconsole/pkg/synth"
	"github.com/zurustar/midiconsole/pkg/view"
)

// ErrNoMIDIFile is returned when no MIDI file is given on the command line.
var ErrNoMIDIFile = errors.New("no MIDI file specified")

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config  *cli.Config
	log     *slog.Logger
	embedFS fs.FS
	logFile *os.File

	output *synth.Output
	sinks  []player.Sink
}

// New Applicationを作成
// embedFS は埋め込みSoundFont（soundfonts/）を含むファイルシステム（nil可）
func New(embedFS fs.FS) *Application {
	return &Application{
		embedFS: embedFS,
	}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp()
		return nil
	}
	if app.config.MIDIPath == "" {
		cli.PrintHelp()
		return ErrNoMIDIFile
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer app.closeLogFile()

	app.log.Info("Application started", "file", app.config.MIDIPath)

	// 3. MIDIファイルの読み込み
	reader, err := app.loadMIDI()
	if err != nil {
		return fmt.Errorf("failed to load MIDI file: %w", err)
	}

	// 4. 出力先（シンセサイザー、MIDIポート）の準備
	if err := app.openSinks(); err != nil {
		app.closeSinks()
		return fmt.Errorf("failed to open outputs: %w", err)
	}
	defer app.closeSinks()

	// 5. 再生
	if err := app.play(reader); err != nil {
		return err
	}

	app.log.Info("Application terminated normally")
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
// TUI表示中は画面が崩れるため、ログファイル指定がなければログを捨てる
func (app *Application) initLogger() error {
	var w io.Writer = os.Stderr
	switch {
	case app.config.LogFile != "":
		f, err := os.OpenFile(app.config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		app.logFile = f
		w = f
	case !app.config.Headless:
		w = io.Discard
	}

	if err := logger.InitLoggerWithWriter(app.config.LogLevel, w); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

func (app *Application) closeLogFile() {
	if app.logFile != nil {
		app.logFile.Close()
	}
}

// loadMIDI MIDIファイルを読み込んでReaderを作成
func (app *Application) loadMIDI() (*midifile.Reader, error) {
	dir, name := fileutil.SplitPath(app.config.MIDIPath)
	data, err := fileutil.NewRealFS(dir).ReadFile(name)
	if err != nil {
		return nil, err
	}

	opts := []midifile.Option{midifile.WithLogger(app.log)}
	enc, err := midifile.LookupEncoding(app.config.Charset)
	if err != nil {
		return nil, err
	}
	if enc != nil {
		opts = append(opts, midifile.WithTextEncoding(enc))
	}

	reader, err := midifile.NewReader(data, opts...)
	if err != nil {
		return nil, err
	}

	header := reader.Header()
	app.log.Info("MIDI file loaded",
		"format", header.Format,
		"tracks", header.TrackCount,
		"ticksPerQuarterNote", header.TicksPerQuarterNote,
		"size", len(data))
	return reader, nil
}

// openSinks 出力先を開く
// SoundFontが見つからない場合は音声なしで続行する
func (app *Application) openSinks() error {
	if app.config.Port != "" {
		p, err := port.Open(app.config.Port, app.log)
		if err != nil {
			return err
		}
		app.sinks = append(app.sinks, p)
	}

	// ヘッドレスモードでは音声を出力しない
	if app.config.Headless {
		app.log.Info("Headless mode: audio output disabled")
		return nil
	}

	midiDir, _ := fileutil.SplitPath(app.config.MIDIPath)
	loc, err := findSoundFont(app.embedFS, app.config.SoundFont, midiDir)
	if err != nil {
		return err
	}
	if loc == nil {
		app.log.Warn("No SoundFont found, audio output disabled")
		return nil
	}

	sf, err := synth.LoadSoundFont(loc.FileSystem, loc.Path)
	if err != nil {
		return err
	}
	s, err := synth.NewFromSoundFont(sf)
	if err != nil {
		return err
	}
	out, err := synth.NewOutput(nil, s)
	if err != nil {
		return err
	}
	app.output = out
	app.sinks = append(app.sinks, s)
	app.log.Info("SoundFont loaded", "location", loc.String())
	return nil
}

func (app *Application) closeSinks() {
	for _, s := range app.sinks {
		if err := s.Close(); err != nil {
			app.log.Warn("failed to close output", "error", err)
		}
	}
	app.sinks = nil
	if app.output != nil {
		if err := app.output.Close(); err != nil {
			app.log.Warn("failed to close audio output", "error", err)
		}
		app.output = nil
	}
}

// play 再生を開始し、終了まで待つ
func (app *Application) play(reader *midifile.Reader) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// タイムアウトが指定されている場合は、その時間で終了
	if app.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.config.Timeout)
		defer cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := player.New(reader, app.sinks,
		player.WithLogger(app.log),
		player.WithPaused(app.config.Paused))

	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	var err error
	if app.config.Headless {
		app.log.Info("Headless mode: playing without display")
		err = <-errCh
	} else {
		uiErr := app.runUI(ctx, p)
		// UIが閉じられたら再生も止める
		cancel()
		err = <-errCh
		if uiErr != nil {
			return uiErr
		}
	}

	var rendered sampleCounter
	if app.output != nil {
		rendered = app.output
	}
	app.log.Info("Playback summary", summary(p.Status(), rendered)...)

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		app.log.Info("Timeout reached, terminating")
	}
	return nil
}

// runUI TUIを表示し、ユーザーが終了するかctxが終わるまで待つ
// ヘッドレスでない場合、再生が終わっても画面は残す
func (app *Application) runUI(ctx context.Context, p *player.Player) error {
	model := view.NewModel(p, view.DefaultTheme(), app.config.FPS)
	if app.output != nil {
		model = model.WithMuter(app.output)
	}
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run display: %w", err)
	}
	if closedByUser(final) {
		app.log.Info("Display closed by user")
	}
	return nil
}

// closedByUser reports whether the display ended because the user quit.
func closedByUser(final tea.Model) bool {
	m, ok := final.(view.Model)
	return ok && m.Quitting()
}

type sampleCounter interface {
	SampleCount() int64
}

// summary builds the log attributes of the playback summary. out may be nil
// when no audio was played.
func summary(st player.Status, out sampleCounter) []any {
	attrs := []any{
		"tick", st.Tick,
		"position", st.Position,
		"notes", st.NoteCount,
		"events", st.EventCount,
		"finished", st.Done,
	}
	if out != nil {
		attrs = append(attrs, "samples", out.SampleCount())
	}
	return attrs
}

// Command robo-path runs the Robo Path command-queue puzzle.
//
// Commands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, the
//     WebSocket step stream and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if
//     none is reachable
//  3. "levels", "play", "solve" and "validate" work on the level set from
//     the terminal
//
// Every flag can also be set through the environment or a .env file, and
// serve can optionally open an ngrok tunnel for external access.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/robo-path/api"
	"github.com/wricardo/robo-path/game/config"
	"github.com/wricardo/robo-path/game/engine"
	"github.com/wricardo/robo-path/game/hint"
	"github.com/wricardo/robo-path/game/progress"
	"github.com/wricardo/robo-path/game/service"
	"github.com/wricardo/robo-path/game/session"
	"github.com/wricardo/robo-path/transport/mcp"
	"github.com/wricardo/robo-path/transport/websocket"
	"github.com/wricardo/robo-path/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Robo Path"
)

const (
	sessionMaxAge       = 24 * time.Hour
	sessionCleanupEvery = time.Hour
	filesystemSyncEvery = 5 * time.Second
)

// settings is the resolved configuration shared by all commands
type settings struct {
	LevelsDir       string
	Strict          bool
	ProgressBackend string
	ProgressDSN     string
	SessionsDir     string
	HintURL         string
	HintLocale      string
	HintTimeout     time.Duration
	StepInterval    time.Duration
}

func settingsFrom(cmd *cli.Command) settings {
	return settings{
		LevelsDir:       cmd.String("levels-dir"),
		Strict:          cmd.Bool("strict"),
		ProgressBackend: cmd.String("progress-backend"),
		ProgressDSN:     cmd.String("progress-dsn"),
		SessionsDir:     cmd.String("sessions-dir"),
		HintURL:         cmd.String("hint-url"),
		HintLocale:      cmd.String("hint-locale"),
		HintTimeout:     cmd.Duration("hint-timeout"),
		StepInterval:    cmd.Duration("step-interval"),
	}
}

// app holds the wired services of one process
type app struct {
	levels      *config.Manager
	sessions    *session.Manager
	persistence *session.FilePersistence
	progress    progress.Store
	service     service.GameService
	logger      *log.Logger
}

// Close flushes sessions and releases the progress store
func (a *app) Close() error {
	if err := a.sessions.SaveAllSessions(); err != nil {
		a.logger.Warn("failed to save sessions", "err", err)
	}
	return a.progress.Close()
}

// main loads .env, builds the command tree and runs it until a signal
func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("error loading .env file", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal("robo-path failed", "err", err)
	}
}

// cliApp carries the logger built in Before to every action
type cliApp struct {
	logger *log.Logger
}

func newCommand() *cli.Command {
	c := &cliApp{logger: newLogger(false)}

	return &cli.Command{
		Name:           "robo-path",
		Usage:          "program Robo across the grid one command at a time",
		Version:        Version,
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "levels-dir",
				Usage:   "directory of level files (JSON or YAML); empty uses the built-in levels",
				Sources: cli.EnvVars("LEVELS_DIR"),
			},
			&cli.BoolFlag{
				Name:    "strict",
				Usage:   "reject levels that cannot be won within their command limit",
				Sources: cli.EnvVars("STRICT"),
			},
			&cli.StringFlag{
				Name:    "progress-backend",
				Value:   progress.BackendFile,
				Usage:   "progress store: file, sqlite, postgres or memory",
				Sources: cli.EnvVars("PROGRESS_BACKEND"),
			},
			&cli.StringFlag{
				Name:    "progress-dsn",
				Usage:   "directory (file), database path (sqlite) or connection string (postgres)",
				Sources: cli.EnvVars("PROGRESS_DSN", "DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Value:   "sessions",
				Usage:   "directory for persisted sessions",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
			&cli.StringFlag{
				Name:    "hint-url",
				Usage:   "text generation endpoint for hints; empty uses the rule table",
				Sources: cli.EnvVars("HINT_URL"),
			},
			&cli.StringFlag{
				Name:    "hint-locale",
				Value:   hint.LocaleEnglish,
				Usage:   "language of messages and hints: en or id",
				Sources: cli.EnvVars("HINT_LOCALE"),
			},
			&cli.DurationFlag{
				Name:    "hint-timeout",
				Value:   hint.DefaultTimeout,
				Usage:   "timeout of one remote hint request",
				Sources: cli.EnvVars("HINT_TIMEOUT"),
			},
			&cli.DurationFlag{
				Name:    "step-interval",
				Value:   engine.DefaultStepInterval,
				Usage:   "delay between two animated steps",
				Sources: cli.EnvVars("STEP_INTERVAL"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			c.logger = newLogger(cmd.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP server with REST API, WebSocket and MCP endpoint",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
					&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
					&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
					&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
					&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
				},
				Action: c.serve,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run an MCP stdio server backed by the REST API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Value:   "http://localhost:8080",
						Usage:   "external API to reuse when reachable",
						Sources: cli.EnvVars("ROBO_API_URL"),
					},
				},
				Action: c.mcpStdio,
			},
			{
				Name:   "levels",
				Usage:  "list levels with their lock state",
				Action: c.listLevels,
			},
			{
				Name:      "play",
				Usage:     "queue directions and run them on a level",
				ArgsUsage: "DIRECTION...",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "level", Usage: "level id; 0 picks the furthest unlocked level"},
					&cli.BoolFlag{Name: "animate", Usage: "print steps one by one at the step interval"},
					&cli.StringFlag{Name: "policy", Value: string(engine.GoalAlwaysTerminal), Usage: "goal policy: always or when_satisfied"},
				},
				Action: c.play,
			},
			{
				Name:      "solve",
				Usage:     "print the shortest winning program of a level",
				ArgsUsage: "LEVEL_ID",
				Action:    c.solve,
			},
			{
				Name:      "validate",
				Usage:     "check that every level file is well formed and winnable",
				ArgsUsage: "[DIR]",
				Action:    c.validate,
			},
		},
	}
}

func newLogger(debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "robo-path",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportCaller(true)
	}
	return logger
}

// initializeServices wires the level catalog, progress store, sessions and
// the game service. A nil sink disables animated runs; an empty
// SessionsDir keeps sessions in memory only.
func initializeServices(ctx context.Context, s settings, logger *log.Logger, sink service.EventSink) (*app, error) {
	levels, err := config.NewManager(s.LevelsDir, config.WithStrict(s.Strict))
	if err != nil {
		return nil, fmt.Errorf("failed to load levels: %w", err)
	}
	logger.Debug("levels loaded", "source", levels.Source(), "count", levels.Count())

	store, err := progress.Open(ctx, progress.Config{Backend: s.ProgressBackend, DSN: s.ProgressDSN})
	if err != nil {
		return nil, fmt.Errorf("failed to open progress store: %w", err)
	}

	a := &app{levels: levels, progress: store, logger: logger}

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if s.SessionsDir != "" {
		persistence, err := session.NewFilePersistence(s.SessionsDir, levels)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		a.persistence = persistence
		sessionOpts = append(sessionOpts, session.WithPersistence(persistence))
	}
	a.sessions = session.NewManager(sessionOpts...)

	if err := a.sessions.LoadPersistedSessions(); err != nil {
		logger.Warn("failed to load persisted sessions", "err", err)
	}

	// An untyped nil keeps the rule table as the only narrator
	var narrator hint.Narrator
	if s.HintURL != "" {
		narrator = hint.NewRemoteNarrator(s.HintURL, s.HintLocale, s.HintTimeout)
	}

	svcOpts := []service.Option{
		service.WithLogger(logger),
		service.WithLocale(s.HintLocale),
		service.WithStepInterval(s.StepInterval),
	}
	if sink != nil {
		svcOpts = append(svcOpts, service.WithEventSink(sink))
	}
	a.service = service.NewGameService(a.sessions, levels, store, narrator, svcOpts...)

	return a, nil
}

// startMaintenance runs the session cleanup and filesystem sync loops
// until ctx is done
func (a *app) startMaintenance(ctx context.Context) {
	go sessionCleanupRoutine(ctx, a.sessions, a.logger)
	if a.persistence != nil {
		go filesystemSyncRoutine(ctx, a.sessions, a.persistence, a.logger)
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within sessionMaxAge
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, logger *log.Logger) {
	ticker := time.NewTicker(sessionCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				logger.Info("cleaned up expired sessions", "count", removed)
			}
		}
	}
}

// filesystemSyncRoutine drops in-memory sessions whose files were deleted
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, logger *log.Logger) {
	ticker := time.NewTicker(filesystemSyncEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			syncWithFilesystem(manager, persistence, logger)
		}
	}
}

func syncWithFilesystem(manager *session.Manager, persistence session.SessionPersistence, logger *log.Logger) int {
	pruned := 0
	for _, s := range manager.List() {
		if persistence.Exists(s.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(s.ID); err == nil {
			pruned++
			logger.Debug("pruned session from memory (file deleted)", "session", s.ID)
		}
	}
	if pruned > 0 {
		logger.Info("filesystem sync pruned orphaned sessions", "count", pruned)
	}
	return pruned
}

// newRouter mounts the API at the root and an MCP JSON-RPC endpoint at /mcp
// whose tools call back into the API at baseURL
func newRouter(apiServer http.Handler, baseURL string) *http.ServeMux {
	mcpClient := mcp.NewClient(baseURL)

	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return router
}

// serve runs the HTTP server until the context is cancelled. When ngrok is
// enabled the same router is also served through a public tunnel.
func (c *cliApp) serve(ctx context.Context, cmd *cli.Command) error {
	logger := c.logger

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	a, err := initializeServices(ctx, settingsFrom(cmd), logger, hub)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer a.Close()
	a.startMaintenance(ctx)

	addr := net.JoinHostPort(cmd.String("host"), strconv.Itoa(cmd.Int("port")))
	router := newRouter(api.NewServer(a.service, hub, logger), "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("starting", "app", AppName, "version", Version)

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening", "addr", addr)
		logger.Info("endpoints",
			"api", "http://"+addr+"/api",
			"ws", "ws://"+addr+"/ws?session=<session_id>",
			"mcp", "http://"+addr+"/mcp")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), router, logger)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "err", err)
	}

	wg.Wait()
	logger.Info("server stopped")
	return nil
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is done
func runNgrokTunnel(ctx context.Context, authToken, domain string, handler http.Handler, logger *log.Logger) {
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", "err", err)
		return
	}
	url := tun.URL()
	logger.Info("ngrok tunnel established",
		"url", url,
		"api", url+"/api",
		"ws", url+"/ws?session=<session_id>",
		"mcp", url+"/mcp")

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Error("failed to close ngrok tunnel", "err", err)
		}
	}()

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("ngrok server error", "err", err)
	}
	logger.Info("ngrok tunnel closed")
}

// mcpStdio runs an MCP stdio server. It reuses the external API at
// --api-url when it answers; otherwise it starts an internal HTTP API on a
// random loopback port and targets that.
func (c *cliApp) mcpStdio(ctx context.Context, cmd *cli.Command) error {
	logger := c.logger
	externalURL := cmd.String("api-url")

	baseURL := externalURL
	if !apiReachable(externalURL) {
		logger.Info("no external API server found, starting internal HTTP server", "checked", externalURL)

		hub := websocket.NewHub(logger)
		go hub.Run(ctx)

		a, err := initializeServices(ctx, settingsFrom(cmd), logger, hub)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer a.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		httpServer := &http.Server{Handler: api.NewServer(a.service, hub, logger)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", "err", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		logger.Info("internal HTTP server ready", "url", baseURL)
	} else {
		logger.Info("external API server found, using it for MCP", "url", externalURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiReachable probes the health endpoint of a running server
func apiReachable(baseURL string) bool {
	probe := &http.Client{Timeout: 2 * time.Second}
	resp, err := probe.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// terminalSettings returns settings for the one-shot terminal commands,
// which never persist sessions
func terminalSettings(cmd *cli.Command) settings {
	s := settingsFrom(cmd)
	s.SessionsDir = ""
	return s
}

func (c *cliApp) listLevels(ctx context.Context, cmd *cli.Command) error {
	a, err := initializeServices(ctx, terminalSettings(cmd), c.logger, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	levels, err := a.service.ListLevels(ctx)
	if err != nil {
		return err
	}
	prog, err := a.service.GetProgress(ctx)
	if err != nil {
		return err
	}

	fmt.Print(renderLevelTable(levels))
	fmt.Printf("Highest unlocked level: %d of %d\n", prog.HighestUnlocked, prog.TotalLevels)
	return nil
}

// terminalSink prints animated steps and hands over the final result
type terminalSink struct {
	out  io.Writer
	done chan *service.RunResult
}

func newTerminalSink(out io.Writer) *terminalSink {
	return &terminalSink{out: out, done: make(chan *service.RunResult, 1)}
}

func (s *terminalSink) Publish(sessionID, event string, data any) {
	switch event {
	case service.EventStep:
		if ev, ok := data.(engine.StepEvent); ok {
			fmt.Fprintln(s.out, renderStep(ev))
		}
	case service.EventOutcome:
		if result, ok := data.(*service.RunResult); ok {
			select {
			case s.done <- result:
			default:
			}
		}
	}
}

func (c *cliApp) play(ctx context.Context, cmd *cli.Command) error {
	directions := cmd.Args().Slice()
	if len(directions) == 0 {
		return errors.New("usage: play [--level N] [--animate] DIRECTION...")
	}

	var (
		sink      *terminalSink
		eventSink service.EventSink
	)
	if cmd.Bool("animate") {
		sink = newTerminalSink(os.Stdout)
		eventSink = sink
	}

	a, err := initializeServices(ctx, terminalSettings(cmd), c.logger, eventSink)
	if err != nil {
		return err
	}
	defer a.Close()

	info, err := a.service.CreateSession(ctx, cmd.Int("level"))
	if err != nil {
		return err
	}
	defer a.service.DeleteSession(context.Background(), info.ID)

	fmt.Println(titleStyle.Render(fmt.Sprintf("Level %d: %s", info.LevelID, info.LevelName)))
	fmt.Println(renderGrid(info.Grid))

	for _, dir := range directions {
		queued, err := a.service.AddCommand(ctx, info.ID, dir)
		if err != nil {
			return err
		}
		if !queued.Accepted {
			fmt.Println(hintStyle.Render(fmt.Sprintf("Queue %s at %d commands, ignoring the rest.", queued.Rejection, len(queued.Queue))))
			break
		}
	}

	result, err := a.service.Run(ctx, info.ID, service.RunOptions{
		Animate: eventSink != nil,
		Policy:  engine.ParseGoalPolicy(cmd.String("policy")),
	})
	if err != nil {
		return err
	}

	if result.Animated {
		select {
		case result = <-sink.done:
		case <-ctx.Done():
			a.service.Cancel(context.Background(), info.ID)
			return ctx.Err()
		}
	} else {
		for _, ev := range result.Events {
			fmt.Println(renderStep(ev))
		}
	}

	final, err := a.service.GetSession(ctx, info.ID)
	if err != nil {
		return err
	}
	fmt.Println(renderGrid(final.Grid))
	fmt.Print(renderOutcome(result))
	return nil
}

func (c *cliApp) solve(ctx context.Context, cmd *cli.Command) error {
	id, err := strconv.Atoi(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("usage: solve LEVEL_ID: %w", err)
	}

	s := terminalSettings(cmd)
	s.ProgressBackend = progress.BackendMemory
	a, err := initializeServices(ctx, s, c.logger, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	level, err := a.service.GetLevel(ctx, id)
	if err != nil {
		return err
	}
	solution, err := a.service.SolveLevel(ctx, id)
	if err != nil {
		return err
	}

	fmt.Print(renderSolution(level, solution))
	return nil
}

// validate checks a level directory file by file. Without a directory it
// checks the built-in levels through the catalog in strict mode.
func (c *cliApp) validate(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		dir = cmd.String("levels-dir")
	}

	if dir == "" {
		levels, err := config.NewManager("", config.WithStrict(true))
		if err != nil {
			return fmt.Errorf("invalid built-in levels: %w", err)
		}
		for _, info := range levels.Infos() {
			fmt.Printf("%s %d. %s (shortest program %d of %d)\n",
				wonStyle.Render("VALID"), info.ID, info.Name, info.ShortestSolution, info.MaxCommands)
		}
		return nil
	}

	results, err := validate.Dir(dir)
	if err != nil {
		return err
	}
	fmt.Print(renderValidation(results))

	if !validate.AllValid(results) {
		return errors.New("some level files have errors")
	}
	return nil
}

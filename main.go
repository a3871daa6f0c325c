package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antibyte/retrobasic/pkg/auth"
	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/logger"
	"github.com/antibyte/retrobasic/pkg/terminal"
	"github.com/antibyte/retrobasic/pkg/tinybasic"
	tlsmanager "github.com/antibyte/retrobasic/pkg/tls"
)

const configPath = "settings.yaml"

const usage = `usage:
  retrobasic               interactive session on the console
  retrobasic FILE.bas      run the lines of FILE, then continue interactively
  retrobasic serve         serve sessions over websockets
  retrobasic token [NAME]  print a session token`

func main() {
	if err := configuration.Initialize(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	logger.ConfigInfo("Configuration loaded from: %s", configPath)

	var err error
	args := os.Args[1:]
	switch {
	case len(args) == 0:
		err = runConsole("")
	case args[0] == "serve":
		err = serve()
	case args[0] == "token":
		subject := ""
		if len(args) > 1 {
			subject = args[1]
		}
		err = printToken(subject)
	case args[0] == "-h" || args[0] == "--help" || args[0] == "help":
		fmt.Println(usage)
	case len(args) == 1:
		err = runConsole(args[0])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error(logger.AreaGeneral, "%v", err)
		fmt.Fprintf(os.Stderr, "retrobasic: %v\n", err)
		logger.Close()
		os.Exit(1)
	}
}

// runConsole runs one session on the local terminal, optionally preloaded
// with the lines of a script.
func runConsole(script string) error {
	// The structured log already has every warning; keep the terminal for
	// program output.
	log.SetOutput(io.Discard)

	console := terminal.NewConsole()
	defer console.Close()

	b := tinybasic.NewTinyBASIC(console, console.Out())
	b.SetSessionID("console")
	if console.Interactive() {
		fmt.Fprintln(console.Out(), "retrobasic - type HELP for the list of commands")
	}
	ctx := context.Background()

	if script != "" {
		f, err := os.Open(script)
		if err != nil {
			return err
		}
		err = terminal.RunScript(ctx, b, f)
		f.Close()
		if errors.Is(err, tinybasic.ErrQuit) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", script, err)
		}
	}
	return console.Run(ctx, b)
}

func printToken(subject string) error {
	token, err := auth.GenerateSessionToken(auth.NewSessionID(), subject)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

// serve runs the websocket server until SIGINT or SIGTERM.
func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tlsManager, err := tlsmanager.NewTLSManager()
	if err != nil {
		return err
	}

	handler := terminal.NewTerminalHandler(ctx)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.HandleWebSocket)
	mux.HandleFunc("/api/session", auth.HandleCreateSession)
	mux.HandleFunc("/api/validate", auth.HandleTokenValidation)

	addr := configuration.GetString("Server", "listen_address", ":8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		TLSConfig:         tlsManager.GetTLSConfig(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	servers := []*http.Server{server}

	errorChan := make(chan error, 2)
	go func() {
		var err error
		if tlsManager.IsEnabled() {
			logger.Info(logger.AreaGeneral, "Starting HTTPS server on %s", addr)
			err = server.ListenAndServeTLS("", "")
		} else {
			logger.Info(logger.AreaGeneral, "Starting HTTP server on %s", addr)
			err = server.ListenAndServe()
		}
		errorChan <- err
	}()

	if tlsManager.NeedsHTTPServer() {
		httpServer := &http.Server{
			Addr:              tlsManager.HTTPAddress(),
			Handler:           tlsManager.HTTPHandler(addr),
			ReadHeaderTimeout: 10 * time.Second,
		}
		servers = append(servers, httpServer)
		go func() {
			logger.Info(logger.AreaGeneral, "Starting HTTP server for challenges/redirects on %s", httpServer.Addr)
			errorChan <- httpServer.ListenAndServe()
		}()
	}

	select {
	case err := <-errorChan:
		stop()
		handler.Shutdown()
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	logger.Info(logger.AreaGeneral, "Shutting down, %d sessions open", handler.ClientCount())
	handler.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, s := range servers {
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Warn(logger.AreaGeneral, "Shutdown of %s: %v", s.Addr, err)
		}
	}
	return nil
}

package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RezaEskandarii/lrrctl/internal/scheduler"
	"github.com/RezaEskandarii/lrrctl/types"
	"github.com/RezaEskandarii/lrrctl/types/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	PageSize = 15
)

// ToastBoard is the set of toasts currently on screen.
type ToastBoard interface {
	Active() []types.ToastMessage
	Dismiss(id string) bool
}

// ActionRunner triggers console actions by name and reports past runs.
type ActionRunner interface {
	Trigger(ctx context.Context, action string) error
	History() []scheduler.RunRecord
}

type HttpRouteHandler struct {
	board        ToastBoard
	runner       ActionRunner
	userName     string
	passwordHash []byte
	logger       *zap.Logger
	SecretKey    string
	UseAuth      bool
	Port         uint
}

// NewRouteHandler builds the dashboard. The configured password is only kept as a
// bcrypt hash. runner may be nil, which disables the action routes.
func NewRouteHandler(board ToastBoard, runner ActionRunner, cfg config.DashboardConfig, logger *zap.Logger) (*HttpRouteHandler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := &HttpRouteHandler{
		board:     board,
		runner:    runner,
		userName:  cfg.UserName,
		logger:    logger,
		SecretKey: cfg.SecretKey,
		UseAuth:   cfg.AuthEnabled,
		Port:      cfg.Port,
	}
	if cfg.AuthEnabled {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash dashboard password: %w", err)
		}
		handler.passwordHash = hash
	}
	return handler, nil
}

// Routes returns the dashboard's HTTP handler.
func (handler *HttpRouteHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", handler.authMiddleware(handler.handleIndex))
	mux.HandleFunc("/toasts", handler.authMiddleware(handler.handleToasts))
	mux.HandleFunc("/toasts/dismiss", handler.authMiddleware(handler.handleDismiss))
	mux.HandleFunc("/board", handler.authMiddleware(handler.handleBoard))
	mux.HandleFunc("/runs", handler.authMiddleware(handler.handleRuns))
	mux.HandleFunc("/actions/run", handler.authMiddleware(handler.handleRunAction))
	mux.HandleFunc("/login", handler.handleLogin)
	mux.HandleFunc("/logout", handler.handleLogout)
	return mux
}

// Serve listens until ctx is done, then shuts the server down.
func (handler *HttpRouteHandler) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", handler.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		printBanner(addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (handler *HttpRouteHandler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/board", http.StatusSeeOther)
}

func (handler *HttpRouteHandler) handleToasts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	page := types.Paginate(handler.board.Active(), getPageNumber(r), PageSize)
	writeJSON(w, http.StatusOK, page, handler.logger)
}

func (handler *HttpRouteHandler) handleBoard(w http.ResponseWriter, r *http.Request) {
	render(w, "toasts", types.Paginate(handler.board.Active(), getPageNumber(r), PageSize))
}

func (handler *HttpRouteHandler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	id := strings.TrimSpace(r.FormValue("id"))
	if id == "" {
		http.Error(w, "Invalid Parameters", http.StatusBadRequest)
		return
	}
	if !handler.board.Dismiss(id) {
		http.Error(w, "Toast not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dismissed": id}, handler.logger)
}

func (handler *HttpRouteHandler) handleRuns(w http.ResponseWriter, r *http.Request) {
	if handler.runner == nil {
		http.NotFound(w, r)
		return
	}
	page := types.Paginate(handler.runner.History(), getPageNumber(r), PageSize)
	writeJSON(w, http.StatusOK, page, handler.logger)
}

func (handler *HttpRouteHandler) handleRunAction(w http.ResponseWriter, r *http.Request) {
	if handler.runner == nil {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	action := strings.TrimSpace(r.FormValue("action"))
	if action == "" {
		http.Error(w, "Invalid Parameters", http.StatusBadRequest)
		return
	}

	handler.logger.Info("running action from dashboard", zap.String("action", action))
	if err := handler.runner.Trigger(r.Context(), action); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"action": action, "success": 0, "error": err.Error()}, handler.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"action": action, "success": 1}, handler.logger)
}

func (handler *HttpRouteHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		render(w, "login", nil)
	case http.MethodPost:
		username := r.FormValue("username")
		password := r.FormValue("password")

		if !handler.checkCredentials(username, password) {
			handler.logger.Warn("dashboard login failed", zap.String("username", username))
			setFlash(w, "warning", "invalid username or password")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     authCookie,
			Value:    generateAuthToken(username, handler.SecretKey, time.Now()),
			Path:     "/",
			MaxAge:   int(sessionTTL.Seconds()),
			HttpOnly: true,
		})
		http.Redirect(w, r, "/board", http.StatusSeeOther)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (handler *HttpRouteHandler) checkCredentials(username, password string) bool {
	if !handler.UseAuth {
		return true
	}
	if username != handler.userName {
		return false
	}
	return bcrypt.CompareHashAndPassword(handler.passwordHash, []byte(password)) == nil
}

func (handler *HttpRouteHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   authCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

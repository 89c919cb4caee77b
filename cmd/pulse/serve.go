package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/orgpulse/pulse/internal/handler"
	appI18n "github.com/orgpulse/pulse/internal/i18n"
	"github.com/orgpulse/pulse/internal/model"
	"github.com/orgpulse/pulse/internal/review"
	"github.com/orgpulse/pulse/internal/store"
	"github.com/orgpulse/pulse/internal/survey"
)

const surveyFingerprintKey = "survey_fingerprint"

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard and review server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "pulse.db", "SQLite database path")
	addSurveyFlags(cmd)
	addReviewFlags(cmd)
	f.String("feedback", "feedback.json", "Feedback JSON file")
	f.String("default-category", "", "Grouping column preselected on the dashboard")
	f.StringP("lang", "l", "ko", "UI language (ko, en)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /survey)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("admin-password", "", "Initial admin password (or set PULSE_ADMIN_PASSWORD)")
	addLogFlags(cmd)
	return cmd
}

func addSurveyFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("survey", "s", "", "Survey response table (.xlsx or .csv)")
	f.String("sheet", "", "Worksheet name (default: first sheet)")
	f.String("registry", "", "Question registry JSON (default: built-in)")
	f.Bool("lenient-scores", false, "Treat unparsable rating cells as missing instead of failing")
}

func addReviewFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("dataset", "", "Assessment results JSON array")
	f.String("vision", "", "Vision comments JSON array")
	f.String("workstyle", "", "Workstyle comments JSON array")
	f.String("summary", "", "Summary comments JSON array")
}

func loadSurvey(v *viper.Viper) (*survey.Dataset, error) {
	path := v.GetString("survey")
	if path == "" {
		return nil, nil
	}
	reg, err := survey.LoadRegistry(v.GetString("registry"))
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	ds, err := survey.Load(path, reg, survey.Options{
		Sheet:         v.GetString("sheet"),
		LenientScores: v.GetBool("lenient-scores"),
	})
	if err != nil {
		return nil, fmt.Errorf("load survey: %w", err)
	}
	slog.Info("loaded survey", "path", path, "respondents", ds.Len(), "columns", len(ds.Columns))
	return ds, nil
}

func reviewSources(v *viper.Viper) review.Sources {
	return review.Sources{
		Dataset:   v.GetString("dataset"),
		Vision:    v.GetString("vision"),
		Workstyle: v.GetString("workstyle"),
		Summary:   v.GetString("summary"),
	}
}

func loadReview(v *viper.Viper) ([]model.ReviewRecord, map[string]string, error) {
	src := reviewSources(v)
	if src.Dataset == "" {
		return nil, nil, nil
	}
	records, err := review.LoadRecords(src)
	if err != nil {
		return nil, nil, fmt.Errorf("load review inputs: %w", err)
	}
	hashes := make(map[string]string, 4)
	for _, p := range []string{src.Dataset, src.Vision, src.Workstyle, src.Summary} {
		h, err := survey.Fingerprint(p)
		if err != nil {
			return nil, nil, err
		}
		hashes[p] = h
	}
	slog.Info("loaded review inputs", "records", len(records))
	return records, hashes, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := setup(cmd)
	ctx := cmd.Context()

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := seedAdmin(ctx, db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if n, err := db.CleanupExpiredSessions(ctx); err != nil {
		slog.Warn("cleanup expired sessions", "error", err)
	} else if n > 0 {
		slog.Debug("expired sessions removed", "count", n)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	data, err := loadSurvey(v)
	if err != nil {
		return err
	}
	if data != nil {
		prev, err := db.GetMetadata(ctx, surveyFingerprintKey)
		if err != nil {
			return fmt.Errorf("read survey fingerprint: %w", err)
		}
		if prev != "" && prev != data.Fingerprint {
			slog.Info("survey file changed since last run", "path", data.Source)
		}
		if err := db.SetMetadata(ctx, surveyFingerprintKey, data.Fingerprint); err != nil {
			return fmt.Errorf("save survey fingerprint: %w", err)
		}
	}

	var ledger *review.Ledger
	records, hashes, err := loadReview(v)
	if err != nil {
		return err
	}
	if records != nil {
		reset, err := db.SyncReviewInputs(ctx, hashes)
		if err != nil {
			return fmt.Errorf("sync review inputs: %w", err)
		}
		if reset {
			slog.Warn("review inputs changed, reviewer positions were reset")
		}
		fs := review.NewJSONFileStore(v.GetString("feedback"))
		ledger = review.NewLedger(records, fs)
		entries, err := ledger.Entries()
		if err != nil {
			return fmt.Errorf("feedback file: %w", err)
		}
		slog.Info("feedback file ready", "path", fs.Path(), "judged", len(entries))
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	cfg := model.ServerConfig{
		BasePath:        basePath,
		SecureCookies:   v.GetBool("secure-cookies"),
		DefaultCategory: v.GetString("default-category"),
	}

	h, err := handler.New(db, data, ledger, cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}

	addr := v.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"base_path", basePath,
		"survey", data != nil,
		"review_records", len(records),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}

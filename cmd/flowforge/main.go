package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"flowforge/auth"
	"flowforge/services"
	"flowforge/state"
	"flowforge/store"
	"flowforge/utils"
	"flowforge/utils/logging"
)

type flowforgeEnv struct {
	DatabaseUrl    string
	JwtSecret      string
	LogDir         string
	AllowedOrigins []string
}

func loadEnvFile(envFile string) {
	slog.Info(fmt.Sprintf("loading env from file %v", envFile))
	err := godotenv.Load(envFile)
	if err != nil {
		log.Fatalf("error loading .env file '%v': %v", envFile, err)
	}
}

// All variables used by the server are loaded here so the full configuration
// surface is visible in one place.
func loadEnv() flowforgeEnv {
	env := flowforgeEnv{
		DatabaseUrl: utils.OptionalEnv("DATABASE_URL"),
		JwtSecret:   utils.OptionalEnv("JWT_SECRET"),
		LogDir:      utils.OptionalEnv("LOG_DIR"),
	}

	origins := utils.OptionalEnv("ALLOWED_ORIGINS")
	if origins == "" {
		origins = "*"
	}
	env.AllowedOrigins = strings.Split(origins, ",")

	if env.DatabaseUrl != "" && env.JwtSecret == "" {
		log.Fatal("JWT_SECRET must be specified when DATABASE_URL is set")
	}

	return env
}

func initLogging(logFile *os.File) {
	log.SetFlags(log.Lshortfile | log.Ltime | log.Ldate)
	log.SetOutput(io.MultiWriter(logFile, os.Stderr))
	logging.Setup(io.MultiWriter(logFile, os.Stderr), false)
	slog.Info("logging initialized", "log_file", logFile.Name())
}

func main() {
	envFile := flag.String("env", "", "File to load env variables from. If not specified will just load them from the environment variables already defined.")
	port := flag.Int("port", 8000, "Port to run server on")
	flag.Parse()

	if *envFile != "" {
		loadEnvFile(*envFile)
	}
	env := loadEnv()

	if env.LogDir != "" {
		err := os.MkdirAll(env.LogDir, 0777)
		if err != nil {
			log.Fatalf("error creating log dir: %v", err)
		}

		logFile, err := os.OpenFile(filepath.Join(env.LogDir, "flowforge.log"), os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
		if err != nil {
			log.Fatalf("error opening log file: %v", err)
		}
		defer logFile.Close()

		initLogging(logFile)
	}

	st := store.Connect(store.Config{
		DatabaseURL: env.DatabaseUrl,
		JwtSecret:   []byte(env.JwtSecret),
	})

	provider := state.New(st)
	provider.Start(context.Background())
	defer provider.Close()

	var jwt *auth.JwtManager
	if _, real := st.(*store.GormStore); real {
		jwt = auth.NewJwtManager([]byte(env.JwtSecret))
	}

	app := services.NewApp(provider, jwt)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   env.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Mount("/api/v1", app.Routes())

	slog.Info("starting server", "port", *port)
	err := http.ListenAndServe(fmt.Sprintf(":%d", *port), r)
	if err != nil {
		log.Fatalf("listen and serve returned error: %v", err.Error())
	}
}

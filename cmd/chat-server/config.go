package main

import (
    "log"
    "os"
    "time"

    "github.com/joho/godotenv"
)

type Config struct {
    // Addr on which the server will accept connections. Defaults to 0.0.0.0:8888
    Addr string
    // CertFile is the path of the PEM-encoded TLS certificate
    CertFile string
    // KeyFile is the path of the PEM-encoded TLS private key
    KeyFile string
    // DataDir where the server keeps its files. Created if missing
    DataDir string
    // UsersFile is the path of the credential file
    UsersFile string
    // OllamaURL is the base URL of the reply generator for AI rooms
    OllamaURL string
    // OllamaModel requested on every generate call
    OllamaModel string
    // IdleTimeout after which a silent connection is closed
    IdleTimeout time.Duration
    // DebugLog enables debug messages
    DebugLog bool
}

// envOr read an environment variable, falling back to `def` when unset.
func envOr(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// envDurOr read a duration environment variable, falling back to `def`
// when unset or unparseable.
func envDurOr(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" {
        return def
    }

    d, err := time.ParseDuration(v)
    if err != nil {
        log.Printf("Couldn't parse %s=%q, using the default %v: %+v", key, v, def, err)
        return def
    }
    return d
}

// loadConfig from the environment, optionally seeded by a .env file.
func loadConfig() Config {
    if err := godotenv.Load(); err != nil {
        log.Println("No .env file found, relying on environment variables")
    }

    conf := Config {
        Addr: envOr("CHAT_ADDR", "0.0.0.0:8888"),
        CertFile: envOr("CHAT_CERT", "data/server.crt"),
        KeyFile: envOr("CHAT_KEY", "data/server.key"),
        DataDir: envOr("CHAT_DATA_DIR", "data"),
        UsersFile: envOr("CHAT_USERS_FILE", "data/users.txt"),
        OllamaURL: envOr("CHAT_OLLAMA_URL", "http://localhost:11434"),
        OllamaModel: envOr("CHAT_OLLAMA_MODEL", "llama3"),
        IdleTimeout: envDurOr("CHAT_IDLE_TIMEOUT", time.Minute),
        DebugLog: os.Getenv("CHAT_DEBUG") != "",
    }

    log.Printf("Starting server with options:")
    log.Printf("  - Addr: %+v", conf.Addr)
    log.Printf("  - CertFile: %+v", conf.CertFile)
    log.Printf("  - KeyFile: %+v", conf.KeyFile)
    log.Printf("  - DataDir: %+v", conf.DataDir)
    log.Printf("  - UsersFile: %+v", conf.UsersFile)
    log.Printf("  - OllamaURL: %+v", conf.OllamaURL)
    log.Printf("  - OllamaModel: %+v", conf.OllamaModel)
    log.Printf("  - IdleTimeout: %+v", conf.IdleTimeout)
    log.Printf("  - DebugLog: %+v", conf.DebugLog)

    return conf
}

package config

import (
	"log"
	"os"
)

type Config struct {
	Port      string
	DBDSN     string
	RedisAddr string // empty = in-memory counter store
	LogFile   string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "stellar.db"
	} // sqlite file in project root
	redisAddr := os.Getenv("REDIS_ADDR")
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./stellar.log"
	}

	cfg := Config{Port: port, DBDSN: dsn, RedisAddr: redisAddr, LogFile: logFile}
	log.Printf("[config] PORT=%s DB_DSN=%s REDIS_ADDR=%s LOG_FILE=%s", cfg.Port, cfg.DBDSN, cfg.RedisAddr, cfg.LogFile)
	return cfg
}

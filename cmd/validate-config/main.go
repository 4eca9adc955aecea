package main

import (
	"fmt"
	"os"

	"nutricionista-backend/internal/config"
)

func main() {
	fmt.Println("🔍 Verificando configuração...")

	cfg, err := loadConfig()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Printf("❌ Configuração inválida:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Configuração válida!")
	fmt.Printf("📋 Detalhes da configuração:\n")
	fmt.Printf("  - Env: %s\n", cfg.Env)
	fmt.Printf("  - Port: %s\n", cfg.Port)
	fmt.Printf("  - Timezone: %s\n", cfg.Timezone)
	fmt.Printf("  - Storage Driver: %s\n", cfg.StorageDriver)
	switch cfg.StorageDriver {
	case "postgres":
		fmt.Printf("  - Database URL: %s\n", maskToken(cfg.DatabaseURL))
	case "sqlite":
		fmt.Printf("  - SQLite Path: %s\n", cfg.SQLitePath)
	}
	fmt.Printf("  - Redis URL: %s\n", maskToken(cfg.RedisURL))
	fmt.Printf("  - JWT Secret: %s\n", maskToken(cfg.JWTSecret))
	fmt.Printf("  - AI Provider: %s\n", cfg.AIProvider)
	switch cfg.AIProvider {
	case "gemini":
		fmt.Printf("  - Gemini API Key: %s\n", maskToken(cfg.GeminiAPIKey))
		fmt.Printf("  - Gemini Models: %s / %s\n", cfg.GeminiModel, cfg.GeminiImageModel)
	case "openai":
		fmt.Printf("  - OpenAI API Key: %s\n", maskToken(cfg.OpenAIAPIKey))
		fmt.Printf("  - OpenAI Model: %s\n", cfg.OpenAIModel)
	}
	fmt.Printf("  - AI Limits: %d concurrent, %d/min, timeout %s\n", cfg.AIConcurrentReqs, cfg.AIRequestsPerMinute, cfg.GenerationTimeout)
	fmt.Printf("  - Chat Error Policy: %s\n", cfg.ChatErrorPolicy)
	fmt.Printf("  - Session Idle TTL: %s\n", cfg.SessionIdleTTL)
	fmt.Printf("  - Max Image Bytes: %d\n", cfg.MaxImageBytes)
	fmt.Printf("  - Log Level: %s\n", cfg.LogLevel)
	fmt.Printf("  - Log Output: %s\n", cfg.LogOutput)
	fmt.Printf("  - Log Format: %s\n", cfg.LogFormat)
}

// loadConfig turns the panic raised for a missing required variable into an error.
func loadConfig() (cfg *config.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return config.Load(), nil
}

func maskToken(token string) string {
	if token == "" {
		return "<não definido>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
